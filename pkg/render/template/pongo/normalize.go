package pongo

import "regexp"

// The scheme template corpus writes filter arguments Jinja-style,
// "value | filter(arg)", while pongo2 expects the Django spelling
// "value|filter:arg". normalizeSource rewrites the former into the latter
// inside expression and control tags so both spellings work. Function calls
// without a leading pipe (range(...)) are left alone.
var filterCallRe = regexp.MustCompile(`\|\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(\s*([^()]*?)\s*\)`)

func normalizeSource(source string) string {
	return tagRe.ReplaceAllStringFunc(source, func(tag string) string {
		return filterCallRe.ReplaceAllStringFunc(tag, func(call string) string {
			m := filterCallRe.FindStringSubmatch(call)
			if m[2] == "" {
				return "|" + m[1]
			}
			return "|" + m[1] + ":" + m[2]
		})
	})
}
