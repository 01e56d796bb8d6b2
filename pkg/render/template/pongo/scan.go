package pongo

import (
	"regexp"
	"strings"
)

// varRef records one referenced top-level variable and the line it first
// appears on, for error reporting. Conditional marks names that only appear
// inside if or for bodies: the branch may never run, so the strict pre-check
// must not demand a binding for them.
type varRef struct {
	Name        string
	Line        int
	Conditional bool
}

var (
	tagRe          = regexp.MustCompile(`\{\{[\s\S]*?\}\}|\{%[\s\S]*?%\}`)
	identRe        = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	stringLitRe    = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	filterRe       = regexp.MustCompile(`\|\s*[A-Za-z_][A-Za-z0-9_]*`)
	attrRe         = regexp.MustCompile(`\.[A-Za-z_][A-Za-z0-9_]*`)
	commentTagRe   = regexp.MustCompile(`\{#[\s\S]*?#\}`)
	commentBlockRe = regexp.MustCompile(`\{%\s*comment\s*%\}[\s\S]*?\{%\s*endcomment\s*%\}`)
)

// stripComments blanks {# ... #} tags and {% comment %} blocks. Newlines are
// kept so references after a comment keep their line numbers.
func stripComments(source string) string {
	blank := func(m string) string {
		return strings.Repeat("\n", strings.Count(m, "\n"))
	}
	source = commentBlockRe.ReplaceAllStringFunc(source, blank)
	return commentTagRe.ReplaceAllStringFunc(source, blank)
}

// expression keywords and tag names that never name a binding
var scanKeywords = map[string]struct{}{
	"if": {}, "elif": {}, "else": {}, "endif": {},
	"for": {}, "endfor": {}, "in": {}, "not": {}, "and": {}, "or": {},
	"true": {}, "false": {}, "True": {}, "False": {}, "nil": {}, "None": {},
	"reversed": {}, "sorted": {}, "empty": {},
	"comment": {}, "endcomment": {}, "verbatim": {}, "endverbatim": {},
	"include": {}, "extends": {}, "block": {}, "endblock": {},
	"set": {}, "with": {}, "endwith": {}, "filter": {}, "endfilter": {},
}

// names provided by the engine itself, never required in bindings
var scanBuiltins = map[string]struct{}{
	"range":   {},
	"forloop": {},
}

// scanVariables extracts the top-level variable names a template references,
// in document order, tracking for-loop locals so they are not mistaken for
// bindings. Comment regions are ignored. Names that occur only inside an if
// or for body are flagged Conditional: whether they are evaluated depends on
// runtime values, so the strict pre-check leaves them to the engine. This is
// what gives the engine strict-undefined semantics on top of pongo2's lenient
// lookup.
func scanVariables(source string) []varRef {
	source = stripComments(source)

	var refs []varRef
	var scopes []map[string]struct{}
	condDepth := 0
	index := map[string]int{}

	inScope := func(name string) bool {
		for _, scope := range scopes {
			if _, ok := scope[name]; ok {
				return true
			}
		}
		return false
	}

	collect := func(expr string, line int) {
		expr = stringLitRe.ReplaceAllString(expr, "")
		expr = filterRe.ReplaceAllString(expr, "")
		expr = attrRe.ReplaceAllString(expr, "")
		for _, name := range identRe.FindAllString(expr, -1) {
			if _, kw := scanKeywords[name]; kw {
				continue
			}
			if _, builtin := scanBuiltins[name]; builtin {
				continue
			}
			if inScope(name) {
				continue
			}
			if i, dup := index[name]; dup {
				// an unconditional occurrence outranks an earlier branch one
				if refs[i].Conditional && condDepth == 0 {
					refs[i].Conditional = false
				}
				continue
			}
			index[name] = len(refs)
			refs = append(refs, varRef{Name: name, Line: line, Conditional: condDepth > 0})
		}
	}

	for _, loc := range tagRe.FindAllStringIndex(source, -1) {
		tag := source[loc[0]:loc[1]]
		line := 1 + strings.Count(source[:loc[0]], "\n")

		if strings.HasPrefix(tag, "{{") {
			collect(strings.TrimSuffix(strings.TrimPrefix(tag, "{{"), "}}"), line)
			continue
		}

		inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(tag, "{%"), "%}"))
		word, rest, _ := strings.Cut(inner, " ")
		switch word {
		case "for":
			// the iterated expression is evaluated, the body may not be
			locals, expr := splitForTag(rest)
			scope := make(map[string]struct{}, len(locals))
			for _, l := range locals {
				scope[l] = struct{}{}
			}
			collect(expr, line)
			scopes = append(scopes, scope)
			condDepth++
		case "endfor":
			if len(scopes) > 0 {
				scopes = scopes[:len(scopes)-1]
			}
			if condDepth > 0 {
				condDepth--
			}
		case "if":
			collect(rest, line)
			condDepth++
		case "elif":
			collect(rest, line)
		case "endif":
			if condDepth > 0 {
				condDepth--
			}
		}
	}
	return refs
}

// splitForTag breaks "x[, y] in expr" into the loop-local names and the
// iterated expression.
func splitForTag(rest string) (locals []string, expr string) {
	left, right, found := strings.Cut(rest, " in ")
	if !found {
		return nil, rest
	}
	for _, name := range strings.Split(left, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			locals = append(locals, trimmed)
		}
	}
	return locals, right
}
