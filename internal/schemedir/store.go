// Package schemedir abstracts the scheme backing store: a base directory (or
// fs.FS) whose immediate subdirectories each hold a scheme.yaml and the
// template files it references.
package schemedir

import (
	"errors"
	"path"
	"strings"
)

// SchemeFileName is the definition file looked up in every scheme directory.
const SchemeFileName = "scheme.yaml"

// Store is the read-only view of a scheme directory tree.
type Store interface {
	// Dirs lists the immediate subdirectory names of the base, sorted.
	Dirs() ([]string, error)
	// Exists reports whether name resolves to a regular file inside dir.
	Exists(dir, name string) bool
	// ReadFile reads a file inside one scheme directory. name is a relative
	// path; escaping the directory is an error.
	ReadFile(dir, name string) ([]byte, error)
}

var errEscapingPath = errors.New("schemedir: path escapes the scheme directory")

// rel validates a scheme-relative file path and returns its slash-clean form.
func rel(dir, name string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if cleaned == "." || cleaned == ".." ||
		strings.HasPrefix(cleaned, "../") || strings.HasPrefix(cleaned, "/") {
		return "", errEscapingPath
	}
	return path.Join(dir, cleaned), nil
}
