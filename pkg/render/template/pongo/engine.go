// Package pongo implements the template rendering seam on top of the pongo2
// engine. It layers three things the raw engine does not give us: strict
// undefined-variable semantics, the NC formatting filter set, and a
// content-addressed cache of compiled templates.
package pongo

import (
	"crypto/sha256"
	"errors"
	"io/fs"
	"regexp"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/ncforge/ncgen/pkg/render"
	"github.com/ncforge/ncgen/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	includes fs.FS
}

// WithIncludeFS supplies an fs.FS consulted when templates include or extend
// other files. Without it, includes are resolved against the process working
// directory.
func WithIncludeFS(fsys fs.FS) Option {
	return func(cfg *config) {
		cfg.includes = fsys
	}
}

type compiled struct {
	tmpl *pongo2.Template
	refs []varRef
}

// Engine renders template source strings with pongo2. Compiled templates are
// memoized by a SHA-256 of the source text; the cache only ever speeds
// rendering up, it cannot change output. Safe for concurrent use.
type Engine struct {
	set *pongo2.TemplateSet

	mu    sync.RWMutex
	cache map[[sha256.Size]byte]*compiled
}

var _ template.Renderer = (*Engine)(nil)

// New constructs an Engine and registers the NC filter set.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loaders []pongo2.TemplateLoader
	if cfg.includes != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.includes))
	} else {
		loader, err := pongo2.NewLocalFileSystemLoader("")
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, loader)
	}

	registerFilters()

	set := pongo2.NewSet("ncgen", loaders...)
	set.Globals = pongo2.Context{"range": rangeValues}

	return &Engine{
		set:   set,
		cache: make(map[[sha256.Size]byte]*compiled),
	}, nil
}

// RenderString renders source against bindings. Any top-level variable the
// template evaluates unconditionally that is absent from the bindings fails
// the render with an UndefinedVariable error before execution starts. Names
// inside comment regions or branch bodies that never run do not require a
// binding.
func (e *Engine) RenderString(source string, bindings map[string]any) (string, error) {
	c, err := e.compile(source)
	if err != nil {
		return "", err
	}
	for _, ref := range c.refs {
		if ref.Conditional {
			continue
		}
		if _, ok := bindings[ref.Name]; ok {
			continue
		}
		return "", &render.Error{
			Kind:       render.UndefinedVariable,
			Line:       ref.Line,
			Expression: ref.Name,
			Message:    "variable " + ref.Name + " is not defined",
		}
	}

	out, err := c.tmpl.Execute(pongo2.Context(bindings))
	if err != nil {
		return "", mapExecuteError(err)
	}
	return out, nil
}

// Variables reports the top-level names referenced by the template source in
// first-appearance order, excluding loop-locals, builtins, and comment
// regions. Names inside branches count: form builders need every input the
// template may consume. A source that fails to parse returns the parse
// error.
func (e *Engine) Variables(source string) ([]string, error) {
	c, err := e.compile(source)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(c.refs))
	names := make([]string, 0, len(c.refs))
	for _, ref := range c.refs {
		if _, dup := seen[ref.Name]; dup {
			continue
		}
		seen[ref.Name] = struct{}{}
		names = append(names, ref.Name)
	}
	return names, nil
}

func (e *Engine) compile(source string) (*compiled, error) {
	key := sha256.Sum256([]byte(source))

	e.mu.RLock()
	if c, ok := e.cache[key]; ok {
		e.mu.RUnlock()
		return c, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.cache[key]; ok {
		return c, nil
	}

	tmpl, err := e.set.FromString(normalizeSource(source))
	if err != nil {
		return nil, mapParseError(err)
	}

	c := &compiled{tmpl: tmpl, refs: scanVariables(source)}
	e.cache[key] = c
	return c, nil
}

var filterMissingRe = regexp.MustCompile(`(?i)filter '([^']+)' does not exist`)

func mapParseError(err error) error {
	var perr *pongo2.Error
	line := 0
	msg := err.Error()
	if errors.As(err, &perr) {
		line = perr.Line
		if perr.OrigError != nil {
			msg = perr.OrigError.Error()
		}
	}
	if m := filterMissingRe.FindStringSubmatch(msg); m != nil {
		return &render.Error{
			Kind:       render.UndefinedFilter,
			Line:       line,
			Expression: m[1],
			Message:    "filter " + m[1] + " is not registered",
			Err:        err,
		}
	}
	return &render.Error{
		Kind:    render.SyntaxError,
		Line:    line,
		Message: msg,
		Err:     err,
	}
}

func mapExecuteError(err error) error {
	line := 0
	var perr *pongo2.Error
	if errors.As(err, &perr) {
		line = perr.Line
	}
	if ferr := findFilterError(err); ferr != nil {
		return &render.Error{
			Kind:       render.FilterTypeMismatch,
			Line:       line,
			Expression: ferr.Filter,
			Message:    ferr.Error(),
			Err:        ferr,
		}
	}
	return &render.Error{
		Kind:    render.SyntaxError,
		Line:    line,
		Message: err.Error(),
		Err:     err,
	}
}

// findFilterError walks both standard Unwrap chains and pongo2's OrigError
// nesting, which predates errors.Unwrap.
func findFilterError(err error) *render.FilterError {
	for err != nil {
		var ferr *render.FilterError
		if errors.As(err, &ferr) {
			return ferr
		}
		var perr *pongo2.Error
		if errors.As(err, &perr) && perr.OrigError != nil && perr.OrigError != err {
			err = perr.OrigError
			continue
		}
		return nil
	}
	return nil
}
