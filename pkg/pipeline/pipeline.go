// Package pipeline orchestrates a render call: resolve scheme, resolve
// template, validate parameters, render, and return a result carrying either
// the output or a structured failure. It owns no retry logic and produces no
// partial output.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/ncforge/ncgen/pkg/params"
	"github.com/ncforge/ncgen/pkg/render/template"
	"github.com/ncforge/ncgen/pkg/render/template/pongo"
	"github.com/ncforge/ncgen/pkg/repository"
	"github.com/ncforge/ncgen/pkg/scheme"
)

// Option customises the pipeline configuration.
type Option func(*Pipeline)

// WithEngine injects a custom template renderer.
func WithEngine(engine template.Renderer) Option {
	return func(p *Pipeline) {
		p.engine = engine
	}
}

// Request names one render call. Params holds raw, possibly textual values as
// supplied by the caller; validation and coercion happen inside the pipeline.
type Request struct {
	Scheme   string
	Template string
	Params   map[string]any
}

// Pipeline wires the repository and the template engine behind the single
// Render entry point. Safe for concurrent use; each render operates against
// the repository snapshot current when it started.
type Pipeline struct {
	repo    *repository.Repository
	engine  template.Renderer
	initErr error
}

// New constructs a Pipeline over the given repository. Without options the
// pongo engine is used.
func New(repo *repository.Repository, options ...Option) *Pipeline {
	p := &Pipeline{repo: repo}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	if p.engine == nil {
		engine, err := pongo.New()
		if err != nil {
			p.initErr = err
		}
		p.engine = engine
	}
	return p
}

// Render runs the full pipeline for one request. The returned Result always
// carries the elapsed duration; Err is nil exactly when Output is usable.
func (p *Pipeline) Render(ctx context.Context, req Request) Result {
	start := time.Now()
	fail := func(f *Failure) Result {
		return Result{Duration: time.Since(start), Err: f}
	}

	if p.initErr != nil {
		return fail(renderingFailed(req, wrapRenderErr(p.initErr)))
	}
	if err := ctx.Err(); err != nil {
		return fail(renderingFailed(req, wrapRenderErr(err)))
	}

	snap := p.repo.Snapshot()
	if snap == nil {
		return fail(&Failure{Kind: SchemeNotFound, Scheme: req.Scheme, Detail: repository.ErrNotLoaded.Error()})
	}

	s, ok := snap.Scheme(req.Scheme)
	if !ok {
		return fail(&Failure{Kind: SchemeNotFound, Scheme: req.Scheme})
	}

	if _, ok := s.Template(req.Template); !ok {
		return fail(&Failure{Kind: TemplateNotFound, Scheme: req.Scheme, Template: req.Template})
	}
	source, err := snap.TemplateSource(req.Scheme, req.Template)
	if err != nil {
		// The name resolved against the snapshot above, so a failure here is
		// an I/O problem with the backing store, not a bad template name.
		if errors.Is(err, repository.ErrSchemeNotFound) || errors.Is(err, repository.ErrTemplateNotFound) {
			return fail(&Failure{Kind: TemplateNotFound, Scheme: req.Scheme, Template: req.Template, Detail: err.Error()})
		}
		return fail(&Failure{Kind: RenderingFailed, Scheme: req.Scheme, Template: req.Template, Detail: err.Error()})
	}

	normalized, verrs := params.Validate(s, req.Params)
	if len(verrs) > 0 {
		return fail(&Failure{
			Kind:       ValidationFailed,
			Scheme:     req.Scheme,
			Template:   req.Template,
			Validation: verrs,
		})
	}

	bindings := withMacros(s, normalized)
	output, err := p.engine.RenderString(source, bindings)
	if err != nil {
		return fail(renderingFailed(req, wrapRenderErr(err)))
	}

	return Result{Output: output, Duration: time.Since(start)}
}

// Variables reports the top-level variable names a template references, for
// callers that build input forms. Macro names are excluded since the engine
// supplies them.
func (p *Pipeline) Variables(schemeName, templateName string) ([]string, error) {
	if p.initErr != nil {
		return nil, p.initErr
	}
	snap := p.repo.Snapshot()
	if snap == nil {
		return nil, repository.ErrNotLoaded
	}
	source, err := snap.TemplateSource(schemeName, templateName)
	if err != nil {
		return nil, err
	}
	names, err := p.engine.Variables(source)
	if err != nil {
		return nil, err
	}
	s, _ := snap.Scheme(schemeName)
	return dropMacroNames(s, names), nil
}

func withMacros(s *scheme.Scheme, normalized map[string]any) map[string]any {
	if len(s.Macros) == 0 {
		return normalized
	}
	bindings := make(map[string]any, len(normalized)+len(s.Macros))
	for _, m := range s.Macros {
		bindings[m.Name] = m.Content
	}
	// validated parameter values win on collision
	for k, v := range normalized {
		bindings[k] = v
	}
	return bindings
}

func dropMacroNames(s *scheme.Scheme, names []string) []string {
	if s == nil || len(s.Macros) == 0 {
		return names
	}
	macros := make(map[string]struct{}, len(s.Macros))
	for _, m := range s.Macros {
		macros[m.Name] = struct{}{}
	}
	out := names[:0]
	for _, name := range names {
		if _, isMacro := macros[name]; !isMacro {
			out = append(out, name)
		}
	}
	return out
}
