// Package ncgen generates NC (numerical control) program text by rendering
// parameterized templates under the constraints of a declarative scheme. The
// root package bundles the repository and the render pipeline behind a single
// Generator for callers that do not need to wire the pieces themselves.
package ncgen

import (
	"context"
	"io/fs"

	"github.com/ncforge/ncgen/pkg/pipeline"
	"github.com/ncforge/ncgen/pkg/repository"
	"github.com/ncforge/ncgen/pkg/scheme"
)

// Result is the outcome of one render call.
type Result = pipeline.Result

// Failure is the structured diagnostic of a failed render.
type Failure = pipeline.Failure

// Info is one row of the scheme listing.
type Info = repository.Info

// LoadReport summarises a repository load or reload pass.
type LoadReport = repository.LoadReport

// Generator is the engine facade: a loaded scheme repository plus the render
// pipeline. Safe for concurrent use; Reload publishes atomically and leaves
// in-flight renders on their original snapshot.
type Generator struct {
	repo *repository.Repository
	pipe *pipeline.Pipeline
}

// Open scans dir for scheme directories and returns a ready Generator. The
// report lists schemes that loaded and schemes that were skipped with their
// reasons; only an unusable backing store is a hard error.
func Open(ctx context.Context, dir string, options ...pipeline.Option) (*Generator, LoadReport, error) {
	return open(ctx, repository.WithBaseDir(dir), options...)
}

// OpenFS is Open over an fs.FS backing store.
func OpenFS(ctx context.Context, fsys fs.FS, options ...pipeline.Option) (*Generator, LoadReport, error) {
	return open(ctx, repository.WithFS(fsys), options...)
}

func open(ctx context.Context, storeOpt repository.Option, options ...pipeline.Option) (*Generator, LoadReport, error) {
	repo, err := repository.New(storeOpt)
	if err != nil {
		return nil, LoadReport{}, err
	}
	report, err := repo.Load(ctx)
	if err != nil {
		return nil, LoadReport{}, err
	}
	return &Generator{
		repo: repo,
		pipe: pipeline.New(repo, options...),
	}, report, nil
}

// List returns the loaded schemes in load order.
func (g *Generator) List() []Info {
	return g.repo.List()
}

// Groups returns the parameter groups of a scheme, for building input forms.
func (g *Generator) Groups(schemeName string) ([]scheme.ParameterGroup, error) {
	snap := g.repo.Snapshot()
	if snap == nil {
		return nil, repository.ErrNotLoaded
	}
	return snap.Groups(schemeName)
}

// Scheme looks up a loaded scheme by name.
func (g *Generator) Scheme(name string) (*scheme.Scheme, bool) {
	return g.repo.Scheme(name)
}

// Render validates rawParams against the scheme and renders the named
// template. It never panics on malformed input; every failure mode comes back
// as a structured Result.
func (g *Generator) Render(ctx context.Context, schemeName, templateName string, rawParams map[string]any) Result {
	return g.pipe.Render(ctx, pipeline.Request{
		Scheme:   schemeName,
		Template: templateName,
		Params:   rawParams,
	})
}

// Variables reports the variable names a template references.
func (g *Generator) Variables(schemeName, templateName string) ([]string, error) {
	return g.pipe.Variables(schemeName, templateName)
}

// Reload re-scans the backing store and atomically publishes a new scheme
// snapshot. Concurrent in-flight renders are unaffected.
func (g *Generator) Reload(ctx context.Context) (LoadReport, error) {
	return g.repo.Reload(ctx)
}
