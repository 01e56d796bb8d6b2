// Package repository loads scheme definitions from a backing directory tree
// and publishes them as immutable snapshots. A reload builds a complete new
// snapshot and swaps it in atomically; renders that started on the previous
// snapshot keep using it untouched.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync/atomic"

	"github.com/ncforge/ncgen/internal/schemedir"
	"github.com/ncforge/ncgen/pkg/scheme"
)

var (
	// ErrNotLoaded is returned when the repository is queried before the
	// first successful Load.
	ErrNotLoaded = errors.New("repository: not loaded")
	// ErrSchemeNotFound is returned for lookups of unknown scheme names.
	ErrSchemeNotFound = errors.New("repository: scheme not found")
	// ErrTemplateNotFound is returned when a scheme has no template with the
	// requested name.
	ErrTemplateNotFound = errors.New("repository: template not found")
)

// Option configures the repository before construction.
type Option func(*config)

type config struct {
	baseDir string
	fsys    fs.FS
}

// WithBaseDir scans schemes from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = dir
	}
}

// WithFS scans schemes from an fs.FS.
func WithFS(fsys fs.FS) Option {
	return func(cfg *config) {
		cfg.fsys = fsys
	}
}

// Info is the read-only listing entry exposed to UI callers.
type Info struct {
	Name        string
	Description string
}

// SchemeFailure records one scheme directory that failed to load. Other
// schemes are unaffected; failure isolation is per scheme.
type SchemeFailure struct {
	Dir string
	Err error
}

// LoadReport summarises one Load pass.
type LoadReport struct {
	Loaded []string
	Failed []SchemeFailure
}

// Repository owns the current snapshot. All methods are safe for concurrent
// use; Load may run concurrently with readers.
type Repository struct {
	store schemedir.Store
	snap  atomic.Pointer[Snapshot]
}

// New constructs a Repository. Either WithBaseDir or WithFS is required; no
// scanning happens until Load is called.
func New(options ...Option) (*Repository, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var store schemedir.Store
	switch {
	case cfg.fsys != nil:
		store = schemedir.NewFS(cfg.fsys)
	case cfg.baseDir != "":
		store = schemedir.NewOS(cfg.baseDir)
	default:
		return nil, errors.New("repository: need to provide either base dir or fs.FS")
	}
	return &Repository{store: store}, nil
}

// Load scans the backing store and atomically publishes a new snapshot.
// Scheme directories that fail to parse are reported and skipped; the rest
// still load. Cancelling ctx aborts without publishing anything.
func (r *Repository) Load(ctx context.Context) (LoadReport, error) {
	dirs, err := r.store.Dirs()
	if err != nil {
		return LoadReport{}, fmt.Errorf("repository: scan base: %w", err)
	}

	snap := &Snapshot{
		schemes: make(map[string]*entry, len(dirs)),
	}
	var report LoadReport

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return LoadReport{}, err
		}

		data, err := r.store.ReadFile(dir, schemedir.SchemeFileName)
		if err != nil {
			// directories without a scheme.yaml are not schemes
			continue
		}

		s, err := scheme.Parse(data)
		if err != nil {
			report.Failed = append(report.Failed, SchemeFailure{Dir: dir, Err: err})
			continue
		}
		if err := checkTemplateFiles(r.store, dir, s); err != nil {
			report.Failed = append(report.Failed, SchemeFailure{Dir: dir, Err: err})
			continue
		}
		if _, dup := snap.schemes[s.Name]; dup {
			report.Failed = append(report.Failed, SchemeFailure{
				Dir: dir,
				Err: fmt.Errorf("repository: scheme name %q already loaded", s.Name),
			})
			continue
		}

		snap.schemes[s.Name] = &entry{
			dir:     dir,
			scheme:  s,
			store:   r.store,
			sources: make(map[string]string, len(s.Templates)),
		}
		snap.order = append(snap.order, s.Name)
		report.Loaded = append(report.Loaded, s.Name)
	}

	snap.report = report
	r.snap.Store(snap)
	return report, nil
}

// Reload is an alias for Load kept for caller clarity: it re-scans the
// backing store and swaps in a fresh snapshot.
func (r *Repository) Reload(ctx context.Context) (LoadReport, error) {
	return r.Load(ctx)
}

// Snapshot returns the currently published snapshot, or nil before the first
// Load. Callers that need a consistent view across several operations should
// take the snapshot once and use it throughout.
func (r *Repository) Snapshot() *Snapshot {
	return r.snap.Load()
}

// List returns the loaded schemes in load order.
func (r *Repository) List() []Info {
	if snap := r.Snapshot(); snap != nil {
		return snap.List()
	}
	return nil
}

// Scheme looks up a loaded scheme by name.
func (r *Repository) Scheme(name string) (*scheme.Scheme, bool) {
	if snap := r.Snapshot(); snap != nil {
		return snap.Scheme(name)
	}
	return nil, false
}

func checkTemplateFiles(store schemedir.Store, dir string, s *scheme.Scheme) error {
	for _, ref := range s.Templates {
		if !store.Exists(dir, ref.File) {
			return &scheme.LoadError{
				Kind:   scheme.SchemaViolation,
				Detail: fmt.Sprintf("template %q: file %q does not resolve", ref.Name, ref.File),
			}
		}
	}
	return nil
}
