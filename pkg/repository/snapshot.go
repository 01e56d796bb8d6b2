package repository

import (
	"fmt"
	"sync"

	"github.com/ncforge/ncgen/internal/schemedir"
	"github.com/ncforge/ncgen/pkg/scheme"
)

// Snapshot is an immutable view of the scheme set produced by one Load pass.
// Scheme data is shared read-only; the only mutable state is the lazily
// filled template source cache, which is internally synchronised.
type Snapshot struct {
	order   []string
	schemes map[string]*entry
	report  LoadReport
}

type entry struct {
	dir    string
	scheme *scheme.Scheme
	store  schemedir.Store

	mu      sync.RWMutex
	sources map[string]string
}

// List returns the schemes in load order.
func (s *Snapshot) List() []Info {
	out := make([]Info, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Info{
			Name:        name,
			Description: s.schemes[name].scheme.Description,
		})
	}
	return out
}

// Report returns the load report this snapshot was built with.
func (s *Snapshot) Report() LoadReport {
	return s.report
}

// Scheme looks up a scheme by name.
func (s *Snapshot) Scheme(name string) (*scheme.Scheme, bool) {
	e, ok := s.schemes[name]
	if !ok {
		return nil, false
	}
	return e.scheme, true
}

// Groups returns the parameter groups of a scheme, for building input forms.
func (s *Snapshot) Groups(name string) ([]scheme.ParameterGroup, error) {
	e, ok := s.schemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSchemeNotFound, name)
	}
	return e.scheme.Groups, nil
}

// TemplateSource returns the template body for the named template of the
// named scheme. The file is read on first use and cached for the lifetime of
// the snapshot; template existence was already checked at load time, so a
// read failure here means the backing store changed underneath us.
func (s *Snapshot) TemplateSource(schemeName, templateName string) (string, error) {
	e, ok := s.schemes[schemeName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSchemeNotFound, schemeName)
	}
	ref, ok := e.scheme.Template(templateName)
	if !ok {
		return "", fmt.Errorf("%w: %q in scheme %q", ErrTemplateNotFound, templateName, schemeName)
	}
	return e.source(ref)
}

func (e *entry) source(ref scheme.TemplateRef) (string, error) {
	e.mu.RLock()
	if src, ok := e.sources[ref.File]; ok {
		e.mu.RUnlock()
		return src, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if src, ok := e.sources[ref.File]; ok {
		return src, nil
	}
	data, err := e.store.ReadFile(e.dir, ref.File)
	if err != nil {
		return "", fmt.Errorf("repository: read template %q: %w", ref.File, err)
	}
	src := string(data)
	e.sources[ref.File] = src
	return src, nil
}
