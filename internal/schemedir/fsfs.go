package schemedir

import (
	"io/fs"
	"sort"
)

type fsStore struct {
	fsys fs.FS
}

// NewFS returns a Store backed by an fs.FS, used by tests and embedded
// scheme sets.
func NewFS(fsys fs.FS) Store {
	return &fsStore{fsys: fsys}
}

func (s *fsStore) Dirs() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (s *fsStore) Exists(dir, name string) bool {
	p, err := rel(dir, name)
	if err != nil {
		return false
	}
	info, err := fs.Stat(s.fsys, p)
	return err == nil && info.Mode().IsRegular()
}

func (s *fsStore) ReadFile(dir, name string) ([]byte, error) {
	p, err := rel(dir, name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(s.fsys, p)
}
