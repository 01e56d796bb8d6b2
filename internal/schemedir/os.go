package schemedir

import (
	"os"
	"path/filepath"
	"sort"
)

type osStore struct {
	base string
}

// NewOS returns a Store backed by a directory on disk.
func NewOS(base string) Store {
	return &osStore{base: base}
}

func (s *osStore) Dirs() ([]string, error) {
	entries, err := os.ReadDir(s.base)
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

func (s *osStore) Exists(dir, name string) bool {
	p, err := rel(dir, name)
	if err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(s.base, filepath.FromSlash(p)))
	return err == nil && info.Mode().IsRegular()
}

func (s *osStore) ReadFile(dir, name string) ([]byte, error) {
	p, err := rel(dir, name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.base, filepath.FromSlash(p)))
}
