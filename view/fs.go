package view

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// mergeFS implements fs.FS over an ordered list of view paths.
type mergeFS struct {
	// Remembers which view path holds a template.
	cache map[string]fs.FS

	// View paths, searched first to last.
	dirs []fs.FS

	sync.RWMutex
}

func newMergeFS(dirs ...fs.FS) *mergeFS {
	pkgDir, _ := fs.Sub(pkgFS, "tmpl")
	return &mergeFS{
		cache: make(map[string]fs.FS),
		dirs:  append(append([]fs.FS{}, dirs...), pkgDir),
	}
}

// Open opens the file matching the name using the following strategy:
//   - check the cache
//   - check each view path, in order
//   - check the package-level virtual filesystem
//
// Whenever a file is found and is not present in the cache, it is added.
// Nothing removes references from the cache.
//
// If a file is removed from a view path during runtime,
// then a reference to it from the cache returns the same error (fs.ErrNotExist)
// as if the cache did not have that reference.
func (mfs *mergeFS) Open(name string) (fs.File, error) {
	mfs.RLock()
	dir, ok := mfs.cache[name]
	mfs.RUnlock()
	if ok {
		return dir.Open(name)
	}

	for _, dir := range mfs.dirs {
		file, err := dir.Open(name)
		if err == nil {
			mfs.Lock()
			mfs.cache[name] = dir
			mfs.Unlock()

			return file, nil
		}

		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			continue
		}

		return nil, fmt.Errorf("unable to open template: %w", err)
	}

	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

//go:embed tmpl/*
var pkgFS embed.FS
