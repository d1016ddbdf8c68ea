package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/fx"
)

//go:generate mockgen -destination=fsmock/fs_mock.go -package=fsmock . LSPGraphFS

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// LSPGraphFS wraps the filesystem operations used by lsp-graph.
type LSPGraphFS interface {
	// Canonicalize returns the absolute path of path with symlinks resolved.
	Canonicalize(path string) (string, error)
	// ListFiles walks root recursively and returns, in lexical order, every regular file whose
	// name ends with one of suffixes and whose path contains none of ignore.
	// An empty suffix list accepts every file.
	ListFiles(root string, suffixes []string, ignore []string) ([]string, error)
	MkdirAll(path string) error
	ReadFile(name string) ([]byte, error)
	TempFile(dir, pattern string) (*os.File, error)
	Remove(name string) error
}

type fsImpl struct{}

// New creates a new LSPGraphFS.
func New() LSPGraphFS {
	return fsImpl{}
}

func (fsImpl) Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (fsImpl) ListFiles(root string, suffixes []string, ignore []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if containsAny(path, ignore) || !hasAnySuffix(d.Name(), suffixes) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// MkdirAll creates a directory and all its parents.
func (fsImpl) MkdirAll(path string) error { return os.MkdirAll(path, os.ModePerm) }

func (fsImpl) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fsImpl) TempFile(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}

func (fsImpl) Remove(name string) error {
	return os.Remove(name)
}

func containsAny(path string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(path, f) {
			return true
		}
	}
	return false
}

func hasAnySuffix(name string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
