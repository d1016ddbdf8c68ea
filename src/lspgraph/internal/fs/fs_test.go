package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepareTree(t *testing.T) string {
	root := t.TempDir()
	for _, name := range []string{
		"a.txt",
		"b.txt",
		"notes.md",
		"src/c.txt",
		"target/debug/d.txt",
		"src/nested/e.txt",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
		require.NoError(t, os.WriteFile(path, []byte(name), 0644))
	}
	return root
}

func TestListFiles(t *testing.T) {
	root := prepareTree(t)
	fs := New()

	tests := []struct {
		name     string
		suffixes []string
		ignore   []string
		expected []string
	}{
		{
			name:     "suffix filter",
			suffixes: []string{".txt"},
			expected: []string{"a.txt", "b.txt", "src/c.txt", "src/nested/e.txt", "target/debug/d.txt"},
		},
		{
			name:     "ignore substring",
			suffixes: []string{".txt"},
			ignore:   []string{"target", "nested"},
			expected: []string{"a.txt", "b.txt", "src/c.txt"},
		},
		{
			name:     "several suffixes",
			suffixes: []string{".md", "c.txt"},
			expected: []string{"notes.md", "src/c.txt"},
		},
		{
			name:     "no suffixes",
			ignore:   []string{"src", "target"},
			expected: []string{"a.txt", "b.txt", "notes.md"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			files, err := fs.ListFiles(root, tt.suffixes, tt.ignore)
			require.NoError(t, err)

			rel := make([]string, len(files))
			for i, f := range files {
				r, err := filepath.Rel(root, f)
				require.NoError(t, err)
				rel[i] = filepath.ToSlash(r)
			}
			assert.Equal(t, tt.expected, rel)
		})
	}

	t.Run("missing root", func(t *testing.T) {
		_, err := fs.ListFiles(filepath.Join(root, "missing"), nil, nil)
		assert.Error(t, err)
	})
}

func TestCanonicalize(t *testing.T) {
	root := prepareTree(t)
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(root, link))

	expected, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	fs := New()
	actual, err := fs.Canonicalize(link)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	_, err = fs.Canonicalize(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	root := prepareTree(t)
	fs := New()

	data, err := fs.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a.txt", string(data))
}

func TestTempFile(t *testing.T) {
	dir := t.TempDir()
	fs := New()

	require.NoError(t, fs.MkdirAll(filepath.Join(dir, "logs")))
	f, err := fs.TempFile(filepath.Join(dir, "logs"), "")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.NoError(t, fs.Remove(f.Name()))
}
