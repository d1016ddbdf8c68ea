package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
)

func TestURIToPath(t *testing.T) {
	path, ok := URIToPath("file:///root/my%20proj/a.txt")
	assert.True(t, ok)
	assert.Equal(t, "/root/my proj/a.txt", path)

	_, ok = URIToPath("untitled:Untitled-1")
	assert.False(t, ok)

	assert.Equal(t, protocol.DocumentURI("file:///root/proj/a.txt"), PathToURI("/root/proj/a.txt"))
}

func TestURIToRelativePath(t *testing.T) {
	tests := []struct {
		name     string
		root     protocol.DocumentURI
		doc      protocol.DocumentURI
		expected string
		ok       bool
	}{
		{name: "direct child", root: "file:///root/proj", doc: "file:///root/proj/a.txt", expected: "a.txt", ok: true},
		{name: "nested", root: "file:///root/proj/", doc: "file:///root/proj/src/b.txt", expected: "src/b.txt", ok: true},
		{name: "sibling prefix", root: "file:///root/proj", doc: "file:///root/proj2/a.txt"},
		{name: "outside", root: "file:///root/proj", doc: "file:///usr/lib/std.txt"},
		{name: "root itself", root: "file:///root/proj", doc: "file:///root/proj/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rel, ok := URIToRelativePath(tt.root, tt.doc)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, rel)
		})
	}
}

func TestIsUnderRoot(t *testing.T) {
	assert.True(t, IsUnderRoot("/root/proj", "file:///root/proj/a.txt"))
	assert.True(t, IsUnderRoot("/root/proj/", "file:///root/proj/src/a.txt"))
	assert.False(t, IsUnderRoot("/root/proj", "file:///root/proj2/a.txt"))
	assert.False(t, IsUnderRoot("/root/proj", "file:///usr/lib/a.txt"))
	assert.False(t, IsUnderRoot("/root/proj", "jar:///root/proj/a.txt"))
}
