package mapper

import (
	"net/url"
	"path/filepath"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// PathToURI converts an absolute file path to a document URI.
func PathToURI(path string) protocol.DocumentURI {
	return uri.File(path)
}

// URIToPath returns the file system path of a file URI.
// Unlike uri.URI.Filename, it does not panic on other schemes.
func URIToPath(doc protocol.DocumentURI) (string, bool) {
	u, err := url.Parse(string(doc))
	if err != nil || u.Scheme != string(uri.FileScheme) {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}

// URIToRelativePath strips root and the following separator from doc.
// It returns false when doc does not lie under root.
func URIToRelativePath(root protocol.DocumentURI, doc protocol.DocumentURI) (string, bool) {
	prefix := strings.TrimSuffix(string(root), "/") + "/"
	rel := strings.TrimPrefix(string(doc), prefix)
	if rel == string(doc) || rel == "" {
		return "", false
	}
	return rel, true
}

// IsUnderRoot reports whether the file behind doc lies inside the directory rootPath.
func IsUnderRoot(rootPath string, doc protocol.DocumentURI) bool {
	path, ok := URIToPath(doc)
	if !ok {
		return false
	}
	root := filepath.Clean(rootPath)
	path = filepath.Clean(path)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}
