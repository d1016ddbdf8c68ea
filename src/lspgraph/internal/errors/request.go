package errors

import (
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
)

// RequestError describes a failed request in enough detail to locate the failure.
type RequestError struct {
	Method   string
	ID       int32
	Document protocol.DocumentURI
	Position *protocol.Position
	Err      error
}

// Error is an implementation of the error interface.
func (r *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (id %d)", r.Method, r.ID)
	if r.Document != "" {
		fmt.Fprintf(&b, " for %s", r.Document)
		if r.Position != nil {
			fmt.Fprintf(&b, ":%d:%d", r.Position.Line+1, r.Position.Character+1)
		}
	}
	if r.Err != nil {
		fmt.Fprintf(&b, ": %v", r.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (r *RequestError) Unwrap() error {
	return r.Err
}

// FileReadError indicates that a file handed to the analysis could not be read.
type FileReadError struct {
	Path string
	Err  error
}

// Error is an implementation of the error interface.
func (f *FileReadError) Error() string {
	return fmt.Sprintf("reading %q: %v", f.Path, f.Err)
}

// Unwrap returns the underlying cause.
func (f *FileReadError) Unwrap() error {
	return f.Err
}
