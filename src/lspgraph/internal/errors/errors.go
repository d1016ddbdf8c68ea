package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

var (
	// ErrConnectionClosed reports that the connection to the language server is gone,
	// either because it was closed locally or because the server stopped sending.
	ErrConnectionClosed = New("connection to language server closed")
	// ErrEmptyResult reports that a request produced a null or empty result.
	ErrEmptyResult = New("empty result")
)

// IsConnectionClosed reports whether the error chain contains ErrConnectionClosed.
func IsConnectionClosed(e error) bool {
	return stderr.Is(e, ErrConnectionClosed)
}

// IsEmptyResult reports whether the error chain contains ErrEmptyResult.
func IsEmptyResult(e error) bool {
	return stderr.Is(e, ErrEmptyResult)
}
