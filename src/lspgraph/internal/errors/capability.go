package errors

import (
	stderr "errors"
	"fmt"
)

// CapabilityError indicates that the language server did not announce a capability
// that the analysis depends on.
type CapabilityError struct {
	Capability string
}

// Error is an implementation of the error interface.
func (c *CapabilityError) Error() string {
	return fmt.Sprintf("server does not provide %q", c.Capability)
}

// IsCapability reports whether the error chain contains a CapabilityError.
func IsCapability(e error) bool {
	var ce *CapabilityError
	return stderr.As(e, &ce)
}
