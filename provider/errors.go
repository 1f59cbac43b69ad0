package provider

import "fmt"

// Error reports a backend failure: unreachable backend, rejected request, or
// malformed response. Providers do not retry internally; retry policy belongs
// to the caller.
type Error struct {
	Provider string // Stable provider identifier.
	Message  string // Backend-reported failure message.
	Err      error  // Underlying cause, if any.
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error for the named provider wrapping err.
func NewError(name, message string, err error) *Error {
	return &Error{Provider: name, Message: message, Err: err}
}
