package conductor

import "errors"

// Construction-time configuration errors.
var (
	// ErrNoProvider is returned by New when neither the config nor a
	// WithProvider option supplies a completion backend.
	ErrNoProvider = errors.New("no provider configured")
	// ErrUnknownBackend is returned by New for an unrecognized provider
	// or retrieval backend name.
	ErrUnknownBackend = errors.New("unknown backend")
)
