package hooks

import "fmt"

// CallbackError reports a callback failure during Emit. Kind and Index
// identify the faulting callback so callers can diagnose which stage failed.
type CallbackError struct {
	Kind  Type
	Index int
	Err   error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("hook %s callback %d failed: %v", e.Kind, e.Index, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}
