package session

import "errors"

// ErrInvalidConfig reports invalid construction arguments. It is raised
// synchronously at construction time, before any state is created.
var ErrInvalidConfig = errors.New("invalid session configuration")
