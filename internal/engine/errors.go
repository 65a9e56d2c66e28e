package engine

import "fmt"

// SpawnError reports that a configured role's process could not be started.
// It is fatal for that role and triggers group shutdown; spawns are never
// retried.
type SpawnError struct {
	Role string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Role, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
