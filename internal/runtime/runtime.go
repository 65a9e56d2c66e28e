package runtime

import (
	"context"
	"io"
)

// StartSpec describes one child process to launch.
type StartSpec struct {
	// Role is the supervised role tag, e.g. "twcss" or "flask".
	Role string
	// Command is the full command line, name first.
	Command []string
	// Env holds overrides appended to the inherited environment.
	Env map[string]string
	// Dir is the working directory; empty means inherit.
	Dir string
}

// Handle is a running child process.
type Handle interface {
	// Output returns the merged stdout+stderr stream. It reaches EOF once
	// the process has exited and all write ends are closed.
	Output() io.ReadCloser

	// Wait reaps the process and returns its exit result. Safe to call more
	// than once; later calls return the first result.
	Wait() error

	// Terminate force-kills the process and reaps it. Idempotent and safe
	// to call after the process has already exited.
	Terminate() error
}

// Runtime launches child processes. Implementations surface spawn failures
// via the returned error and must not retry.
type Runtime interface {
	Start(ctx context.Context, spec StartSpec) (Handle, error)
}
