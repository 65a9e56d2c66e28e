package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/Paintersrp/livetw/internal/runtime"
)

type runtimeImpl struct{}

// New constructs a runtime that executes supervised roles as local processes.
func New() runtime.Runtime {
	return &runtimeImpl{}
}

func (r *runtimeImpl) Start(ctx context.Context, spec runtime.StartSpec) (runtime.Handle, error) {
	if len(spec.Command) == 0 {
		return nil, fmt.Errorf("role %s requires a command", spec.Role)
	}

	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}

	env := os.Environ()
	for k, v := range spec.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = env

	// stdout and stderr share one pipe so the relay sees the child's output
	// exactly as it interleaves it.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("role %s output pipe: %w", spec.Role, err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	configureCmdSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("start role %s: %w", spec.Role, err)
	}
	// The child owns the write end now; dropping ours lets the read end see
	// EOF once the process tree exits.
	_ = pw.Close()

	return &processHandle{role: spec.Role, cmd: cmd, out: pr}, nil
}

// processHandle owns one spawned child process until it is reaped.
type processHandle struct {
	role string
	cmd  *exec.Cmd
	out  *os.File

	waitOnce sync.Once
	waitErr  error

	killOnce sync.Once
}

func (h *processHandle) Output() io.ReadCloser {
	return h.out
}

func (h *processHandle) Wait() error {
	h.waitOnce.Do(func() {
		h.waitErr = h.cmd.Wait()
	})
	return h.waitErr
}

func (h *processHandle) Terminate() error {
	h.killOnce.Do(func() {
		h.kill()
	})
	return h.Wait()
}
