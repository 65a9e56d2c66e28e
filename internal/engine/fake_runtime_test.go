package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/Paintersrp/livetw/internal/runtime"
)

var errKilled = errors.New("signal: killed")

// fakeHandle scripts one child process: tests feed output through a pipe and
// decide how the process "exits".
type fakeHandle struct {
	pr *io.PipeReader
	pw *io.PipeWriter

	mu      sync.Mutex
	exited  bool
	waitErr error

	terminations atomic.Int32
}

func newFakeHandle() *fakeHandle {
	pr, pw := io.Pipe()
	return &fakeHandle{pr: pr, pw: pw}
}

func (h *fakeHandle) Output() io.ReadCloser { return h.pr }

func (h *fakeHandle) Wait() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waitErr
}

func (h *fakeHandle) Terminate() error {
	h.terminations.Add(1)
	h.mu.Lock()
	if !h.exited {
		h.exited = true
		h.waitErr = errKilled
	}
	h.mu.Unlock()
	_ = h.pw.Close()
	return h.Wait()
}

// write feeds one chunk of output to the relay.
func (h *fakeHandle) write(s string) {
	_, _ = h.pw.Write([]byte(s))
}

// exit simulates the process exiting on its own with the given result.
func (h *fakeHandle) exit(err error) {
	h.mu.Lock()
	if !h.exited {
		h.exited = true
		h.waitErr = err
	}
	h.mu.Unlock()
	_ = h.pw.Close()
}

type fakeRuntime struct {
	mu       sync.Mutex
	handles  map[string]*fakeHandle
	startErr map[string]error
	specs    []runtime.StartSpec
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		handles:  make(map[string]*fakeHandle),
		startErr: make(map[string]error),
	}
}

func (r *fakeRuntime) add(role string) *fakeHandle {
	h := newFakeHandle()
	r.mu.Lock()
	r.handles[role] = h
	r.mu.Unlock()
	return h
}

func (r *fakeRuntime) failRole(role string, err error) {
	r.mu.Lock()
	r.startErr[role] = err
	r.mu.Unlock()
}

func (r *fakeRuntime) Start(_ context.Context, spec runtime.StartSpec) (runtime.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, spec)
	if err := r.startErr[spec.Role]; err != nil {
		return nil, err
	}
	h, ok := r.handles[spec.Role]
	if !ok {
		return nil, errors.New("no scripted handle for role " + spec.Role)
	}
	return h, nil
}

func (r *fakeRuntime) started() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	roles := make([]string, 0, len(r.specs))
	for _, spec := range r.specs {
		roles = append(roles, spec.Role)
	}
	return roles
}

// gatedRuntime holds every Start in flight until released, exposing the
// window where a shutdown can race an ongoing spawn.
type gatedRuntime struct {
	inner   *fakeRuntime
	entered chan struct{}
	release chan struct{}
}

func newGatedRuntime(inner *fakeRuntime) *gatedRuntime {
	return &gatedRuntime{
		inner:   inner,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (r *gatedRuntime) Start(ctx context.Context, spec runtime.StartSpec) (runtime.Handle, error) {
	close(r.entered)
	<-r.release
	return r.inner.Start(ctx, spec)
}

// discardWriter drops relayed lines.
type discardWriter struct{}

func (discardWriter) Tagged(string, []byte) {}

// memoryWriter records relayed lines for assertions.
type memoryWriter struct {
	mu    sync.Mutex
	lines []string
}

func (w *memoryWriter) Tagged(tag string, line []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, tag+"|"+string(line))
}

func (w *memoryWriter) all() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...)
}
