package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Paintersrp/livetw/internal/metrics"
	"github.com/Paintersrp/livetw/internal/relay"
	"github.com/Paintersrp/livetw/internal/runtime"
)

// RoleSpec describes one supervised role: its tag, command line and optional
// rebuild-marker callback (wired for the builder only).
type RoleSpec struct {
	Name     string
	Command  []string
	Env      map[string]string
	Dir      string
	OnMarker func()
}

// supervisor owns one external process end to end: spawn, relay, exit
// detection and forceful termination. The relay's pipe read is inherently
// blocking, so the whole run executes on its own goroutine and completion is
// observed through the done channel.
type supervisor struct {
	spec   RoleSpec
	rt     runtime.Runtime
	out    relay.LineWriter
	events chan<- Event
	stop   *StopSignal

	mu     sync.Mutex
	handle runtime.Handle
	err    error

	terminated atomic.Bool
	done       chan struct{}
}

func newSupervisor(spec RoleSpec, rt runtime.Runtime, out relay.LineWriter, events chan<- Event, stop *StopSignal) *supervisor {
	return &supervisor{
		spec:   spec,
		rt:     rt,
		out:    out,
		events: events,
		stop:   stop,
		done:   make(chan struct{}),
	}
}

// Start launches the role in the background. Completion, including spawn
// failure, is signalled via Done.
func (s *supervisor) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *supervisor) run(ctx context.Context) {
	defer close(s.done)

	sendEvent(s.events, s.spec.Name, EventTypeStarting, "starting", nil)

	handle, err := s.rt.Start(ctx, runtime.StartSpec{
		Role:    s.spec.Name,
		Command: s.spec.Command,
		Env:     s.spec.Env,
		Dir:     s.spec.Dir,
	})
	if err != nil {
		spawnErr := &SpawnError{Role: s.spec.Name, Err: err}
		s.setErr(spawnErr)
		sendEvent(s.events, s.spec.Name, EventTypeError, "failed to start", spawnErr)
		s.stop.Set(s.spec.Name + " failed to start")
		return
	}
	s.setHandle(handle)
	// A Terminate that raced the spawn found no handle to kill; reap the
	// process here so shutdown never leaves an orphan behind.
	if s.terminated.Load() {
		_ = handle.Terminate()
	}

	rel := &relay.Relay{
		Tag:      s.spec.Name,
		Out:      &countingWriter{role: s.spec.Name, next: s.out},
		OnMarker: s.spec.OnMarker,
		OnExit: func() {
			metrics.IncProcessExit(s.spec.Name)
			s.stop.Set(s.spec.Name + " exited")
		},
	}
	rel.Run(handle.Output())

	exitErr := handle.Wait()
	// An exit status from a process the group deliberately killed is part of
	// shutdown, not a failure of the role.
	if exitErr != nil && !s.terminated.Load() {
		s.setErr(fmt.Errorf("%s: %w", s.spec.Name, exitErr))
	}
	sendEvent(s.events, s.spec.Name, EventTypeExited, "process exited", exitErr)
}

// Terminate force-kills the role's process. Idempotent, safe before spawn and
// after exit.
func (s *supervisor) Terminate() {
	s.terminated.Store(true)
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()
	if handle == nil {
		return
	}
	_ = handle.Terminate()
}

// Done is closed once the role has fully unwound: process reaped and output
// drained.
func (s *supervisor) Done() <-chan struct{} {
	return s.done
}

// Err returns the supervision outcome; nil means the task completed without
// failing the run.
func (s *supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *supervisor) setHandle(h runtime.Handle) {
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
}

func (s *supervisor) setErr(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// countingWriter feeds the relay-line counter before handing the line to the
// console.
type countingWriter struct {
	role string
	next relay.LineWriter
}

func (w *countingWriter) Tagged(tag string, line []byte) {
	metrics.AddRelayLines(w.role, 1)
	if w.next != nil {
		w.next.Tagged(tag, line)
	}
}
