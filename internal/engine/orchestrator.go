package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Paintersrp/livetw/internal/hub"
	"github.com/Paintersrp/livetw/internal/relay"
	"github.com/Paintersrp/livetw/internal/runtime"
)

// State tracks the orchestrator through one run.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
)

// HubConfig holds the live reload listening endpoint.
type HubConfig struct {
	Host string
	Port int
}

// Options configures one orchestration run. Hub, Builder and Server are each
// independently optional; a nil field disables that role.
type Options struct {
	Hub     *HubConfig
	Builder *RoleSpec
	Server  *RoleSpec

	Runtime runtime.Runtime
	Output  relay.LineWriter
	Events  chan<- Event
}

// Orchestrator owns the lifecycle of the whole process group: it starts the
// hub and the supervisors, wires the shared stop signal, waits for the first
// shutdown trigger and unwinds everything before reporting the aggregate
// result.
type Orchestrator struct {
	opts Options

	mu    sync.Mutex
	state State
	hub   *hub.Hub

	stop *StopSignal
	sups []*supervisor
}

// New constructs an idle orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{opts: opts, state: StateIdle}
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// HubAddr returns the bound live reload address, or "" when the hub is
// disabled or not yet started.
func (o *Orchestrator) HubAddr() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hub == nil {
		return ""
	}
	return o.hub.Addr()
}

// HubClients reports the number of connected reload clients, 0 when the hub
// is disabled.
func (o *Orchestrator) HubClients() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hub == nil {
		return 0
	}
	return o.hub.ClientCount()
}

// Run executes one orchestration to completion. It returns nil when every
// started task completed without failing; cancelling ctx is the operator
// interrupt and routes through the same stop mechanism as any process exit.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.transition(StateStarting)

	o.stop = NewStopSignal()
	events := o.opts.Events

	// Reload notifications are meaningless without a builder, so the hub only
	// starts when both are enabled. A bind failure is fatal before anything
	// is spawned.
	var h *hub.Hub
	builder := o.opts.Builder
	if o.opts.Hub != nil && builder != nil {
		h = hub.New()
		if err := h.Start(o.opts.Hub.Host, o.opts.Hub.Port); err != nil {
			o.transition(StateStopped)
			return err
		}
		o.mu.Lock()
		o.hub = h
		o.mu.Unlock()
		sendEvent(events, "hub", EventTypeReady, fmt.Sprintf("live reload ready on ws://%s", h.Addr()), nil)

		spec := *builder
		prev := spec.OnMarker
		spec.OnMarker = func() {
			h.Broadcast(hub.NewReloadEvent(time.Now()))
			sendEvent(events, "hub", EventTypeBroadcast, "triggered full reload", nil)
			if prev != nil {
				prev()
			}
		}
		builder = &spec
	}

	for _, spec := range []*RoleSpec{builder, o.opts.Server} {
		if spec == nil {
			continue
		}
		sup := newSupervisor(*spec, o.opts.Runtime, o.opts.Output, events, o.stop)
		o.sups = append(o.sups, sup)
		sup.Start(ctx)
	}

	o.transition(StateRunning)

	// Await the first shutdown trigger: operator interrupt, any supervisor
	// tripping the stop signal, or the hub ceasing to serve. With nothing
	// started there is nothing to wait for.
	var hubDone <-chan struct{}
	if h != nil {
		hubDone = h.Done()
	}
	if len(o.sups) > 0 || h != nil {
		select {
		case <-ctx.Done():
			o.stop.Set("interrupt")
		case <-o.stop.Done():
		case <-hubDone:
			o.stop.Set("live reload server stopped")
		}
	} else {
		o.stop.Set("nothing to supervise")
	}

	o.transition(StateStopping)
	o.stop.Set("shutdown")
	sendEvent(events, "", EventTypeStopping, fmt.Sprintf("shutting down (%s)", o.stop.Cause()), nil)

	for _, sup := range o.sups {
		sup.Terminate()
	}
	if h != nil {
		h.Stop()
	}

	// No orphans: every supervised task unwinds before the run completes.
	for _, sup := range o.sups {
		<-sup.Done()
	}
	if h != nil {
		<-h.Done()
	}

	var firstErr error
	for _, sup := range o.sups {
		if err := sup.Err(); err != nil && firstErr == nil {
			firstErr = err
			sendEvent(events, sup.spec.Name, EventTypeError, "task failed", err)
		}
	}

	o.transition(StateStopped)
	return firstErr
}

// Cause names what triggered shutdown, once stopping has begun.
func (o *Orchestrator) Cause() string {
	if o.stop == nil {
		return ""
	}
	return o.stop.Cause()
}

func (o *Orchestrator) transition(next State) {
	o.mu.Lock()
	o.state = next
	o.mu.Unlock()
}
