package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestSupervisorCleanExitSetsStopWithoutFailing(t *testing.T) {
	rt := newFakeRuntime()
	handle := rt.add("twcss")
	stop := NewStopSignal()
	out := &memoryWriter{}

	sup := newSupervisor(RoleSpec{Name: "twcss", Command: []string{"tailwindcss"}}, rt, out, nil, stop)
	sup.Start(context.Background())

	handle.write("rebuilding...\n")
	handle.exit(nil)

	waitClosed(t, stop.Done(), "stop signal")
	waitClosed(t, sup.Done(), "supervisor")

	if err := sup.Err(); err != nil {
		t.Fatalf("clean exit reported failure: %v", err)
	}
	if stop.Cause() != "twcss exited" {
		t.Fatalf("cause = %q", stop.Cause())
	}
	lines := out.all()
	if len(lines) != 1 || lines[0] != "twcss|rebuilding...\n" {
		t.Fatalf("relayed lines = %v", lines)
	}
}

func TestSupervisorCrashIsFailure(t *testing.T) {
	rt := newFakeRuntime()
	handle := rt.add("flask")
	stop := NewStopSignal()

	sup := newSupervisor(RoleSpec{Name: "flask", Command: []string{"flask"}}, rt, discardWriter{}, nil, stop)
	sup.Start(context.Background())

	handle.exit(errors.New("exit status 1"))

	waitClosed(t, sup.Done(), "supervisor")
	if err := sup.Err(); err == nil {
		t.Fatal("expected crash to be reported as failure")
	}
	if !stop.IsSet() {
		t.Fatal("crash must trip the stop signal")
	}
}

func TestSupervisorSpawnFailure(t *testing.T) {
	rt := newFakeRuntime()
	rt.failRole("flask", errors.New("executable not found"))
	stop := NewStopSignal()

	events := make(chan Event, 8)
	sup := newSupervisor(RoleSpec{Name: "flask", Command: []string{"flask"}}, rt, discardWriter{}, events, stop)
	sup.Start(context.Background())

	waitClosed(t, sup.Done(), "supervisor")
	waitClosed(t, stop.Done(), "stop signal")

	var spawnErr *SpawnError
	if !errors.As(sup.Err(), &spawnErr) {
		t.Fatalf("err %v is not a *SpawnError", sup.Err())
	}
	if spawnErr.Role != "flask" {
		t.Fatalf("spawn error role = %q", spawnErr.Role)
	}
}

func TestSupervisorTerminatedExitIsNotFailure(t *testing.T) {
	rt := newFakeRuntime()
	handle := rt.add("flask")
	stop := NewStopSignal()

	sup := newSupervisor(RoleSpec{Name: "flask", Command: []string{"flask"}}, rt, discardWriter{}, nil, stop)
	sup.Start(context.Background())

	handle.write("serving\n")
	sup.Terminate()

	waitClosed(t, sup.Done(), "supervisor")
	if err := sup.Err(); err != nil {
		t.Fatalf("killed-on-shutdown exit reported as failure: %v", err)
	}
}

func TestSupervisorTerminateIsIdempotent(t *testing.T) {
	rt := newFakeRuntime()
	handle := rt.add("twcss")
	stop := NewStopSignal()

	sup := newSupervisor(RoleSpec{Name: "twcss", Command: []string{"tailwindcss"}}, rt, discardWriter{}, nil, stop)
	sup.Start(context.Background())

	handle.exit(nil)
	waitClosed(t, sup.Done(), "supervisor")

	sup.Terminate()
	sup.Terminate()
}

func TestSupervisorTerminateDuringSpawnKillsProcess(t *testing.T) {
	inner := newFakeRuntime()
	handle := inner.add("flask")
	rt := newGatedRuntime(inner)
	stop := NewStopSignal()

	sup := newSupervisor(RoleSpec{Name: "flask", Command: []string{"flask"}}, rt, discardWriter{}, nil, stop)
	sup.Start(context.Background())

	// Terminate while the spawn is still in flight, then let it complete.
	waitClosed(t, rt.entered, "spawn entry")
	sup.Terminate()
	close(rt.release)

	waitClosed(t, sup.Done(), "supervisor")
	if handle.terminations.Load() == 0 {
		t.Fatal("process spawned during shutdown was never terminated")
	}
	if err := sup.Err(); err != nil {
		t.Fatalf("killed-on-shutdown exit reported as failure: %v", err)
	}
}

func TestSupervisorTerminateBeforeSpawnIsSafe(t *testing.T) {
	rt := newFakeRuntime()
	stop := NewStopSignal()
	sup := newSupervisor(RoleSpec{Name: "twcss", Command: []string{"tailwindcss"}}, rt, discardWriter{}, nil, stop)

	// Never started; must not panic.
	sup.Terminate()
}

func TestSupervisorMarkerCallbackFiresPerLine(t *testing.T) {
	rt := newFakeRuntime()
	handle := rt.add("twcss")
	stop := NewStopSignal()

	markers := make(chan struct{}, 4)
	spec := RoleSpec{
		Name:     "twcss",
		Command:  []string{"tailwindcss"},
		OnMarker: func() { markers <- struct{}{} },
	}
	sup := newSupervisor(spec, rt, discardWriter{}, nil, stop)
	sup.Start(context.Background())

	handle.write("building...\n")
	handle.write("Done in 10ms\n")
	handle.write("Done in 5ms\n")
	handle.exit(nil)

	waitClosed(t, sup.Done(), "supervisor")
	if got := len(markers); got != 2 {
		t.Fatalf("marker fired %d times, want 2", got)
	}
}
