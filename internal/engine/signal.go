package engine

import "sync"

// StopSignal is the single-shot group shutdown trigger shared by every
// component of one orchestration run. Multiple sources race to set it; the
// first wins and records the cause, later sets are no-ops. Once set it is
// never unset.
type StopSignal struct {
	once  sync.Once
	ch    chan struct{}
	mu    sync.Mutex
	cause string
}

// NewStopSignal returns an unset signal.
func NewStopSignal() *StopSignal {
	return &StopSignal{ch: make(chan struct{})}
}

// Set trips the signal, waking all waiters. Only the first call's cause is
// retained.
func (s *StopSignal) Set(cause string) {
	s.once.Do(func() {
		s.mu.Lock()
		s.cause = cause
		s.mu.Unlock()
		close(s.ch)
	})
}

// Done returns a channel closed on the first Set.
func (s *StopSignal) Done() <-chan struct{} {
	return s.ch
}

// IsSet reports whether the signal has been tripped.
func (s *StopSignal) IsSet() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Cause names the source of the first Set, or "" while unset.
func (s *StopSignal) Cause() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}
