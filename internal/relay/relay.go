// Package relay turns the raw output stream of a supervised child process
// into tagged console lines and completion signals.
package relay

import (
	"bufio"
	"bytes"
	"io"
)

// marker is the literal byte prefix the asset builder prints when a rebuild
// finishes.
var marker = []byte("Done")

// LineWriter receives each relayed line together with its role tag. The line
// bytes include the trailing newline when the source produced one.
type LineWriter interface {
	Tagged(tag string, line []byte)
}

// Relay copies one process output stream to a LineWriter line by line.
//
// Every line whose content starts with the builder's completion marker fires
// OnMarker, once per matching line, in stream order. OnExit fires exactly once
// when the stream ends; read errors are treated the same as end-of-stream so a
// half-broken pipe never takes the orchestrator down with it.
type Relay struct {
	Tag      string
	Out      LineWriter
	OnMarker func()
	OnExit   func()
}

// Run blocks until the stream is exhausted. It is the only place process exit
// is observed for the owning process: the pipe reaches EOF once the child has
// exited and the write ends are closed.
func (r *Relay) Run(stream io.Reader) {
	br := bufio.NewReader(stream)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if r.OnMarker != nil && bytes.HasPrefix(line, marker) {
				r.OnMarker()
			}
			if r.Out != nil {
				r.Out.Tagged(r.Tag, line)
			}
		}
		if err != nil {
			break
		}
	}
	if r.OnExit != nil {
		r.OnExit()
	}
}
