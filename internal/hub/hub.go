// Package hub tracks live-reload browser connections and fans reload events
// out to all of them.
package hub

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Paintersrp/livetw/internal/metrics"
)

const defaultReadHeaderTimeout = 5 * time.Second

// BindError reports that the hub could not listen on its configured address.
// It is fatal to the whole orchestration and never retried.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind live reload listener on %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Hub accepts websocket connections and broadcasts reload events to them. The
// client set has a single writer: connections are added and removed only by
// their own handler goroutine, while Broadcast works from a snapshot.
type Hub struct {
	upgrader websocket.Upgrader
	srv      *http.Server
	listener net.Listener

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	stopOnce sync.Once
	done     chan struct{}
}

// New constructs an idle hub. Start must be called before Broadcast has any
// effect.
func New() *Hub {
	h := &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		done:    make(chan struct{}),
	}
	// Reload clients are local browser tabs; any origin is fine.
	h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	return h
}

// Start binds host:port and begins accepting connections in the background.
// A *BindError is returned when the address is unavailable.
func (h *Hub) Start(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return &BindError{Addr: addr, Err: err}
	}
	h.listener = listener

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/", h.handleConnection)
	h.srv = &http.Server{Handler: mux, ReadHeaderTimeout: defaultReadHeaderTimeout}

	go func() {
		defer close(h.done)
		_ = h.srv.Serve(listener)
	}()
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (h *Hub) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// handleConnection upgrades one browser connection, tracks it and blocks
// until the peer disconnects. Removal happens in the deferred cleanup so the
// set never retains a closed connection, and never drops one twice.
func (h *Hub) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.add(conn)
	defer h.remove(conn)

	// The protocol is one-way; inbound reads only serve to observe close.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// Broadcast serializes the event once and sends it to every currently tracked
// client. A failed send to one client does not stop delivery to the others
// and does not mutate the client set.
func (h *Hub) Broadcast(event ReloadEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	for _, conn := range h.snapshot() {
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}
	metrics.IncBroadcasts()
}

// Stop closes the listener and every tracked connection, unblocking the
// accept loop and all connection handlers. Safe to call repeatedly.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		if h.listener != nil {
			_ = h.listener.Close()
		}
		for _, conn := range h.snapshot() {
			_ = conn.Close()
		}
	})
}

// Done is closed once the hub has stopped serving.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ClientCount reports how many connections are currently tracked.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// add and remove publish the gauge under h.mu so concurrent connection churn
// cannot land a stale count.

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	metrics.SetClientsConnected(len(h.clients))
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	metrics.SetClientsConnected(len(h.clients))
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	return conns
}
