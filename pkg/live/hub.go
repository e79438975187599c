package live

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// ErrSourceExists is returned by Register for an already registered name.
var ErrSourceExists = errors.New("live: source already registered")

// ErrInvalidSource is returned by Register for an empty name or nil source.
var ErrInvalidSource = errors.New("live: source needs a name and a value")

// HubConfig configures a Hub.
type HubConfig struct {
	// Logger for connection lifecycle events (default: slog.Default()).
	Logger *slog.Logger

	// PingInterval between WebSocket keepalive pings (default: 30s).
	// A connection missing two pings in a row is considered dead.
	PingInterval time.Duration

	// WriteTimeout for each WebSocket write (default: 10s).
	WriteTimeout time.Duration

	// CheckOrigin validates WebSocket upgrade requests.
	// Default: same-origin policy of gorilla/websocket.
	CheckOrigin func(r *http.Request) bool
}

// HubOption configures a Hub.
type HubOption func(*HubConfig)

// WithLogger sets the hub logger.
func WithLogger(logger *slog.Logger) HubOption {
	return func(c *HubConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithPingInterval sets the WebSocket keepalive interval.
func WithPingInterval(d time.Duration) HubOption {
	return func(c *HubConfig) {
		if d > 0 {
			c.PingInterval = d
		}
	}
}

// WithWriteTimeout sets the per-write deadline for WebSocket pushes.
func WithWriteTimeout(d time.Duration) HubOption {
	return func(c *HubConfig) {
		if d > 0 {
			c.WriteTimeout = d
		}
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) HubOption {
	return func(c *HubConfig) {
		c.CheckOrigin = fn
	}
}

// defaultHubConfig returns the default hub configuration.
func defaultHubConfig() HubConfig {
	return HubConfig{
		Logger:       slog.Default(),
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Hub exposes registered sources over HTTP and WebSocket.
type Hub struct {
	mu      sync.RWMutex
	sources map[string]Source

	logger       *slog.Logger
	pingInterval time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewHub creates an empty Hub.
func NewHub(opts ...HubOption) *Hub {
	cfg := defaultHubConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Hub{
		sources:      make(map[string]Source),
		logger:       cfg.Logger.With("component", "live"),
		pingInterval: cfg.PingInterval,
		writeTimeout: cfg.WriteTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

// Register adds a source under the given name.
func (h *Hub) Register(name string, src Source) error {
	if name == "" || src == nil {
		return ErrInvalidSource
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.sources[name]; exists {
		return ErrSourceExists
	}
	h.sources[name] = src
	return nil
}

// Deregister removes the source under the given name. Connections
// streaming it keep their subscription until they disconnect.
func (h *Hub) Deregister(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sources, name)
}

// Names returns the registered source names, sorted.
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.sources))
	for name := range h.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// source looks up a registered source.
func (h *Hub) source(name string) (Source, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	src, ok := h.sources[name]
	return src, ok
}

// =============================================================================
// HTTP surface
// =============================================================================

// Handler returns an http.Handler for mounting in external routers.
//
// Routes:
//   - GET /sources           name list
//   - GET /sources/{name}    snapshot as JSON
//   - GET /sources/{name}/ws snapshot stream over WebSocket
func (h *Hub) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/sources", h.handleList)
	r.Get("/sources/{name}", h.handleSnapshot)
	r.Get("/sources/{name}/ws", h.handleStream)
	return r
}

func (h *Hub) handleList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{"sources": h.Names()})
}

func (h *Hub) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	src, ok := h.source(name)
	if !ok {
		http.Error(w, "source not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, src.Snapshot())
}

func (h *Hub) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response encode error", "error", err)
	}
}

// =============================================================================
// WebSocket surface
// =============================================================================

func (h *Hub) handleStream(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	src, ok := h.source(name)
	if !ok {
		http.Error(w, "source not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		h.logger.Error("upgrade error", "source", name, "error", err)
		return
	}

	h.stream(conn, name, src)
}

// stream pushes snapshots until the connection dies. Runs on the request
// goroutine.
func (h *Hub) stream(conn *websocket.Conn, name string, src Source) {
	logger := h.logger.With("source", name)
	defer conn.Close()

	// dirty has capacity 1 so notification bursts coalesce into one
	// pending push of the latest snapshot.
	dirty := make(chan struct{}, 1)
	cancel := src.Subscribe(func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})
	defer cancel()

	// Reader goroutine: consumes control frames and detects close.
	done := make(chan struct{})
	pongWait := 2 * h.pingInterval
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNormalClosure) {
					logger.Error("read error", "error", err)
				}
				return
			}
		}
	}()

	// Snapshot on connect
	if err := h.push(conn, src); err != nil {
		logger.Error("initial snapshot error", "error", err)
		return
	}

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-dirty:
			if err := h.push(conn, src); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

// push writes the current snapshot with a write deadline.
func (h *Hub) push(conn *websocket.Conn, src Source) error {
	conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	return conn.WriteJSON(src.Snapshot())
}
