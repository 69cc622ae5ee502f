package live

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/pdfdesk/pkg/controller"
	"github.com/vango-dev/pdfdesk/pkg/toast"
	"github.com/vango-dev/pdfdesk/pkg/ui"
	"github.com/vango-dev/pdfdesk/pkg/upload"
)

// Page is what a session hands to its controller: the session's document
// and notification widget.
type Page struct {
	Document *ui.Document
	Toast    *toast.Widget
}

// Builder creates the controller for one session. It is called once per
// connection, before the session starts reading.
type Builder func(p Page) (*controller.Controller, error)

// Recorder receives session metrics. *middleware.Metrics implements it.
type Recorder interface {
	RecordPatches(count int)
	RecordSessionOpen()
	RecordSessionClose()
	RecordWebSocketError(errorType string)
}

// Option configures a Hub.
type Option func(*Hub)

// WithConfig sets the session configuration.
func WithConfig(config *Config) Option {
	return func(h *Hub) {
		h.config = config
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(h *Hub) {
		h.recorder = r
	}
}

// WithToastOptions sets the options of every session's notification widget.
func WithToastOptions(opts ...toast.Option) Option {
	return func(h *Hub) {
		h.toastOpts = append(h.toastOpts, opts...)
	}
}

// Hub upgrades WebSocket connections and runs one Session per connection.
type Hub struct {
	config    *Config
	upgrader  websocket.Upgrader
	staging   upload.Store
	build     Builder
	logger    *slog.Logger
	recorder  Recorder
	toastOpts []toast.Option

	nextID   atomic.Uint64
	mu       sync.Mutex
	sessions map[*Session]struct{}
	closed   bool
}

// NewHub creates a hub. Files named in drop and change frames are claimed
// from staging.
func NewHub(staging upload.Store, build Builder, opts ...Option) *Hub {
	h := &Hub{
		staging:  staging,
		build:    build,
		sessions: make(map[*Session]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.config = h.config.withDefaults()
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if h.recorder == nil {
		h.recorder = nopRecorder{}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  h.config.ReadBufferSize,
		WriteBufferSize: h.config.WriteBufferSize,
		CheckOrigin:     h.config.CheckOrigin,
	}
	return h
}

// ServeHTTP upgrades the request and serves the session until the
// connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.recorder.RecordWebSocketError("upgrade")
		h.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	s, err := h.newSession(r.Context(), conn)
	if err != nil {
		h.logger.Error("session setup failed", "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session setup failed"),
			deadline(h.config.WriteTimeout))
		conn.Close()
		return
	}

	if !h.register(s) {
		s.Close()
		return
	}
	defer h.unregister(s)

	s.run()
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close closes every session and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (h *Hub) register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s] = struct{}{}
	h.recorder.RecordSessionOpen()
	return true
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
		h.recorder.RecordSessionClose()
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordPatches(int)           {}
func (nopRecorder) RecordSessionOpen()          {}
func (nopRecorder) RecordSessionClose()         {}
func (nopRecorder) RecordWebSocketError(string) {}
