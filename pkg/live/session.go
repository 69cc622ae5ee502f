package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	deskerrors "github.com/vango-dev/pdfdesk/internal/errors"
	"github.com/vango-dev/pdfdesk/pkg/controller"
	"github.com/vango-dev/pdfdesk/pkg/toast"
	"github.com/vango-dev/pdfdesk/pkg/ui"
	"github.com/vango-dev/pdfdesk/pkg/upload"
)

// clientFrame is an event sent by the browser:
//
//	{"type":"drop","target":"mergePdfArea","files":["<temp id>"]}
type clientFrame struct {
	Type   string   `json:"type"`
	Target string   `json:"target"`
	Files  []string `json:"files,omitempty"`
}

// Session is one browser page connected over a WebSocket. It owns the
// page's document, notification widget and zone bindings.
//
// Three goroutines touch a session: the read loop (the ServeHTTP
// goroutine), the write loop, and one goroutine per in-flight submission.
// Only the write loop writes data frames.
type Session struct {
	id     uint64
	conn   *websocket.Conn
	hub    *Hub
	config *Config
	logger *slog.Logger

	doc   *ui.Document
	toast *toast.Widget
	mux   *ui.Mux
	ctrl  *controller.Controller

	mu      sync.Mutex
	pending []ui.Patch
	wake    chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	work      sync.WaitGroup
}

func (h *Hub) newSession(ctx context.Context, conn *websocket.Conn) (*Session, error) {
	s := &Session{
		id:     h.nextID.Add(1),
		conn:   conn,
		hub:    h,
		config: h.config,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	s.logger = h.logger.With("session", s.id)
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.doc = ui.NewDocument(ui.RendererFunc(s.enqueue))
	s.toast = toast.New(s.doc, h.toastOpts...)

	ctrl, err := h.build(Page{Document: s.doc, Toast: s.toast})
	if err != nil {
		s.cancel()
		return nil, err
	}
	s.mux = ui.NewMux()
	if err := ctrl.Bind(s.mux, ctrl.Views(s.doc)...); err != nil {
		s.cancel()
		return nil, err
	}
	s.ctrl = ctrl
	return s, nil
}

// ID returns the session's identifier, unique within its hub.
func (s *Session) ID() uint64 {
	return s.id
}

// Done returns a channel that's closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// run serves the connection until it closes, then waits for in-flight
// submissions and the write loop.
func (s *Session) run() {
	s.logger.Info("session opened", "remote", s.conn.RemoteAddr().String())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop()
	}()

	s.readLoop()
	s.Close()
	s.work.Wait()
	<-writerDone

	s.logger.Info("session closed")
}

// Close closes the session. In-flight submissions are canceled. It is safe
// to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.done)
		s.toast.Close()

		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline(time.Second))
		s.conn.Close()
	})
}

func (s *Session) readLoop() {
	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetReadDeadline(deadline(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(deadline(s.config.ReadTimeout))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				s.hub.recorder.RecordWebSocketError("read")
				s.logger.Warn("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(deadline(s.config.ReadTimeout))

		var f clientFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.hub.recorder.RecordWebSocketError("decode")
			s.logger.Warn("frame decode error", "error", err)
			continue
		}
		s.handleFrame(f)
	}
}

// handleFrame turns a frame into an event. Drops and file selections run
// on their own goroutine so drag feedback keeps flowing during the request.
func (s *Session) handleFrame(f clientFrame) {
	typ, err := ui.ParseEventType(f.Type)
	if err != nil {
		s.hub.recorder.RecordWebSocketError("decode")
		s.logger.Warn("unknown event type", "type", f.Type, "target", f.Target)
		return
	}
	ev := ui.Event{Type: typ, Target: f.Target}

	if typ != ui.EventDrop && typ != ui.EventChange {
		s.dispatch(ev)
		return
	}

	if !s.mux.Handles(f.Target, typ) {
		// The staged files are left to expire.
		s.logger.Warn("event for unknown zone", "type", typ, "target", f.Target)
		return
	}
	files, err := s.claim(f.Files)
	if err != nil {
		de := deskerrors.New("E305").WithDetailf("zone %s", f.Target).Wrap(err)
		s.logger.Warn("claim failed", "zone", f.Target, "error", de)
		s.toast.Error(s.ctrl.Messages().FailurePrefix + de.Message)
		return
	}
	ev.Files = files

	s.work.Add(1)
	go func() {
		defer s.work.Done()
		s.dispatch(ev)
	}()
}

func (s *Session) claim(ids []string) ([]*upload.File, error) {
	if len(ids) > 0 && s.hub.staging == nil {
		return nil, upload.ErrNotFound
	}
	return upload.Claim(s.hub.staging, ids...)
}

func (s *Session) dispatch(ev ui.Event) {
	err := s.mux.Dispatch(s.ctx, ev)
	switch {
	case err == nil:
	case errors.Is(err, ui.ErrNoHandler):
		s.logger.Debug("unhandled event", "type", ev.Type, "target", ev.Target)
	default:
		s.logger.Error("event handler failed", "type", ev.Type, "target", ev.Target, "error", err)
	}
}

// enqueue is the document's renderer. Patches are batched until the write
// loop picks them up.
func (s *Session) enqueue(p ui.Patch) {
	select {
	case <-s.done:
		return
	default:
	}

	s.mu.Lock()
	s.pending = append(s.pending, p)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// writeLoop sends patch batches and heartbeat pings until the session
// closes.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.wake:
			if err := s.flush(); err != nil {
				s.fail("write", err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(deadline(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.fail("ping", err)
				return
			}

		case <-s.done:
			return
		}
	}
}

// flush writes the pending patches as one JSON array.
func (s *Session) flush() error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	data, err := json.Marshal(batch)
	if err != nil {
		return err
	}

	s.conn.SetWriteDeadline(deadline(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	s.hub.recorder.RecordPatches(len(batch))
	return nil
}

func (s *Session) fail(op string, err error) {
	select {
	case <-s.done:
		// Closed on purpose; the write error is expected.
	default:
		s.hub.recorder.RecordWebSocketError(op)
		s.logger.Error(op+" error", "error", err)
	}
	s.Close()
}

func deadline(d time.Duration) time.Time {
	return time.Now().Add(d)
}
