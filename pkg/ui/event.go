package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/pdfdesk/pkg/upload"
)

// ErrNoHandler is returned when no handler is bound for an event.
var ErrNoHandler = errors.New("ui: no handler for event")

// EventType is a client event name.
type EventType string

const (
	EventClick     EventType = "click"
	EventChange    EventType = "change"
	EventDragOver  EventType = "dragover"
	EventDragLeave EventType = "dragleave"
	EventDrop      EventType = "drop"
)

// ParseEventType validates an event name received from a client.
func ParseEventType(s string) (EventType, error) {
	switch t := EventType(s); t {
	case EventClick, EventChange, EventDragOver, EventDragLeave, EventDrop:
		return t, nil
	default:
		return "", fmt.Errorf("ui: unknown event type %q", s)
	}
}

// Event is a user interaction on an element.
type Event struct {
	Type   EventType
	Target string

	// Files holds the selected (change) or dropped (drop) files.
	Files []*upload.File
}

// Handler handles an event.
type Handler func(ctx context.Context, ev Event) error

// Mux routes events to handlers by target element and event type.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]map[EventType]Handler
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{handlers: make(map[string]map[EventType]Handler)}
}

// Handle registers h for events of type typ on target, replacing any
// previous handler.
func (m *Mux) Handle(target string, typ EventType, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byType, ok := m.handlers[target]
	if !ok {
		byType = make(map[EventType]Handler)
		m.handlers[target] = byType
	}
	byType[typ] = h
}

// Dispatch calls the handler bound for ev. It returns ErrNoHandler when
// nothing is bound.
func (m *Mux) Dispatch(ctx context.Context, ev Event) error {
	m.mu.RLock()
	h, ok := m.handlers[ev.Target][ev.Type]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s on %q", ErrNoHandler, ev.Type, ev.Target)
	}
	return h(ctx, ev)
}

// Handles reports whether a handler is bound for typ on target.
func (m *Mux) Handles(target string, typ EventType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handlers[target][typ]
	return ok
}

// Targets returns the targets with at least one handler, sorted.
func (m *Mux) Targets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.handlers))
	for t := range m.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
