package toast

import (
	"sync"
	"time"

	"github.com/vango-dev/pdfdesk/pkg/ui"
)

// ElementID is the ID of the banner element.
const ElementID = "message-alert"

// DefaultDuration is how long a message stays visible.
const DefaultDuration = 5 * time.Second

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Palette is the set of colors used for one level.
type Palette struct {
	Background string
	Text       string
	Border     string
}

var palettes = map[Type]Palette{
	TypeSuccess: {Background: "#d4edda", Text: "#155724", Border: "#c3e6cb"},
	TypeError:   {Background: "#f8d7da", Text: "#721c24", Border: "#f5c6cb"},
	TypeWarning: {Background: "#fff3cd", Text: "#856404", Border: "#ffeeba"},
	TypeInfo:    {Background: "#d1ecf1", Text: "#0c5460", Border: "#bee5eb"},
}

// PaletteFor returns the colors for level. Unknown levels use the info
// palette.
func PaletteFor(level Type) Palette {
	if p, ok := palettes[level]; ok {
		return p
	}
	return palettes[TypeInfo]
}

// Fixed placement of the banner.
var baseStyle = [][2]string{
	{"position", "fixed"},
	{"top", "20px"},
	{"right", "20px"},
	{"z-index", "1000"},
	{"padding", "15px"},
	{"border-radius", "5px"},
	{"max-width", "300px"},
}

// Host creates the banner element. *ui.Document implements it.
type Host interface {
	Create(id string) *ui.Element
}

// Timer is a pending dismissal. *time.Timer implements it.
type Timer interface {
	Stop() bool
}

// Option configures a Widget.
type Option func(*Widget)

// WithDuration sets how long a message stays visible. Zero or negative
// keeps messages until the next Show or Dismiss.
func WithDuration(d time.Duration) Option {
	return func(w *Widget) {
		w.duration = d
	}
}

// WithAfterFunc replaces time.AfterFunc for scheduling dismissals.
func WithAfterFunc(fn func(d time.Duration, f func()) Timer) Option {
	return func(w *Widget) {
		w.afterFunc = fn
	}
}

// WithHook registers a function called for every message shown.
func WithHook(fn func(level Type, message string)) Option {
	return func(w *Widget) {
		w.hook = fn
	}
}

// Widget is the notification banner.
type Widget struct {
	host      Host
	duration  time.Duration
	afterFunc func(time.Duration, func()) Timer
	hook      func(Type, string)

	mu      sync.Mutex
	el      *ui.Element
	level   Type
	message string
	visible bool
	gen     uint64
	timer   Timer
	closed  bool
}

// New creates a widget that draws on host. The banner element is created on
// the first Show.
func New(host Host, opts ...Option) *Widget {
	w := &Widget{
		host:     host,
		duration: DefaultDuration,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Show displays message with the colors of level, replacing any visible
// message and restarting the dismissal timer.
func (w *Widget) Show(level Type, message string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}

	if w.el == nil {
		w.el = w.host.Create(ElementID)
		for _, kv := range baseStyle {
			w.el.SetStyle(kv[0], kv[1])
		}
	}

	p := PaletteFor(level)
	w.el.SetStyle("background-color", p.Background)
	w.el.SetStyle("color", p.Text)
	w.el.SetStyle("border", "1px solid "+p.Border)
	w.el.SetText(message)
	w.el.Show()

	w.level = level
	w.message = message
	w.visible = true

	w.stopLocked()
	w.gen++
	if w.duration > 0 {
		gen := w.gen
		w.timer = w.afterFunc(w.duration, func() { w.expire(gen) })
	}
	hook := w.hook
	w.mu.Unlock()

	if hook != nil {
		hook(level, message)
	}
}

// Success shows a success message.
func (w *Widget) Success(message string) { w.Show(TypeSuccess, message) }

// Error shows an error message.
func (w *Widget) Error(message string) { w.Show(TypeError, message) }

// Warning shows a warning message.
func (w *Widget) Warning(message string) { w.Show(TypeWarning, message) }

// Info shows an informational message.
func (w *Widget) Info(message string) { w.Show(TypeInfo, message) }

// Dismiss hides the banner now.
func (w *Widget) Dismiss() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
	w.gen++
	w.hideLocked()
}

// Close cancels the pending dismissal. Show is a no-op afterwards; the last
// message stays as it is.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
	w.gen++
	w.closed = true
}

// Visible reports whether a message is showing.
func (w *Widget) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Message returns the last message shown.
func (w *Widget) Message() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.message
}

// Level returns the level of the last message shown.
func (w *Widget) Level() Type {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

func (w *Widget) expire(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return
	}
	w.timer = nil
	w.hideLocked()
}

func (w *Widget) stopLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Widget) hideLocked() {
	if w.el != nil && w.visible {
		w.el.Hide()
	}
	w.visible = false
}
