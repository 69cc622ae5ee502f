package toast_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/pdfdesk/pkg/toast"
	"github.com/vango-dev/pdfdesk/pkg/ui"
)

// fakeTimers captures scheduled dismissals so tests can fire them by hand.
type fakeTimers struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (ft *fakeTimers) afterFunc(d time.Duration, f func()) toast.Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	ft.pending = append(ft.pending, t)
	return t
}

// fire runs timer i even if it was stopped, like a timer that already
// fired before Stop was called.
func (ft *fakeTimers) fire(i int) {
	ft.mu.Lock()
	t := ft.pending[i]
	ft.mu.Unlock()
	t.f()
}

func newWidget(t *testing.T, opts ...toast.Option) (*toast.Widget, *ui.Document, *ui.Recorder, *fakeTimers) {
	t.Helper()
	rec := &ui.Recorder{}
	doc := ui.NewDocument(rec)
	timers := &fakeTimers{}
	opts = append([]toast.Option{toast.WithAfterFunc(timers.afterFunc)}, opts...)
	return toast.New(doc, opts...), doc, rec, timers
}

func TestShowCreatesBannerLazily(t *testing.T) {
	w, doc, rec, _ := newWidget(t)

	if _, ok := doc.Lookup(toast.ElementID); ok {
		t.Fatal("banner should not exist before the first Show")
	}
	if len(rec.Patches()) != 0 {
		t.Fatal("New should not emit patches")
	}

	w.Error("not found")

	el, ok := doc.Lookup(toast.ElementID)
	if !ok {
		t.Fatal("banner not created")
	}
	want := map[string]string{
		"position":         "fixed",
		"top":              "20px",
		"right":            "20px",
		"z-index":          "1000",
		"padding":          "15px",
		"border-radius":    "5px",
		"max-width":        "300px",
		"background-color": "#f8d7da",
		"color":            "#721c24",
		"border":           "1px solid #f5c6cb",
	}
	got := make(map[string]string)
	for k := range want {
		got[k] = el.Style(k)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("banner style mismatch (-want +got):\n%s", diff)
	}
	if el.Text() != "not found" {
		t.Errorf("Text() = %q, want %q", el.Text(), "not found")
	}
	if !w.Visible() || w.Level() != toast.TypeError || w.Message() != "not found" {
		t.Errorf("state = visible %v level %q message %q", w.Visible(), w.Level(), w.Message())
	}
}

func TestPalettes(t *testing.T) {
	tests := []struct {
		level toast.Type
		want  toast.Palette
	}{
		{toast.TypeSuccess, toast.Palette{"#d4edda", "#155724", "#c3e6cb"}},
		{toast.TypeError, toast.Palette{"#f8d7da", "#721c24", "#f5c6cb"}},
		{toast.TypeWarning, toast.Palette{"#fff3cd", "#856404", "#ffeeba"}},
		{toast.TypeInfo, toast.Palette{"#d1ecf1", "#0c5460", "#bee5eb"}},
		{toast.Type("custom"), toast.Palette{"#d1ecf1", "#0c5460", "#bee5eb"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, toast.PaletteFor(tt.level)); diff != "" {
				t.Errorf("palette mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSecondShowReplacesFirst(t *testing.T) {
	w, doc, _, timers := newWidget(t)

	w.Success("first")
	w.Error("second")

	el, _ := doc.Lookup(toast.ElementID)
	if el.Text() != "second" {
		t.Errorf("Text() = %q, want second", el.Text())
	}
	if el.Style("color") != "#721c24" {
		t.Errorf("color = %q, want the error palette", el.Style("color"))
	}
	if len(timers.pending) != 2 {
		t.Fatalf("scheduled %d timers, want 2", len(timers.pending))
	}
	if !timers.pending[0].stopped {
		t.Error("first timer should be canceled by the second Show")
	}
	if timers.pending[1].d != toast.DefaultDuration {
		t.Errorf("duration = %v, want %v", timers.pending[1].d, toast.DefaultDuration)
	}
}

func TestStaleTimerDoesNotHideNewerMessage(t *testing.T) {
	w, doc, _, timers := newWidget(t)

	w.Success("first")
	w.Info("second")

	// The first timer fires late, after the second Show.
	timers.fire(0)

	el, _ := doc.Lookup(toast.ElementID)
	if el.Hidden() || !w.Visible() {
		t.Fatal("stale timer hid the newer message")
	}

	timers.fire(1)
	if !el.Hidden() || w.Visible() {
		t.Error("current timer should hide the banner")
	}
	if w.Message() != "second" {
		t.Errorf("Message() = %q after dismissal, want second", w.Message())
	}
}

func TestDismissAndClose(t *testing.T) {
	w, doc, _, timers := newWidget(t)

	w.Warning("careful")
	w.Dismiss()

	el, _ := doc.Lookup(toast.ElementID)
	if !el.Hidden() || w.Visible() {
		t.Error("Dismiss should hide the banner")
	}
	if !timers.pending[0].stopped {
		t.Error("Dismiss should cancel the pending timer")
	}

	w.Success("again")
	w.Close()
	if !timers.pending[1].stopped {
		t.Error("Close should cancel the pending timer")
	}
	w.Error("after close")
	if w.Message() != "again" {
		t.Errorf("Show after Close changed the message to %q", w.Message())
	}
	timers.fire(1)
	if !w.Visible() {
		t.Error("a timer firing after Close should not touch the banner")
	}
}

func TestWithDurationAndHook(t *testing.T) {
	var seen []string
	w, _, _, timers := newWidget(t,
		toast.WithDuration(time.Second),
		toast.WithHook(func(level toast.Type, message string) {
			seen = append(seen, string(level)+":"+message)
		}),
	)

	w.Success("ok")
	if timers.pending[0].d != time.Second {
		t.Errorf("duration = %v, want 1s", timers.pending[0].d)
	}
	if diff := cmp.Diff([]string{"success:ok"}, seen); diff != "" {
		t.Errorf("hook calls mismatch (-want +got):\n%s", diff)
	}

	sticky, _, _, stickyTimers := newWidget(t, toast.WithDuration(0))
	sticky.Info("stays")
	if len(stickyTimers.pending) != 0 {
		t.Error("zero duration should not schedule a dismissal")
	}
}

func TestRealTimerDismisses(t *testing.T) {
	w := toast.New(ui.NewDocument(nil), toast.WithDuration(10*time.Millisecond))
	defer w.Close()

	w.Success("done")
	deadline := time.Now().Add(2 * time.Second)
	for w.Visible() {
		if time.Now().After(deadline) {
			t.Fatal("banner was not dismissed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
