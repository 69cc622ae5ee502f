package ui

import "sync"

// Element ID suffixes for the parts of a zone.
const (
	InputSuffix = "-input"
	LabelSuffix = "-label"
)

// Zone is the view of one upload zone: the drop area, its file input and
// its status label.
type Zone struct {
	ID    string
	Root  *Element
	Input *Element
	Label *Element

	mu       sync.Mutex
	inflight int
	idle     string
}

// NewZone adopts the zone's elements from doc. label is the idle status text
// the page was rendered with.
func NewZone(doc *Document, id, label string) *Zone {
	return &Zone{
		ID:    id,
		Root:  doc.Adopt(id, ""),
		Input: doc.Adopt(id+InputSuffix, ""),
		Label: doc.Adopt(id+LabelSuffix, label),
	}
}

// Begin marks the zone busy and shows busyText in the label. The returned
// function ends the busy state; it is safe to call more than once.
//
// Overlapping submissions share one busy period: the first captures the
// label text and the last one to end restores it.
func (z *Zone) Begin(busyText string) (end func()) {
	end, _ = z.begin(busyText, false)
	return end
}

// TryBegin is like Begin but fails when the zone is already busy.
func (z *Zone) TryBegin(busyText string) (end func(), ok bool) {
	return z.begin(busyText, true)
}

func (z *Zone) begin(busyText string, exclusive bool) (func(), bool) {
	z.mu.Lock()
	if exclusive && z.inflight > 0 {
		z.mu.Unlock()
		return nil, false
	}
	if z.inflight == 0 {
		z.idle = z.Label.Text()
	}
	z.inflight++
	z.Label.SetText(busyText)
	z.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			z.mu.Lock()
			defer z.mu.Unlock()
			z.inflight--
			if z.inflight == 0 {
				z.Label.SetText(z.idle)
			}
		})
	}, true
}

// Busy reports whether a submission is in flight for the zone.
func (z *Zone) Busy() bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.inflight > 0
}
