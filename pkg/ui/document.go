package ui

import "sync"

// Document is the registry of elements on one page.
type Document struct {
	r Renderer

	mu       sync.RWMutex
	elements map[string]*Element
}

// NewDocument creates a document whose patches go to r.
// A nil renderer discards patches.
func NewDocument(r Renderer) *Document {
	if r == nil {
		r = Discard
	}
	return &Document{
		r:        r,
		elements: make(map[string]*Element),
	}
}

// Adopt registers an element that already exists on the page (rendered by
// the server), with its current text. No patch is emitted. Adopting an ID
// twice returns the first element.
func (d *Document) Adopt(id, text string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.elements[id]; ok {
		return el
	}
	el := newElement(id, text, d.r)
	d.elements[id] = el
	return el
}

// Create returns the element with the given ID, creating it on the page if
// it does not exist yet.
func (d *Document) Create(id string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.elements[id]; ok {
		return el
	}
	el := newElement(id, "", d.r)
	d.elements[id] = el
	d.r.Render(Patch{Op: OpCreate, Target: id})
	return el
}

// Lookup returns the element with the given ID.
func (d *Document) Lookup(id string) (*Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	el, ok := d.elements[id]
	return el, ok
}

// Len returns the number of registered elements.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.elements)
}

// Download asks the client to save href under name.
func (d *Document) Download(name, href string) {
	d.r.Render(Patch{Op: OpDownload, Key: name, Value: href})
}

// Navigate asks the client to load href as a full page.
func (d *Document) Navigate(href string) {
	d.r.Render(Patch{Op: OpNavigate, Value: href})
}
