package ui

import (
	"sort"
	"sync"
)

// Element is a retained DOM node.
type Element struct {
	id string
	r  Renderer

	mu      sync.Mutex
	text    string
	classes map[string]struct{}
	style   map[string]string
	hidden  bool
}

func newElement(id, text string, r Renderer) *Element {
	return &Element{
		id:      id,
		r:       r,
		text:    text,
		classes: make(map[string]struct{}),
		style:   make(map[string]string),
	}
}

// ID returns the element ID.
func (e *Element) ID() string {
	return e.id
}

// Text returns the text content.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// SetText replaces the text content.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.text == text {
		return
	}
	e.text = text
	e.r.Render(Patch{Op: OpText, Target: e.id, Value: text})
}

// HasClass reports whether the element has class name.
func (e *Element) HasClass(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.classes[name]
	return ok
}

// Classes returns the element's classes, sorted.
func (e *Element) Classes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.classes))
	for c := range e.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// AddClass adds class name.
func (e *Element) AddClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.classes[name]; ok {
		return
	}
	e.classes[name] = struct{}{}
	e.r.Render(Patch{Op: OpAddClass, Target: e.id, Value: name})
}

// RemoveClass removes class name.
func (e *Element) RemoveClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.classes[name]; !ok {
		return
	}
	delete(e.classes, name)
	e.r.Render(Patch{Op: OpRemoveClass, Target: e.id, Value: name})
}

// Style returns an inline style property.
func (e *Element) Style(prop string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.style[prop]
}

// SetStyle sets an inline style property.
func (e *Element) SetStyle(prop, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cur, ok := e.style[prop]; ok && cur == value {
		return
	}
	e.style[prop] = value
	e.r.Render(Patch{Op: OpStyle, Target: e.id, Key: prop, Value: value})
}

// Hidden reports whether the element is hidden.
func (e *Element) Hidden() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hidden
}

// Show makes the element visible.
func (e *Element) Show() {
	e.setHidden(false)
}

// Hide hides the element.
func (e *Element) Hide() {
	e.setHidden(true)
}

func (e *Element) setHidden(hidden bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hidden == hidden {
		return
	}
	e.hidden = hidden
	op := OpShow
	if hidden {
		op = OpHide
	}
	e.r.Render(Patch{Op: op, Target: e.id})
}

// Click triggers a click on the element. Clicks are actions, not state, so
// every call emits a patch.
func (e *Element) Click() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.r.Render(Patch{Op: OpClick, Target: e.id})
}
