package ui

import "sync"

// Op is the type of patch operation.
type Op string

const (
	OpCreate      Op = "create"      // Create element (appended to body)
	OpText        Op = "text"        // Update text content
	OpAddClass    Op = "addClass"    // Add a class
	OpRemoveClass Op = "removeClass" // Remove a class
	OpStyle       Op = "style"       // Set an inline style property
	OpShow        Op = "show"        // display: block
	OpHide        Op = "hide"        // display: none
	OpClick       Op = "click"       // Trigger a click (opens file pickers)
	OpDownload    Op = "download"    // Download Value as file Key
	OpNavigate    Op = "navigate"    // Full-page navigation to Value
)

// Patch represents a single DOM operation to apply.
type Patch struct {
	Op     Op     `json:"op"`
	Target string `json:"target,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Renderer applies patches.
type Renderer interface {
	Render(p Patch)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(p Patch)

// Render calls f(p).
func (f RendererFunc) Render(p Patch) { f(p) }

// Discard is a Renderer that drops every patch.
var Discard Renderer = RendererFunc(func(Patch) {})

// Recorder is a Renderer that keeps every patch in memory.
type Recorder struct {
	mu      sync.Mutex
	patches []Patch
}

// Render records p.
func (r *Recorder) Render(p Patch) {
	r.mu.Lock()
	r.patches = append(r.patches, p)
	r.mu.Unlock()
}

// Patches returns a copy of the recorded patches.
func (r *Recorder) Patches() []Patch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Patch(nil), r.patches...)
}

// Take returns the recorded patches and clears the recorder.
func (r *Recorder) Take() []Patch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.patches
	r.patches = nil
	return out
}
