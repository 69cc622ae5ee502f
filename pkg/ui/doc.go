// Package ui provides the retained element model that pdfdesk mutates.
//
// The upload controller never touches a browser or a terminal directly. It
// changes Elements (text, classes, inline style, visibility) and every change
// is turned into a Patch handed to the Document's Renderer. The live bridge
// renders patches by sending them over a WebSocket; the CLI renders them to
// the terminal; tests record them.
//
// # Core Types
//
// Element is a single node identified by its element ID. Document is the
// registry of elements plus the page-level actions (download, navigate).
// Zone groups the three elements of an upload zone: the drop area, its file
// input and its status label. Mux routes client Events to handlers.
//
// # Patches
//
// Mutators only emit a patch when state actually changes, so a stream of
// dragover events adds the "dragover" class once:
//
//	el.AddClass("dragover") // {op: addClass, target: mergePdfArea, value: dragover}
//	el.AddClass("dragover") // no patch
//
// Renderers are called with the element's lock held, in mutation order.
// They must not call back into the element.
package ui
