// Package live connects browser pages to upload controllers over a
// WebSocket.
//
// Every connection gets a Session with its own ui.Document, toast widget
// and controller. The browser sends DOM events as small JSON frames:
//
//	{"type":"dragover","target":"mergePdfArea"}
//	{"type":"drop","target":"mergePdfArea","files":["<temp id>", ...]}
//
// File contents never travel over the socket. The thin client first stages
// them through upload.Handler and sends only the temp IDs, which the
// session claims from the staging store.
//
// The server answers with JSON arrays of ui.Patch values, batched by a
// single writer goroutine:
//
//	[{"op":"text","target":"mergePdfArea-label","value":"Processing..."}]
//
// # Usage
//
//	hub := live.NewHub(staging, func(p live.Page) (*controller.Controller, error) {
//	    return controller.New(table,
//	        controller.WithBaseURL(serviceURL),
//	        controller.WithNotifier(p.Toast),
//	        controller.WithNavigator(p.Document),
//	        controller.WithDownloader(controller.StoreDownloader(store, p.Document)),
//	    )
//	})
//	r.Handle("/_pdfdesk/ws", hub)
package live
