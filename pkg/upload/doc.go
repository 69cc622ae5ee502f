// Package upload stages files chosen in the browser and represents files on
// their way to the document service.
//
// WebSocket connections are poor at carrying large binary payloads (they
// block the event loop and the keepalive), so pdfdesk uses a hybrid
// HTTP+WebSocket approach:
//
//  1. The user picks or drops files on an upload zone
//  2. The client POSTs them to /_pdfdesk/stage (traditional multipart)
//  3. The server streams them to temp storage and returns their temp IDs
//  4. The client sends the drop/change event with the temp IDs over the
//     WebSocket
//  5. The session claims the files and hands them to the upload controller
//
// # Usage
//
// Mount the staging handler in your router:
//
//	r.Post("/_pdfdesk/stage", upload.Handler(store))
//
// Files read from disk (the CLI) skip staging:
//
//	f, err := upload.FromPath("report.pdf")
//
// # Security
//
// The handler limits the request body before parsing it and rejects files
// larger than Config.MaxFileSize. Staged files expire after
// Config.TempExpiry; run Store.Cleanup periodically.
package upload
