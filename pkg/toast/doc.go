// Package toast provides the notification banner shown after uploads.
//
// A Widget owns a single element (ID "message-alert") that it creates on
// first use. Every Show replaces the banner's text and colors and restarts
// the dismissal timer, so at most one message is visible at a time:
//
//	w := toast.New(doc)
//	defer w.Close()
//
//	w.Success("File converted and downloaded successfully")
//	w.Error("Error processing file: connection refused")
//
// The banner hides itself after five seconds unless WithDuration says
// otherwise. A timer left over from an earlier message never hides a newer
// one.
package toast
