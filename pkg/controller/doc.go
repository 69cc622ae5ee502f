// Package controller binds upload zones to the document service.
//
// A Controller turns zone events into multipart POST requests and turns the
// responses into user feedback:
//
//   - application/pdf responses are saved as artifacts and downloaded
//   - non-2xx responses show the service's error text
//   - 2xx JSON responses show their message, or their error, and may
//     redirect the page through downloadUrl
//   - anything else (network, unreadable files, broken JSON) shows
//     "Error processing file: " followed by the cause
//
// The zone's label reads "Processing..." while a request is in flight and
// gets its text back on every path.
//
//	c, err := controller.New(zone.Default(),
//	    controller.WithBaseURL("http://localhost:5000"),
//	    controller.WithNotifier(toast.New(doc)),
//	    controller.WithDownloader(controller.StoreDownloader(store, doc)),
//	    controller.WithNavigator(doc),
//	)
//	if err != nil {
//	    return err
//	}
//	err = c.Bind(mux, views...)
//
// Submit never returns an error; the Result records what happened.
package controller
