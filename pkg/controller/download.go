package controller

import (
	"context"
	"io"

	"github.com/vango-dev/pdfdesk/pkg/artifact"
)

// Page triggers browser downloads. *ui.Document implements it.
type Page interface {
	Download(name, href string)
}

// StoreDownloader saves documents in store. When page is not nil it also
// asks the page to download the stored artifact.
func StoreDownloader(store artifact.Store, page Page) Downloader {
	return DownloaderFunc(func(ctx context.Context, name, contentType string, body io.Reader) (artifact.Artifact, error) {
		a, err := store.Put(ctx, name, contentType, body)
		if err != nil {
			return artifact.Artifact{}, err
		}
		if page != nil {
			page.Download(a.Name, a.Location)
		}
		return a, nil
	})
}
