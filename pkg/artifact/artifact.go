// Package artifact stores the documents returned by the document service so
// they can be handed to the user: a file in a download folder, an HTTP link
// served by pdfdesk, or a presigned S3 URL.
package artifact

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when an artifact doesn't exist.
var ErrNotFound = errors.New("artifact: not found")

// DefaultName is used when the response names no file.
const DefaultName = "converted.pdf"

// Artifact describes a stored document.
type Artifact struct {
	ID          string
	Name        string
	ContentType string
	Size        int64

	// Location is where the user gets the document: a filesystem path or a
	// URL, depending on the store.
	Location string
}

// Store saves documents.
type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (Artifact, error)
}

// CleanName reduces name to a safe base filename. Empty and dot names
// become DefaultName.
func CleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))
	switch name {
	case "", ".", "..", "/":
		return DefaultName
	}
	return name
}

func newID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func validID(id string) bool {
	if len(id) != 32 {
		return false
	}
	return strings.Trim(id, "0123456789abcdef") == ""
}
