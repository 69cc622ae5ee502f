package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned when a temp file doesn't exist.
var ErrNotFound = errors.New("upload: file not found")

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("upload: file too large")

// ErrNoContent is returned when a File has neither a reader nor a path.
var ErrNoContent = errors.New("upload: file has no content")

// Store is the interface for staging backends.
type Store interface {
	// Save stores the uploaded file and returns a temp ID.
	// The file is kept until Claim is called or it expires.
	Save(filename string, contentType string, size int64, r io.Reader) (tempID string, err error)

	// Claim retrieves and removes a temp file, returning a file handle.
	Claim(tempID string) (*File, error)

	// Cleanup removes temp files older than maxAge.
	Cleanup(maxAge time.Duration) error
}

// File is a file on its way to the document service.
type File struct {
	// ID is the staging temp ID (empty for files read from disk).
	ID string

	// Filename is the original filename, without directories.
	Filename string

	// ContentType is the MIME type of the file.
	ContentType string

	// Size is the file size in bytes.
	Size int64

	// Path is the local filesystem path, if any.
	Path string

	// Reader provides access to the file contents.
	// May be nil if the file is on disk (Open uses Path instead).
	Reader io.ReadCloser
}

// Open returns the file contents. A File backed by a Reader can be opened
// once; the reader is handed over to the caller.
func (f *File) Open() (io.ReadCloser, error) {
	if f.Reader != nil {
		r := f.Reader
		f.Reader = nil
		return r, nil
	}
	if f.Path == "" {
		return nil, ErrNoContent
	}
	return os.Open(f.Path)
}

// Close closes the file reader if open.
func (f *File) Close() error {
	if f.Reader != nil {
		return f.Reader.Close()
	}
	return nil
}

// FromPath describes a local file. The content type comes from the
// extension, or from sniffing the first 512 bytes when the extension is
// unknown.
func FromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("upload: %s is a directory", path)
	}

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct, err = sniff(path)
		if err != nil {
			return nil, err
		}
	}

	return &File{
		Filename:    filepath.Base(path),
		ContentType: ct,
		Size:        info.Size(),
		Path:        path,
	}, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// Claim retrieves staged files by ID, in order. On failure, files claimed so
// far are closed.
func Claim(store Store, tempIDs ...string) ([]*File, error) {
	files := make([]*File, 0, len(tempIDs))
	for _, id := range tempIDs {
		f, err := store.Claim(id)
		if err != nil {
			for _, claimed := range files {
				claimed.Close()
			}
			return nil, fmt.Errorf("claim %s: %w", id, err)
		}
		files = append(files, f)
	}
	return files, nil
}

// Config holds configuration for the staging handler.
type Config struct {
	// MaxFileSize is the maximum allowed size of a single file in bytes.
	// Default: 16MB.
	MaxFileSize int64

	// MaxFiles is the maximum number of files in one request.
	// Default: 20.
	MaxFiles int

	// TempExpiry is how long temp files live before cleanup.
	// Default: 1 hour.
	TempExpiry time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize: 16 << 20,
		MaxFiles:    20,
		TempExpiry:  time.Hour,
	}
}
