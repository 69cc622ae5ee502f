package upload

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
)

// stageResponse is the JSON returned by the staging handler.
type stageResponse struct {
	TempIDs []string `json:"temp_ids"`
}

// Handler returns an http.Handler that stages uploaded files.
// Mount it on your router: r.Post("/_pdfdesk/stage", upload.Handler(store))
//
// The handler accepts every file part of a multipart form (the zone fields
// "file" and "files[]" alike), in order, and returns their temp IDs:
//
//	{"temp_ids": ["abc123", "def456"]}
func Handler(store Store) http.Handler {
	return HandlerWithConfig(store, DefaultConfig())
}

// HandlerWithConfig returns a staging handler with custom configuration.
func HandlerWithConfig(store Store, config *Config) http.Handler {
	def := DefaultConfig()
	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = def.MaxFileSize
	}
	maxFiles := config.MaxFiles
	if maxFiles <= 0 {
		maxFiles = def.MaxFiles
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Limit the whole body before reading any part. The extra MB covers
		// multipart headers and boundaries.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize*int64(maxFiles)+1<<20)

		mr, err := r.MultipartReader()
		if err != nil {
			jsonError(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		var ids []string
		fail := func(msg string, code int) {
			discard(store, ids)
			jsonError(w, msg, code)
		}

		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					fail("File too large", http.StatusRequestEntityTooLarge)
					return
				}
				fail("Failed to parse form", http.StatusBadRequest)
				return
			}
			if part.FileName() == "" {
				part.Close()
				continue
			}
			if len(ids) == maxFiles {
				part.Close()
				fail("Too many files", http.StatusRequestEntityTooLarge)
				return
			}

			lr := &limitedReader{r: part, remaining: maxSize}
			id, err := store.Save(
				filepath.Base(part.FileName()),
				part.Header.Get("Content-Type"),
				-1,
				lr,
			)
			part.Close()
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.Is(err, ErrTooLarge) || lr.exceeded || errors.As(err, &maxErr) {
					fail("File too large", http.StatusRequestEntityTooLarge)
					return
				}
				fail("Upload failed", http.StatusInternalServerError)
				return
			}
			ids = append(ids, id)
		}

		if len(ids) == 0 {
			jsonError(w, "No file provided", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		json.NewEncoder(w).Encode(stageResponse{TempIDs: ids})
	})
}

// limitedReader fails with ErrTooLarge once more than remaining bytes are
// read.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		l.exceeded = true
		return 0, ErrTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded = true
		return n, ErrTooLarge
	}
	return n, err
}

// discard claims and closes staged files so they are removed right away.
func discard(store Store, ids []string) {
	for _, id := range ids {
		if f, err := store.Claim(id); err == nil {
			f.Close()
		}
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
