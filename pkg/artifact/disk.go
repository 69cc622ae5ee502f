package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const metaSuffix = ".json"

// DiskStore keeps artifacts under random IDs and serves them over HTTP.
type DiskStore struct {
	dir        string
	hrefPrefix string
}

type diskMeta struct {
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDiskStore creates a DiskStore rooted at dir. Artifact locations are
// hrefPrefix followed by the artifact ID.
func NewDiskStore(dir, hrefPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, hrefPrefix: hrefPrefix}, nil
}

// Put writes r to the store.
func (s *DiskStore) Put(ctx context.Context, name, contentType string, r io.Reader) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	id, err := newID()
	if err != nil {
		return Artifact{}, err
	}
	path := filepath.Join(s.dir, id)

	size, err := writeFile(path, r)
	if err != nil {
		return Artifact{}, err
	}

	meta := diskMeta{
		Name:        CleanName(name),
		ContentType: contentType,
		Size:        size,
		CreatedAt:   time.Now(),
	}
	data, err := json.Marshal(meta)
	if err == nil {
		err = os.WriteFile(path+metaSuffix, data, 0o644)
	}
	if err != nil {
		os.Remove(path)
		return Artifact{}, err
	}

	return Artifact{
		ID:          id,
		Name:        meta.Name,
		ContentType: contentType,
		Size:        size,
		Location:    s.hrefPrefix + id,
	}, nil
}

// Open returns the artifact's contents and description.
func (s *DiskStore) Open(id string) (io.ReadSeekCloser, Artifact, error) {
	if !validID(id) {
		return nil, Artifact{}, ErrNotFound
	}
	path := filepath.Join(s.dir, id)

	data, err := os.ReadFile(path + metaSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Artifact{}, ErrNotFound
		}
		return nil, Artifact{}, err
	}
	var meta diskMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, Artifact{}, fmt.Errorf("artifact %s: %w", id, err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Artifact{}, ErrNotFound
		}
		return nil, Artifact{}, err
	}
	return f, Artifact{
		ID:          id,
		Name:        meta.Name,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Location:    s.hrefPrefix + id,
	}, nil
}

// ServeArtifact writes artifact id as an attachment.
func (s *DiskStore) ServeArtifact(w http.ResponseWriter, r *http.Request, id string) {
	f, a, err := s.Open(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Failed to open artifact", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	if a.ContentType != "" {
		w.Header().Set("Content-Type", a.ContentType)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	http.ServeContent(w, r, a.Name, time.Time{}, f)
}

// Cleanup removes artifacts older than maxAge.
func (s *DiskStore) Cleanup(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.dir, entry.Name()))
		}
	}
	return nil
}

// Folder saves artifacts under their own names, for the terminal front end.
// A name already taken gets a numeric suffix: "report (1).pdf".
type Folder struct {
	dir string
}

// NewFolder creates the folder if needed.
func NewFolder(dir string) (*Folder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Folder{dir: dir}, nil
}

// Put writes r to the folder. The artifact's Location is the file path.
func (d *Folder) Put(ctx context.Context, name, contentType string, r io.Reader) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	name = CleanName(name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(d.dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return Artifact{}, err
		}
		n, err := io.Copy(f, r)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return Artifact{}, err
		}
		return Artifact{
			Name:        candidate,
			ContentType: contentType,
			Size:        n,
			Location:    path,
		}, nil
	}
}

func writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}
