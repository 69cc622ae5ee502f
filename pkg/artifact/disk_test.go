package artifact_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/pdfdesk/pkg/artifact"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\scan.pdf`, "scan.pdf"},
		{"dir/", "dir"},
		{"", artifact.DefaultName},
		{"..", artifact.DefaultName},
		{"/", artifact.DefaultName},
	}
	for _, tt := range tests {
		if got := artifact.CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDiskStore_PutOpen(t *testing.T) {
	store, err := artifact.NewDiskStore(t.TempDir(), "/_pdfdesk/artifacts/")
	if err != nil {
		t.Fatal(err)
	}

	a, err := store.Put(context.Background(), "../merged.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if a.Name != "merged.pdf" || a.Size != 8 {
		t.Errorf("Put returned %+v", a)
	}
	if a.Location != "/_pdfdesk/artifacts/"+a.ID {
		t.Errorf("Location = %q", a.Location)
	}

	f, got, err := store.Open(a.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "%PDF-1.7" {
		t.Errorf("content = %q", data)
	}
	if got != a {
		t.Errorf("Open artifact = %+v, want %+v", got, a)
	}

	for _, id := range []string{"", "../x", strings.Repeat("0", 32)} {
		if _, _, err := store.Open(id); !errors.Is(err, artifact.ErrNotFound) {
			t.Errorf("Open(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestDiskStore_PutCanceled(t *testing.T) {
	store, err := artifact.NewDiskStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, "a.pdf", "", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Put error = %v, want context.Canceled", err)
	}
}

func TestDiskStore_ServeArtifact(t *testing.T) {
	store, err := artifact.NewDiskStore(t.TempDir(), "/a/")
	if err != nil {
		t.Fatal(err)
	}
	a, err := store.Put(context.Background(), "split.pdf", "application/pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	store.ServeArtifact(rec, httptest.NewRequest(http.MethodGet, "/a/"+a.ID, nil), a.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename=split.pdf` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.String() != "%PDF" {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	store.ServeArtifact(rec, httptest.NewRequest(http.MethodGet, "/a/nope", nil), "nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing artifact status = %d, want 404", rec.Code)
	}
}

func TestDiskStore_Cleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := artifact.NewDiskStore(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	old, _ := store.Put(context.Background(), "old.pdf", "", strings.NewReader("o"))
	fresh, _ := store.Put(context.Background(), "new.pdf", "", strings.NewReader("n"))

	past := time.Now().Add(-2 * time.Hour)
	for _, name := range []string{old.ID, old.ID + ".json"} {
		if err := os.Chtimes(filepath.Join(dir, name), past, past); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Cleanup(time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, _, err := store.Open(old.ID); !errors.Is(err, artifact.ErrNotFound) {
		t.Errorf("old artifact should be gone, Open error = %v", err)
	}
	f, _, err := store.Open(fresh.ID)
	if err != nil {
		t.Fatalf("fresh artifact should survive: %v", err)
	}
	f.Close()
}

func TestFolder_PutUniqueNames(t *testing.T) {
	dir := t.TempDir()
	folder, err := artifact.NewFolder(dir)
	if err != nil {
		t.Fatal(err)
	}

	var locations []string
	for i := 0; i < 3; i++ {
		a, err := folder.Put(context.Background(), "report.pdf", "application/pdf", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Put #%d: %v", i, err)
		}
		locations = append(locations, filepath.Base(a.Location))
	}
	want := []string{"report.pdf", "report (1).pdf", "report (2).pdf"}
	for i := range want {
		if locations[i] != want[i] {
			t.Errorf("Put #%d saved %q, want %q", i, locations[i], want[i])
		}
	}
}
