package controller_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	deskerrors "github.com/vango-dev/pdfdesk/internal/errors"
	"github.com/vango-dev/pdfdesk/pkg/artifact"
	"github.com/vango-dev/pdfdesk/pkg/controller"
	"github.com/vango-dev/pdfdesk/pkg/ui"
	"github.com/vango-dev/pdfdesk/pkg/upload"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []controller.Option
		code string
	}{
		{"missing base URL", nil, "E121"},
		{"relative base URL", []controller.Option{controller.WithBaseURL("/api")}, "E121"},
		{"ftp base URL", []controller.Option{controller.WithBaseURL("ftp://host")}, "E121"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := controller.New(zone.Default(), tt.opts...)
			if !deskerrors.HasCode(err, tt.code) {
				t.Errorf("New error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := controller.New(nil, controller.WithBaseURL("http://x")); !deskerrors.HasCode(err, "E200") {
		t.Errorf("New(nil) error = %v, want E200", err)
	}
	_, err := controller.New(zone.Default(),
		controller.WithBaseURL("http://x"),
		controller.WithMessages(controller.Messages{HTTPError: "failed"}))
	if err == nil {
		t.Errorf("New() with HTTPError %q succeeded, want an error", "failed")
	}
}

func TestMessagesOverride(t *testing.T) {
	c, err := controller.New(zone.Default(),
		controller.WithBaseURL("http://localhost:5000/"),
		controller.WithMessages(controller.Messages{Processing: "Procesando..."}))
	if err != nil {
		t.Fatal(err)
	}
	want := controller.DefaultMessages()
	want.Processing = "Procesando..."
	if diff := cmp.Diff(want, c.Messages()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestBindUnknownZone(t *testing.T) {
	c, err := controller.New(zone.Default(), controller.WithBaseURL("http://localhost:5000"))
	if err != nil {
		t.Fatal(err)
	}
	doc := ui.NewDocument(nil)
	mux := ui.NewMux()

	known := ui.NewZone(doc, string(zone.Merge), "")
	unknown := ui.NewZone(doc, "compressPdfArea", "")
	err = c.Bind(mux, known, unknown)

	if !deskerrors.HasCode(err, "E201") || !errors.Is(err, zone.ErrUnknownZone) {
		t.Fatalf("Bind error = %v, want E201", err)
	}
	if len(mux.Targets()) != 0 {
		t.Errorf("Bind registered %v despite the error", mux.Targets())
	}
}

func TestBindEvents(t *testing.T) {
	f := newFixture(t, jsonResponse(http.StatusOK, `{"message":"PDF split successfully"}`))
	rec := &ui.Recorder{}
	doc := ui.NewDocument(rec)
	views := f.ctrl.Views(doc)
	if len(views) != 6 {
		t.Fatalf("Views returned %d zones, want 6", len(views))
	}
	mux := ui.NewMux()
	if err := f.ctrl.Bind(mux, views...); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	ctx := context.Background()
	dispatch := func(typ ui.EventType, files ...*upload.File) {
		t.Helper()
		if err := mux.Dispatch(ctx, ui.Event{Type: typ, Target: string(zone.Split), Files: files}); err != nil {
			t.Fatalf("Dispatch(%s): %v", typ, err)
		}
	}

	dispatch(ui.EventClick)
	dispatch(ui.EventDragOver)
	dispatch(ui.EventDragOver)
	dispatch(ui.EventDragLeave)
	dispatch(ui.EventDragOver)
	rec.Take()
	dispatch(ui.EventDrop, memFile("a.pdf", "A"))

	patches := rec.Take()
	if len(patches) == 0 || patches[0] != (ui.Patch{Op: ui.OpRemoveClass, Target: string(zone.Split), Value: "dragover"}) {
		t.Errorf("drop should first remove the dragover class, got %+v", patches)
	}
	if n := len(f.received("/split")); n != 1 {
		t.Errorf("drop sent %d requests, want 1", n)
	}

	dispatch(ui.EventChange, memFile("b.pdf", "B"))
	if n := len(f.received("/split")); n != 2 {
		t.Errorf("change sent %d requests in total, want 2", n)
	}

	wantNotes := []note{
		{"success", "PDF split successfully"},
		{"success", "PDF split successfully"},
	}
	if diff := cmp.Diff(wantNotes, f.notifier.all()); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestBindClickAndDragPatches(t *testing.T) {
	c, err := controller.New(zone.Default(), controller.WithBaseURL("http://localhost:5000"))
	if err != nil {
		t.Fatal(err)
	}
	rec := &ui.Recorder{}
	doc := ui.NewDocument(rec)
	view := ui.NewZone(doc, string(zone.Merge), "Drop PDFs here")
	mux := ui.NewMux()
	if err := c.Bind(mux, view); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, typ := range []ui.EventType{ui.EventClick, ui.EventDragOver, ui.EventDragOver, ui.EventDragLeave} {
		if err := mux.Dispatch(ctx, ui.Event{Type: typ, Target: string(zone.Merge)}); err != nil {
			t.Fatal(err)
		}
	}

	want := []ui.Patch{
		{Op: ui.OpClick, Target: "mergePdfArea-input"},
		{Op: ui.OpAddClass, Target: "mergePdfArea", Value: "dragover"},
		{Op: ui.OpRemoveClass, Target: "mergePdfArea", Value: "dragover"},
	}
	if diff := cmp.Diff(want, rec.Patches()); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}

func TestFilenameFromDisposition(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{`attachment; filename="report.pdf"`, "report.pdf"},
		{`attachment; filename=report.pdf`, "report.pdf"},
		{`attachment; filename='report.pdf'`, "report.pdf"},
		{`attachment; filename="../../etc/merged.pdf"`, "merged.pdf"},
		{`attachment; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`, "résumé.pdf"},
		{`attachment; filename=my file.pdf`, "my file.pdf"},
		{`attachment`, artifact.DefaultName},
		{``, artifact.DefaultName},
		{`attachment; filename=""`, artifact.DefaultName},
	}
	for _, tt := range tests {
		if got := controller.FilenameFromDisposition(tt.header); got != tt.want {
			t.Errorf("FilenameFromDisposition(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

type recordingPage struct {
	name, href string
}

func (p *recordingPage) Download(name, href string) {
	p.name, p.href = name, href
}

func TestStoreDownloader(t *testing.T) {
	store, err := artifact.NewDiskStore(t.TempDir(), "/_pdfdesk/artifacts/")
	if err != nil {
		t.Fatal(err)
	}
	page := &recordingPage{}
	d := controller.StoreDownloader(store, page)

	a, err := d.Download(context.Background(), "report.pdf", "application/pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if page.name != "report.pdf" || page.href != a.Location {
		t.Errorf("page asked to download %q from %q, artifact %+v", page.name, page.href, a)
	}

	rc, _, err := store.Open(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF" {
		t.Errorf("stored %q", data)
	}
}
