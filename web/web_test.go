package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-dev/pdfdesk/pkg/toast"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

func TestSanitizeHelp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  plain text  ", "plain text"},
		{"Images (<strong>PNG</strong>)", "Images (<strong>PNG</strong>)"},
		{`<em onclick="x()">order</em>`, "<em>order</em>"},
		{`<script>alert(1)</script>Hi`, "Hi"},
		{`<a href="javascript:x">link</a>`, "link"},
	}
	for _, tt := range tests {
		if got := string(SanitizeHelp(tt.in)); got != tt.want {
			t.Errorf("SanitizeHelp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPage_RendersZones(t *testing.T) {
	table := zone.MustTable(
		zone.Route{ID: zone.Merge, Endpoint: "/merge", Field: "files[]", Policy: zone.Multiple,
			Title: "Merge PDFs", Label: "Drop PDFs here", Help: "In <em>order</em><img src=x onerror=alert(1)>", Accept: ".pdf"},
		zone.Route{ID: zone.Split, Endpoint: "/split", Field: "file", Label: `Drop "one" <PDF>`},
	)
	page, err := NewPage(table, PageOptions{Title: "Docs"})
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()

	for _, want := range []string{
		"<title>Docs</title>",
		`<div class="upload-area" id="mergePdfArea"`,
		`id="mergePdfArea-input" type="file" accept=".pdf" multiple hidden>`,
		`<span id="mergePdfArea-label">Drop PDFs here</span>`,
		`<p class="zone-help">In <em>order</em></p>`,
		`<h2>splitPdfArea</h2>`,
		`<span id="splitPdfArea-label">Drop &#34;one&#34; &lt;PDF&gt;</span>`,
		`data-ws="/_pdfdesk/ws"`,
		`data-stage="/_pdfdesk/stage"`,
		`href="/static/pdfdesk.css"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q\n%s", want, body)
		}
	}
	if strings.Contains(body, "onerror") {
		t.Error("help text was not sanitized")
	}
	if strings.Contains(body, `id="splitPdfArea-input" type="file" multiple`) {
		t.Error("single zone should not accept multiple files")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestStatic(t *testing.T) {
	srv := httptest.NewServer(http.StripPrefix("/static/", Static()))
	defer srv.Close()

	for _, name := range []string{"pdfdesk.js", "pdfdesk.css"} {
		resp, err := http.Get(srv.URL + "/static/" + name)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || len(body) == 0 {
			t.Errorf("GET %s = %d, %d bytes", name, resp.StatusCode, len(body))
		}
	}
}

func TestClient_LocalErrorMatchesToast(t *testing.T) {
	data, err := staticFiles.ReadFile("static/pdfdesk.js")
	if err != nil {
		t.Fatal(err)
	}
	script := string(data)

	p := toast.PaletteFor(toast.TypeError)
	for _, want := range []string{
		"'" + p.Background + "'",
		"'" + p.Text + "'",
		"'1px solid " + p.Border + "'",
		"'message-alert'",
		"}, 5000);",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("pdfdesk.js missing %s", want)
		}
	}
}
