// Package web holds the pdfdesk page, its stylesheet and the thin client.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

//go:embed templates/index.html
var indexHTML string

//go:embed static
var staticFiles embed.FS

// Default mount points of the live endpoints.
const (
	DefaultStaticPrefix = "/static/"
	DefaultSocketPath   = "/_pdfdesk/ws"
	DefaultStagePath    = "/_pdfdesk/stage"
)

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// Static serves the stylesheet and thin client. Mount it with the prefix
// stripped.
func Static() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// PageOptions configures the page.
type PageOptions struct {
	// Title is the page heading (default: "PDF Desk").
	Title string

	// StaticPrefix, SocketPath and StagePath locate the other endpoints.
	StaticPrefix string
	SocketPath   string
	StagePath    string
}

type pageData struct {
	Title        string
	StaticPrefix string
	SocketPath   string
	StagePath    string
	Zones        []zoneData
}

type zoneData struct {
	ID       string
	Title    string
	Help     template.HTML
	Label    string
	Accept   string
	Multiple bool
}

// Page renders one upload zone per route. The page is rendered once; the
// table is read-only.
type Page struct {
	body []byte
}

// NewPage renders the page for table.
func NewPage(table *zone.Table, opts PageOptions) (*Page, error) {
	data := pageData{
		Title:        opts.Title,
		StaticPrefix: opts.StaticPrefix,
		SocketPath:   opts.SocketPath,
		StagePath:    opts.StagePath,
	}
	if data.Title == "" {
		data.Title = "PDF Desk"
	}
	if data.StaticPrefix == "" {
		data.StaticPrefix = DefaultStaticPrefix
	}
	if data.SocketPath == "" {
		data.SocketPath = DefaultSocketPath
	}
	if data.StagePath == "" {
		data.StagePath = DefaultStagePath
	}

	for _, r := range table.Routes() {
		title := r.Title
		if title == "" {
			title = string(r.ID)
		}
		data.Zones = append(data.Zones, zoneData{
			ID:       string(r.ID),
			Title:    title,
			Help:     SanitizeHelp(r.Help),
			Label:    r.Label,
			Accept:   r.Accept,
			Multiple: r.Multiple(),
		})
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return &Page{body: buf.Bytes()}, nil
}

// ServeHTTP writes the page.
func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-cache")
	if r.Method == http.MethodHead {
		return
	}
	w.Write(p.body)
}

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// SanitizeHelp keeps the inline formatting of a zone's help text and strips
// everything else.
func SanitizeHelp(raw string) template.HTML {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	helpPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("strong", "em", "b", "i", "code", "br", "small")
		helpPolicy = policy
	})
	return template.HTML(strings.TrimSpace(helpPolicy.Sanitize(trimmed)))
}
