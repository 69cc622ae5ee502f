package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	deskerrors "github.com/vango-dev/pdfdesk/internal/errors"
	"github.com/vango-dev/pdfdesk/pkg/artifact"
	"github.com/vango-dev/pdfdesk/pkg/ui"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Notifier shows messages to the user. *toast.Widget implements it.
type Notifier interface {
	Success(message string)
	Error(message string)
	Warning(message string)
}

// Navigator sends the page to another URL. *ui.Document implements it.
type Navigator interface {
	Navigate(href string)
}

// Downloader hands a returned document to the user.
type Downloader interface {
	Download(ctx context.Context, name, contentType string, body io.Reader) (artifact.Artifact, error)
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(ctx context.Context, name, contentType string, body io.Reader) (artifact.Artifact, error)

// Download calls f.
func (f DownloaderFunc) Download(ctx context.Context, name, contentType string, body io.Reader) (artifact.Artifact, error) {
	return f(ctx, name, contentType, body)
}

// Messages are the texts shown to the user.
type Messages struct {
	// Processing replaces the zone label while a request is in flight.
	Processing string
	// Downloaded is shown after a document was saved.
	Downloaded string
	// Completed is shown for 2xx JSON responses without a message.
	Completed string
	// FailurePrefix precedes the cause of network and local failures.
	FailurePrefix string
	// HTTPError formats the status of a non-2xx response without an
	// error text. It must contain one %d verb.
	HTTPError string
	// Busy is shown when the exclusive guard turns a submission away.
	Busy string
}

// DefaultMessages returns the English texts.
func DefaultMessages() Messages {
	return Messages{
		Processing:    "Processing...",
		Downloaded:    "File converted and downloaded successfully",
		Completed:     "Operation completed successfully",
		FailurePrefix: "Error processing file: ",
		HTTPError:     "HTTP error! status: %d",
		Busy:          "This zone is still processing the previous upload",
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient sets the client used to reach the document service.
func WithHTTPClient(client Doer) Option {
	return func(c *Controller) {
		c.client = client
	}
}

// WithBaseURL sets the document service URL that endpoints are joined to.
// It is required.
func WithBaseURL(base string) Option {
	return func(c *Controller) {
		c.baseURL = base
	}
}

// WithNotifier sets where messages are shown.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithDownloader sets where returned documents go.
func WithDownloader(d Downloader) Option {
	return func(c *Controller) {
		c.downloader = d
	}
}

// WithNavigator sets the target of downloadUrl redirects.
func WithNavigator(n Navigator) Option {
	return func(c *Controller) {
		c.navigator = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMiddleware appends submission middleware. The first one added runs
// outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Controller) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithMessages overrides the non-empty fields of the default messages.
func WithMessages(m Messages) Option {
	return func(c *Controller) {
		if m.Processing != "" {
			c.messages.Processing = m.Processing
		}
		if m.Downloaded != "" {
			c.messages.Downloaded = m.Downloaded
		}
		if m.Completed != "" {
			c.messages.Completed = m.Completed
		}
		if m.FailurePrefix != "" {
			c.messages.FailurePrefix = m.FailurePrefix
		}
		if m.HTTPError != "" {
			c.messages.HTTPError = m.HTTPError
		}
		if m.Busy != "" {
			c.messages.Busy = m.Busy
		}
	}
}

// WithExclusive turns a second submission on a busy zone away instead of
// sending it alongside the first.
func WithExclusive(exclusive bool) Option {
	return func(c *Controller) {
		c.exclusive = exclusive
	}
}

// WithTimeout bounds each submission. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// Controller submits zone uploads to the document service.
type Controller struct {
	table      *zone.Table
	client     Doer
	baseURL    string
	notifier   Notifier
	downloader Downloader
	navigator  Navigator
	logger     *slog.Logger
	middleware []Middleware
	messages   Messages
	exclusive  bool
	timeout    time.Duration
}

// New creates a Controller for the zones in table.
func New(table *zone.Table, opts ...Option) (*Controller, error) {
	if table == nil || table.Len() == 0 {
		return nil, deskerrors.New("E200")
	}
	c := &Controller{
		table:    table,
		client:   &http.Client{},
		messages: DefaultMessages(),
	}
	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		e := deskerrors.New("E121").WithDetailf("%q is not an absolute http(s) URL", c.baseURL)
		if err != nil {
			e.Wrap(err)
		}
		return nil, e
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	if strings.Count(c.messages.HTTPError, "%d") != 1 {
		return nil, deskerrors.Newf(deskerrors.CategoryConfig, "HTTP error message %q must contain one %%d", c.messages.HTTPError)
	}

	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.navigator == nil {
		c.navigator = nopNavigator{}
	}
	if c.downloader == nil {
		c.downloader = DownloaderFunc(func(context.Context, string, string, io.Reader) (artifact.Artifact, error) {
			return artifact.Artifact{}, fmt.Errorf("no download destination configured")
		})
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// Table returns the endpoint table.
func (c *Controller) Table() *zone.Table {
	return c.table
}

// Messages returns the texts in use.
func (c *Controller) Messages() Messages {
	return c.messages
}

// Views adopts one zone view per route from doc, in table order, with the
// route's label as idle text.
func (c *Controller) Views(doc *ui.Document) []*ui.Zone {
	routes := c.table.Routes()
	views := make([]*ui.Zone, 0, len(routes))
	for _, r := range routes {
		views = append(views, ui.NewZone(doc, string(r.ID), r.Label))
	}
	return views
}

// Bind registers the zone event handlers on mux. Every view must name a
// zone of the table; nothing is registered otherwise.
func (c *Controller) Bind(mux *ui.Mux, views ...*ui.Zone) error {
	for _, v := range views {
		if _, err := c.table.Lookup(zone.ID(v.ID)); err != nil {
			return err
		}
	}

	for _, v := range views {
		v := v
		mux.Handle(v.ID, ui.EventClick, func(context.Context, ui.Event) error {
			v.Input.Click()
			return nil
		})
		mux.Handle(v.ID, ui.EventDragOver, func(context.Context, ui.Event) error {
			v.Root.AddClass("dragover")
			return nil
		})
		mux.Handle(v.ID, ui.EventDragLeave, func(context.Context, ui.Event) error {
			v.Root.RemoveClass("dragover")
			return nil
		})
		mux.Handle(v.ID, ui.EventDrop, func(ctx context.Context, ev ui.Event) error {
			v.Root.RemoveClass("dragover")
			c.Submit(ctx, v, ev.Files)
			return nil
		})
		mux.Handle(v.ID, ui.EventChange, func(ctx context.Context, ev ui.Event) error {
			c.Submit(ctx, v, ev.Files)
			return nil
		})
		c.logger.Debug("zone bound", "zone", v.ID)
	}
	return nil
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
func (nopNotifier) Warning(string) {}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}
