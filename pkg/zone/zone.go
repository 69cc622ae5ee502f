package zone

import (
	stderrors "errors"
	"strings"

	"github.com/vango-dev/pdfdesk/internal/errors"
)

// ErrUnknownZone is returned when a zone ID is not in the table.
var ErrUnknownZone = stderrors.New("zone: unknown zone")

// ID identifies an upload zone. It doubles as the zone's element ID.
type ID string

// Built-in zones.
const (
	ConvertToPDF   ID = "convertToPdfArea"
	ConvertFromPDF ID = "convertFromPdfArea"
	Merge          ID = "mergePdfArea"
	Split          ID = "splitPdfArea"
	Edit           ID = "editPdfArea"
	Sign           ID = "signPdfArea"
)

// Policy says how many of the selected files a zone sends.
type Policy int

const (
	// Single sends only the first selected file.
	Single Policy = iota

	// Multiple sends every selected file, in order, under a repeated field.
	Multiple
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// Route is one row of the endpoint table.
type Route struct {
	// ID is the zone identifier.
	ID ID

	// Endpoint is the document service path the files are posted to.
	Endpoint string

	// Field is the multipart field name ("file" or "files[]").
	Field string

	// Policy selects how many files are attached.
	Policy Policy

	// Title is the heading shown above the zone.
	Title string

	// Label is the idle status text inside the zone.
	Label string

	// Help is a short description; may contain basic inline HTML.
	Help string

	// Accept is the file picker filter (e.g. ".pdf").
	Accept string
}

// Multiple reports whether the route sends every selected file.
func (r Route) Multiple() bool {
	return r.Policy == Multiple
}

// Validate checks a single route.
func (r Route) Validate() error {
	if strings.TrimSpace(string(r.ID)) == "" {
		return errors.New("E205").
			WithDetailf("route for endpoint %q has no id", r.Endpoint)
	}
	if !strings.HasPrefix(r.Endpoint, "/") {
		return errors.New("E203").
			WithDetailf("zone %q: endpoint %q must start with /", r.ID, r.Endpoint).
			WithSuggestion("Use an absolute path such as /merge")
	}
	if strings.TrimSpace(r.Field) == "" {
		return errors.New("E204").
			WithDetailf("zone %q has no multipart field", r.ID)
	}
	if r.Policy != Single && r.Policy != Multiple {
		return errors.New("E204").
			WithDetailf("zone %q has unknown policy %d", r.ID, int(r.Policy))
	}
	if r.Policy == Multiple && !strings.HasSuffix(r.Field, "[]") {
		return errors.New("E204").
			WithDetailf("zone %q sends multiple files but field %q is not repeated", r.ID, r.Field).
			WithSuggestion(`Repeated fields end in "[]", for example "files[]"`)
	}
	return nil
}

// Pick applies the route's policy to a selection: every file for Multiple
// routes, only the first for Single routes. The input order is preserved.
func Pick[T any](r Route, files []T) []T {
	if len(files) == 0 {
		return nil
	}
	if r.Multiple() {
		return files
	}
	return files[:1]
}
