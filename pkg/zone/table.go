package zone

import (
	"fmt"

	"github.com/vango-dev/pdfdesk/internal/errors"
)

// Table is the read-only endpoint table. Build it with NewTable.
type Table struct {
	routes map[ID]Route
	order  []ID
}

// NewTable validates the routes and builds a table. Routes keep the order
// they are given in.
func NewTable(routes ...Route) (*Table, error) {
	if len(routes) == 0 {
		return nil, errors.New("E200")
	}

	t := &Table{
		routes: make(map[ID]Route, len(routes)),
		order:  make([]ID, 0, len(routes)),
	}
	for _, r := range routes {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.routes[r.ID]; dup {
			return nil, errors.New("E202").
				WithDetailf("zone %q is listed more than once", r.ID)
		}
		t.routes[r.ID] = r
		t.order = append(t.order, r.ID)
	}
	return t, nil
}

// MustTable is like NewTable but panics on an invalid table.
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(fmt.Sprintf("zone: %v", err))
	}
	return t
}

// DefaultRoutes returns the built-in routes.
func DefaultRoutes() []Route {
	return []Route{
		{
			ID:       ConvertToPDF,
			Endpoint: "/convert-to-pdf",
			Field:    "file",
			Policy:   Single,
			Title:    "Convert to PDF",
			Label:    "Drop an image or document here, or click to browse",
			Help:     "Images (<strong>PNG</strong>, <strong>JPG</strong>) become a PDF.",
			Accept:   ".png,.jpg,.jpeg,.doc,.docx,.txt",
		},
		{
			ID:       ConvertFromPDF,
			Endpoint: "/convert-from-pdf",
			Field:    "file",
			Policy:   Single,
			Title:    "Convert from PDF",
			Label:    "Drop a PDF here, or click to browse",
			Help:     "Turns a PDF into an editable document.",
			Accept:   ".pdf",
		},
		{
			ID:       Merge,
			Endpoint: "/merge",
			Field:    "files[]",
			Policy:   Multiple,
			Title:    "Merge PDFs",
			Label:    "Drop PDFs here, or click to browse",
			Help:     "Files are merged <em>in the order you select them</em>.",
			Accept:   ".pdf",
		},
		{
			ID:       Split,
			Endpoint: "/split",
			Field:    "file",
			Policy:   Single,
			Title:    "Split PDF",
			Label:    "Drop a PDF here, or click to browse",
			Help:     "Every page becomes its own PDF.",
			Accept:   ".pdf",
		},
		{
			ID:       Edit,
			Endpoint: "/edit",
			Field:    "file",
			Policy:   Single,
			Title:    "Edit PDF",
			Label:    "Drop a PDF here, or click to browse",
			Accept:   ".pdf",
		},
		{
			ID:       Sign,
			Endpoint: "/sign",
			Field:    "file",
			Policy:   Single,
			Title:    "Sign PDF",
			Label:    "Drop a PDF here, or click to browse",
			Accept:   ".pdf",
		},
	}
}

// Default returns a table of the built-in routes.
func Default() *Table {
	return MustTable(DefaultRoutes()...)
}

// Lookup returns the route for id. Unknown IDs return an E201 error that
// wraps ErrUnknownZone.
func (t *Table) Lookup(id ID) (Route, error) {
	r, ok := t.routes[id]
	if !ok {
		return Route{}, errors.New("E201").
			WithDetailf("zone %q is not in the endpoint table", id).
			Wrap(ErrUnknownZone)
	}
	return r, nil
}

// Has reports whether id is in the table.
func (t *Table) Has(id ID) bool {
	_, ok := t.routes[id]
	return ok
}

// Routes returns the routes in table order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.order))
	for i, id := range t.order {
		out[i] = t.routes[id]
	}
	return out
}

// IDs returns the zone IDs in table order.
func (t *Table) IDs() []ID {
	return append([]ID(nil), t.order...)
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.order)
}
