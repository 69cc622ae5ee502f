package zone_test

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/pdfdesk/internal/errors"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

func TestDefaultTable(t *testing.T) {
	table := zone.Default()

	tests := []struct {
		id       zone.ID
		endpoint string
		field    string
		policy   zone.Policy
	}{
		{zone.ConvertToPDF, "/convert-to-pdf", "file", zone.Single},
		{zone.ConvertFromPDF, "/convert-from-pdf", "file", zone.Single},
		{zone.Merge, "/merge", "files[]", zone.Multiple},
		{zone.Split, "/split", "file", zone.Single},
		{zone.Edit, "/edit", "file", zone.Single},
		{zone.Sign, "/sign", "file", zone.Single},
	}

	if table.Len() != len(tests) {
		t.Fatalf("Len() = %d, want %d", table.Len(), len(tests))
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			r, err := table.Lookup(tt.id)
			if err != nil {
				t.Fatalf("Lookup(%q): %v", tt.id, err)
			}
			if r.Endpoint != tt.endpoint {
				t.Errorf("Endpoint = %q, want %q", r.Endpoint, tt.endpoint)
			}
			if r.Field != tt.field {
				t.Errorf("Field = %q, want %q", r.Field, tt.field)
			}
			if r.Policy != tt.policy {
				t.Errorf("Policy = %v, want %v", r.Policy, tt.policy)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := zone.Default().Lookup("invoiceArea")
	if err == nil {
		t.Fatal("expected error for unknown zone")
	}
	if !stderrors.Is(err, zone.ErrUnknownZone) {
		t.Errorf("error %v does not wrap ErrUnknownZone", err)
	}
	if !errors.HasCode(err, "E201") {
		t.Errorf("error %v is not E201", err)
	}
}

func TestTableOrder(t *testing.T) {
	table := zone.MustTable(
		zone.Route{ID: "b", Endpoint: "/b", Field: "file"},
		zone.Route{ID: "a", Endpoint: "/a", Field: "file"},
	)

	if diff := cmp.Diff([]zone.ID{"b", "a"}, table.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}

	ids := table.IDs()
	ids[0] = "mutated"
	if table.IDs()[0] != "b" {
		t.Error("IDs() must return a copy")
	}
}

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name   string
		routes []zone.Route
		code   string
	}{
		{
			name: "empty",
			code: "E200",
		},
		{
			name:   "missing id",
			routes: []zone.Route{{Endpoint: "/x", Field: "file"}},
			code:   "E205",
		},
		{
			name:   "relative endpoint",
			routes: []zone.Route{{ID: "x", Endpoint: "x", Field: "file"}},
			code:   "E203",
		},
		{
			name:   "empty endpoint",
			routes: []zone.Route{{ID: "x", Field: "file"}},
			code:   "E203",
		},
		{
			name:   "missing field",
			routes: []zone.Route{{ID: "x", Endpoint: "/x"}},
			code:   "E204",
		},
		{
			name:   "multiple without repeated field",
			routes: []zone.Route{{ID: "x", Endpoint: "/x", Field: "files", Policy: zone.Multiple}},
			code:   "E204",
		},
		{
			name:   "unknown policy",
			routes: []zone.Route{{ID: "x", Endpoint: "/x", Field: "file", Policy: zone.Policy(7)}},
			code:   "E204",
		},
		{
			name: "duplicate",
			routes: []zone.Route{
				{ID: "x", Endpoint: "/x", Field: "file"},
				{ID: "x", Endpoint: "/y", Field: "file"},
			},
			code: "E202",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := zone.NewTable(tt.routes...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.HasCode(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestMustTablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustTable should panic on an invalid table")
		}
	}()
	zone.MustTable()
}

func TestPick(t *testing.T) {
	files := []string{"a.pdf", "b.pdf", "c.pdf"}
	table := zone.Default()

	merge, _ := table.Lookup(zone.Merge)
	if diff := cmp.Diff(files, zone.Pick(merge, files)); diff != "" {
		t.Errorf("Pick(merge) mismatch (-want +got):\n%s", diff)
	}

	for _, id := range []zone.ID{zone.ConvertToPDF, zone.ConvertFromPDF, zone.Split, zone.Edit, zone.Sign} {
		r, _ := table.Lookup(id)
		if diff := cmp.Diff([]string{"a.pdf"}, zone.Pick(r, files)); diff != "" {
			t.Errorf("Pick(%s) mismatch (-want +got):\n%s", id, diff)
		}
	}

	if got := zone.Pick(merge, []string(nil)); got != nil {
		t.Errorf("Pick(empty) = %v, want nil", got)
	}
}

func TestPolicyString(t *testing.T) {
	if zone.Single.String() != "single" || zone.Multiple.String() != "multiple" {
		t.Errorf("unexpected policy names %q %q", zone.Single, zone.Multiple)
	}
	if zone.Policy(9).String() != "unknown" {
		t.Errorf("Policy(9).String() = %q", zone.Policy(9))
	}
}
