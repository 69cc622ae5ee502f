package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E121",
			wantMsg: "Invalid document service URL",
			wantCat: CategoryConfig,
		},
		{
			name:    "zone error",
			code:    "E201",
			wantMsg: "Unknown upload zone",
			wantCat: CategoryZone,
		},
		{
			name:    "transport error",
			code:    "E304",
			wantMsg: "Document service unreachable",
			wantCat: CategoryTransport,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "a.pdf")
	if err.Message != `file "a.pdf" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
	if err.Error() != `file "a.pdf" not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDeskError_Error(t *testing.T) {
	err := New("E201").WithDetail(`zone "x" is not in the endpoint table`)
	want := `E201: Unknown upload zone: zone "x" is not in the endpoint table`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E304").Wrap(io.ErrUnexpectedEOF)
	if got := wrapped.Error(); got != "E304: Document service unreachable: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
}

func TestDeskError_Unwrap(t *testing.T) {
	err := New("E302").Wrap(io.EOF)
	if !stderrors.Is(err, io.EOF) {
		t.Error("errors.Is should see the wrapped error")
	}

	outer := fmt.Errorf("submit: %w", err)
	var de *DeskError
	if !stderrors.As(outer, &de) || de.Code != "E302" {
		t.Errorf("errors.As did not find E302 in %v", outer)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Error("FromError(nil) should be nil")
	}

	plain := FromError(io.EOF, "E120")
	if plain.Code != "E120" || !stderrors.Is(plain, io.EOF) {
		t.Errorf("FromError(plain) = %+v", plain)
	}

	existing := New("E203")
	if got := FromError(fmt.Errorf("ctx: %w", existing), "E120"); got != existing {
		t.Errorf("FromError should return the existing DeskError, got %v", got)
	}
}

func TestHasCode(t *testing.T) {
	inner := New("E302").Wrap(io.EOF)
	outer := New("E303").Wrap(fmt.Errorf("put: %w", inner))

	if !HasCode(outer, "E303") {
		t.Error("HasCode(E303) = false")
	}
	if !HasCode(outer, "E302") {
		t.Error("HasCode should follow wrapped DeskErrors")
	}
	if HasCode(outer, "E201") {
		t.Error("HasCode(E201) = true")
	}
	if HasCode(io.EOF, "E302") {
		t.Error("HasCode on a plain error = true")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E201").
		WithDetail(`zone "invoiceArea" is not in the endpoint table`).
		WithSuggestion("Add the zone under zones: in pdfdesk.yaml")

	out := err.Format()
	for _, want := range []string{
		"ERROR E201: Unknown upload zone",
		`zone "invoiceArea" is not in the endpoint table`,
		"Hint: Add the zone under zones: in pdfdesk.yaml",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() contains ANSI codes with colors disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	got := New("E122").FormatCompact()
	want := "E122: Invalid port (Port must be between 0 and 65535.)"
	if got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E305").Wrap(io.EOF)

	var got map[string]string
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &got); jerr != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v", jerr)
	}
	want := map[string]string{
		"code":     "E305",
		"category": "upload",
		"message":  "Staged file not found",
		"detail":   "The staged upload expired or was already claimed.",
		"cause":    "EOF",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four five", 9)
	want := []string{"one two", "three", "four five"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrapText mismatch (-want +got):\n%s", diff)
	}
	if wrapText("   ", 10) != nil {
		t.Error("wrapText of blank text should be nil")
	}
}
