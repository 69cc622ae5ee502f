// Package errors provides structured, actionable error messages for pdfdesk.
//
// Errors carry a stable code, a category, a short message and optionally a
// longer detail and a suggestion. The CLI prints them with Format; the
// server logs them with FormatCompact.
//
// # Error Codes
//
//   - E1xx: configuration (pdfdesk.yaml, flags)
//   - E2xx: zones and binding (endpoint table, unknown zone identifiers)
//   - E3xx: uploads (empty selections, storage, staging, transport)
//
// # Usage
//
//	err := errors.New("E201").
//	    WithDetail(`zone "invoiceArea" is not in the endpoint table`).
//	    WithSuggestion("Add the zone under zones: in pdfdesk.yaml")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E201: Unknown upload zone
//	//
//	//   zone "invoiceArea" is not in the endpoint table
//	//
//	//   Hint: Add the zone under zones: in pdfdesk.yaml
package errors
