package controller

import (
	"fmt"

	"github.com/vango-dev/pdfdesk/pkg/artifact"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

// Kind is the outcome of a submission.
type Kind int

const (
	// Pending is the zero Kind, before the submission has an outcome.
	Pending Kind = iota
	// Rejected means there was nothing to send.
	Rejected
	// Busy means the exclusive guard turned the submission away.
	Busy
	// Downloaded means the service returned a document and it was saved.
	Downloaded
	// Completed means the service reported success in JSON.
	Completed
	// Failed means the user saw an error notification.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Rejected:
		return "rejected"
	case Busy:
		return "busy"
	case Downloaded:
		return "downloaded"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result describes one submission.
type Result struct {
	Kind Kind
	Zone zone.ID

	// Status is the HTTP status of the response, 0 without one.
	Status int

	// Message is the notification shown, if any.
	Message string

	// Artifact is the saved document for Downloaded results.
	Artifact *artifact.Artifact

	// Redirect is the downloadUrl the page was sent to.
	Redirect string

	// Err records why the submission failed.
	Err error
}

// OK reports whether the submission succeeded.
func (r Result) OK() bool {
	return r.Kind == Downloaded || r.Kind == Completed
}

// StatusError is a non-2xx response from the document service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// ServiceError is an error reported in a 2xx JSON response.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
