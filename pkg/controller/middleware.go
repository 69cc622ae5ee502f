package controller

import (
	"context"

	"github.com/vango-dev/pdfdesk/pkg/upload"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

// Submission is one upload on its way through the middleware chain. Result
// is filled in when next returns.
type Submission struct {
	Route  zone.Route
	URL    string
	Files  []*upload.File
	Result Result
}

// Middleware wraps submissions.
type Middleware interface {
	Handle(ctx context.Context, s *Submission, next func(context.Context) error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx context.Context, s *Submission, next func(context.Context) error) error

// Handle calls f.
func (f MiddlewareFunc) Handle(ctx context.Context, s *Submission, next func(context.Context) error) error {
	return f(ctx, s, next)
}

// chain runs final inside mws, the first middleware outermost.
func chain(mws []Middleware, s *Submission, final func(context.Context, *Submission) error) func(context.Context) error {
	next := func(ctx context.Context) error {
		return final(ctx, s)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		mw, inner := mws[i], next
		next = func(ctx context.Context) error {
			return mw.Handle(ctx, s, inner)
		}
	}
	return next
}
