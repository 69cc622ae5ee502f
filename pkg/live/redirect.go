package live

import (
	"fmt"
	"net/url"

	"github.com/vango-dev/pdfdesk/pkg/controller"
)

// Redirector returns a navigator that resolves redirect targets against
// base before passing them to next. The document service reports download
// URLs relative to itself, while the page is served by pdfdesk.
//
// Only http and https targets are followed; anything else is dropped.
func Redirector(next controller.Navigator, base string) (controller.Navigator, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("live: redirect base: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("live: redirect base %q is not absolute", base)
	}
	return &redirector{next: next, base: u}, nil
}

type redirector struct {
	next controller.Navigator
	base *url.URL
}

func (r *redirector) Navigate(href string) {
	if target, ok := r.resolve(href); ok {
		r.next.Navigate(target)
	}
}

func (r *redirector) resolve(href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := r.base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}
