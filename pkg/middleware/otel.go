package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vango-dev/pdfdesk/pkg/controller"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for pdfdesk.
const defaultTracerName = "pdfdesk"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "pdfdesk").
	TracerName string

	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider

	// IncludeFilenames records the uploaded file names.
	// May contain sensitive information - disabled by default.
	IncludeFilenames bool

	// Filter determines which submissions to trace.
	// If nil, all submissions are traced.
	Filter func(s *controller.Submission) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(s *controller.Submission) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeFilenames enables recording file names on spans.
func WithIncludeFilenames(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeFilenames = include
	}
}

// WithSubmissionFilter sets a filter function for submissions.
func WithSubmissionFilter(filter func(s *controller.Submission) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(s *controller.Submission) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every submission.
//
// The span context is passed down the chain, so the document service
// request carries it when InjectTraceContext is installed on the client.
func OpenTelemetry(opts ...OTelOption) controller.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return controller.MiddlewareFunc(func(ctx context.Context, s *controller.Submission, next func(context.Context) error) error {
		if config.Filter != nil && !config.Filter(s) {
			return next(ctx)
		}

		attrs := []attribute.KeyValue{
			attribute.String("pdfdesk.zone", string(s.Route.ID)),
			attribute.String("pdfdesk.endpoint", s.Route.Endpoint),
			attribute.String("pdfdesk.field", s.Route.Field),
			attribute.Int("pdfdesk.file_count", len(s.Files)),
		}
		if config.IncludeFilenames {
			names := make([]string, 0, len(s.Files))
			for _, f := range s.Files {
				names = append(names, f.Filename)
			}
			attrs = append(attrs, attribute.StringSlice("pdfdesk.filenames", names))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(s)...)
		}

		spanCtx, span := tracer.Start(ctx,
			fmt.Sprintf("pdfdesk.submit %s", s.Route.ID),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next(spanCtx)

		span.SetAttributes(attribute.String("pdfdesk.result", s.Result.Kind.String()))
		if s.Result.Status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", s.Result.Status))
		}
		if s.Result.Artifact != nil {
			span.SetAttributes(attribute.String("pdfdesk.artifact", s.Result.Artifact.Name))
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

// InjectTraceContext wraps a client so outgoing requests carry the trace
// context of their request context in W3C traceparent headers.
func InjectTraceContext(client controller.Doer) controller.Doer {
	return doerFunc(func(req *http.Request) (*http.Response, error) {
		propagation.TraceContext{}.Inject(req.Context(), propagation.HeaderCarrier(req.Header))
		return client.Do(req)
	})
}

type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }
