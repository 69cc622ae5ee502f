// Package middleware provides observability for pdfdesk submissions.
//
// This package includes:
//   - OpenTelemetry tracing middleware for the upload controller
//   - Prometheus metrics middleware and recorders for the live bridge
//
// # OpenTelemetry Middleware
//
// Every submission gets a client span carrying the zone, endpoint, file
// count, HTTP status and outcome:
//
//	c, err := controller.New(table,
//	    controller.WithMiddleware(middleware.OpenTelemetry()),
//	)
//
// The tracer comes from the global OpenTelemetry tracer provider. Configure
// it in main() before creating the controller.
//
// # Prometheus Metrics
//
// A Metrics value owns the pdfdesk collectors:
//   - pdfdesk_submissions_total: submissions by zone and result
//   - pdfdesk_submission_duration_seconds: submission duration histogram
//   - pdfdesk_submission_errors_total: failed submissions by error type
//   - pdfdesk_inflight_submissions: submissions waiting for the service
//   - pdfdesk_files_uploaded_total: files sent by zone
//   - pdfdesk_notifications_total: notifications shown by level
//   - pdfdesk_active_sessions: open live sessions
//   - pdfdesk_patches_sent_total: patches sent to browsers
//   - pdfdesk_websocket_errors_total: WebSocket errors by type
//
//	reg := prometheus.NewRegistry()
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//
//	c, err := controller.New(table, controller.WithMiddleware(m.Middleware()))
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package middleware
