package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/pdfdesk/internal/config"
	"github.com/vango-dev/pdfdesk/pkg/artifact"
	"github.com/vango-dev/pdfdesk/pkg/controller"
	"github.com/vango-dev/pdfdesk/pkg/live"
	"github.com/vango-dev/pdfdesk/pkg/middleware"
	"github.com/vango-dev/pdfdesk/pkg/toast"
	"github.com/vango-dev/pdfdesk/pkg/upload"
	"github.com/vango-dev/pdfdesk/web"
)

// ArtifactPath is where the disk driver serves stored documents.
const ArtifactPath = "/_pdfdesk/artifacts/"

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port        int
		host        string
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload page",
		Long: `Serve the drag-and-drop upload page.

Files dropped on a zone are staged on this server and then
posted to the document service. Returned documents are stored
with the configured storage driver and downloaded by the browser.

Endpoints:
  /                 upload page
  /_pdfdesk/ws      live connection
  /_pdfdesk/stage   file staging
  /metrics          Prometheus metrics
  /healthz          health check

Examples:
  pdfdesk serve
  pdfdesk serve --port=9000 --open
  pdfdesk serve --base-url=http://pdf.internal:5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(os.Stderr, cfg.Log.Level, true)
			return runServe(ctx, cfg, logger, openBrowser)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from pdfdesk.yaml)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from pdfdesk.yaml)")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")

	return cmd
}

// server is the assembled web front end.
type server struct {
	handler  http.Handler
	hub      *live.Hub
	staging  *upload.DiskStore
	disk     *artifact.DiskStore
	registry *prometheus.Registry
}

func newServer(cfg *config.Config, logger *slog.Logger) (*server, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}

	staging, err := upload.NewDiskStore(cfg.Staging.Dir, cfg.Staging.MaxFileSize)
	if err != nil {
		return nil, err
	}

	s := &server{staging: staging, registry: prometheus.NewRegistry()}

	var store artifact.Store
	switch cfg.Storage.Driver {
	case config.DriverS3:
		store = s3Store(cfg)
	default:
		if s.disk, err = artifact.NewDiskStore(cfg.Storage.Dir, ArtifactPath); err != nil {
			return nil, err
		}
		store = s.disk
	}

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(middleware.WithRegistry(s.registry))
	client := middleware.InjectTraceContext(&http.Client{})

	build := func(p live.Page) (*controller.Controller, error) {
		nav, err := live.Redirector(p.Document, cfg.Service.BaseURL)
		if err != nil {
			return nil, err
		}
		return controller.New(table,
			controller.WithBaseURL(cfg.Service.BaseURL),
			controller.WithHTTPClient(client),
			controller.WithNotifier(p.Toast),
			controller.WithDownloader(controller.StoreDownloader(store, p.Document)),
			controller.WithNavigator(nav),
			controller.WithLogger(logger),
			controller.WithMessages(cfg.ControllerMessages()),
			controller.WithExclusive(cfg.Service.Exclusive),
			controller.WithTimeout(cfg.Service.Timeout),
			controller.WithMiddleware(metrics.Middleware(), middleware.OpenTelemetry()),
		)
	}

	s.hub = live.NewHub(staging, build,
		live.WithLogger(logger),
		live.WithRecorder(metrics),
		live.WithToastOptions(
			toast.WithDuration(cfg.Toast.Duration),
			toast.WithHook(metrics.RecordNotification),
		),
	)

	page, err := web.NewPage(table, web.PageOptions{})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Method(http.MethodGet, "/", page)
	r.Method(http.MethodHead, "/", page)
	r.Handle(web.DefaultStaticPrefix+"*", http.StripPrefix(web.DefaultStaticPrefix, web.Static()))
	r.Method(http.MethodPost, web.DefaultStagePath, upload.HandlerWithConfig(staging, &upload.Config{
		MaxFileSize: cfg.Staging.MaxFileSize,
		MaxFiles:    cfg.Staging.MaxFiles,
		TempExpiry:  cfg.Staging.Expiry,
	}))
	r.Handle(web.DefaultSocketPath, s.hub)
	if s.disk != nil {
		r.Get(ArtifactPath+"{id}", func(w http.ResponseWriter, r *http.Request) {
			s.disk.ServeArtifact(w, r, chi.URLParam(r, "id"))
		})
	}
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})

	s.handler = r
	return s, nil
}

// requestLogger logs every request except the live connection, which stays
// open for the life of the page.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == web.DefaultSocketPath {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, openBrowser bool) error {
	s, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	go s.staging.Run(ctx, time.Minute, cfg.Staging.Expiry)
	if s.disk != nil && cfg.Storage.MaxAge > 0 {
		go cleanupArtifacts(ctx, s.disk, cfg.Storage.MaxAge, logger)
	}

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	url := "http://" + cfg.Address()
	success("Serving %s", url)
	info("Document service: %s", cfg.Service.BaseURL)
	if cfg.Storage.Driver == config.DriverS3 {
		info("Storage: s3://%s/%s", cfg.Storage.Bucket, cfg.Storage.Prefix)
	} else {
		info("Storage: %s", cfg.Storage.Dir)
	}
	if openBrowser {
		go openURL(url)
	}

	select {
	case err := <-errCh:
		s.hub.Close()
		if !stderrors.Is(err, http.ErrServerClosed) {
			errorMsg("Server stopped: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Println("\n\n  Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	s.hub.Close()
	if err != nil {
		warn("Shutdown: %v", err)
		return err
	}
	return nil
}

func cleanupArtifacts(ctx context.Context, store *artifact.DiskStore, maxAge time.Duration, logger *slog.Logger) {
	interval := maxAge / 2
	if interval > time.Hour {
		interval = time.Hour
	}
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(maxAge); err != nil {
				logger.Warn("artifact cleanup failed", "error", err)
			}
		}
	}
}
