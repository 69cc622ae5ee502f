package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/pdfdesk/internal/config"
	"github.com/vango-dev/pdfdesk/internal/errors"
	"github.com/vango-dev/pdfdesk/pkg/controller"
	"github.com/vango-dev/pdfdesk/pkg/live"
	"github.com/vango-dev/pdfdesk/pkg/middleware"
	"github.com/vango-dev/pdfdesk/pkg/toast"
	"github.com/vango-dev/pdfdesk/pkg/ui"
	"github.com/vango-dev/pdfdesk/pkg/upload"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

// Replaced in tests.
var (
	askOne     = survey.AskOne
	isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	browse     = openURL
)

type uploadOptions struct {
	zone    string
	out     string
	follow  bool
	timeout time.Duration
}

// submissionError reports a failed submission whose notification was
// already printed.
type submissionError struct {
	result controller.Result
}

func (e *submissionError) Error() string {
	return errors.New("E401").WithDetail(e.result.Message).Error()
}

func (e *submissionError) Unwrap() error { return e.result.Err }

func uploadCmd(flags *globalFlags) *cobra.Command {
	opts := uploadOptions{}

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Submit files to an upload zone",
		Long: `Submit files to the service endpoint of an upload zone.

Zones that take one file send only the first one. Returned
documents are saved to the download directory. Redirects are
printed, and opened in the browser with --follow.

Without --zone, pdfdesk asks which zone to use.

Examples:
  pdfdesk upload --zone mergePdfArea a.pdf b.pdf
  pdfdesk upload --zone convertToPdfArea report.docx --out ./pdf
  pdfdesk upload --zone editPdfArea draft.pdf --follow`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, false)
			_, err = runUpload(ctx, cfg, opts, args, cmd.OutOrStdout(), logger)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.zone, "zone", "z", "", "Zone to submit to (see `pdfdesk zones`)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Download directory (default from pdfdesk.yaml)")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Open redirects in the browser")
	cmd.Flags().DurationVarP(&opts.timeout, "timeout", "t", 0, "Submission timeout (default from pdfdesk.yaml)")

	return cmd
}

// runUpload submits the files at paths to one zone and prints what happened
// to out.
func runUpload(ctx context.Context, cfg *config.Config, opts uploadOptions, paths []string, out io.Writer, logger *slog.Logger) (controller.Result, error) {
	table, err := cfg.Table()
	if err != nil {
		return controller.Result{}, err
	}

	id := zone.ID(opts.zone)
	if id == "" {
		if id, err = pickZone(table); err != nil {
			return controller.Result{}, err
		}
	}
	route, err := table.Lookup(id)
	if err != nil {
		return controller.Result{}, err
	}

	files, err := openFiles(paths)
	if err != nil {
		return controller.Result{}, err
	}

	if opts.out != "" {
		cfg.Storage.Dir = opts.out
	}
	store, err := newDownloadStore(cfg)
	if err != nil {
		closeAll(files)
		return controller.Result{}, err
	}

	doc := ui.NewDocument(&terminal{out: out, label: string(id) + ui.LabelSuffix, idle: route.Label})
	notifier := toast.New(doc,
		toast.WithDuration(cfg.Toast.Duration),
		toast.WithHook(func(level toast.Type, message string) { printNotification(out, level, message) }),
	)
	defer notifier.Close()

	nav, err := live.Redirector(&browserNavigator{out: out, follow: opts.follow}, cfg.Service.BaseURL)
	if err != nil {
		closeAll(files)
		return controller.Result{}, err
	}

	timeout := cfg.Service.Timeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	ctrl, err := controller.New(table,
		controller.WithBaseURL(cfg.Service.BaseURL),
		controller.WithHTTPClient(middleware.InjectTraceContext(&http.Client{})),
		controller.WithNotifier(notifier),
		controller.WithDownloader(controller.StoreDownloader(store, nil)),
		controller.WithNavigator(nav),
		controller.WithLogger(logger),
		controller.WithMessages(cfg.ControllerMessages()),
		controller.WithTimeout(timeout),
		controller.WithMiddleware(middleware.OpenTelemetry()),
	)
	if err != nil {
		closeAll(files)
		return controller.Result{}, err
	}

	res := ctrl.Submit(ctx, ui.NewZone(doc, string(id), route.Label), files)
	if res.Artifact != nil {
		fmt.Fprintf(out, "  Saved to %s\n", res.Artifact.Location)
	}
	if !res.OK() {
		return res, &submissionError{result: res}
	}
	return res, nil
}

// pickZone asks for a zone when stdin is a terminal.
func pickZone(table *zone.Table) (zone.ID, error) {
	if !isTerminal() {
		return "", errors.New("E400")
	}

	routes := table.Routes()
	options := make([]string, len(routes))
	for i, r := range routes {
		title := r.Title
		if title == "" {
			title = string(r.ID)
		}
		options[i] = fmt.Sprintf("%s (%s)", title, r.ID)
	}

	var choice int
	prompt := &survey.Select{
		Message:  "Upload zone:",
		Options:  options,
		Help:     "The service endpoint the files are posted to",
		PageSize: len(options),
	}
	if err := askOne(prompt, &choice); err != nil {
		return "", err
	}
	return routes[choice].ID, nil
}

func openFiles(paths []string) ([]*upload.File, error) {
	files := make([]*upload.File, 0, len(paths))
	for _, p := range paths {
		f, err := upload.FromPath(p)
		if err != nil {
			closeAll(files)
			return nil, errors.New("E302").WithDetail(p).Wrap(err)
		}
		files = append(files, f)
	}
	return files, nil
}

func closeAll(files []*upload.File) {
	for _, f := range files {
		f.Close()
	}
}

func printNotification(w io.Writer, level toast.Type, message string) {
	switch level {
	case toast.TypeSuccess:
		fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", message)
	case toast.TypeWarning:
		fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", message)
	case toast.TypeError:
		fmt.Fprintf(w, "\033[31m✗\033[0m %s\n", message)
	default:
		fmt.Fprintf(w, "  %s\n", message)
	}
}

// terminal renders the zone label of an upload as progress lines.
// Everything else on the page has no terminal form.
type terminal struct {
	out   io.Writer
	label string
	idle  string
}

func (t *terminal) Render(p ui.Patch) {
	if p.Op == ui.OpText && p.Target == t.label && p.Value != t.idle {
		fmt.Fprintf(t.out, "  %s\n", p.Value)
	}
}

// browserNavigator prints redirect targets and optionally opens them.
type browserNavigator struct {
	out    io.Writer
	follow bool
}

func (n *browserNavigator) Navigate(href string) {
	fmt.Fprintf(n.out, "  Continue at %s\n", href)
	if n.follow {
		browse(href)
	}
}
