package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	deskerrors "github.com/vango-dev/pdfdesk/internal/errors"
	"github.com/vango-dev/pdfdesk/pkg/artifact"
	"github.com/vango-dev/pdfdesk/pkg/ui"
	"github.com/vango-dev/pdfdesk/pkg/upload"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

// maxJSONSize caps the JSON responses read from the document service.
const maxJSONSize = 1 << 20

// response is the JSON body the document service answers with. A non-2xx
// answer whose body is not JSON shows the HTTP error message with the
// status code instead of the decode error.
type response struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	DownloadURL string `json:"downloadUrl"`
}

// Submit uploads files for the zone shown by view and reports the outcome
// to the user. Submit takes ownership of files and closes them.
func (c *Controller) Submit(ctx context.Context, view *ui.Zone, files []*upload.File) (res Result) {
	id := zone.ID(view.ID)
	route, err := c.table.Lookup(id)
	if err != nil {
		closeFiles(files)
		return c.fail(Result{Zone: id}, err)
	}
	if len(files) == 0 {
		c.logger.Debug("nothing to submit", "zone", id)
		return Result{Kind: Rejected, Zone: id, Err: deskerrors.New("E300")}
	}

	var end func()
	if c.exclusive {
		var ok bool
		if end, ok = view.TryBegin(c.messages.Processing); !ok {
			closeFiles(files)
			c.notifier.Warning(c.messages.Busy)
			c.logger.Info("zone busy", "zone", id)
			return Result{Kind: Busy, Zone: id, Message: c.messages.Busy, Err: deskerrors.New("E301")}
		}
	} else {
		end = view.Begin(c.messages.Processing)
	}
	defer end()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	s := &Submission{
		Route: route,
		URL:   c.baseURL + route.Endpoint,
		Files: files,
	}
	s.Result.Zone = id

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = c.fail(Result{Zone: id}, fmt.Errorf("panic: %v", r))
		}
		c.logger.Info("submission finished",
			"zone", id,
			"endpoint", route.Endpoint,
			"files", len(files),
			"result", res.Kind.String(),
			"status", res.Status,
			"duration", time.Since(start),
		)
		if res.Err != nil && res.Kind == Failed {
			c.logger.Warn("submission failed", "zone", id, "error", res.Err)
		}
	}()

	err = chain(c.middleware, s, c.send)(ctx)
	if s.Result.Kind == Pending {
		// A middleware stopped the chain before the request went out.
		closeFiles(files)
		if err == nil {
			err = errors.New("submission was not sent")
		}
		s.Result = c.fail(Result{Zone: id}, err)
	}
	return s.Result
}

// send posts the submission and interprets the response.
func (c *Controller) send(ctx context.Context, s *Submission) error {
	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, pr)
	if err != nil {
		closeFiles(s.Files)
		pw.Close()
		s.Result = c.fail(s.Result, deskerrors.New("E304").Wrap(err))
		return s.Result.Err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/pdf, application/json")

	writeErr := make(chan error, 1)
	go func() {
		err := writeParts(mw, s.Route, s.Files)
		pw.CloseWithError(err)
		writeErr <- err
	}()

	resp, err := c.client.Do(req)
	if err != nil {
		pr.Close()
		if werr := <-writeErr; deskerrors.HasCode(werr, "E302") {
			s.Result = c.fail(s.Result, werr)
		} else {
			s.Result = c.fail(s.Result, deskerrors.New("E304").Wrap(err))
		}
		return s.Result.Err
	}
	defer resp.Body.Close()

	s.Result.Status = resp.StatusCode
	if strings.Contains(resp.Header.Get("Content-Type"), "application/pdf") {
		return c.download(ctx, s, resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf(c.messages.HTTPError, resp.StatusCode)
		var payload response
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONSize)).Decode(&payload); err == nil && payload.Error != "" {
			msg = payload.Error
		}
		c.notifier.Error(msg)
		s.Result.Kind = Failed
		s.Result.Message = msg
		s.Result.Err = &StatusError{Code: resp.StatusCode, Message: msg}
		return s.Result.Err
	}

	var payload *response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONSize)).Decode(&payload); err != nil {
		s.Result = c.fail(s.Result, deskerrors.New("E306").Wrap(err))
		return s.Result.Err
	}
	if payload == nil {
		// JSON null: nothing to report.
		s.Result.Kind = Completed
		return nil
	}
	if payload.Error != "" {
		c.notifier.Error(payload.Error)
		s.Result.Kind = Failed
		s.Result.Message = payload.Error
		s.Result.Err = &ServiceError{Status: resp.StatusCode, Message: payload.Error}
		return s.Result.Err
	}

	msg := payload.Message
	if msg == "" {
		msg = c.messages.Completed
	}
	c.notifier.Success(msg)
	s.Result.Kind = Completed
	s.Result.Message = msg
	if payload.DownloadURL != "" {
		c.navigator.Navigate(payload.DownloadURL)
		s.Result.Redirect = payload.DownloadURL
	}
	return nil
}

// download saves a document response. The body is never read as JSON.
func (c *Controller) download(ctx context.Context, s *Submission, resp *http.Response) error {
	name := FilenameFromDisposition(resp.Header.Get("Content-Disposition"))
	a, err := c.downloader.Download(ctx, name, resp.Header.Get("Content-Type"), resp.Body)
	if err != nil {
		s.Result = c.fail(s.Result, deskerrors.New("E303").WithDetail(name).Wrap(err))
		return s.Result.Err
	}
	c.notifier.Success(c.messages.Downloaded)
	s.Result.Kind = Downloaded
	s.Result.Message = c.messages.Downloaded
	s.Result.Artifact = &a
	return nil
}

// fail shows the prefixed cause of err and marks res failed.
func (c *Controller) fail(res Result, err error) Result {
	msg := c.messages.FailurePrefix + causeText(err)
	c.notifier.Error(msg)
	res.Kind = Failed
	res.Message = msg
	res.Err = err
	return res
}

// causeText is the text of the error a coded error wraps, or of err itself.
func causeText(err error) string {
	var de *deskerrors.DeskError
	if errors.As(err, &de) && de.Wrapped != nil {
		return causeText(de.Wrapped)
	}
	return err.Error()
}

// FilenameFromDisposition extracts the file name from a Content-Disposition
// header. It honors quoted and RFC 2231 encoded names, drops directories,
// and falls back to artifact.DefaultName.
func FilenameFromDisposition(cd string) string {
	if cd == "" {
		return artifact.DefaultName
	}
	if _, params, err := mime.ParseMediaType(cd); err == nil {
		if name := strings.Trim(params["filename"], `"'`); name != "" {
			return artifact.CleanName(name)
		}
	}
	if i := strings.Index(cd, "filename="); i >= 0 {
		v := cd[i+len("filename="):]
		if j := strings.IndexByte(v, ';'); j >= 0 {
			v = v[:j]
		}
		v = strings.Trim(strings.TrimSpace(v), `"'`)
		if v != "" {
			return artifact.CleanName(v)
		}
	}
	return artifact.DefaultName
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeParts writes the files the route's policy selects and closes every
// file, selected or not.
func writeParts(mw *multipart.Writer, route zone.Route, files []*upload.File) error {
	defer closeFiles(files)
	for _, f := range zone.Pick(route, files) {
		if err := writePart(mw, route.Field, f); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writePart(mw *multipart.Writer, field string, f *upload.File) error {
	rc, err := f.Open()
	if err != nil {
		return deskerrors.New("E302").WithDetail(f.Filename).Wrap(err)
	}
	defer rc.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Filename)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	src := &readTracker{r: rc}
	if _, err := io.Copy(w, src); err != nil {
		if src.err != nil {
			return deskerrors.New("E302").WithDetail(f.Filename).Wrap(src.err)
		}
		return err
	}
	return nil
}

// readTracker remembers read errors so they can be told apart from write
// errors after io.Copy.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

func closeFiles(files []*upload.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}
