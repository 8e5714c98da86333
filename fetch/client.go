package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/ardnew/rnprof/log"
	"github.com/ardnew/rnprof/pkg"
)

// ErrStatus is returned when the server answers with anything but 200 OK.
var ErrStatus = errors.New("unexpected HTTP status")

// Client downloads artifacts over HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     log.Logger
	onProgress func(written, total int64)
}

// Option configures a Client.
type Option func(Client) Client

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl Client) Client {
		if c != nil {
			cl.httpClient = c
		}

		return cl
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(agent string) Option {
	return func(cl Client) Client {
		cl.userAgent = agent

		return cl
	}
}

// WithLogger sets the logger used for transfer diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(cl Client) Client {
		cl.logger = logger

		return cl
	}
}

// WithProgress installs a callback invoked after every write with the bytes
// written so far and the expected total (-1 if unknown).
func WithProgress(fn func(written, total int64)) Option {
	return func(cl Client) Client {
		cl.onProgress = fn

		return cl
	}
}

// NewClient returns a Client with no request timeout.
func NewClient(opts ...Option) *Client {
	c := Client{
		httpClient: &http.Client{},
		userAgent:  pkg.Name + "/" + pkg.Version,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		c = opt(c)
	}

	return &c
}

// ProgressWriter wraps a writer to track how many bytes have passed through
// it.
type ProgressWriter struct {
	// Writer receives the data.
	Writer io.Writer

	// Total is the expected size, or -1 if unknown.
	Total int64

	// Written is the number of bytes written so far.
	Written int64

	// OnUpdate is called after each Write, if set.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)

	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}

	return n, err
}

// Download streams the body of url into destPath, creating or truncating it,
// and returns the number of bytes written.
//
// A partially written file is left in place on failure.
func (c *Client) Download(ctx context.Context, url, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", url, err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: get %s: %s", ErrStatus, url, resp.Status)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}

	pw := &ProgressWriter{
		Writer:   file,
		Total:    resp.ContentLength,
		OnUpdate: c.onProgress,
	}

	_, err = io.Copy(pw, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return pw.Written, fmt.Errorf("write %s: %w", destPath, err)
	}

	c.logger.DebugContext(ctx, "downloaded",
		slog.String("url", url),
		slog.String("file", destPath),
		slog.String("size", humanize.Bytes(uint64(pw.Written))),
	)

	return pw.Written, nil
}

// LogProgress returns a progress callback that traces transfer progress
// through logger each time another step bytes have been written.
func LogProgress(ctx context.Context, logger log.Logger, name string, step int64) func(written, total int64) {
	next := step

	return func(written, total int64) {
		if written < next && written != total {
			return
		}

		for next <= written {
			next += step
		}

		attrs := []slog.Attr{
			slog.String("artifact", name),
			slog.String("written", humanize.Bytes(uint64(written))),
		}
		if total >= 0 {
			attrs = append(attrs, slog.String("total", humanize.Bytes(uint64(total))))
		}

		logger.TraceContext(ctx, "download progress", attrs...)
	}
}
