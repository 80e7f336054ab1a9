package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	ioutils "github.com/handiism/quran-downloader/internal/io"
	"golang.org/x/time/rate"
)

// ChunkSize is the size of the buffer response bodies are streamed through.
const ChunkSize = 1024

// Options configures a Client.
type Options struct {
	UserAgent string

	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration

	// ReadTimeout bounds the wait for response headers and for each chunk
	// of the body.
	ReadTimeout time.Duration

	// TotalTimeout bounds a whole request, body included.
	TotalTimeout time.Duration

	// MaxConns caps open connections across all hosts, idle ones included.
	MaxConns        int
	MaxConnsPerHost int

	// BandwidthLimit caps the combined download rate in bytes per second.
	// Zero disables the cap.
	BandwidthLimit int64
}

// DefaultOptions returns the transport defaults: 30s connect and read
// timeouts, 300s total, at most 10 open connections and 5 per host.
func DefaultOptions() Options {
	return Options{
		UserAgent:       "QuranDownloader",
		ConnectTimeout:  30 * time.Second,
		ReadTimeout:     30 * time.Second,
		TotalTimeout:    300 * time.Second,
		MaxConns:        10,
		MaxConnsPerHost: 5,
	}
}

// Client wraps HTTP operations with the downloader's transport configuration.
//
// The pool limits are transport-level safeguards and apply to every request
// made through the client, independently of how many downloads a caller runs
// at once.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	readTimeout time.Duration
	limiter     *rate.Limiter
}

// NewClient creates a new HTTP client from opts.
func NewClient(opts Options) *Client {
	dialer := &net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		MaxIdleConns:          opts.MaxConns,
		MaxIdleConnsPerHost:   opts.MaxConnsPerHost,
		MaxConnsPerHost:       opts.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
	}

	if opts.MaxConns > 0 {
		transport.DialContext = newConnLimiter(dialer.DialContext, opts.MaxConns, transport.CloseIdleConnections).DialContext
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   opts.TotalTimeout,
		},
		userAgent:   opts.UserAgent,
		readTimeout: opts.ReadTimeout,
	}

	if opts.BandwidthLimit > 0 {
		burst := int(opts.BandwidthLimit)
		if burst < ChunkSize {
			burst = ChunkSize
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.BandwidthLimit), burst)
	}

	return c
}

// ProgressWriter wraps a writer to track download progress.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// GetJSON performs a GET request and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.do(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// DownloadFile downloads url to destPath with optional progress callback.
//
// The body is streamed in ChunkSize pieces into destPath+".part", parent
// directories are created as needed, and the partial file is renamed over
// destPath once the body has been read completely. On any error the partial
// file is removed and destPath is left untouched.
//
// Pass a nil onProgress to disable progress tracking.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	resp, err := c.do(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	file, err := ioutils.CreatePart(destPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			ioutils.Discard(destPath)
			return
		}
		err = ioutils.Commit(destPath)
	}()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	return c.stream(ctx, cancel, writer, resp.Body)
}

// stream copies body to w chunk by chunk. Each chunk must arrive within the
// read timeout, and the bandwidth limiter is consulted before each write.
// Time spent waiting on the limiter does not count against the read timeout.
func (c *Client) stream(ctx context.Context, cancel context.CancelCauseFunc, w io.Writer, body io.Reader) error {
	var idle *time.Timer
	if c.readTimeout > 0 {
		idle = time.AfterFunc(c.readTimeout, func() { cancel(errReadTimeout) })
		defer idle.Stop()
	}

	buf := make([]byte, ChunkSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if c.limiter != nil {
				if idle != nil {
					idle.Stop()
				}
				if err := c.limiter.WaitN(ctx, n); err != nil {
					return c.cause(ctx, err)
				}
			}
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if idle != nil {
			idle.Reset(c.readTimeout)
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return c.cause(ctx, rerr)
		}
	}
}

// cause replaces a cancellation error with the read timeout that triggered
// it, if any.
func (c *Client) cause(ctx context.Context, err error) error {
	if context.Cause(ctx) == errReadTimeout {
		return errReadTimeout
	}
	return err
}

// do sends a GET request and checks the status. The caller closes the body.
func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: url}
	}

	return resp, nil
}
