package http

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	ioutils "github.com/handiism/quran-downloader/internal/io"
)

func newTestClient() *Client {
	opts := DefaultOptions()
	opts.ReadTimeout = 2 * time.Second
	opts.TotalTimeout = 5 * time.Second
	return NewClient(opts)
}

func TestClient_DownloadFile(t *testing.T) {
	payload := strings.Repeat("recitation", 500) // several chunks
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "QuranDownloader" {
			t.Errorf("User-Agent = %q", ua)
		}
		io.WriteString(w, payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "Reciter", "Al-Fatiha.mp3")

	var lastWritten int64
	err := newTestClient().DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		lastWritten = written
	})
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != payload {
		t.Errorf("downloaded %d bytes, want %d", len(data), len(payload))
	}
	if lastWritten != int64(len(payload)) {
		t.Errorf("progress reported %d bytes, want %d", lastWritten, len(payload))
	}
	if _, err := os.Stat(ioutils.PartPath(dest)); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
}

func TestClient_DownloadFileStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "x.mp3")
	err := newTestClient().DownloadFile(context.Background(), srv.URL, dest, nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("DownloadFile() error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("Code = %d, want 404", statusErr.Code)
	}
	if !IsRetryable(err) {
		t.Error("status errors should be retryable")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination created for failed download")
	}
}

func TestClient_DownloadFileReadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		io.WriteString(w, "partial")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.ReadTimeout = 100 * time.Millisecond
	client := NewClient(opts)

	dest := filepath.Join(t.TempDir(), "x.mp3")
	err := client.DownloadFile(context.Background(), srv.URL, dest, nil)
	if err == nil {
		t.Fatal("expected read timeout")
	}
	if !IsRetryable(err) {
		t.Errorf("read timeout %v should be retryable", err)
	}
	if _, err := os.Stat(ioutils.PartPath(dest)); !os.IsNotExist(err) {
		t.Error("partial file left behind after timeout")
	}
}

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"name":"Al-Fatiha","number":1}`)
	}))
	defer srv.Close()

	var got struct {
		Name   string `json:"name"`
		Number int    `json:"number"`
	}
	if err := newTestClient().GetJSON(context.Background(), srv.URL, &got); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if got.Name != "Al-Fatiha" || got.Number != 1 {
		t.Errorf("GetJSON() = %+v", got)
	}
}

func TestClient_BandwidthLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("x", 4*ChunkSize))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.BandwidthLimit = 2 * ChunkSize
	client := NewClient(opts)

	start := time.Now()
	dest := filepath.Join(t.TempDir(), "x.mp3")
	if err := client.DownloadFile(context.Background(), srv.URL, dest, nil); err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	// burst covers the first 2 KiB, the remaining 2 KiB take about a second
	if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
		t.Errorf("download finished in %v, limiter not applied", elapsed)
	}
}

func TestClient_BandwidthLimitDoesNotTripReadTimeout(t *testing.T) {
	payload := strings.Repeat("x", 8*ChunkSize)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, payload)
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.ReadTimeout = 100 * time.Millisecond
	opts.BandwidthLimit = 4 * ChunkSize
	client := NewClient(opts)

	// The body arrives at once; the limiter then spreads the second half
	// over about a second, far longer than the read timeout.
	dest := filepath.Join(t.TempDir(), "x.mp3")
	if err := client.DownloadFile(context.Background(), srv.URL, dest, nil); err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil || len(data) != len(payload) {
		t.Errorf("downloaded %d bytes (%v), want %d", len(data), err, len(payload))
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status", &StatusError{Code: 503, Status: "503 Service Unavailable"}, true},
		{"wrapped status", fmt.Errorf("attempt: %w", &StatusError{Code: 500}), true},
		{"read timeout", errReadTimeout, true},
		{"connection refused", &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}}, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"dns", &url.Error{Op: "Get", URL: "http://x", Err: &net.DNSError{Err: "no such host", Name: "x"}}, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"deadline", context.DeadlineExceeded, true},
		{"unknown authority", &url.Error{Op: "Get", URL: "https://x", Err: x509.UnknownAuthorityError{}}, true},
		{"cancelled", context.Canceled, false},
		{"cancelled in url error", &url.Error{Op: "Get", URL: "http://x", Err: context.Canceled}, false},
		{"bad scheme", &url.Error{Op: "Get", URL: "ftp://x", Err: errors.New("unsupported protocol scheme")}, false},
		{"file system", &os.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
