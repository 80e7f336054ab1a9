package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func pipeDial(ctx context.Context, network, addr string) (net.Conn, error) {
	client, server := net.Pipe()
	go io.Copy(io.Discard, server)
	return client, nil
}

func TestConnLimiter_WaitsForClose(t *testing.T) {
	var idleCloses int32
	limiter := newConnLimiter(pipeDial, 1, func() { atomic.AddInt32(&idleCloses, 1) })

	first, err := limiter.DialContext(context.Background(), "tcp", "a:80")
	if err != nil {
		t.Fatalf("first dial: %v", err)
	}

	done := make(chan net.Conn, 1)
	go func() {
		conn, err := limiter.DialContext(context.Background(), "tcp", "b:80")
		if err != nil {
			t.Errorf("second dial: %v", err)
		}
		done <- conn
	}()

	select {
	case <-done:
		t.Fatal("second dial did not wait for a free slot")
	case <-time.After(150 * time.Millisecond):
	}
	if atomic.LoadInt32(&idleCloses) == 0 {
		t.Error("idle connections not closed while waiting")
	}

	first.Close()
	first.Close() // a second Close must not free another slot

	select {
	case conn := <-done:
		if conn == nil {
			t.FailNow()
		}
		conn.Close()
	case <-time.After(time.Second):
		t.Fatal("second dial still blocked after Close")
	}

	if !limiter.sem.TryAcquire(1) {
		t.Fatal("slot not released")
	}
	if limiter.sem.TryAcquire(1) {
		t.Error("double Close released two slots")
	}
}

func TestConnLimiter_DialErrorReleasesSlot(t *testing.T) {
	failing := func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}
	limiter := newConnLimiter(failing, 1, nil)

	for i := 0; i < 3; i++ {
		if _, err := limiter.DialContext(context.Background(), "tcp", "a:80"); err == nil {
			t.Fatal("expected dial error")
		}
	}
	if !limiter.sem.TryAcquire(1) {
		t.Error("failed dials leaked a slot")
	}
}

func TestConnLimiter_ContextCancelled(t *testing.T) {
	limiter := newConnLimiter(pipeDial, 1, nil)
	conn, err := limiter.DialContext(context.Background(), "tcp", "a:80")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := limiter.DialContext(ctx, "tcp", "b:80"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("DialContext() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestClient_MaxConnsAcrossHosts(t *testing.T) {
	var active, peak int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		io.WriteString(w, strings.Repeat("a", 2*ChunkSize))
	})

	var servers []*httptest.Server
	for i := 0; i < 3; i++ {
		srv := httptest.NewServer(handler)
		defer srv.Close()
		servers = append(servers, srv)
	}

	opts := DefaultOptions()
	opts.MaxConns = 2
	opts.MaxConnsPerHost = 2
	opts.TotalTimeout = 10 * time.Second
	client := NewClient(opts)

	dir := t.TempDir()
	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv := servers[i%len(servers)]
			dest := filepath.Join(dir, fmt.Sprintf("%03d.mp3", i))
			errs <- client.DownloadFile(context.Background(), srv.URL, dest, nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("DownloadFile() error = %v", err)
		}
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("peak concurrent requests = %d, want <= 2", p)
	}
}
