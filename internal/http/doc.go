// Package http provides the HTTP client used for catalog queries and audio
// downloads.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Connect, read-idle and total timeouts
//   - Connection-pool limits (total and per host)
//   - Streaming downloads in fixed-size chunks with progress tracking
//   - An optional bandwidth cap shared by all downloads
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	// Query JSON
//	var resp dto.RecitersResponse
//	err := client.GetJSON(ctx, "https://mp3quran.net/api/v3/reciters?language=eng", &resp)
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, mp3URL, "/path/to/file.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Errors
//
// Non-2xx responses are returned as *StatusError. IsRetryable tells transient
// transport failures (timeouts, connection and TLS errors, bad statuses) apart
// from everything else.
package http
