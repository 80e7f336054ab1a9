// Package download provides the batch download engine for fetching
// recitations of a reciter.
//
// # Structure
//
// The engine is split in three layers:
//
//  1. Transferer downloads one WorkItem: resolve the resource through the
//     catalog, stream it to disk, tag it. Transient failures are retried
//     with exponential backoff.
//  2. Coordinator runs a batch of items, at most K at a time behind a Gate,
//     and collects one Outcome per item into a BatchResult.
//  3. Manager builds both from config.Settings and exposes progress totals
//     to the shells.
//
// # Basic Usage
//
//	session := config.NewSession(settings.DownloadsPath)
//	manager := download.NewManager(settings, session, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	result := manager.DownloadAll(ctx, reciterID, nil)
//	for !result.OK() && askRetry() {
//	    result = manager.Download(ctx, result.Failed, nil)
//	}
//
// # Retry Logic
//
// Each attempt that fails with a transient transport error (timeouts,
// connection and DNS failures, TLS errors, truncated bodies, non-200
// statuses) is retried after settings.DownloadRetryCooldown *
// settings.DownloadRetryExponent^i seconds, up to
// settings.DownloadMaxAttempts attempts. Resolution, file system and tagging
// errors are not retried. Items that still fail end up in
// BatchResult.Failed; retrying them is a new batch.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// and, per finished item, through a ProgressReporter.
package download
