package download

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/handiism/quran-downloader/internal/audio"
	"github.com/handiism/quran-downloader/internal/catalog"
	"github.com/handiism/quran-downloader/internal/config"
	"github.com/handiism/quran-downloader/internal/http"
	ioutils "github.com/handiism/quran-downloader/internal/io"
	"github.com/handiism/quran-downloader/internal/model"
)

// Manager wires the catalog, the transport, the tagger and the coordinator
// together from settings, and keeps running totals for progress displays.
type Manager struct {
	settings    *config.Settings
	session     *config.Session
	httpClient  *http.Client
	catalog     *catalog.Catalog
	playlist    *audio.PlaylistCreator
	coordinator *Coordinator

	totalBytes      int64
	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32
	finishedFiles   int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, session *config.Session, onProgress func(ProgressEvent)) *Manager {
	client := http.NewClient(settings.ToHTTPOptions())
	cat := catalog.New(client, settings.ToCatalogOptions())

	var tagger Tagger
	if settings.ModifyTags {
		tagger = audio.NewTagger(audio.DefaultTagConfig())
	}

	m := &Manager{
		settings:   settings,
		session:    session,
		httpClient: client,
		catalog:    cat,
		playlist:   audio.NewPlaylistCreator(audio.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		onProgress: onProgress,
	}

	transferer := NewTransferer(cat, &countingFetcher{Fetcher: client, m: m}, tagger, retryPolicy(settings), onProgress)
	m.coordinator = NewCoordinator(transferer, onProgress)

	return m
}

func retryPolicy(s *config.Settings) RetryPolicy {
	p := DefaultRetryPolicy()
	if s.DownloadRetryCooldown >= 0 {
		p.Cooldown = time.Duration(s.DownloadRetryCooldown * float64(time.Second))
	}
	if s.DownloadRetryExponent > 0 {
		p.Exponent = s.DownloadRetryExponent
	}
	return p
}

// Initialize fetches the reciter listing.
func (m *Manager) Initialize(ctx context.Context) error {
	m.progress(ProgressEvent{Message: "Fetching reciters...", Level: LevelVerbose})

	if err := m.catalog.Initialize(ctx); err != nil {
		return err
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d reciters", len(m.catalog.Reciters())), Level: LevelInfo})
	return nil
}

// Catalog returns the catalog used for lookups and resolution.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// Session returns the session holding the download root.
func (m *Manager) Session() *config.Session {
	return m.session
}

// DownloadChapter downloads one chapter of a reciter.
func (m *Manager) DownloadChapter(ctx context.Context, reciterID, chapter int, reporter ProgressReporter) *BatchResult {
	return m.Download(ctx, []model.WorkItem{{Chapter: chapter, ReciterID: reciterID}}, reporter)
}

// DownloadAll downloads every chapter of a reciter.
func (m *Manager) DownloadAll(ctx context.Context, reciterID int, reporter ProgressReporter) *BatchResult {
	return m.Download(ctx, AllChapters(reciterID), reporter)
}

// Download runs items as one batch under the session's download root.
//
// Resubmit result.Failed to retry what failed.
func (m *Manager) Download(ctx context.Context, items []model.WorkItem, reporter ProgressReporter) *BatchResult {
	atomic.StoreInt64(&m.totalBytes, 0)
	atomic.StoreInt64(&m.receivedBytes, 0)
	atomic.StoreInt32(&m.totalFiles, int32(len(items)))
	atomic.StoreInt32(&m.downloadedFiles, 0)
	atomic.StoreInt32(&m.finishedFiles, 0)

	root := m.session.DownloadRoot()
	counting := ReporterFunc(func(o model.Outcome) {
		atomic.AddInt32(&m.finishedFiles, 1)
		if o.OK() {
			atomic.AddInt32(&m.downloadedFiles, 1)
		}
		if reporter != nil {
			reporter.Tick(o)
		}
	})

	result := m.coordinator.RunBatch(ctx, items, BatchOptions{
		Root:        root,
		Concurrency: m.settings.MaxConcurrentDownloads,
		MaxAttempts: m.settings.DownloadMaxAttempts,
		Reporter:    counting,
	})

	if m.settings.CreatePlaylist {
		m.writePlaylists(root, result)
	}

	if result.OK() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded %d file(s)", result.Succeeded), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished with %d of %d file(s) failed", len(result.Failed), result.Total), Level: LevelWarning})
	}

	return result
}

// FinishedFiles returns how many files of the current batch are done,
// failed ones included.
func (m *Manager) FinishedFiles() int32 {
	return atomic.LoadInt32(&m.finishedFiles)
}

// GetProgress returns current download progress. total only counts files
// whose size the server announced.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// writePlaylists writes one playlist per reciter listing every chapter
// present in the reciter folder after the batch.
func (m *Manager) writePlaylists(root string, result *BatchResult) {
	byReciter := make(map[int][]model.Chapter)
	for _, o := range result.Outcomes {
		if !o.OK() {
			continue
		}
		if ch, ok := catalog.Chapters().ByNumber(o.Item.Chapter); ok {
			byReciter[o.Item.ReciterID] = append(byReciter[o.Item.ReciterID], ch)
		}
	}

	for id, chapters := range byReciter {
		reciter, err := m.catalog.Reciter(id)
		if err != nil {
			continue
		}
		sort.Slice(chapters, func(i, j int) bool { return chapters[i].Number < chapters[j].Number })

		pl := audio.NewReciterPlaylist(root, reciter, chapters)
		path := PlaylistPath(root, reciter, m.playlist.Format())
		if err := ioutils.WriteFile(path, []byte(m.playlist.CreatePlaylist(pl))); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
			continue
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", reciter.Name), Level: LevelSuccess})
	}
}

// PlaylistPath returns <root>/<reciter>/<reciter><ext>.
func PlaylistPath(root string, reciter *model.Reciter, format audio.PlaylistFormat) string {
	return filepath.Join(reciter.Dir(root), ioutils.SanitizeFileName(reciter.Name)+format.Extension())
}

// AllChapters returns one work item per chapter for reciterID.
func AllChapters(reciterID int) []model.WorkItem {
	items := make([]model.WorkItem, 0, model.ChapterCount)
	for n := 1; n <= model.ChapterCount; n++ {
		items = append(items, model.WorkItem{Chapter: n, ReciterID: reciterID})
	}
	return items
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

// countingFetcher feeds byte counts of every download into the manager's
// totals. Bytes of a failed attempt are taken back out.
type countingFetcher struct {
	Fetcher
	m *Manager
}

func (f *countingFetcher) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	var seen, announced int64
	err := f.Fetcher.DownloadFile(ctx, url, destPath, func(written, total int64) {
		if announced == 0 && total > 0 {
			announced = total
			atomic.AddInt64(&f.m.totalBytes, total)
		}
		atomic.AddInt64(&f.m.receivedBytes, written-seen)
		seen = written
		if onProgress != nil {
			onProgress(written, total)
		}
	})
	if err != nil {
		atomic.AddInt64(&f.m.receivedBytes, -seen)
		atomic.AddInt64(&f.m.totalBytes, -announced)
	}
	return err
}
