package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// WatchConfig controls how a watched directory is kept in sync.
type WatchConfig struct {
	// Debounce is how long events for a path settle before ingestion.
	Debounce time.Duration

	// Rescan is a cron spec for periodic rescans. Empty disables them.
	Rescan string
}

// WatchConfigFrom derives the watch behaviour from application settings.
func WatchConfigFrom(s *domain.AppSettings) WatchConfig {
	return WatchConfig{
		Debounce: s.Watch.Debounce,
		Rescan:   s.Watch.Rescan,
	}
}

// ScanReport counts the outcome of one scan or flush.
type ScanReport struct {
	Seen       int
	Ingested   int
	Duplicates int
	Skipped    int
	Failed     int
	Removed    int
}

func (r *ScanReport) add(o ScanReport) {
	r.Seen += o.Seen
	r.Ingested += o.Ingested
	r.Duplicates += o.Duplicates
	r.Skipped += o.Skipped
	r.Failed += o.Failed
	r.Removed += o.Removed
}

// WatchService keeps a directory ingested: an initial scan, debounced
// file events, and optional scheduled rescans of recently modified files.
type WatchService struct {
	ingest driving.IngestService
	docs   driving.DocumentService
	source driven.FileSource
	cfg    WatchConfig
	now    func() time.Time

	mu       sync.Mutex
	tracked  map[string]string // path -> item ID
	lastScan time.Time
	scanMu   sync.Mutex
}

// NewWatchService creates a watch service. docs may be nil, in which case
// deleted or replaced files leave their documents in place.
func NewWatchService(
	ingest driving.IngestService,
	docs driving.DocumentService,
	source driven.FileSource,
	cfg WatchConfig,
) *WatchService {
	if cfg.Debounce <= 0 {
		cfg.Debounce = domain.DefaultAppSettings().Watch.Debounce
	}
	return &WatchService{
		ingest:  ingest,
		docs:    docs,
		source:  source,
		cfg:     cfg,
		now:     time.Now,
		tracked: make(map[string]string),
	}
}

// Scan ingests every supported file under the source root.
func (w *WatchService) Scan(ctx context.Context) (ScanReport, error) {
	return w.scan(ctx, time.Time{})
}

// Rescan ingests supported files modified since the previous scan.
func (w *WatchService) Rescan(ctx context.Context) (ScanReport, error) {
	w.mu.Lock()
	since := w.lastScan
	w.mu.Unlock()
	return w.scan(ctx, since)
}

func (w *WatchService) scan(ctx context.Context, since time.Time) (ScanReport, error) {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()
	defer logger.Timed("scan " + w.source.Root())()

	started := w.now()

	var (
		paths []string
		err   error
	)
	if since.IsZero() {
		paths, err = w.source.Scan(ctx)
	} else {
		paths, err = w.source.ChangedSince(ctx, since)
	}
	if err != nil {
		return ScanReport{}, err
	}

	report := w.ingestPaths(ctx, paths)

	w.mu.Lock()
	w.lastScan = started
	w.mu.Unlock()

	logger.Info("Scanned %s: %d seen, %d ingested, %d duplicate, %d skipped, %d failed",
		w.source.Root(), report.Seen, report.Ingested, report.Duplicates, report.Skipped, report.Failed)
	return report, nil
}

// Run scans the root, then follows file events until ctx is cancelled.
// Events for the same path within the debounce window are coalesced.
//
//nolint:gocyclo // Event loop with debounce timer and scheduler
func (w *WatchService) Run(ctx context.Context) error {
	// 1. Initial scan.
	if _, err := w.Scan(ctx); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	// 2. Start watching before scheduling rescans so no event is lost.
	changes, err := w.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	// 3. Scheduled rescans catch events the watcher missed.
	if w.cfg.Rescan != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(w.cfg.Rescan, func() {
			if _, err := w.Rescan(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("rescan %s: %v", w.source.Root(), err)
			}
		}); err != nil {
			return fmt.Errorf("%w: rescan schedule %q: %w", domain.ErrInvalidInput, w.cfg.Rescan, err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logger.Debug("rescans scheduled: %s", w.cfg.Rescan)
	}

	// 4. Debounced event loop.
	pending := make(map[string]domain.FileChange)
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case change, ok := <-changes:
			if !ok {
				if len(pending) > 0 {
					w.Apply(context.WithoutCancel(ctx), drain(pending))
				}
				return nil
			}
			logger.Debug("%s %s", change.Type, change.Path)
			pending[change.Path] = change
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			w.Apply(ctx, drain(pending))
		}
	}
}

// Apply ingests created or updated files and forgets deleted ones.
// A replaced file's previous document is deleted once no other tracked
// path refers to it.
func (w *WatchService) Apply(ctx context.Context, changes []domain.FileChange) ScanReport {
	var report ScanReport
	var paths []string
	for _, c := range changes {
		if c.Type == domain.ChangeDeleted {
			if w.forget(ctx, c.Path) {
				report.Removed++
			}
			continue
		}
		paths = append(paths, c.Path)
	}
	report.add(w.ingestPaths(ctx, paths))
	return report
}

func (w *WatchService) ingestPaths(ctx context.Context, paths []string) ScanReport {
	var report ScanReport

	// 1. Read supported files.
	reqs := make([]domain.IngestRequest, 0, len(paths))
	for _, path := range paths {
		report.Seen++
		name := filepath.Base(path)
		if !w.ingest.Supports(name) {
			logger.Debug("skipping unsupported %s", path)
			report.Skipped++
			continue
		}
		content, err := w.source.Read(path)
		if err != nil {
			logger.Warn("%v", err)
			report.Failed++
			continue
		}
		reqs = append(reqs, domain.IngestRequest{Content: content, Filename: name, Source: path})
	}
	if len(reqs) == 0 {
		return report
	}

	// 2. Ingest as one batch; failures stay per file.
	for i, res := range w.ingest.IngestBatch(ctx, reqs) {
		path := reqs[i].Source
		switch {
		case res.Err != nil:
			report.Failed++
			continue
		case res.Duplicate:
			report.Duplicates++
		default:
			report.Ingested++
		}
		if prev := w.track(path, res.ItemID); prev != "" && prev != res.ItemID {
			if w.release(ctx, prev, path) {
				report.Removed++
			}
		}
	}
	return report
}

// track records path -> itemID and returns the previous item for path.
func (w *WatchService) track(path, itemID string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev := w.tracked[path]
	w.tracked[path] = itemID
	return prev
}

// Tracked returns the item currently ingested for path.
func (w *WatchService) Tracked(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.tracked[path]
	return id, ok
}

func (w *WatchService) forget(ctx context.Context, path string) bool {
	w.mu.Lock()
	prev, ok := w.tracked[path]
	delete(w.tracked, path)
	w.mu.Unlock()
	if !ok {
		return false
	}
	return w.release(ctx, prev, path)
}

// release deletes itemID when it was ingested from under the root and no
// other tracked path still refers to it.
func (w *WatchService) release(ctx context.Context, itemID, path string) bool {
	if w.docs == nil {
		return false
	}

	w.mu.Lock()
	for p, id := range w.tracked {
		if id == itemID && p != path {
			w.mu.Unlock()
			return false
		}
	}
	w.mu.Unlock()

	doc, err := w.docs.Get(ctx, itemID)
	if err != nil || !w.owns(doc.Source) {
		return false
	}
	if err := w.docs.Delete(ctx, itemID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("removing %s for %s: %v", itemID, path, err)
		}
		return false
	}
	logger.Info("Removed %s (%s)", itemID, path)
	return true
}

// owns reports whether source lies under the watched root.
func (w *WatchService) owns(source string) bool {
	rel, err := filepath.Rel(w.source.Root(), source)
	if err != nil || !filepath.IsLocal(rel) {
		return false
	}
	return true
}

// drain empties pending and returns its changes.
func drain(pending map[string]domain.FileChange) []domain.FileChange {
	out := make([]domain.FileChange, 0, len(pending))
	for path, c := range pending {
		out = append(out, c)
		delete(pending, path)
	}
	return out
}
