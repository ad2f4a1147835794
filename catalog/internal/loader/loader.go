// CLAUDE:SUMMARY One-shot example loader: disable-then-fetch guard, verbatim body or fixed error message.
// Package loader implements the deferred, one-shot retrieval of a dataset's
// pre-rendered example page.
//
// Each dataset gets exactly one fetch attempt per process lifetime. The
// trigger is disabled synchronously before the fetch is issued, so a second
// activation can never start a second request. Success puts the upstream
// body on the display surface verbatim; transport failures and non-2xx
// statuses both collapse to the same fixed error message.
package loader

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/framehub/datacat/catalog/internal/fetch"
	"github.com/framehub/datacat/catalog/internal/store"
	"github.com/framehub/datacat/idgen"
)

// ErrorMessage is shown in place of the example when the fetch fails for any
// reason. Transport errors and bad statuses are not distinguished.
const ErrorMessage = "Error loading example. If the error persists, please open a new issue."

// Fetcher retrieves a URL. *fetch.Fetcher satisfies this; tests substitute
// counting fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url, etag, lastMod, prevHash string) (*fetch.Result, error)
}

// Surface is the display state of one dataset's example slot.
type Surface struct {
	Content string `json:"content"` // empty until the fetch settles
	Enabled bool   `json:"enabled"` // false once the trigger has fired
	Loaded  bool   `json:"loaded"`  // true once Content is final
	OK      bool   `json:"ok"`      // true if Content is the upstream body
}

type slot struct {
	done    chan struct{}
	content string
	ok      bool
}

// Loader guards one fetch per dataset. Safe for concurrent use.
type Loader struct {
	fetcher Fetcher
	store   *store.Store // optional; persists snapshots and fetch log
	log     *slog.Logger

	mu    sync.Mutex
	slots map[string]*slot
}

// New creates a Loader. st may be nil, in which case nothing is persisted.
func New(f Fetcher, st *store.Store, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		fetcher: f,
		store:   st,
		log:     log,
		slots:   make(map[string]*slot),
	}
}

// Surface reports the current display state for a dataset. Before the first
// trigger the content is empty and the trigger is enabled.
func (l *Loader) Surface(datasetID string) Surface {
	l.mu.Lock()
	s, triggered := l.slots[datasetID]
	l.mu.Unlock()

	if !triggered {
		return Surface{Enabled: true}
	}
	select {
	case <-s.done:
		return Surface{Content: s.content, Loaded: true, OK: s.ok}
	default:
		return Surface{} // in flight: disabled, nothing to show yet
	}
}

// Trigger activates the one-shot load for a dataset and blocks until the
// surface settles. The trigger is disabled before the request is issued and
// never re-enabled, regardless of outcome. Repeat and concurrent activations
// do not start another request; they wait for the first result.
func (l *Loader) Trigger(ctx context.Context, d *store.Dataset) Surface {
	l.mu.Lock()
	s, triggered := l.slots[d.ID]
	if !triggered {
		// Disable before fetch. From here on no second request can start.
		s = &slot{done: make(chan struct{})}
		l.slots[d.ID] = s
		l.mu.Unlock()
		l.load(ctx, d, s)
	} else {
		l.mu.Unlock()
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		// Caller gave up; the fetch keeps running and settles the slot.
		return Surface{}
	}
	return Surface{Content: s.content, Loaded: true, OK: s.ok}
}

// load performs the single fetch attempt and settles the slot.
func (l *Loader) load(ctx context.Context, d *store.Dataset, s *slot) {
	defer close(s.done)

	// A snapshot persisted by an earlier process lets this one revalidate
	// instead of re-downloading an unchanged page.
	var prev *store.Example
	if l.store != nil {
		prev, _ = l.store.LatestExample(ctx, d.ID)
	}
	var etag, lastMod, prevHash string
	if prev != nil {
		etag, lastMod, prevHash = prev.ETag, prev.LastModified, prev.ContentHash
	}

	start := time.Now()
	result, err := l.fetcher.Fetch(ctx, d.ExampleURL, etag, lastMod, prevHash)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		statusCode := 0
		if result != nil {
			statusCode = result.StatusCode
		}
		s.content = ErrorMessage
		l.log.Warn("example load failed",
			"dataset_id", d.ID, "url", d.ExampleURL,
			"status_code", statusCode, "error", err)
		l.record(d.ID, &store.FetchLogEntry{
			Status:       "error",
			StatusCode:   statusCode,
			ErrorMessage: err.Error(),
			DurationMs:   durationMs,
		}, nil)
		return
	}

	// 304 or identical hash: the stored snapshot is still current. Serve it
	// without writing a new one.
	if prev != nil && (result.StatusCode == http.StatusNotModified || !result.Changed) {
		s.content = prev.BodyHTML
		s.ok = true
		l.log.Info("example unchanged",
			"dataset_id", d.ID, "url", d.ExampleURL,
			"status_code", result.StatusCode)
		l.record(d.ID, &store.FetchLogEntry{
			Status:      "unchanged",
			StatusCode:  result.StatusCode,
			ContentHash: prev.ContentHash,
			DurationMs:  durationMs,
		}, nil)
		return
	}

	s.content = string(result.Body)
	s.ok = true
	l.log.Info("example loaded",
		"dataset_id", d.ID, "url", d.ExampleURL,
		"status_code", result.StatusCode, "bytes", len(result.Body))
	l.record(d.ID, &store.FetchLogEntry{
		Status:      "ok",
		StatusCode:  result.StatusCode,
		ContentHash: result.Hash,
		DurationMs:  durationMs,
	}, &store.Example{
		ContentHash:  result.Hash,
		BodyHTML:     string(result.Body),
		StatusCode:   result.StatusCode,
		ETag:         result.ETag,
		LastModified: result.LastMod,
	})
}

// record persists the fetch log entry and, on success, the snapshot.
// Persistence failures are logged and swallowed; the surface already settled.
func (l *Loader) record(datasetID string, entry *store.FetchLogEntry, ex *store.Example) {
	if l.store == nil {
		return
	}
	// The trigger context may already be gone; persistence should not be
	// tied to the caller's lifetime.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UnixMilli()
	entry.ID = idgen.New()
	entry.DatasetID = datasetID
	entry.FetchedAt = now
	if err := l.store.InsertFetchLog(ctx, entry); err != nil {
		l.log.Warn("fetch log insert failed", "dataset_id", datasetID, "error", err)
	}
	if ex != nil {
		ex.ID = idgen.New()
		ex.DatasetID = datasetID
		ex.FetchedAt = now
		if err := l.store.InsertExample(ctx, ex); err != nil {
			l.log.Warn("example insert failed", "dataset_id", datasetID, "error", err)
		}
	}
}
