// CLAUDE:SUMMARY Main catalog Service: dataset CRUD, feature schemas, one-shot example loading, search, rendering.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/framehub/datacat/catalog/internal/fetch"
	"github.com/framehub/datacat/catalog/internal/loader"
	"github.com/framehub/datacat/catalog/internal/render"
	"github.com/framehub/datacat/catalog/internal/store"
	"github.com/framehub/datacat/idgen"
	"github.com/framehub/datacat/safeweb"
	"github.com/framehub/datacat/watch"
)

// Service is the main catalog orchestrator.
type Service struct {
	store        *store.Store
	fetcher      *fetch.Fetcher
	loader       *loader.Loader
	renderer     *render.Renderer
	watcher      *watch.Watcher
	logger       *slog.Logger
	config       *Config
	newID        func() string
	urlValidator func(string) error // URL validation (default: safeweb.ValidateURL)
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*Service)

// WithURLValidator overrides the URL validation function (default:
// safeweb.ValidateURL). Use in tests with httptest servers that listen on
// loopback addresses.
func WithURLValidator(fn func(string) error) ServiceOption {
	return func(svc *Service) { svc.urlValidator = fn }
}

// New creates a catalog Service on an already-opened database.
func New(db *sql.DB, cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = defaultConfig()
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	svc := &Service{
		store:        store.NewStore(db),
		renderer:     render.New(),
		logger:       logger,
		config:       cfg,
		newID:        idgen.New,
		urlValidator: safeweb.ValidateURL,
	}

	for _, opt := range opts {
		opt(svc)
	}

	// The fetcher inherits the service's URL validator so tests can relax it
	// in one place.
	fetchCfg := cfg.Fetch
	fetchCfg.URLValidator = svc.urlValidator
	svc.fetcher = fetch.New(fetchCfg)
	svc.loader = loader.New(svc.fetcher, svc.store, logger)

	svc.watcher = watch.New(db, watch.Options{
		Interval: cfg.WatchInterval,
		Debounce: cfg.WatchDebounce,
		Detector: watch.MaxUpdatedAt("datasets"),
		Logger:   logger,
	})

	return svc, nil
}

// Start launches the background render-cache watcher. Non-blocking.
func (svc *Service) Start(ctx context.Context) {
	go svc.watcher.OnChange(ctx, func() error {
		svc.renderer.Purge()
		return nil
	})
	svc.logger.Info("catalog: started")
}

// Close shuts down the service.
func (svc *Service) Close() error {
	svc.logger.Info("catalog: closed")
	return nil
}

// WatchStats returns the render-cache watcher counters.
func (svc *Service) WatchStats() watch.Stats {
	return svc.watcher.Stats()
}

// validateURLs runs SSRF validation on the dataset's outbound URLs.
func (svc *Service) validateURLs(d *Dataset) error {
	if d.ExampleURL != "" {
		if err := svc.urlValidator(d.ExampleURL); err != nil {
			return fmt.Errorf("%w: example_url: %v", ErrInvalidInput, err)
		}
	}
	if d.Homepage != "" {
		if err := svc.urlValidator(d.Homepage); err != nil {
			return fmt.Errorf("%w: homepage: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

// --- Datasets ---

// AddDataset adds a new dataset with an optional feature schema.
func (svc *Service) AddDataset(ctx context.Context, d *Dataset, features []*Feature) error {
	if d.ID == "" {
		d.ID = svc.newID()
	}
	if d.Version == "" {
		d.Version = "1.0.0"
	}

	if err := validateDatasetInput(d); err != nil {
		return err
	}
	if err := validateFeatures(features); err != nil {
		return err
	}
	if err := svc.validateURLs(d); err != nil {
		return err
	}

	// Quota check.
	count, err := svc.store.CountDatasets(ctx)
	if err != nil {
		return fmt.Errorf("count datasets: %w", err)
	}
	if count >= MaxDatasets {
		return fmt.Errorf("%w: maximum %d datasets", ErrQuotaExceeded, MaxDatasets)
	}

	// Dedup check.
	existing, _ := svc.store.GetDatasetByNameVersion(ctx, d.Name, d.Version)
	if existing != nil {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateDataset, d.Name, d.Version)
	}

	if err := svc.store.InsertDataset(ctx, d); err != nil {
		// The unique index is the last line of defence against a racing insert.
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateDataset, d.Name, d.Version)
		}
		return err
	}
	if len(features) > 0 {
		if err := svc.store.ReplaceFeatures(ctx, d.ID, features); err != nil {
			return fmt.Errorf("features: %w", err)
		}
	}
	svc.renderer.Purge()
	return nil
}

// GetDataset returns a dataset by ID.
func (svc *Service) GetDataset(ctx context.Context, id string) (*Dataset, error) {
	d, err := svc.store.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

// GetDatasetByNameVersion returns a dataset by name and version.
func (svc *Service) GetDatasetByNameVersion(ctx context.Context, name, version string) (*Dataset, error) {
	d, err := svc.store.GetDatasetByNameVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, name, version)
	}
	return d, nil
}

// ListDatasets returns datasets ordered by name, paginated.
func (svc *Service) ListDatasets(ctx context.Context, limit, offset int) ([]*Dataset, error) {
	return svc.store.ListDatasets(ctx, limit, offset)
}

// UpdateDataset updates a dataset's mutable fields. Unset fields keep their
// current values.
func (svc *Service) UpdateDataset(ctx context.Context, d *Dataset) error {
	existing, err := svc.store.GetDataset(ctx, d.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, d.ID)
	}

	// Merge: use existing values for unset fields so validation passes.
	if d.Name == "" {
		d.Name = existing.Name
	}
	if d.Version == "" {
		d.Version = existing.Version
	}
	if d.Description == "" {
		d.Description = existing.Description
	}
	if d.Homepage == "" {
		d.Homepage = existing.Homepage
	}
	if d.Citation == "" {
		d.Citation = existing.Citation
	}
	if d.ExampleURL == "" {
		d.ExampleURL = existing.ExampleURL
	}
	if d.ConfigJSON == "" {
		d.ConfigJSON = existing.ConfigJSON
	}

	if err := validateDatasetInput(d); err != nil {
		return err
	}
	if err := svc.validateURLs(d); err != nil {
		return err
	}

	// Dedup check: if name or version changed, ensure the slot is free.
	if d.Name != existing.Name || d.Version != existing.Version {
		other, _ := svc.store.GetDatasetByNameVersion(ctx, d.Name, d.Version)
		if other != nil && other.ID != d.ID {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateDataset, d.Name, d.Version)
		}
	}

	if err := svc.store.UpdateDataset(ctx, d); err != nil {
		return err
	}
	svc.renderer.Purge()
	return nil
}

// DeleteDataset removes a dataset and all its content.
func (svc *Service) DeleteDataset(ctx context.Context, id string) error {
	if err := svc.store.DeleteDataset(ctx, id); err != nil {
		return err
	}
	svc.renderer.Purge()
	return nil
}

// --- Features ---

// SetFeatures replaces a dataset's feature schema.
func (svc *Service) SetFeatures(ctx context.Context, datasetID string, features []*Feature) error {
	if err := validateFeatures(features); err != nil {
		return err
	}
	d, err := svc.store.GetDataset(ctx, datasetID)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, datasetID)
	}
	if err := svc.store.ReplaceFeatures(ctx, datasetID, features); err != nil {
		return err
	}
	// Bump updated_at so page caches (including other processes) invalidate.
	if err := svc.store.TouchDataset(ctx, datasetID); err != nil {
		svc.logger.Warn("touch dataset failed", "dataset_id", datasetID, "error", err)
	}
	svc.renderer.Purge()
	return nil
}

// Features returns a dataset's feature schema in declaration order.
func (svc *Service) Features(ctx context.Context, datasetID string) ([]*Feature, error) {
	return svc.store.ListFeatures(ctx, datasetID)
}

// --- Examples ---

// LoadExample triggers the one-shot example fetch for a dataset and blocks
// until the surface settles. Repeat calls never issue a second request.
func (svc *Service) LoadExample(ctx context.Context, datasetID string) (ExampleSurface, error) {
	d, err := svc.store.GetDataset(ctx, datasetID)
	if err != nil {
		return ExampleSurface{}, err
	}
	if d == nil {
		return ExampleSurface{}, fmt.Errorf("%w: %s", ErrNotFound, datasetID)
	}
	if d.ExampleURL == "" {
		return ExampleSurface{}, fmt.Errorf("%w: %s", ErrNoExampleURL, datasetID)
	}
	return svc.loader.Trigger(ctx, d), nil
}

// ExampleState reports the current example surface for a dataset without
// triggering a load.
func (svc *Service) ExampleState(datasetID string) ExampleSurface {
	return svc.loader.Surface(datasetID)
}

// LatestExample returns the most recent persisted example snapshot, or nil.
func (svc *Service) LatestExample(ctx context.Context, datasetID string) (*Example, error) {
	return svc.store.LatestExample(ctx, datasetID)
}

// ExampleMarkdown returns the sanitized markdown rendition of the latest
// persisted example snapshot. The stored body stays verbatim; the rendition
// is derived on first request and cached on the snapshot row.
func (svc *Service) ExampleMarkdown(ctx context.Context, datasetID string) (string, error) {
	ex, err := svc.store.LatestExample(ctx, datasetID)
	if err != nil {
		return "", err
	}
	if ex == nil {
		return "", fmt.Errorf("%w: no example for %s", ErrNotFound, datasetID)
	}
	if ex.BodyMarkdown != "" {
		return ex.BodyMarkdown, nil
	}
	clean := svc.renderer.Sanitize(ex.BodyHTML)
	md := svc.renderer.ToMarkdown(clean, "", clean)
	if err := svc.store.SetExampleMarkdown(ctx, ex.ID, md); err != nil {
		svc.logger.Warn("example markdown cache", "dataset_id", datasetID, "error", err)
	}
	return md, nil
}

// --- Rendering ---

// Page returns the rendered markdown catalog page for a dataset.
func (svc *Service) Page(ctx context.Context, datasetID string) (string, error) {
	d, err := svc.store.GetDataset(ctx, datasetID)
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, datasetID)
	}
	features, err := svc.store.ListFeatures(ctx, datasetID)
	if err != nil {
		return "", err
	}
	return svc.renderer.Page(d, features), nil
}

// --- Read operations ---

// Search performs FTS5 search on dataset names and descriptions.
func (svc *Service) Search(ctx context.Context, query string, limit int) ([]*SearchResult, error) {
	return svc.store.Search(ctx, query, limit)
}

// Stats returns aggregate counters for the catalog.
func (svc *Service) Stats(ctx context.Context) (*CatalogStats, error) {
	return svc.store.Stats(ctx)
}

// FetchHistory returns example-fetch log entries for a dataset.
func (svc *Service) FetchHistory(ctx context.Context, datasetID string, limit int) ([]*FetchLogEntry, error) {
	return svc.store.FetchHistory(ctx, datasetID, limit)
}

// SearchLog returns recent search log entries.
func (svc *Service) SearchLog(ctx context.Context, limit int) ([]SearchLogEntry, error) {
	return svc.store.ListSearchLog(ctx, limit)
}

// ApplySchema applies the catalog schema to a database. Exported for use by
// migration scripts and tests.
func ApplySchema(db *sql.DB) error {
	return store.ApplySchema(db)
}
