// CLAUDE:SUMMARY All store data types: Dataset, Feature, Example, FetchLogEntry, SearchResult, CatalogStats.
package store

// Dataset represents one catalog entry at a pinned version.
type Dataset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Homepage    string `json:"homepage"`
	Citation    string `json:"citation"`
	ExampleURL  string `json:"example_url"`
	ConfigJSON  string `json:"config_json"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Feature describes one column of a dataset's feature schema.
type Feature struct {
	ID        string `json:"id"`
	DatasetID string `json:"dataset_id"`
	Name      string `json:"name"`
	Dtype     string `json:"dtype"`
	ShapeJSON string `json:"shape"` // JSON array, e.g. "[8]" or "[224,224,3]"
	Split     string `json:"split"`
	Position  int    `json:"position"`
}

// Example is a fetched pre-rendered example snapshot for a dataset.
// BodyHTML holds the upstream payload byte for byte.
type Example struct {
	ID           string `json:"id"`
	DatasetID    string `json:"dataset_id"`
	ContentHash  string `json:"content_hash"`
	BodyHTML     string `json:"body_html"`
	BodyMarkdown string `json:"body_markdown"`
	StatusCode   int    `json:"status_code"`
	ETag         string `json:"etag"`
	LastModified string `json:"last_modified"`
	FetchedAt    int64  `json:"fetched_at"`
}

// FetchLogEntry is one example-fetch attempt record.
type FetchLogEntry struct {
	ID           string `json:"id"`
	DatasetID    string `json:"dataset_id"`
	Status       string `json:"status"`
	StatusCode   int    `json:"status_code"`
	ContentHash  string `json:"content_hash"`
	ErrorMessage string `json:"error_message"`
	DurationMs   int64  `json:"duration_ms"`
	FetchedAt    int64  `json:"fetched_at"`
}

// SearchResult is a FTS5 search hit on datasets.
type SearchResult struct {
	DatasetID   string  `json:"dataset_id"`
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	Description string  `json:"description"`
	Rank        float64 `json:"rank"`
}

// SearchLogEntry records a user search query.
type SearchLogEntry struct {
	ID          string `json:"id"`
	Query       string `json:"query"`
	ResultCount int    `json:"result_count"`
	SearchedAt  int64  `json:"searched_at"`
}

// CatalogStats holds aggregate counters for the catalog.
type CatalogStats struct {
	Datasets  int `json:"datasets"`
	Features  int `json:"features"`
	Examples  int `json:"examples"`
	FetchLogs int `json:"fetch_logs"`
}
