// CLAUDE:SUMMARY Re-exports store types (Dataset, Feature, Example, etc.) as the catalog public API.
// Package catalog provides a dataset catalog with deferred example loading.
//
// Datasets carry descriptive metadata, a feature schema, and the URL of a
// pre-rendered example page. The example is fetched at most once per process
// lifetime, on explicit request, and is shown verbatim or replaced by a
// fixed error message. Everything is stored in one SQLite database.
package catalog

import (
	"github.com/framehub/datacat/catalog/internal/loader"
	"github.com/framehub/datacat/catalog/internal/store"
)

// Re-export store types for public API.
type (
	Dataset        = store.Dataset
	Feature        = store.Feature
	Example        = store.Example
	FetchLogEntry  = store.FetchLogEntry
	SearchResult   = store.SearchResult
	SearchLogEntry = store.SearchLogEntry
	CatalogStats   = store.CatalogStats
	ExampleSurface = loader.Surface
)

// ExampleErrorMessage is the fixed text shown when an example load fails.
const ExampleErrorMessage = loader.ErrorMessage
