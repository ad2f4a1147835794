// CLAUDE:SUMMARY Sentinel errors for the catalog service: not found, duplicate, invalid input, quota, no example URL.
package catalog

import "errors"

// ErrNotFound is returned when a dataset does not exist.
var ErrNotFound = errors.New("catalog: dataset not found")

// ErrDuplicateDataset is returned when a dataset with the same name and
// version already exists.
var ErrDuplicateDataset = errors.New("catalog: dataset with this name and version already exists")

// ErrInvalidInput is returned when dataset input fails validation.
var ErrInvalidInput = errors.New("catalog: invalid input")

// ErrQuotaExceeded is returned when a resource limit is reached.
var ErrQuotaExceeded = errors.New("catalog: quota exceeded")

// ErrNoExampleURL is returned when an example load is requested for a
// dataset that has no example URL configured.
var ErrNoExampleURL = errors.New("catalog: dataset has no example URL")
