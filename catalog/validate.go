// CLAUDE:SUMMARY Input validation for dataset fields: name, version, URLs, feature schema, config_json.
package catalog

import (
	"encoding/json"
	"fmt"
	"regexp"
)

const (
	maxNameLen     = 512
	maxVersionLen  = 64
	maxDescLen     = 65536
	maxURLLen      = 4096
	maxCitationLen = 16384
	maxConfigLen   = 8192
	maxFeatures    = 512

	// MaxDatasets is the maximum number of datasets per catalog.
	MaxDatasets = 10000
)

// Dataset names follow the snake_case convention of ML catalogs.
var nameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// Versions are semver-shaped: MAJOR.MINOR.PATCH.
var versionRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// validateDatasetInput validates a dataset's mutable fields before insert
// or update.
func validateDatasetInput(d *Dataset) error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(d.Name) > maxNameLen {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, maxNameLen)
	}
	if !nameRe.MatchString(d.Name) {
		return fmt.Errorf("%w: name %q must be lowercase snake_case", ErrInvalidInput, d.Name)
	}

	if len(d.Version) > maxVersionLen {
		return fmt.Errorf("%w: version exceeds %d characters", ErrInvalidInput, maxVersionLen)
	}
	if d.Version != "" && !versionRe.MatchString(d.Version) {
		return fmt.Errorf("%w: version %q must be MAJOR.MINOR.PATCH", ErrInvalidInput, d.Version)
	}

	if len(d.Description) > maxDescLen {
		return fmt.Errorf("%w: description exceeds %d bytes", ErrInvalidInput, maxDescLen)
	}
	if len(d.Homepage) > maxURLLen {
		return fmt.Errorf("%w: homepage exceeds %d characters", ErrInvalidInput, maxURLLen)
	}
	if len(d.ExampleURL) > maxURLLen {
		return fmt.Errorf("%w: example_url exceeds %d characters", ErrInvalidInput, maxURLLen)
	}
	if len(d.Citation) > maxCitationLen {
		return fmt.Errorf("%w: citation exceeds %d bytes", ErrInvalidInput, maxCitationLen)
	}

	if d.ConfigJSON != "" && d.ConfigJSON != "{}" {
		if len(d.ConfigJSON) > maxConfigLen {
			return fmt.Errorf("%w: config_json exceeds %d bytes", ErrInvalidInput, maxConfigLen)
		}
		if !json.Valid([]byte(d.ConfigJSON)) {
			return fmt.Errorf("%w: config_json is not valid JSON", ErrInvalidInput)
		}
	}

	return nil
}

// validateFeatures validates a feature schema before it replaces the
// current one.
func validateFeatures(features []*Feature) error {
	if len(features) > maxFeatures {
		return fmt.Errorf("%w: more than %d features", ErrInvalidInput, maxFeatures)
	}
	// The schema is per split: the same feature name may appear once per
	// split (e.g. image in both train and test with different shapes).
	type featureKey struct{ name, split string }
	seen := make(map[featureKey]bool, len(features))
	for _, f := range features {
		if f.Name == "" {
			return fmt.Errorf("%w: feature name is required", ErrInvalidInput)
		}
		if f.Dtype == "" {
			return fmt.Errorf("%w: feature %q has no dtype", ErrInvalidInput, f.Name)
		}
		key := featureKey{f.Name, f.Split}
		if seen[key] {
			return fmt.Errorf("%w: duplicate feature %q in split %q", ErrInvalidInput, f.Name, f.Split)
		}
		seen[key] = true
		if f.ShapeJSON != "" && !json.Valid([]byte(f.ShapeJSON)) {
			return fmt.Errorf("%w: feature %q shape is not valid JSON", ErrInvalidInput, f.Name)
		}
	}
	return nil
}
