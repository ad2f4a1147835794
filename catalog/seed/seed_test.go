package seed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/framehub/datacat/catalog"
)

func TestCollections(t *testing.T) {
	// WHAT: All built-in collections are listed and resolvable.
	names := Collections()
	if len(names) != 3 {
		t.Fatalf("collections: got %d, want 3", len(names))
	}
	for _, name := range names {
		defs, ok := Datasets(name)
		if !ok || len(defs) == 0 {
			t.Errorf("collection %q: ok=%v defs=%d", name, ok, len(defs))
		}
	}
	if _, ok := Datasets("nope"); ok {
		t.Error("unknown collection should not resolve")
	}
}

func TestDefinitionsComplete(t *testing.T) {
	// WHAT: Every seed dataset carries the fields the catalog requires.
	// WHY: A seed entry without an example URL can never load its example.
	for _, name := range Collections() {
		defs, _ := Datasets(name)
		for _, d := range defs {
			if d.Name == "" || d.Version == "" || d.ExampleURL == "" {
				t.Errorf("%s/%s: incomplete definition %+v", name, d.Name, d)
			}
			if len(d.Features) == 0 {
				t.Errorf("%s/%s: no features", name, d.Name)
			}
		}
	}
}

func TestPopulate(t *testing.T) {
	// WHAT: Populate inserts each definition and skips only duplicates.
	var inserted []*DatasetInput
	add := func(ctx context.Context, d *DatasetInput) error {
		if d.Name == "bridge" {
			return fmt.Errorf("%w: bridge 1.0.0", catalog.ErrDuplicateDataset)
		}
		inserted = append(inserted, d)
		return nil
	}

	count, err := Populate(context.Background(), add, "robotics")
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	if count != 2 {
		t.Errorf("count: got %d, want 2 (one duplicate skipped)", count)
	}
	if len(inserted) != 2 {
		t.Errorf("inserted: got %d", len(inserted))
	}

	if _, err := Populate(context.Background(), add, "nope"); err == nil {
		t.Error("unknown collection should error")
	}
}

func TestPopulate_NonDuplicateErrorAborts(t *testing.T) {
	// WHAT: Any failure other than a duplicate stops the run and is returned.
	// WHY: A silently dropped seed entry just undercounts; only the
	// duplicate case is expected when re-seeding a populated catalog.
	boom := errors.New("disk full")
	add := func(ctx context.Context, d *DatasetInput) error {
		if d.Name == "bridge" {
			return boom
		}
		return nil
	}

	count, err := Populate(context.Background(), add, "robotics")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if count != 1 {
		t.Errorf("count: got %d, want 1 (inserts before the failure)", count)
	}
}
