// CLAUDE:SUMMARY Dataset CRUD plus name+version lookup.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// InsertDataset adds a new dataset to the catalog.
func (s *Store) InsertDataset(ctx context.Context, d *Dataset) error {
	now := time.Now().UnixMilli()
	if d.CreatedAt == 0 {
		d.CreatedAt = now
	}
	if d.UpdatedAt == 0 {
		d.UpdatedAt = now
	}
	if d.Version == "" {
		d.Version = "1.0.0"
	}
	if d.ConfigJSON == "" {
		d.ConfigJSON = "{}"
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO datasets (id, name, version, description, homepage, citation,
		example_url, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Version, d.Description, d.Homepage, d.Citation,
		d.ExampleURL, d.ConfigJSON, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

// GetDataset retrieves a dataset by ID.
func (s *Store) GetDataset(ctx context.Context, id string) (*Dataset, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, version, description, homepage, citation,
		example_url, config_json, created_at, updated_at
		FROM datasets WHERE id = ?`, id)
	return scanDataset(row)
}

// GetDatasetByNameVersion retrieves a dataset by its name and version, or nil.
func (s *Store) GetDatasetByNameVersion(ctx context.Context, name, version string) (*Dataset, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, version, description, homepage, citation,
		example_url, config_json, created_at, updated_at
		FROM datasets WHERE name = ? AND version = ? LIMIT 1`, name, version)
	return scanDataset(row)
}

// ListDatasets returns datasets ordered by name, paginated.
func (s *Store) ListDatasets(ctx context.Context, limit, offset int) ([]*Dataset, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, version, description, homepage, citation,
		example_url, config_json, created_at, updated_at
		FROM datasets ORDER BY name ASC, version ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []*Dataset
	for rows.Next() {
		d, err := scanDatasetRows(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}
	return datasets, rows.Err()
}

// UpdateDataset updates a dataset's mutable fields.
func (s *Store) UpdateDataset(ctx context.Context, d *Dataset) error {
	d.UpdatedAt = time.Now().UnixMilli()
	_, err := s.DB.ExecContext(ctx,
		`UPDATE datasets SET name=?, version=?, description=?, homepage=?,
		citation=?, example_url=?, config_json=?, updated_at=?
		WHERE id=?`,
		d.Name, d.Version, d.Description, d.Homepage,
		d.Citation, d.ExampleURL, d.ConfigJSON, d.UpdatedAt, d.ID,
	)
	return err
}

// DeleteDataset removes a dataset (cascades to features, examples, fetch_log).
func (s *Store) DeleteDataset(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	return err
}

// CountDatasets returns the total number of datasets in the catalog.
func (s *Store) CountDatasets(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets`).Scan(&count)
	return count, err
}

// TouchDataset bumps updated_at so watchers see the change.
func (s *Store) TouchDataset(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE datasets SET updated_at=? WHERE id=?`, time.Now().UnixMilli(), id)
	return err
}

func scanDataset(row *sql.Row) (*Dataset, error) {
	var d Dataset
	err := row.Scan(
		&d.ID, &d.Name, &d.Version, &d.Description, &d.Homepage, &d.Citation,
		&d.ExampleURL, &d.ConfigJSON, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan dataset: %w", err)
	}
	return &d, nil
}

func scanDatasetRows(rows *sql.Rows) (*Dataset, error) {
	var d Dataset
	err := rows.Scan(
		&d.ID, &d.Name, &d.Version, &d.Description, &d.Homepage, &d.Citation,
		&d.ExampleURL, &d.ConfigJSON, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan dataset: %w", err)
	}
	return &d, nil
}
