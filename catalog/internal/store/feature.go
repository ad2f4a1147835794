// CLAUDE:SUMMARY Feature schema rows: transactional replace and ordered listing.
package store

import (
	"context"
	"fmt"

	"github.com/framehub/datacat/idgen"
)

// ReplaceFeatures swaps the full feature schema of a dataset in one
// transaction. Positions are assigned from slice order.
func (s *Store) ReplaceFeatures(ctx context.Context, datasetID string, features []*Feature) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM features WHERE dataset_id = ?`, datasetID); err != nil {
		return fmt.Errorf("clear features: %w", err)
	}
	for i, f := range features {
		if f.ID == "" {
			f.ID = idgen.New()
		}
		f.DatasetID = datasetID
		f.Position = i
		if f.ShapeJSON == "" {
			f.ShapeJSON = "[]"
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO features (id, dataset_id, name, dtype, shape_json, split, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.DatasetID, f.Name, f.Dtype, f.ShapeJSON, f.Split, f.Position,
		); err != nil {
			return fmt.Errorf("insert feature %q: %w", f.Name, err)
		}
	}
	return tx.Commit()
}

// ListFeatures returns a dataset's feature schema in position order.
func (s *Store) ListFeatures(ctx context.Context, datasetID string) ([]*Feature, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, dataset_id, name, dtype, shape_json, split, position
		FROM features WHERE dataset_id = ? ORDER BY position ASC`, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []*Feature
	for rows.Next() {
		var f Feature
		if err := rows.Scan(&f.ID, &f.DatasetID, &f.Name, &f.Dtype,
			&f.ShapeJSON, &f.Split, &f.Position); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, &f)
	}
	return features, rows.Err()
}
