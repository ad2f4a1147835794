// CLAUDE:SUMMARY Example snapshot persistence: insert and latest-per-dataset lookup.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// InsertExample persists a fetched example snapshot.
func (s *Store) InsertExample(ctx context.Context, e *Example) error {
	if e.FetchedAt == 0 {
		e.FetchedAt = time.Now().UnixMilli()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO examples (id, dataset_id, content_hash, body_html,
		body_markdown, status_code, etag, last_modified, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.DatasetID, e.ContentHash, e.BodyHTML,
		e.BodyMarkdown, e.StatusCode, e.ETag, e.LastModified, e.FetchedAt,
	)
	return err
}

// LatestExample returns the most recent example for a dataset, or nil.
func (s *Store) LatestExample(ctx context.Context, datasetID string) (*Example, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, dataset_id, content_hash, body_html, body_markdown,
		status_code, etag, last_modified, fetched_at
		FROM examples WHERE dataset_id = ?
		ORDER BY fetched_at DESC LIMIT 1`, datasetID)

	var e Example
	err := row.Scan(&e.ID, &e.DatasetID, &e.ContentHash, &e.BodyHTML,
		&e.BodyMarkdown, &e.StatusCode, &e.ETag, &e.LastModified, &e.FetchedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan example: %w", err)
	}
	return &e, nil
}

// SetExampleMarkdown stores the derived markdown rendition for a snapshot.
func (s *Store) SetExampleMarkdown(ctx context.Context, id, markdown string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE examples SET body_markdown = ? WHERE id = ?`, markdown, id)
	return err
}

// DeleteExamples removes all example snapshots for a dataset.
func (s *Store) DeleteExamples(ctx context.Context, datasetID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM examples WHERE dataset_id = ?`, datasetID)
	return err
}
