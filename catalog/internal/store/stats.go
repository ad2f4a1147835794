// CLAUDE:SUMMARY Aggregate catalog statistics: dataset, feature, example and fetch counts.
package store

import "context"

// Stats returns aggregate counters for the catalog.
func (s *Store) Stats(ctx context.Context) (*CatalogStats, error) {
	var stats CatalogStats
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets`).Scan(&stats.Datasets)
	if err != nil {
		return nil, err
	}
	err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM features`).Scan(&stats.Features)
	if err != nil {
		return nil, err
	}
	err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM examples`).Scan(&stats.Examples)
	if err != nil {
		return nil, err
	}
	err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM fetch_log`).Scan(&stats.FetchLogs)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
