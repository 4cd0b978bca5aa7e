package contentcache

import (
	"context"
	"fmt"
)

// Stats summarizes cache occupancy for the admin API.
type Stats struct {
	Entries   int64            `json:"entries"`
	Bytes     int64            `json:"bytes"`
	ByVersion map[string]int64 `json:"by_version"`
}

// Stats reports entry counts and stored bytes, broken down by version.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{ByVersion: make(map[string]int64)}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(content)), 0) FROM pages",
	).Scan(&stats.Entries, &stats.Bytes)
	if err != nil {
		return Stats{}, fmt.Errorf("query cache totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT version, COUNT(*) FROM pages GROUP BY version")
	if err != nil {
		return Stats{}, fmt.Errorf("query cache per-version counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var version string
		var count int64
		if err := rows.Scan(&version, &count); err != nil {
			return Stats{}, fmt.Errorf("scan cache stats row: %w", err)
		}
		stats.ByVersion[version] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate cache stats rows: %w", err)
	}
	return stats, nil
}
