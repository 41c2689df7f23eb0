package sqlconnect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReportCount is how many reports the user generated in period ("YYYY-MM").
func (s *Store) ReportCount(ctx context.Context, userID int, period string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT count FROM report_usage WHERE user_id = ? AND period = ?", userID, period).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error fetching report usage: %w", err)
	}
	return count, nil
}

func (s *Store) IncrementReportCount(ctx context.Context, userID int, period string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO report_usage (user_id, period, count) VALUES (?, ?, 1) ON DUPLICATE KEY UPDATE count = count + 1",
		userID, period)
	if err != nil {
		return fmt.Errorf("error incrementing report usage: %w", err)
	}
	return nil
}

// PruneReportUsage deletes counters of periods before the given one.
func (s *Store) PruneReportUsage(ctx context.Context, before string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM report_usage WHERE period < ?", before)
	if err != nil {
		return 0, fmt.Errorf("error pruning report usage: %w", err)
	}
	return res.RowsAffected()
}
