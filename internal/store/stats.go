package store

import (
	"context"
	"fmt"

	"pearl/internal/workflow"
)

// HealthSummary describes aggregated workspace counts per key record sets.
type HealthSummary struct {
	Titles      int
	Chapters    int
	Assignments int
	Users       int
	Unassigned  int
	InFlight    int
	Done        int
}

// AssignmentStats returns a count of assignments grouped by status.
func (s *Store) AssignmentStats(ctx context.Context) (map[workflow.Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM assignments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("assignment stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[workflow.Status]int)
	for rows.Next() {
		var status workflow.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates workspace state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	ctx = ensureContext(ctx)
	health := HealthSummary{}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(1) FROM titles`, &health.Titles},
		{`SELECT COUNT(1) FROM chapters`, &health.Chapters},
		{`SELECT COUNT(1) FROM assignments`, &health.Assignments},
		{`SELECT COUNT(1) FROM users`, &health.Users},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return HealthSummary{}, fmt.Errorf("workspace health: %w", err)
		}
	}

	stats, err := s.AssignmentStats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	for status, count := range stats {
		switch {
		case status == workflow.StatusUnassigned:
			health.Unassigned += count
		case status.IsDone():
			health.Done += count
		default:
			health.InFlight += count
		}
	}
	return health, nil
}
