// Package aggregator persists periodic snapshots of the recommendation
// analytics to PostgreSQL so the history survives restarts.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS recommendation_stats (
    id          BIGSERIAL PRIMARY KEY,
    data        JSONB NOT NULL,
    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Store writes and lists stats snapshots in the recommendation_stats table.
type Store struct {
	db       *postgres.Client
	agg      *analytics.Aggregator
	interval time.Duration
	logger   *slog.Logger
}

func NewStore(db *postgres.Client, agg *analytics.Aggregator, interval time.Duration) *Store {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Store{
		db:       db,
		agg:      agg,
		interval: interval,
		logger:   slog.Default().With("component", "analytics-store"),
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating recommendation_stats table: %w", err)
	}
	return nil
}

// SaveSnapshot persists one stats snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, stats analytics.AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO recommendation_stats (data, captured_at) VALUES ($1, $2)`,
		data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Debug("analytics snapshot saved",
		"total_recommendations", stats.TotalRecommendations,
		"refreshes", stats.Refreshes,
	)
	return nil
}

// ListSnapshots returns the last limit snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]analytics.AggregatedStats, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM recommendation_stats ORDER BY captured_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []analytics.AggregatedStats
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var stats analytics.AggregatedStats
		if err := json.Unmarshal(data, &stats); err != nil {
			s.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, stats)
	}
	return snapshots, rows.Err()
}

// Serve saves the aggregator's stats every interval and once more on
// shutdown. A failed save is logged and retried on the next tick.
func (s *Store) Serve(ctx context.Context) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info("periodic analytics snapshots started", "interval", s.interval)

	for {
		select {
		case <-ticker.C:
			if err := s.SaveSnapshot(ctx, s.agg.Stats()); err != nil {
				s.logger.Error("periodic snapshot failed", "error", err)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.SaveSnapshot(shutdownCtx, s.agg.Stats()); err != nil {
				s.logger.Error("final snapshot failed", "error", err)
			}
			cancel()
			return ctx.Err()
		}
	}
}

func (s *Store) String() string {
	return "analytics-store"
}
