//go:build integration

package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/testpg"
)

func TestSaveAndListSnapshots(t *testing.T) {
	client := testpg.Connect(t)
	ctx := context.Background()
	s := NewStore(client, analytics.NewAggregator(), time.Minute)
	require.NoError(t, s.EnsureSchema(ctx))

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, s.SaveSnapshot(ctx, analytics.AggregatedStats{TotalRecommendations: i}))
		time.Sleep(2 * time.Millisecond)
	}
	_, err := client.DB.ExecContext(ctx,
		`INSERT INTO recommendation_stats (data, captured_at) VALUES ('{"total_recommendations":"many"}', now() + interval '1 hour')`)
	require.NoError(t, err)

	snapshots, err := s.ListSnapshots(ctx, 3)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, int64(3), snapshots[0].TotalRecommendations)
	assert.Equal(t, int64(2), snapshots[1].TotalRecommendations)
}

func TestServeSavesPeriodicallyAndOnShutdown(t *testing.T) {
	client := testpg.Connect(t)
	agg := analytics.NewAggregator()
	agg.RecordRecommendation(analytics.RecommendationEvent{Type: analytics.EventRecommendation, Returned: 1, ModelReady: true})
	s := NewStore(client, agg, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	count := func() int {
		var n int
		if err := client.DB.QueryRow(`SELECT count(*) FROM recommendation_stats`).Scan(&n); err != nil {
			return 0
		}
		return n
	}
	assert.Eventually(t, func() bool { return count() >= 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	before := count()

	snapshots, err := s.ListSnapshots(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, int64(1), snapshots[0].TotalRecommendations)
	assert.GreaterOrEqual(t, before, 2)
}
