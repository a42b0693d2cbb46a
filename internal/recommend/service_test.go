package recommend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/metrics"
)

type noopRefresher struct{}

func (noopRefresher) ForceRefresh(context.Context) error { return nil }

type events struct {
	mu  sync.Mutex
	got []analytics.Event
}

func (e *events) Track(ev analytics.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
}

func readyCache(t *testing.T, jobs ...corpus.Job) *corpus.Cache {
	t.Helper()
	c := corpus.NewCache()
	snap, err := corpus.Build(jobs, time.Now(), "v1")
	require.NoError(t, err)
	c.Store(snap)
	return c
}

func TestRankJobsForSkillsScenarioA(t *testing.T) {
	c := readyCache(t,
		corpus.Job{ID: "J1", Title: "Data Engineer", Requirements: []string{"python", "sql"}}.WithDefaults(),
		corpus.Job{ID: "J2", Requirements: []string{"java"}}.WithDefaults(),
	)
	ev := &events{}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(c, noopRefresher{}, Options{Events: ev, Metrics: m})

	jobs, err := svc.RankJobsForSkills(context.Background(), []string{"python", "go"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "J1", jobs[0].ID)
	assert.Equal(t, "Data Engineer", jobs[0].Title)
	assert.Equal(t, 1, jobs[0].MatchCount)
	assert.Greater(t, jobs[0].SimilarityScore, 0.0)
	assert.LessOrEqual(t, jobs[0].SimilarityScore, 1.0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecommendationsTotal.WithLabelValues("matched")))
	require.Len(t, ev.got, 1)
	rec := ev.got[0].(analytics.RecommendationEvent)
	assert.Equal(t, []string{"go", "python"}, rec.Skills)
	assert.Equal(t, 1, rec.TopMatchCount)
	assert.Equal(t, "v1", rec.SnapshotVersion)
}

func TestRankJobsForSkillsNotReady(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(corpus.NewCache(), noopRefresher{}, Options{Metrics: m})

	jobs, err := svc.RankJobsForSkills(context.Background(), []string{"python"})
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecommendationsTotal.WithLabelValues("not_ready")))

	empty := readyCache(t)
	svc = NewService(empty, noopRefresher{}, Options{})
	jobs, err = svc.RankJobsForSkills(context.Background(), []string{"python"})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestRankJobsForSkillsTopK(t *testing.T) {
	var jobs []corpus.Job
	for _, id := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		jobs = append(jobs, corpus.Job{ID: id, Requirements: []string{"go"}}.WithDefaults())
	}
	svc := NewService(readyCache(t, jobs...), noopRefresher{}, Options{TopK: 3})
	got, err := svc.RankJobsForSkills(context.Background(), []string{"Go"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "C", got[2].ID)
}

func TestHealthStatus(t *testing.T) {
	svc := NewService(corpus.NewCache(), noopRefresher{}, Options{})
	h := svc.HealthStatus()
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "uninitialized", h.State)
	assert.Zero(t, h.LastUpdate)

	svc = NewService(readyCache(t, corpus.Job{ID: "J1", Requirements: []string{"go"}}), noopRefresher{}, Options{})
	h = svc.HealthStatus()
	assert.Equal(t, 1, h.JobsLoaded)
	assert.True(t, h.ModelReady)
	assert.Equal(t, "ready", h.State)
	assert.Greater(t, h.LastUpdate, 0.0)
}
