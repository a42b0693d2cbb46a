// Package recommend is the boundary of the job recommender: it ranks the
// current snapshot against a caller's skills, forces refreshes, and reports
// health. Transport lives in the handler subpackage.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/recommend/cache"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/metrics"
)

// RecommendedJob is a job record plus the two keys it was ranked by.
type RecommendedJob struct {
	corpus.Job
	MatchCount      int     `json:"match_count"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Refresher is the write side the service exposes for forced rebuilds.
type Refresher interface {
	ForceRefresh(ctx context.Context) error
}

type EventSink interface {
	Track(event analytics.Event)
}

type Options struct {
	TopK    int
	Results *cache.ResultCache[[]RecommendedJob]
	Events  EventSink
	Metrics *metrics.Metrics
}

type Service struct {
	snapshots *corpus.Cache
	refresher Refresher
	opts      Options
	logger    *slog.Logger
}

func NewService(snapshots *corpus.Cache, refresher Refresher, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = ranker.DefaultTopK
	}
	return &Service{
		snapshots: snapshots,
		refresher: refresher,
		opts:      opts,
		logger:    slog.Default().With("component", "recommend-service"),
	}
}

// RankJobsForSkills returns up to TopK jobs for skills. Empty skills, an
// unready model, and no overlap all produce an empty list, never an error.
func (s *Service) RankJobsForSkills(ctx context.Context, skills []string) ([]RecommendedJob, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	query := textnorm.NewSet(skills)
	snap := s.snapshots.Load()
	ready := snap.Ready()

	if query.Len() == 0 || !ready {
		if !ready {
			log.Warn("model not ready, returning no recommendations")
		}
		s.observe(ctx, query, snap, nil, false, start)
		return []RecommendedJob{}, nil
	}

	compute := func() ([]RecommendedJob, error) {
		return s.toJobs(snap, ranker.Rank(query, snap, s.opts.TopK))
	}
	var (
		jobs []RecommendedJob
		hit  bool
		err  error
	)
	if s.opts.Results != nil {
		jobs, hit, err = s.opts.Results.GetOrCompute(ctx, snap.Version, query, s.opts.TopK, compute)
	} else {
		jobs, err = compute()
	}
	if err != nil {
		if m := s.opts.Metrics; m != nil {
			m.RecommendationsTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("ranking %d skills: %w", query.Len(), err)
	}

	log.Info("recommendations computed",
		"skills", query.Len(),
		"returned", len(jobs),
		"cache_hit", hit,
		"snapshot", snap.Version,
	)
	s.observe(ctx, query, snap, jobs, hit, start)
	return jobs, nil
}

// ForceRefresh rebuilds the snapshot immediately.
func (s *Service) ForceRefresh(ctx context.Context) error {
	return s.refresher.ForceRefresh(ctx)
}

// Health is the body of GET /health. LastUpdate is Unix seconds, 0 before
// the first build.
type Health struct {
	Status     string  `json:"status"`
	JobsLoaded int     `json:"jobs_loaded"`
	ModelReady bool    `json:"model_ready"`
	LastUpdate float64 `json:"last_update"`
	Version    string  `json:"version,omitempty"`
	State      string  `json:"state"`
}

func (s *Service) HealthStatus() Health {
	st := s.snapshots.Status()
	h := Health{
		Status:     "ok",
		JobsLoaded: st.JobsLoaded,
		ModelReady: st.ModelReady,
		Version:    st.Version,
		State:      st.State.String(),
	}
	if !st.LastUpdate.IsZero() {
		h.LastUpdate = float64(st.LastUpdate.UnixNano()) / 1e9
	}
	return h
}

func (s *Service) toJobs(snap *corpus.Snapshot, results []ranker.Result) ([]RecommendedJob, error) {
	jobs := make([]RecommendedJob, 0, len(results))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(snap.Jobs) {
			return nil, fmt.Errorf("ranked index %d outside snapshot %s of %d jobs", r.Index, snap.Version, len(snap.Jobs))
		}
		jobs = append(jobs, RecommendedJob{
			Job:             snap.Jobs[r.Index],
			MatchCount:      r.MatchCount,
			SimilarityScore: r.Similarity,
		})
	}
	return jobs, nil
}

func (s *Service) observe(ctx context.Context, query textnorm.Set, snap *corpus.Snapshot, jobs []RecommendedJob, hit bool, start time.Time) {
	elapsed := time.Since(start)
	ready := snap.Ready()

	if m := s.opts.Metrics; m != nil {
		outcome := "matched"
		switch {
		case !ready:
			outcome = "not_ready"
		case len(jobs) == 0:
			outcome = "empty"
		}
		m.RecommendationsTotal.WithLabelValues(outcome).Inc()
		cacheStatus := "miss"
		if hit {
			cacheStatus = "hit"
			m.CacheHitsTotal.Inc()
		} else if s.opts.Results != nil && ready && query.Len() > 0 {
			m.CacheMissesTotal.Inc()
		}
		m.RecommendationLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
		m.RecommendationResults.Observe(float64(len(jobs)))
	}

	if s.opts.Events != nil {
		event := analytics.RecommendationEvent{
			Type:       analytics.EventRecommendation,
			Skills:     query.Sorted(),
			Returned:   len(jobs),
			LatencyMs:  elapsed.Milliseconds(),
			CacheHit:   hit,
			ModelReady: ready,
			Timestamp:  time.Now().UTC(),
			RequestID:  logger.RequestID(ctx),
		}
		if snap != nil {
			event.SnapshotVersion = snap.Version
		}
		if len(jobs) > 0 {
			event.TopMatchCount = jobs[0].MatchCount
		}
		s.opts.Events.Track(event)
	}
}
