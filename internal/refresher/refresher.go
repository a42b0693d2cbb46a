// Package refresher keeps the published corpus snapshot in step with the job
// store. It polls the store's job count and rebuilds when the count changes
// or the snapshot is older than the staleness limit. A failed cycle is logged
// and the previous snapshot keeps serving.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/snapshotstore"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/tracing"
)

// Trigger names why a rebuild ran.
type Trigger string

const (
	TriggerInitial      Trigger = "initial"
	TriggerCountChanged Trigger = "count_changed"
	TriggerStale        Trigger = "stale"
	TriggerForced       Trigger = "forced"

	triggerCheck Trigger = "check"
)

// Source is the read side of the job store.
type Source interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]corpus.Job, error)
}

// Persister saves published snapshots and loads the last one at startup.
type Persister interface {
	Save(snap *corpus.Snapshot) error
	Load() (*corpus.Snapshot, error)
}

// Invalidator drops cached results computed against an older snapshot.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// EventSink receives refresh events for analytics.
type EventSink interface {
	Track(event analytics.Event)
}

type Options struct {
	PollInterval time.Duration
	StaleAfter   time.Duration
	Persister    Persister
	Invalidator  Invalidator
	Events       EventSink
	Metrics      *metrics.Metrics
	Now          func() time.Time
}

// Refresher is the single writer of the corpus cache. mu covers the whole
// fetch, build and publish sequence so rebuilds never interleave.
type Refresher struct {
	source Source
	cache  *corpus.Cache
	opts   Options

	mu        sync.Mutex
	lastCount int
	lastBuilt time.Time

	logger *slog.Logger
}

func New(source Source, cache *corpus.Cache, opts Options) *Refresher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Refresher{
		source:    source,
		cache:     cache,
		opts:      opts,
		lastCount: -1,
		logger:    slog.Default().With("component", "refresher"),
	}
}

// WarmStart installs the persisted snapshot, if any, before the first build.
// It does nothing once a snapshot has been published.
func (r *Refresher) WarmStart(ctx context.Context) error {
	if r.opts.Persister == nil {
		return nil
	}
	snap, err := r.opts.Persister.Load()
	if errors.Is(err, snapshotstore.ErrNoSnapshot) {
		r.logger.Info("no persisted snapshot, starting cold")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading persisted snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache.Load() != nil {
		return nil
	}
	r.cache.Store(snap)
	r.lastCount = snap.CorpusSize
	r.lastBuilt = snap.BuiltAt
	r.observeSnapshot(snap)
	r.logger.Info("warm start from persisted snapshot",
		"version", snap.Version,
		"jobs", snap.CorpusSize,
		"built_at", snap.BuiltAt,
	)
	return nil
}

// CheckAndRefresh rebuilds when the store's job count differs from the last
// build or the last build is older than StaleAfter. It reports whether a
// rebuild ran.
func (r *Refresher) CheckAndRefresh(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count, err := r.source.Count(ctx)
	if err != nil {
		r.recordFailure(triggerCheck, 0, err)
		return false, fmt.Errorf("checking job count: %w", err)
	}

	var trigger Trigger
	switch {
	case r.lastBuilt.IsZero():
		trigger = TriggerInitial
	case count != r.lastCount:
		trigger = TriggerCountChanged
	case r.opts.Now().Sub(r.lastBuilt) > r.opts.StaleAfter:
		trigger = TriggerStale
	default:
		return false, nil
	}
	r.logger.Info("refresh triggered",
		"trigger", trigger,
		"count", count,
		"last_count", r.lastCount,
	)
	if err := r.rebuildLocked(ctx, trigger); err != nil {
		return false, err
	}
	return true, nil
}

// ForceRefresh rebuilds unconditionally.
func (r *Refresher) ForceRefresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rebuildLocked(ctx, TriggerForced)
}

// Serve runs the initial build and then polls every PollInterval until ctx
// is cancelled. Failed cycles never end the loop.
func (r *Refresher) Serve(ctx context.Context) error {
	if _, err := r.CheckAndRefresh(ctx); err != nil {
		r.logger.Error("initial refresh failed", "error", err)
	}
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresh loop stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.CheckAndRefresh(ctx); err != nil {
				r.logger.Error("periodic refresh failed", "error", err)
			}
		}
	}
}

func (r *Refresher) String() string {
	return "model-refresher"
}

func (r *Refresher) rebuildLocked(ctx context.Context, trigger Trigger) (err error) {
	builtAt := r.opts.Now()
	start := time.Now()
	version := uuid.NewString()
	ctx, span := tracing.Start(ctx, "refresh", version)
	span.SetAttr("trigger", string(trigger))
	defer func() {
		span.End(err)
		span.Log(r.logger)
	}()
	r.cache.BeginBuild()

	listCtx, listSpan := tracing.StartChild(ctx, "list_jobs")
	jobs, err := r.source.List(listCtx)
	listSpan.End(err)
	if err != nil {
		r.cache.AbortBuild()
		r.recordFailure(trigger, time.Since(start), err)
		return fmt.Errorf("fetching jobs: %w", err)
	}

	_, buildSpan := tracing.StartChild(ctx, "build_snapshot")
	snap, err := corpus.Build(jobs, builtAt, version)
	buildSpan.End(err)
	if err != nil {
		r.cache.AbortBuild()
		r.recordFailure(trigger, time.Since(start), err)
		return fmt.Errorf("building snapshot: %w", err)
	}

	r.cache.Store(snap)
	r.lastCount = len(jobs)
	r.lastBuilt = builtAt
	elapsed := time.Since(start)

	r.logger.Info("snapshot published",
		"trigger", trigger,
		"version", snap.Version,
		"jobs", snap.CorpusSize,
		"vocabulary", snap.Model.Dim(),
		"model_ready", snap.Ready(),
		"duration", elapsed,
	)
	if !snap.Ready() {
		r.logger.Warn("published snapshot has no usable model; recommendations will be empty")
	}
	r.afterPublish(ctx, snap, trigger, elapsed)
	return nil
}

func (r *Refresher) afterPublish(ctx context.Context, snap *corpus.Snapshot, trigger Trigger, elapsed time.Duration) {
	if r.opts.Persister != nil {
		_, span := tracing.StartChild(ctx, "persist")
		err := r.opts.Persister.Save(snap)
		span.End(err)
		if err != nil {
			r.logger.Error("persisting snapshot failed", "version", snap.Version, "error", err)
		}
	}
	if r.opts.Invalidator != nil {
		invCtx, span := tracing.StartChild(ctx, "invalidate_results")
		err := r.opts.Invalidator.Invalidate(invCtx)
		span.End(err)
		if err != nil {
			r.logger.Warn("result cache invalidation failed", "error", err)
		}
	}
	if m := r.opts.Metrics; m != nil {
		m.RefreshesTotal.WithLabelValues(string(trigger), "success").Inc()
		m.RefreshDuration.Observe(elapsed.Seconds())
	}
	r.observeSnapshot(snap)
	if r.opts.Events != nil {
		r.opts.Events.Track(analytics.RefreshEvent{
			Type:       analytics.EventModelRefreshed,
			Trigger:    string(trigger),
			CorpusSize: snap.CorpusSize,
			ModelReady: snap.Ready(),
			Version:    snap.Version,
			DurationMs: elapsed.Milliseconds(),
			Timestamp:  snap.BuiltAt,
		})
	}
}

func (r *Refresher) observeSnapshot(snap *corpus.Snapshot) {
	m := r.opts.Metrics
	if m == nil {
		return
	}
	m.CorpusSize.Set(float64(snap.CorpusSize))
	m.SnapshotBuiltAt.Set(float64(snap.BuiltAt.Unix()))
	if snap.Ready() {
		m.ModelReady.Set(1)
	} else {
		m.ModelReady.Set(0)
	}
}

func (r *Refresher) recordFailure(trigger Trigger, elapsed time.Duration, err error) {
	if m := r.opts.Metrics; m != nil {
		m.RefreshFailuresTotal.Inc()
		m.RefreshesTotal.WithLabelValues(string(trigger), "error").Inc()
	}
	if r.opts.Events != nil {
		r.opts.Events.Track(analytics.RefreshEvent{
			Type:       analytics.EventRefreshFailed,
			Trigger:    string(trigger),
			DurationMs: elapsed.Milliseconds(),
			Error:      err.Error(),
			Timestamp:  r.opts.Now(),
		})
	}
}
