package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/kafka"
)

const (
	latencyWindow = 10000
	topSkillLimit = 10

	// Skills come straight from request bodies. Past these bounds new skills
	// are not tracked, existing ones keep counting.
	maxTrackedSkills = 2000
	maxSkillLength   = 64
)

type AggregatedStats struct {
	TotalRecommendations int64            `json:"total_recommendations"`
	CacheHits            int64            `json:"cache_hits"`
	CacheMisses          int64            `json:"cache_misses"`
	EmptyResults         int64            `json:"empty_results"`
	NotReadyResults      int64            `json:"not_ready_results"`
	AvgLatencyMs         float64          `json:"avg_latency_ms"`
	P50LatencyMs         int64            `json:"p50_latency_ms"`
	P95LatencyMs         int64            `json:"p95_latency_ms"`
	P99LatencyMs         int64            `json:"p99_latency_ms"`
	TopSkills            []SkillCount     `json:"top_skills"`
	UnmatchedSkills      []SkillCount     `json:"unmatched_skills"`
	RequestsPerMinute    float64          `json:"requests_per_minute"`
	Refreshes            int64            `json:"refreshes"`
	RefreshFailures      int64            `json:"refresh_failures"`
	RefreshesByTrigger   map[string]int64 `json:"refreshes_by_trigger"`
	LastSnapshotVersion  string           `json:"last_snapshot_version,omitempty"`
	LastCorpusSize       int              `json:"last_corpus_size"`
	LastRefreshAt        *time.Time       `json:"last_refresh_at,omitempty"`
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int64  `json:"count"`
}

// Aggregator folds recommendation and refresh events into running stats.
type Aggregator struct {
	mu                 sync.RWMutex
	total              int64
	cacheHits          int64
	cacheMisses        int64
	emptyResults       int64
	notReady           int64
	latencies          []int64
	latencyNext        int
	skillCounts        map[string]int64
	unmatchedSkills    map[string]int64
	refreshes          int64
	refreshFailures    int64
	refreshesByTrigger map[string]int64
	lastVersion        string
	lastCorpusSize     int
	lastRefreshAt      time.Time
	startTime          time.Time

	logger *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:          make([]int64, 0, 1024),
		skillCounts:        make(map[string]int64),
		unmatchedSkills:    make(map[string]int64),
		refreshesByTrigger: make(map[string]int64),
		startTime:          time.Now(),
		logger:             slog.Default().With("component", "analytics-aggregator"),
	}
}

type envelope struct {
	Type EventType `json:"type"`
}

// HandleEvent decodes one published event and records it. Undecodable or
// unknown events are logged and skipped.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		env, err := kafka.DecodeJSON[envelope](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		switch env.Type {
		case EventRecommendation:
			event, err := kafka.DecodeJSON[RecommendationEvent](value)
			if err != nil {
				return fmt.Errorf("decoding recommendation event: %w", err)
			}
			agg.RecordRecommendation(event)
		case EventModelRefreshed, EventRefreshFailed:
			event, err := kafka.DecodeJSON[RefreshEvent](value)
			if err != nil {
				return fmt.Errorf("decoding refresh event: %w", err)
			}
			agg.RecordRefresh(event)
		default:
			agg.logger.Warn("unknown analytics event type", "type", env.Type, "key", string(key))
		}
		return nil
	}
}

func (a *Aggregator) RecordRecommendation(event RecommendationEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if !event.ModelReady {
		a.notReady++
	}
	if event.Returned == 0 {
		a.emptyResults++
	}

	if len(a.latencies) < latencyWindow {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.latencyNext] = event.LatencyMs
		a.latencyNext = (a.latencyNext + 1) % latencyWindow
	}

	for _, skill := range event.Skills {
		countSkill(a.skillCounts, skill)
		if event.Returned == 0 && event.ModelReady {
			countSkill(a.unmatchedSkills, skill)
		}
	}
}

func countSkill(counts map[string]int64, skill string) {
	if _, ok := counts[skill]; ok {
		counts[skill]++
		return
	}
	if len(skill) > maxSkillLength || len(counts) >= maxTrackedSkills {
		return
	}
	counts[skill] = 1
}

func (a *Aggregator) RecordRefresh(event RefreshEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.refreshesByTrigger[event.Trigger]++
	if event.Type == EventRefreshFailed {
		a.refreshFailures++
		return
	}
	a.refreshes++
	a.lastVersion = event.Version
	a.lastCorpusSize = event.CorpusSize
	a.lastRefreshAt = event.Timestamp
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalRecommendations: a.total,
		CacheHits:            a.cacheHits,
		CacheMisses:          a.cacheMisses,
		EmptyResults:         a.emptyResults,
		NotReadyResults:      a.notReady,
		Refreshes:            a.refreshes,
		RefreshFailures:      a.refreshFailures,
		RefreshesByTrigger:   make(map[string]int64, len(a.refreshesByTrigger)),
		LastSnapshotVersion:  a.lastVersion,
		LastCorpusSize:       a.lastCorpusSize,
	}
	for trigger, n := range a.refreshesByTrigger {
		stats.RefreshesByTrigger[trigger] = n
	}
	if !a.lastRefreshAt.IsZero() {
		at := a.lastRefreshAt
		stats.LastRefreshAt = &at
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopSkills = topN(a.skillCounts, topSkillLimit)
	stats.UnmatchedSkills = topN(a.unmatchedSkills, topSkillLimit)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.RequestsPerMinute = float64(a.total) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count desc, then skill asc so equal counts are stable.
func topN(counts map[string]int64, n int) []SkillCount {
	result := make([]SkillCount, 0, len(counts))
	for skill, count := range counts {
		result = append(result, SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Skill < result[j].Skill
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
