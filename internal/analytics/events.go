package analytics

import "time"

type EventType string

const (
	EventRecommendation EventType = "recommendation"
	EventModelRefreshed EventType = "model_refreshed"
	EventRefreshFailed  EventType = "refresh_failed"
)

// Event is anything the collector can publish.
type Event interface {
	EventType() EventType
}

type RecommendationEvent struct {
	Type            EventType `json:"type"`
	Skills          []string  `json:"skills"`
	Returned        int       `json:"returned"`
	TopMatchCount   int       `json:"top_match_count"`
	LatencyMs       int64     `json:"latency_ms"`
	CacheHit        bool      `json:"cache_hit"`
	ModelReady      bool      `json:"model_ready"`
	SnapshotVersion string    `json:"snapshot_version"`
	Timestamp       time.Time `json:"timestamp"`
	RequestID       string    `json:"request_id"`
}

func (e RecommendationEvent) EventType() EventType { return EventRecommendation }

// RefreshEvent reports one snapshot rebuild attempt. Type is
// EventModelRefreshed on success and EventRefreshFailed otherwise.
type RefreshEvent struct {
	Type       EventType `json:"type"`
	Trigger    string    `json:"trigger"`
	CorpusSize int       `json:"corpus_size"`
	ModelReady bool      `json:"model_ready"`
	Version    string    `json:"version,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e RefreshEvent) EventType() EventType { return e.Type }
