package corpus

import (
	"sync/atomic"
	"time"
)

// State is the lifecycle phase of the corpus cache.
type State int32

const (
	StateUninitialized State = iota
	StateBuilding
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Cache publishes the current snapshot. Readers call Load and keep the
// returned pointer for the whole ranking call; the writer swaps the pointer
// atomically, so a half-built snapshot is never observable.
type Cache struct {
	current atomic.Pointer[Snapshot]
	state   atomic.Int32
}

func NewCache() *Cache {
	return &Cache{}
}

// Load returns the current snapshot, or nil before the first publish.
func (c *Cache) Load() *Snapshot {
	return c.current.Load()
}

// Store publishes snap and moves the cache to Ready.
func (c *Cache) Store(snap *Snapshot) {
	c.current.Store(snap)
	c.state.Store(int32(StateReady))
}

// BeginBuild marks a rebuild in progress. The previous snapshot keeps
// serving readers.
func (c *Cache) BeginBuild() {
	c.state.Store(int32(StateBuilding))
}

// AbortBuild returns to the state implied by whether a snapshot exists.
func (c *Cache) AbortBuild() {
	if c.current.Load() != nil {
		c.state.Store(int32(StateReady))
		return
	}
	c.state.Store(int32(StateUninitialized))
}

func (c *Cache) State() State {
	return State(c.state.Load())
}

// Status is the summary reported by the health endpoint.
type Status struct {
	JobsLoaded int
	ModelReady bool
	LastUpdate time.Time
	Version    string
	State      State
}

func (c *Cache) Status() Status {
	st := Status{State: c.State()}
	if snap := c.Load(); snap != nil {
		st.JobsLoaded = snap.CorpusSize
		st.ModelReady = snap.Ready()
		st.LastUpdate = snap.BuiltAt
		st.Version = snap.Version
	}
	return st
}
