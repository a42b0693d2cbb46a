package corpus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJobs() []Job {
	return []Job{
		{ID: "J1", Requirements: []string{"Python", "SQL"}},
		{ID: "J2", Requirements: []string{"java"}},
		{ID: "J3", Requirements: []string{"", "  Go  ", "Kubernetes!"}},
	}
}

func TestBuildKeepsLockstep(t *testing.T) {
	now := time.Unix(1700000000, 0)
	snap, err := Build(sampleJobs(), now, "v1")
	require.NoError(t, err)

	assert.True(t, snap.Ready())
	assert.Equal(t, 3, snap.CorpusSize)
	assert.Len(t, snap.RequirementSets, 3)
	assert.Len(t, snap.Matrix, 3)
	assert.Equal(t, now, snap.BuiltAt)
	assert.True(t, snap.RequirementSets[2].Contains("kubernetes"))
	assert.True(t, snap.RequirementSets[0].Contains("python"))
}

func TestBuildEmptyCorpusIsPublishedButNotReady(t *testing.T) {
	snap, err := Build(nil, time.Now(), "v0")
	require.NoError(t, err)
	assert.False(t, snap.Ready())
	assert.Equal(t, 0, snap.CorpusSize)
}

func TestBuildJobsWithoutRequirementsIsNotReady(t *testing.T) {
	snap, err := Build([]Job{{ID: "J1"}, {ID: "J2", Requirements: []string{"!!"}}}, time.Now(), "v0")
	require.NoError(t, err)
	assert.False(t, snap.Ready())
	assert.Equal(t, 2, snap.CorpusSize)
}

func TestJobWithDefaults(t *testing.T) {
	j := Job{ID: "J1"}.WithDefaults()
	assert.Equal(t, DefaultTitle, j.Title)
	assert.Equal(t, DefaultDescription, j.Description)
	assert.Equal(t, NotProvided, j.Salary)
	assert.Equal(t, NotProvided, j.Location)
	assert.Equal(t, NotProvided, j.JobType)
	assert.Equal(t, UnknownCompany, j.Company.Name)
	assert.NotNil(t, j.Requirements)

	kept := Job{Title: "SRE", Salary: "10 LPA"}.WithDefaults()
	assert.Equal(t, "SRE", kept.Title)
	assert.Equal(t, "10 LPA", kept.Salary)
}

func TestCacheLifecycle(t *testing.T) {
	c := NewCache()
	assert.Equal(t, StateUninitialized, c.State())
	assert.Nil(t, c.Load())

	c.BeginBuild()
	assert.Equal(t, StateBuilding, c.State())
	c.AbortBuild()
	assert.Equal(t, StateUninitialized, c.State())

	snap, err := Build(sampleJobs(), time.Now(), "v1")
	require.NoError(t, err)
	c.BeginBuild()
	c.Store(snap)
	assert.Equal(t, StateReady, c.State())

	c.BeginBuild()
	assert.Same(t, snap, c.Load())
	c.AbortBuild()
	assert.Equal(t, StateReady, c.State())

	st := c.Status()
	assert.Equal(t, 3, st.JobsLoaded)
	assert.True(t, st.ModelReady)
	assert.Equal(t, "v1", st.Version)
}

func TestCacheConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	c := NewCache()
	first, err := Build(sampleJobs(), time.Now(), "v1")
	require.NoError(t, err)
	c.Store(first)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snap := c.Load()
				if len(snap.Jobs) != len(snap.RequirementSets) || len(snap.Jobs) != len(snap.Matrix) {
					t.Errorf("torn snapshot %s", snap.Version)
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		jobs := append(sampleJobs(), Job{ID: "extra", Requirements: []string{"rust"}})
		next, err := Build(jobs[:1+i%4], time.Now(), "vN")
		require.NoError(t, err)
		c.Store(next)
	}
	wg.Wait()
}
