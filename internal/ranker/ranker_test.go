package ranker

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/textnorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSnapshot(t testing.TB, jobs []corpus.Job) *corpus.Snapshot {
	t.Helper()
	snap, err := corpus.Build(jobs, time.Now(), "test")
	require.NoError(t, err)
	return snap
}

func TestScenarioA(t *testing.T) {
	snap := buildSnapshot(t, []corpus.Job{
		{ID: "J1", Requirements: []string{"python", "sql"}},
		{ID: "J2", Requirements: []string{"java"}},
	})

	results := Rank(textnorm.NewSet([]string{"python", "go"}), snap, 5)
	require.Len(t, results, 1)
	assert.Equal(t, "J1", results[0].DocumentID)
	assert.Equal(t, 1, results[0].MatchCount)
	assert.Equal(t, 1, results[0].Rank)
	assert.Greater(t, results[0].Similarity, 0.0)
}

func TestScenarioBEmptyCorpus(t *testing.T) {
	snap := buildSnapshot(t, nil)
	assert.Empty(t, Rank(textnorm.NewSet([]string{"python"}), snap, 5))
	assert.Empty(t, Rank(textnorm.NewSet([]string{"python"}), nil, 5))
}

func TestEmptyQuery(t *testing.T) {
	snap := buildSnapshot(t, []corpus.Job{{ID: "J1", Requirements: []string{"python"}}})
	assert.Empty(t, Rank(textnorm.NewSet(nil), snap, 5))
	assert.Empty(t, Rank(textnorm.NewSet([]string{"", "  ", "!!"}), snap, 5))
}

func TestNoMatch(t *testing.T) {
	snap := buildSnapshot(t, []corpus.Job{
		{ID: "J1", Requirements: []string{"python"}},
		{ID: "J2", Requirements: []string{"java"}},
	})
	assert.Empty(t, Rank(textnorm.NewSet([]string{"cobol"}), snap, 5))
}

func TestMatchCountDominatesSimilarity(t *testing.T) {
	snap := buildSnapshot(t, []corpus.Job{
		{ID: "broad", Requirements: []string{"python", "sql", "docker", "aws", "linux"}},
		{ID: "narrow", Requirements: []string{"python"}},
	})
	results := Rank(textnorm.NewSet([]string{"python", "sql"}), snap, 5)
	require.Len(t, results, 2)
	assert.Equal(t, "broad", results[0].DocumentID)
	assert.Equal(t, 2, results[0].MatchCount)
	assert.Equal(t, "narrow", results[1].DocumentID)
}

func TestSimilarityBreaksTiesThenIndex(t *testing.T) {
	snap := buildSnapshot(t, []corpus.Job{
		{ID: "diluted", Requirements: []string{"python", "excel", "word", "outlook"}},
		{ID: "focused", Requirements: []string{"python"}},
		{ID: "focused-dup", Requirements: []string{"python"}},
	})
	results := Rank(textnorm.NewSet([]string{"python"}), snap, 5)
	require.Len(t, results, 3)
	assert.Equal(t, "focused", results[0].DocumentID)
	assert.Equal(t, "focused-dup", results[1].DocumentID)
	assert.Equal(t, "diluted", results[2].DocumentID)
	assert.Equal(t, results[0].Similarity, results[1].Similarity)
}

func TestTopKTruncates(t *testing.T) {
	jobs := make([]corpus.Job, 10)
	for i := range jobs {
		jobs[i] = corpus.Job{ID: fmt.Sprintf("J%d", i), Requirements: []string{"go"}}
	}
	snap := buildSnapshot(t, jobs)

	assert.Len(t, Rank(textnorm.NewSet([]string{"go"}), snap, 3), 3)
	assert.Len(t, Rank(textnorm.NewSet([]string{"go"}), snap, 0), DefaultTopK)
}

func TestRankingProperties(t *testing.T) {
	vocab := []string{"go", "python", "sql", "java", "docker", "aws", "react", "linux", "rust", "kafka"}
	rng := rand.New(rand.NewSource(7))
	jobs := make([]corpus.Job, 60)
	for i := range jobs {
		n := 1 + rng.Intn(5)
		reqs := make([]string, n)
		for k := range reqs {
			reqs[k] = vocab[rng.Intn(len(vocab))]
		}
		jobs[i] = corpus.Job{ID: fmt.Sprintf("J%02d", i), Requirements: reqs}
	}
	snap := buildSnapshot(t, jobs)

	for q := 0; q < 50; q++ {
		skills := make([]string, 1+rng.Intn(4))
		for k := range skills {
			skills[k] = vocab[rng.Intn(len(vocab))]
		}
		query := textnorm.NewSet(skills)
		results := Rank(query, snap, 10)

		for i, r := range results {
			assert.GreaterOrEqual(t, r.MatchCount, 1)
			assert.GreaterOrEqual(t, r.Similarity, 0.0)
			assert.LessOrEqual(t, r.Similarity, 1.0)
			assert.Equal(t, i+1, r.Rank)
			if i == 0 {
				continue
			}
			prev := results[i-1]
			ordered := prev.MatchCount > r.MatchCount ||
				(prev.MatchCount == r.MatchCount && prev.Similarity >= r.Similarity)
			assert.True(t, ordered, "results %d and %d out of order", i-1, i)
		}

		again := Rank(query, snap, 10)
		assert.Equal(t, results, again)
	}
}

func BenchmarkRank(b *testing.B) {
	jobs := make([]corpus.Job, 500)
	for i := range jobs {
		jobs[i] = corpus.Job{
			ID:           fmt.Sprintf("J%d", i),
			Requirements: []string{"go", "python", fmt.Sprintf("skill%d", i%37), fmt.Sprintf("tool%d", i%11)},
		}
	}
	snap := buildSnapshot(b, jobs)
	query := textnorm.NewSet([]string{"go", "skill3", "tool4"})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Rank(query, snap, DefaultTopK)
	}
}
