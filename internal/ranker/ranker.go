// Package ranker orders the jobs of one corpus snapshot against a skill set.
// Exact requirement overlap dominates; TF-IDF cosine similarity only breaks
// ties within equal overlap, and the corpus index breaks exact ties.
package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/vectormodel"
)

// DefaultTopK is used when the caller passes a non-positive limit.
const DefaultTopK = 5

// Result is one ranked job. MatchCount and Similarity are the keys that
// produced the order.
type Result struct {
	Index      int     `json:"-"`
	DocumentID string  `json:"document_id"`
	MatchCount int     `json:"match_count"`
	Similarity float64 `json:"similarity_score"`
	Rank       int     `json:"rank"`
}

// Rank returns at most topK results for skills against snap. It returns an
// empty slice, never an error, when the query is empty, the snapshot is not
// ready, or no job shares a requirement with the query.
func Rank(skills textnorm.Set, snap *corpus.Snapshot, topK int) []Result {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if skills.Len() == 0 || !snap.Ready() {
		return []Result{}
	}

	candidates := make([]Result, 0)
	for i, reqs := range snap.RequirementSets {
		if n := skills.IntersectCount(reqs); n > 0 {
			candidates = append(candidates, Result{
				Index:      i,
				DocumentID: snap.Jobs[i].ID,
				MatchCount: n,
			})
		}
	}
	if len(candidates) == 0 {
		return []Result{}
	}

	query, err := snap.Model.Transform(skills.Join())
	if err != nil {
		return []Result{}
	}
	if !query.IsZero() {
		for k := range candidates {
			candidates[k].Similarity = vectormodel.Cosine(query, snap.Matrix[candidates[k].Index])
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.MatchCount != b.MatchCount {
			return a.MatchCount > b.MatchCount
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		return a.Index < b.Index
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	for k := range candidates {
		candidates[k].Rank = k + 1
	}
	return candidates
}
