package corpus

import (
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/vectormodel"
)

// Snapshot bundles one consistent view of the corpus. Jobs, RequirementSets
// and Matrix share indices. A snapshot is never modified after Build returns;
// refreshes publish a new one.
type Snapshot struct {
	Version         string
	Jobs            []Job
	RequirementSets []textnorm.Set
	Model           *vectormodel.Model
	Matrix          []vectormodel.Vector
	CorpusSize      int
	BuiltAt         time.Time
}

// Ready reports whether the snapshot carries a usable model. A snapshot built
// from an empty corpus is published but not ready.
func (s *Snapshot) Ready() bool {
	return s != nil && s.Model.Trained() && len(s.Jobs) > 0 && len(s.Matrix) == len(s.Jobs)
}

// Build derives requirement sets, fits the vector model on the joined
// requirements of every job, and vectorises the corpus.
func Build(jobs []Job, builtAt time.Time, version string) (*Snapshot, error) {
	reqSets := make([]textnorm.Set, len(jobs))
	reqTexts := make([]string, len(jobs))
	for i, job := range jobs {
		reqSets[i] = textnorm.NewSet(job.Requirements)
		reqTexts[i] = joinRequirements(job.Requirements)
	}

	snap := &Snapshot{
		Version:         version,
		Jobs:            jobs,
		RequirementSets: reqSets,
		Model:           vectormodel.Fit(reqTexts),
		CorpusSize:      len(jobs),
		BuiltAt:         builtAt,
	}
	if snap.Model.Trained() {
		matrix, err := snap.Model.TransformAll(reqTexts)
		if err != nil {
			return nil, fmt.Errorf("vectorizing corpus: %w", err)
		}
		snap.Matrix = matrix
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Validate checks the lockstep invariant between jobs, requirement sets and
// matrix rows.
func (s *Snapshot) Validate() error {
	if len(s.RequirementSets) != len(s.Jobs) {
		return fmt.Errorf("snapshot %s: %d jobs but %d requirement sets", s.Version, len(s.Jobs), len(s.RequirementSets))
	}
	if s.Model.Trained() && len(s.Matrix) != len(s.Jobs) {
		return fmt.Errorf("snapshot %s: %d jobs but %d matrix rows", s.Version, len(s.Jobs), len(s.Matrix))
	}
	if s.CorpusSize != len(s.Jobs) {
		return fmt.Errorf("snapshot %s: corpus size %d does not match %d jobs", s.Version, s.CorpusSize, len(s.Jobs))
	}
	return nil
}

// joinRequirements renders a job's requirement list as model input: each
// item cleaned, empty items dropped, joined by spaces.
func joinRequirements(reqs []string) string {
	out := make([]byte, 0, 64)
	for _, r := range reqs {
		c := textnorm.Clean(r)
		if c == "" {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, c...)
	}
	return string(out)
}
