package resume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/resume/extract"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/resume/validator"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/metrics"
)

const defaultWorkers = 4

type Options struct {
	// Model backs ml_based ranking. Nil makes that method unavailable.
	Model   *LinearModel
	Workers int
	Metrics *metrics.Metrics
}

type Scorer struct {
	extractor extract.Extractor
	opts      Options
	logger    *slog.Logger
}

func NewScorer(extractor extract.Extractor, opts Options) *Scorer {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &Scorer{
		extractor: extractor,
		opts:      opts,
		logger:    slog.Default().With("component", "resume-scorer"),
	}
}

// Rank validates req, extracts every résumé, scores the ones with text and
// returns them by descending score. Applicants with equal scores keep their
// input order.
func (s *Scorer) Rank(ctx context.Context, req Request) (Outcome, error) {
	if req.Method == "" {
		req.Method = MethodRuleBased
	}
	if err := validator.Struct(req); err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) && ve.Has("method") {
			return Outcome{}, apperrors.Newf(apperrors.ErrInvalidMethod, http.StatusBadRequest, "method %q", req.Method)
		}
		return Outcome{}, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, err.Error())
	}
	if req.Method == MethodMLBased && s.opts.Model == nil {
		return Outcome{}, apperrors.ErrModelUnavailable
	}

	candidates, err := s.extractAll(ctx, req.Resumes)
	if err != nil {
		return Outcome{}, err
	}
	if len(candidates) == 0 {
		s.logger.Warn("no valid resumes", "submitted", len(req.Resumes))
		return Outcome{Rankings: []Ranking{}, NoValidResumes: true}, nil
	}

	var rankings []Ranking
	switch req.Method {
	case MethodMLBased:
		rankings, err = s.scoreModel(req, candidates)
	default:
		rankings = scoreKeywords(req, candidates)
	}
	if err != nil {
		return Outcome{}, err
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Score > rankings[j].Score
	})
	if s.opts.Metrics != nil {
		s.opts.Metrics.ResumesScoredTotal.WithLabelValues(string(req.Method)).Add(float64(len(rankings)))
	}
	s.logger.Info("resumes ranked",
		"method", req.Method,
		"submitted", len(req.Resumes),
		"ranked", len(rankings),
	)
	return Outcome{Rankings: rankings}, nil
}

// extractAll reads résumés concurrently. Results keep input order; an
// applicant with no ID, or whose résumé is missing, unreadable or blank, is
// dropped.
func (s *Scorer) extractAll(ctx context.Context, applicants []Applicant) ([]Candidate, error) {
	texts := make([]string, len(applicants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, a := range applicants {
		if strings.TrimSpace(a.ApplicantID) == "" {
			s.logger.Warn("applicant without id", "path", a.ResumePath)
			continue
		}
		g.Go(func() error {
			text, err := s.extractor.Extract(gctx, a.ResumePath)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("resume extraction failed",
					"applicant_id", a.ApplicantID,
					"path", a.ResumePath,
					"error", err,
				)
				return nil
			}
			texts[i] = strings.TrimSpace(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extracting resumes: %w", err)
	}

	out := make([]Candidate, 0, len(applicants))
	for i, a := range applicants {
		if texts[i] == "" {
			s.logger.Warn("resume excluded", "applicant_id", a.ApplicantID, "path", a.ResumePath)
			if s.opts.Metrics != nil {
				s.opts.Metrics.ResumesExcludedTotal.Inc()
			}
			continue
		}
		out = append(out, Candidate{ApplicantID: a.ApplicantID, Text: texts[i]})
	}
	return out, nil
}

// scoreKeywords scores each résumé by the share of posting keywords it
// contains. Keywords come from the title and requirements, duplicates
// included.
func scoreKeywords(req Request, candidates []Candidate) []Ranking {
	keywords := textnorm.Tokens(req.JobTitle + " " + req.JobRequirements)
	out := make([]Ranking, len(candidates))
	for i, c := range candidates {
		out[i] = Ranking{ApplicantID: c.ApplicantID, Score: KeywordScore(keywords, textnorm.TokenSet(c.Text))}
	}
	return out
}

// KeywordScore is 100 * hits / len(keywords), rounded to two decimals, or 0
// when there are no keywords.
func KeywordScore(keywords []string, words textnorm.Set) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, k := range keywords {
		if words.Contains(k) {
			hits++
		}
	}
	return round2(100 * float64(hits) / float64(len(keywords)))
}

func (s *Scorer) scoreModel(req Request, candidates []Candidate) ([]Ranking, error) {
	model := s.opts.Model
	jobText := strings.Join([]string{req.JobTitle, req.JobDescription, req.JobRequirements}, " ")
	jobVec, err := model.Vectorize(jobText)
	if err != nil {
		return nil, fmt.Errorf("vectorizing job posting: %w", err)
	}
	s.logger.Debug("job posting vectorized", "terms", len(jobVec.Indices))

	out := make([]Ranking, len(candidates))
	for i, c := range candidates {
		score, err := model.Predict(c.Text)
		if err != nil {
			return nil, fmt.Errorf("scoring applicant %s: %w", c.ApplicantID, err)
		}
		out[i] = Ranking{ApplicantID: c.ApplicantID, Score: round2(score)}
	}
	return out, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
