// Package store reads the job corpus from PostgreSQL. The recommender never
// writes jobs; it only counts and lists them.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus"
	apperrors "github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/resilience"
)

//go:embed schema.sql
var Schema string

const (
	countJobsQuery = `SELECT COUNT(*) FROM jobs`

	listJobsQuery = `
SELECT j.id,
       COALESCE(j.title, ''),
       COALESCE(j.description, ''),
       j.requirements,
       COALESCE(j.salary, ''),
       COALESCE(j.location, ''),
       COALESCE(j.job_type, ''),
       COALESCE(c.id, ''),
       COALESCE(c.name, ''),
       COALESCE(c.logo, '')
FROM jobs j
LEFT JOIN companies c ON c.id = j.company_id
ORDER BY j.created_at, j.id`
)

// Store implements the refresher's job source on top of PostgreSQL. Every
// call runs under a query timeout and a circuit breaker; failures surface as
// ErrStoreUnavailable.
type Store struct {
	client       *postgres.Client
	breaker      *resilience.CircuitBreaker
	queryTimeout time.Duration
	logger       *slog.Logger
}

func New(client *postgres.Client, queryTimeout time.Duration) *Store {
	return &Store{
		client:       client,
		breaker:      resilience.NewCircuitBreaker("postgres-jobs", resilience.CircuitBreakerConfig{}),
		queryTimeout: queryTimeout,
		logger:       slog.Default().With("component", "job-store"),
	}
}

// EnsureSchema creates the jobs and companies tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("applying job schema: %w", err)
	}
	return nil
}

// Count returns the number of jobs in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.guard(ctx, "count jobs", func(ctx context.Context) error {
		return s.client.DB.QueryRowContext(ctx, countJobsQuery).Scan(&n)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// List returns every job with its company reference and field defaults
// applied, in insertion order. The order fixes each job's corpus index.
func (s *Store) List(ctx context.Context) ([]corpus.Job, error) {
	var jobs []corpus.Job
	err := s.guard(ctx, "list jobs", func(ctx context.Context) error {
		return s.client.InReadTx(ctx, func(tx *sql.Tx) error {
			rows, err := tx.QueryContext(ctx, listJobsQuery)
			if err != nil {
				return err
			}
			defer rows.Close()

			jobs = jobs[:0]
			for rows.Next() {
				var job corpus.Job
				var reqs pq.StringArray
				if err := rows.Scan(
					&job.ID, &job.Title, &job.Description, &reqs,
					&job.Salary, &job.Location, &job.JobType,
					&job.Company.ID, &job.Company.Name, &job.Company.Logo,
				); err != nil {
					return fmt.Errorf("scanning job row: %w", err)
				}
				job.Requirements = []string(reqs)
				jobs = append(jobs, job.WithDefaults())
			}
			return rows.Err()
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("jobs listed", "count", len(jobs))
	return jobs, nil
}

// BreakerState exposes the circuit state for health reporting.
func (s *Store) BreakerState() string {
	return s.breaker.State()
}

func (s *Store) guard(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := s.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, s.queryTimeout, op, fn)
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrStoreUnavailable, err)
	}
	return nil
}
