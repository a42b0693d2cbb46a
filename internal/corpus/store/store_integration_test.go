//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/testpg"
)

func TestStoreCountAndList(t *testing.T) {
	client := testpg.Connect(t)

	ctx := context.Background()
	s := New(client, 5*time.Second)
	require.NoError(t, s.EnsureSchema(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = client.DB.ExecContext(ctx, `INSERT INTO companies (id, name, logo) VALUES ('c1', 'Acme', 'acme.png')`)
	require.NoError(t, err)
	for i, stmt := range []string{
		`INSERT INTO jobs (id, title, requirements, company_id, created_at) VALUES ('J1', 'Backend', '{Python,SQL}', 'c1', now() - interval '2 minutes')`,
		`INSERT INTO jobs (id, requirements, created_at) VALUES ('J2', '{Java}', now() - interval '1 minute')`,
	} {
		_, err := client.DB.ExecContext(ctx, stmt)
		require.NoError(t, err, fmt.Sprintf("insert %d", i))
	}

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	jobs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "J1", jobs[0].ID)
	assert.Equal(t, []string{"Python", "SQL"}, jobs[0].Requirements)
	assert.Equal(t, "Acme", jobs[0].Company.Name)
	assert.Equal(t, corpus.DefaultTitle, jobs[1].Title)
	assert.Equal(t, corpus.UnknownCompany, jobs[1].Company.Name)
	assert.Equal(t, corpus.NotProvided, jobs[1].Salary)
	assert.Equal(t, "closed", s.BreakerState())
}
