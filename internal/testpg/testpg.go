//go:build integration

// Package testpg starts a throwaway PostgreSQL container for integration
// tests.
package testpg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/postgres"
)

// Start runs postgres:16-alpine and returns a config pointing at it. The
// container is terminated when the test ends.
func Start(t *testing.T) config.PostgresConfig {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "jobmatch",
				"POSTGRES_PASSWORD": "jobmatch",
				"POSTGRES_DB":       "jobmatch",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) }) //nolint:errcheck

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.PostgresConfig{
		Host:            host,
		Port:            port.Int(),
		Database:        "jobmatch",
		User:            "jobmatch",
		Password:        "jobmatch",
		SSLMode:         "disable",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}
}

// Connect starts a container and returns a connected client.
func Connect(t *testing.T) *postgres.Client {
	t.Helper()
	client, err := postgres.New(Start(t))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() }) //nolint:errcheck
	return client
}
