// Package testutil holds helpers for integration and end-to-end tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// StartContainer starts req, terminates it on cleanup and returns the
// host:port of its first exposed port.
func StartContainer(t testing.TB, req tc.ContainerRequest) string {
	t.Helper()

	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("container endpoint: %v", err)
	}

	return endpoint
}

// StartMongo runs mongo:7 and returns a URI for database.
func StartMongo(t testing.TB, database string) string {
	t.Helper()

	addr := StartContainer(t, tc.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
	})

	return fmt.Sprintf("mongodb://%s/%s", addr, database)
}

// StartPostgres runs postgres:15-alpine and returns a DSN for database.
func StartPostgres(t testing.TB, database string) string {
	t.Helper()

	addr := StartContainer(t, tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_DB":       database,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(2 * time.Minute),
	})

	return fmt.Sprintf("postgres://postgres:password@%s/%s?sslmode=disable", addr, database)
}

// StartRedis runs redis:7-alpine and returns a redis:// URL.
func StartRedis(t testing.TB) string {
	t.Helper()

	addr := StartContainer(t, tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
	})

	return fmt.Sprintf("redis://%s/0", addr)
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}
