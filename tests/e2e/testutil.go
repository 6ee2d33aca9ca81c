package e2e

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"github.com/veleth/anima/internal/being"
)

// Suppress unused import warning for testcontainers base package.
var _ = testcontainers.GenericContainerRequest{}

// Package-level shared state — set by TestMain, used by all subtests.
var (
	testLogger   *zap.Logger
	testPGDSN    string
	testRedisURL string
)

// startPostgres starts a PostgreSQL testcontainer, returns DSN + cleanup func.
func startPostgres(ctx context.Context) (string, func(), error) {
	container, err := tcpg.Run(ctx, "postgres:16-alpine",
		tcpg.WithDatabase("anima_test"),
		tcpg.WithUsername("test"),
		tcpg.WithPassword("test"),
		tcpg.BasicWaitStrategies(),
	)
	if err != nil {
		return "", nil, fmt.Errorf("start postgres: %w", err)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("pg connection string: %w", err)
	}
	cleanup := func() { container.Terminate(ctx) }
	return dsn, cleanup, nil
}

// startRedis starts a Redis testcontainer, returns URL + cleanup func.
func startRedis(ctx context.Context) (string, func(), error) {
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return "", nil, fmt.Errorf("start redis: %w", err)
	}
	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("redis endpoint: %w", err)
	}
	url := "redis://" + endpoint
	cleanup := func() { container.Terminate(ctx) }
	return url, cleanup, nil
}

// truncateJournal empties the durable tables so tests sharing the
// container start from a blank history. Call after migrations have run.
func truncateJournal(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, testPGDSN)
	if err != nil {
		t.Fatalf("connect for truncate: %v", err)
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, `TRUNCATE records, slots`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

// scriptedActivity is a deterministic activity for lifecycle tests. Each
// call runs the next step in the script, sticking with the last step once
// the script is exhausted.
type scriptedActivity struct {
	spec  being.Spec
	steps []func(ctx context.Context, sc *being.Context) being.Result
	calls int
}

func (a *scriptedActivity) Spec() being.Spec { return a.spec }

func (a *scriptedActivity) Execute(ctx context.Context, sc *being.Context) being.Result {
	idx := a.calls
	if idx >= len(a.steps) {
		idx = len(a.steps) - 1
	}
	a.calls++
	if idx < 0 {
		return being.Succeed(nil)
	}
	return a.steps[idx](ctx, sc)
}

// uniqueStream names a Redis stream no other test run is tailing.
func uniqueStream(prefix string) string {
	return fmt.Sprintf("%s:%d", prefix, time.Now().UnixNano())
}
