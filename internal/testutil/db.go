// Package testutil holds shared test fixtures.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/l2quest/internal/db/migrations"
)

const (
	postgresImage = "postgres:16-alpine"
	startTimeout  = 2 * time.Minute
)

// SetupTestDB starts a throwaway PostgreSQL container with the quest schema
// and returns a pool to it. Skipped under -short; torn down with the test.
func SetupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping PostgreSQL integration test in -short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("l2quest"),
		postgres.WithUsername("l2quest"),
		postgres.WithPassword("l2quest"),
		postgres.BasicWaitStrategies(),
	)
	// Контейнер мог частично стартовать даже при ошибке
	testcontainers.CleanupContainer(tb, container)
	if err != nil {
		tb.Fatalf("starting postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		tb.Fatalf("connecting to test db: %v", err)
	}
	tb.Cleanup(pool.Close)

	if err := migrate(ctx, pool); err != nil {
		tb.Fatalf("migrating test db: %v", err)
	}
	return pool
}

// migrate applies the embedded quest schema through a goose provider, which
// keeps no package-level state.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
