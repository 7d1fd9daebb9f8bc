package dbtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reservation-backend/migrations"
)

// =====================================================
// POSTGRES-BACKED REPOSITORY TESTS
// =====================================================

// DatabaseURLEnv points repository tests at a disposable Postgres.
const DatabaseURLEnv = "TEST_DATABASE_URL"

// NewPostgres returns a pool bound to a fresh schema with the migrations applied.
// The schema is dropped when the test ends. Skips when TEST_DATABASE_URL is unset.
func NewPostgres(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(DatabaseURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", DatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer admin.Close(ctx)
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema + ",public"
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer dropCancel()
		conn, err := pgx.Connect(dropCtx, dsn)
		if err != nil {
			t.Logf("drop schema %s: %v", schema, err)
			return
		}
		defer conn.Close(dropCtx)
		if _, err := conn.Exec(dropCtx, "DROP SCHEMA "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
	})

	up, err := migrations.FS.ReadFile("000001_init.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(up)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	return pool
}

// SeedReservation inserts a customer, a product and a reservation in the given status.
func SeedReservation(t testing.TB, pool *pgxpool.Pool, status string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	userID := uuid.New()
	if _, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, full_name) VALUES ($1, $2, '테스트')`,
		userID, fmt.Sprintf("%s@example.test", userID),
	); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	var productID uuid.UUID
	if err := pool.QueryRow(ctx,
		`INSERT INTO products (title, price, max_participants) VALUES ('투어', 150000, 4) RETURNING id`,
	).Scan(&productID); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	var id uuid.UUID
	if err := pool.QueryRow(ctx, `
		INSERT INTO reservations (product_id, user_id, reservation_date, participants, total_amount, status)
		VALUES ($1, $2, NOW() + INTERVAL '7 days', 1, 150000, $3)
		RETURNING id`,
		productID, userID, status,
	).Scan(&id); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	return id
}

// InTx runs fn in a transaction that is always rolled back.
func InTx(t testing.TB, pool *pgxpool.Pool, fn func(tx pgx.Tx)) {
	t.Helper()
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	fn(tx)
}
