package db_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wuwenbin0122/applytrackr/internal/db"
	"github.com/wuwenbin0122/applytrackr/internal/utils"
)

func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	ctx := context.Background()
	schema := "applytrackr_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	quoted := pgx.Identifier{schema}.Sanitize()

	admin, err := db.NewPostgres(ctx, utils.PostgresConfig{DSN: dsn, ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	defer admin.Close()

	if _, err := admin.Pool.Exec(ctx, "CREATE SCHEMA "+quoted); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}
	defer func() {
		if _, err := admin.Pool.Exec(context.Background(), "DROP SCHEMA "+quoted+" CASCADE"); err != nil {
			t.Errorf("failed to drop test schema: %v", err)
		}
	}()

	store, err := db.NewPostgres(ctx, utils.PostgresConfig{
		DSN:            dsn,
		Schema:         schema,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}

	var tables int
	err = store.Pool.QueryRow(ctx,
		"SELECT count(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name IN ('users', 'applications')",
		schema,
	).Scan(&tables)
	if err != nil {
		t.Fatalf("failed to inspect test schema: %v", err)
	}
	if tables != 2 {
		t.Fatalf("expected tables inside %s, found %d", schema, tables)
	}

	runStoreContract(t, db.NewPostgresUsers(store), db.NewPostgresApplications(store))
}
