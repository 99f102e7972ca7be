// Command migrate applies the SQL files under migrations/ in version order.
// Applied versions are tracked in schema_migrations with a checksum, so
// re-running is a no-op and editing an already-applied file is an error.
// An advisory lock keeps concurrent migrators out.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"importops/internal/config"
	"importops/internal/db"
	"importops/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const migrationLockID = 4180553

func main() {
	log := logging.L()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		log.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migrationLockID).Scan(&locked); err != nil {
		log.Fatalf("advisory lock: %v", err)
	}
	if !locked {
		log.Fatal("another migrator is currently running")
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			checksum   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		log.Fatalf("create schema_migrations: %v", err)
	}

	for _, filename := range discoverMigrations(log) {
		applyMigration(ctx, log, pool, filename)
	}
	log.Info("migrations complete")
}

func discoverMigrations(log *logrus.Logger) []string {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		log.Fatalf("read migrations directory: %v", err)
	}

	var filenames []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version := extractVersion(log, entry.Name())
		if seen[version] {
			log.Fatalf("duplicate migration version %s", version)
		}
		seen[version] = true
		filenames = append(filenames, entry.Name())
	}
	sort.Strings(filenames)
	return filenames
}

func extractVersion(log *logrus.Logger, filename string) string {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		log.Fatalf("invalid migration filename %q, want NNN_description.sql", filename)
	}
	return parts[0]
}

func applyMigration(ctx context.Context, log *logrus.Logger, pool *pgxpool.Pool, filename string) {
	version := extractVersion(log, filename)

	sqlBytes, err := os.ReadFile(filepath.Join("migrations", filename))
	if err != nil {
		log.Fatalf("read %s: %v", filename, err)
	}
	sum := sha256.Sum256(sqlBytes)
	checksum := hex.EncodeToString(sum[:])

	var existing string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			log.Fatalf("checksum mismatch for %s: applied copy differs from the file on disk", filename)
		}
		log.WithField("file", filename).Info("already applied")
		return
	case errors.Is(err, pgx.ErrNoRows):
		// Not applied yet.
	default:
		log.Fatalf("query schema_migrations for %s: %v", filename, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin transaction for %s: %v", filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		log.Fatalf("execute %s: %v", filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, checksum); err != nil {
		log.Fatalf("record %s: %v", filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit %s: %v", filename, err)
	}
	log.WithField("file", filename).Info("migration applied")
}
