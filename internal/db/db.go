// Package db provides PostgreSQL storage for the exported stock nodes and the runs that produced them.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the export tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateRun records the start of an export under the given run ID.
// A uuid.Nil id gets a fresh one.
func (db *DB) CreateRun(ctx context.Context, id uuid.UUID, dataDir string) (uuid.UUID, error) {
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, data_dir, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET status = $3, completed_at = NULL`,
		id, dataDir, RunStatusRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run finished with the given status and counts
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, counts RunCounts) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, records_total = $2, records_titled = $3, records_categorized = $4, completed_at = NOW()
		 WHERE id = $5`,
		status, counts.Total, counts.Titled, counts.Categorized, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to complete run: run %s not found", runID)
	}
	return nil
}

// GetRun retrieves a pipeline run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, data_dir, status, records_total, records_titled, records_categorized, created_at, completed_at
		 FROM pipeline_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.DataDir, &run.Status, &run.Counts.Total, &run.Counts.Titled,
		&run.Counts.Categorized, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}
