// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/fifthquarter/bandstand/internal/config"
	"github.com/fifthquarter/bandstand/internal/logging"
	"github.com/fifthquarter/bandstand/internal/metrics"
)

// DB wraps the DuckDB connection and provides data access methods for
// organizations, videos, attribution audit state, and watch history.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New creates a new database connection and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases.
	// 0750 permissions per gosec G301.
	if cfg.Path != ":memory:" && cfg.Path != "" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Disable auto-install/auto-load of extensions to prevent hangs in
	// restricted network environments. The schema uses core DuckDB only.
	preserveOrder := "true"
	if !cfg.PreserveInsertionOrder {
		preserveOrder = "false"
	}
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// configureConnectionPool tunes database/sql pooling for DuckDB. DuckDB is
// an embedded engine, so a small pool avoids CGO contention.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(0)
	metrics.DBConnectionPoolSize.Set(4)
}

// initialize creates tables, runs versioned migrations, and creates indexes.
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}

	if err := db.runVersionedMigrations(); err != nil {
		return err
	}

	if err := db.createIndexes(); err != nil {
		return err
	}

	// Flush the WAL after schema setup so a crash before the first
	// checkpoint cannot force schema replay on next startup.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}

	return nil
}

// Conn returns the underlying SQL connection for packages that need direct
// access, such as health checks.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Checkpoint forces DuckDB to flush the WAL into the main database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, "CHECKPOINT;")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close checkpoints and closes the database connection. The checkpoint is
// best effort; close errors are returned.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}

	return db.conn.Close()
}
