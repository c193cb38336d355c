// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

// Package database is the DuckDB persistence layer for Bandstand.
//
// # Overview
//
// This package owns the schema and every query the application issues.
// It backs two consumers: the attribution pipeline (organization catalog,
// unattributed backlog, first-wins attribution writes) and the discovery
// engine (candidate pools, watch history).
//
// # Organization
//
//   - database.go: connection lifecycle, pool configuration, checkpointing
//   - schema.go: table and index creation
//   - migrations.go: versioned schema migrations
//   - organizations.go: organization catalog queries
//   - videos.go: video CRUD and attribution writes
//   - discover_store.go: candidate pool and watch history queries
//   - seed.go: mock data for demos and local development
//
// # Concurrency
//
// DuckDB is embedded via CGO; the connection pool is kept small (see
// configureConnectionPool) because DuckDB parallelizes within a query, not
// across connections. All exported methods are safe for concurrent use.
package database
