// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

// Package api is Bandstand's HTTP surface: a chi router serving the
// recommendation, attribution, and catalog endpoints under /api/v1, plus
// health probes and the Prometheus scrape endpoint.
//
// Every endpoint responds with the APIResponse envelope. Handlers depend on
// narrow collaborator interfaces (Store, Recommender, BatchRunner, Cache) so
// tests run against fakes without a database.
package api
