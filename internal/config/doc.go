// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

/*
Package config provides layered application configuration via Koanf v2.

Configuration is assembled from three sources, later sources overriding
earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML config file, discovered from CONFIG_PATH or the
    DefaultConfigPaths search list
 3. Environment variables, mapped through an explicit table (SERVER_PORT,
    DATABASE_PATH, ATTRIBUTION_MIN_CONFIDENCE, ...)

The resulting Config is validated before use: field constraints are
declared as go-playground/validator tags on the struct, and cross-field
rules are checked in Config.Validate.

Example config.yaml:

	server:
	  port: 8470
	database:
	  path: /data/bandstand.duckdb
	attribution:
	  interval: 15m
	  min_confidence: 30
	discover:
	  default_limit: 10
	  max_per_org: 2
*/
package config
