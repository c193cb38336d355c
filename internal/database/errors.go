// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/fifthquarter/bandstand/internal/logging"
)

// isNoRows reports whether err is the empty-result sentinel from
// database/sql.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// closeWithLog closes a resource and logs any error. Use for cleanup where
// errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error. Use in
// error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // cleanup is best-effort
	}
}
