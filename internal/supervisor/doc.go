// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

// Package supervisor builds the suture supervision tree for the Bandstand
// process. Services live in the services subpackage; cmd/server assembles
// the tree.
package supervisor
