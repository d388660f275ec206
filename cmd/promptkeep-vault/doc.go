// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

// Promptkeep-vault administers the credential vault that the
// promptkeep askpass helper answers from. It generates the vault key
// and database (init), and stores, retrieves, lists, and removes
// entries. Subcommands: init, set, get, list, rm, version.
package main
