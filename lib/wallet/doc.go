// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

// Package wallet resolves classified prompts against a credential
// store.
//
// [Wallet] is the store contract: a keyed secret store partitioned
// into named folders, with one folder selected at a time. lib/vault
// implements it on SQLite; [Memory] implements it in process for
// tests and is the injection point the resolver is designed around.
//
// [Resolver.Resolve] performs the lookup for one classification. It
// first reads the canonical identifier, then probes the legacy key
// encodings older releases wrote (identifier wrapped in single
// quotes, with a trailing space, or both). A legacy hit is migrated
// on the spot: the entry is renamed to the canonical identifier, so
// the store never holds two live copies of the same credential. Any
// store failure degrades to "not found" — the caller falls back to
// asking the user, never to an error.
//
// [Resolver.Store] is the write path used after the user typed a
// fresh value and asked for it to be kept. It creates the folder on
// first use.
package wallet
