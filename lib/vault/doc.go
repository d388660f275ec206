// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault is the persistent credential store behind lib/wallet.
//
// Entries live in a single SQLite database. Nothing legible about a
// credential touches disk: the stored value is an age-encrypted CBOR
// envelope (identifier, value, timestamps), and the lookup column is
// a keyed BLAKE3 digest of folder and identifier, so the database
// reveals neither which credentials exist nor what they are.
//
// The vault key is an age x25519 identity in a 0600 key file,
// generated by [GenerateKeyFile] (the promptkeep-vault init
// subcommand). [Open] loads the key and the database; an unreadable
// key or database is a normal outcome for callers, which degrade to
// prompting without a store.
//
// [Vault] implements [wallet.Wallet]. The extra methods — [Vault.List],
// [Vault.Delete], [Vault.Folders] — exist for the administration CLI
// and decrypt envelopes to recover identifiers, which the digest
// column deliberately cannot.
package vault
