// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"github.com/promptkeep/promptkeep/lib/secret"
)

// Wallet is a keyed secret store partitioned into named folders.
// Entries are scoped to the currently selected folder; SetFolder
// must be called before Read, Write, or Rename.
//
// Implementations own persistence entirely. Callers never cache
// values across invocations.
type Wallet interface {
	// HasFolder reports whether a folder exists. It returns false
	// on any store error.
	HasFolder(name string) bool

	// CreateFolder creates a folder. Creating an existing folder
	// is not an error.
	CreateFolder(name string) error

	// SetFolder selects the folder that subsequent entry
	// operations act on.
	SetFolder(name string) error

	// Read returns the secret stored under key in the selected
	// folder, or (nil, nil) when no entry exists. The caller owns
	// the returned buffer and must Close it.
	Read(key string) (*secret.Buffer, error)

	// Write stores value under key in the selected folder,
	// replacing any existing entry. The value is borrowed, not
	// consumed: the caller still owns it.
	Write(key string, value *secret.Buffer) error

	// Rename moves the entry at oldKey to newKey in the selected
	// folder, replacing any entry already at newKey. The old key
	// no longer resolves afterwards.
	Rename(oldKey, newKey string) error
}
