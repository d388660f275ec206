// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/promptkeep/promptkeep/lib/prompt"
	"github.com/promptkeep/promptkeep/lib/secret"
)

// legacyKeyVariants returns the historical encodings of an identifier,
// in probe order. Old releases wrote keys wrapped in single quotes,
// and even older ones appended a space. The variants are recomputed
// per lookup and never persisted.
func legacyKeyVariants(identifier string) []string {
	return []string{
		"'" + identifier + "'",
		identifier + " ",
		"'" + identifier + "' ",
	}
}

// Resolver looks classified prompts up in a wallet and writes fresh
// values back.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver returns a resolver that reports legacy-key migrations
// and store degradation to the given logger. A nil logger discards
// them.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{logger: logger}
}

// Resolve returns the stored secret for a classification, or nil when
// there is none. nil is the answer whenever no wallet handle is open,
// the classification carries no identifier, or the classification
// forbids store lookup. Store failures also resolve to nil: the
// caller's fallback is to ask the user, which is always available.
//
// A hit under a legacy key encoding is migrated before returning:
// the entry is renamed to the canonical identifier, replacing any
// prior canonical entry, so at most one form stays live.
func (r *Resolver) Resolve(classification prompt.Classification, store Wallet, folder string) *secret.Buffer {
	if store == nil || !classification.HasIdentifier || !classification.AllowStoreLookup {
		return nil
	}
	if !store.HasFolder(folder) {
		return nil
	}
	if err := store.SetFolder(folder); err != nil {
		r.logger.Warn("wallet folder unavailable", "folder", folder, "error", err)
		return nil
	}

	identifier := classification.Identifier

	value, err := store.Read(identifier)
	if err != nil {
		r.logger.Warn("wallet read failed", "error", err)
		return nil
	}
	if value != nil && value.Len() > 0 {
		return value
	}

	for _, variant := range legacyKeyVariants(identifier) {
		value, err = store.Read(variant)
		if err != nil {
			r.logger.Warn("wallet read failed", "error", err)
			return nil
		}
		if value == nil || value.Len() == 0 {
			continue
		}

		r.logger.Warn("detected legacy key, enabling workaround", "identifier", identifier)
		if err := store.Rename(variant, identifier); err != nil {
			// The secret is already in hand; a failed migration
			// just means the workaround runs again next time.
			r.logger.Warn("legacy key migration failed", "identifier", identifier, "error", err)
		}
		return value
	}

	return nil
}

// Store writes a freshly collected secret under its identifier,
// creating the folder on first use. Unlike Resolve, this path does
// not consult AllowStoreLookup: a "new password" prompt may not be
// answered from the store, but its answer may still be kept.
func (r *Resolver) Store(store Wallet, folder, identifier string, value *secret.Buffer) error {
	if store == nil {
		return fmt.Errorf("no wallet open")
	}

	if !store.HasFolder(folder) {
		if err := store.CreateFolder(folder); err != nil {
			return fmt.Errorf("creating folder %q: %w", folder, err)
		}
	}
	if err := store.SetFolder(folder); err != nil {
		return fmt.Errorf("selecting folder %q: %w", folder, err)
	}
	if err := store.Write(identifier, value); err != nil {
		return fmt.Errorf("storing %q: %w", identifier, err)
	}
	return nil
}
