// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/promptkeep/promptkeep/lib/prompt"
	"github.com/promptkeep/promptkeep/lib/secret"
)

const testFolder = "promptkeep"

func lookupClassification(identifier string) prompt.Classification {
	return prompt.Classification{
		Kind:             prompt.SecretHidden,
		Identifier:       identifier,
		HasIdentifier:    true,
		AllowStoreLookup: true,
	}
}

func TestResolve_CanonicalHit(t *testing.T) {
	store := NewMemory()
	store.Seed(testFolder, "alice", "s3cret")

	value := NewResolver(nil).Resolve(lookupClassification("alice"), store, testFolder)
	if value == nil {
		t.Fatal("expected a hit")
	}
	defer value.Close()

	if got := value.String(); got != "s3cret" {
		t.Errorf("expected %q, got %q", "s3cret", got)
	}
}

func TestResolve_NoWallet(t *testing.T) {
	if value := NewResolver(nil).Resolve(lookupClassification("alice"), nil, testFolder); value != nil {
		t.Error("expected nil with no wallet open")
	}
}

func TestResolve_NoIdentifier(t *testing.T) {
	store := NewMemory()
	store.Seed(testFolder, "", "oops")

	classification := prompt.Classification{Kind: prompt.SecretHidden, AllowStoreLookup: true}
	if value := NewResolver(nil).Resolve(classification, store, testFolder); value != nil {
		t.Error("expected nil without an identifier")
	}
}

func TestResolve_LookupForbidden(t *testing.T) {
	store := NewMemory()
	store.Seed(testFolder, "alice", "s3cret")

	classification := lookupClassification("alice")
	classification.AllowStoreLookup = false
	if value := NewResolver(nil).Resolve(classification, store, testFolder); value != nil {
		t.Error("expected nil when the classification forbids lookup")
	}
}

func TestResolve_MissingFolder(t *testing.T) {
	if value := NewResolver(nil).Resolve(lookupClassification("alice"), NewMemory(), testFolder); value != nil {
		t.Error("expected nil when the folder does not exist")
	}
}

func TestResolve_LegacyQuotedKeyMigrates(t *testing.T) {
	store := NewMemory()
	store.Seed(testFolder, "'alice'", "s3cret")

	var logOutput bytes.Buffer
	resolver := NewResolver(slog.New(slog.NewTextHandler(&logOutput, nil)))

	value := resolver.Resolve(lookupClassification("alice"), store, testFolder)
	if value == nil {
		t.Fatal("expected a legacy hit")
	}
	defer value.Close()

	if got := value.String(); got != "s3cret" {
		t.Errorf("expected %q, got %q", "s3cret", got)
	}

	entries := store.Entries(testFolder)
	if entries["alice"] != "s3cret" {
		t.Errorf("expected canonical key after migration, entries: %v", entries)
	}
	if _, stillThere := entries["'alice'"]; stillThere {
		t.Error("legacy key must be renamed away, not copied")
	}
	if !strings.Contains(logOutput.String(), "legacy key") {
		t.Errorf("expected a workaround diagnostic, got %q", logOutput.String())
	}
}

func TestResolve_LegacyVariantOrder(t *testing.T) {
	// Both legacy forms present with different values: the quoted
	// form is probed first and must win.
	store := NewMemory()
	store.Seed(testFolder, "'alice'", "quoted")
	store.Seed(testFolder, "alice ", "spaced")

	value := NewResolver(nil).Resolve(lookupClassification("alice"), store, testFolder)
	if value == nil {
		t.Fatal("expected a hit")
	}
	defer value.Close()

	if got := value.String(); got != "quoted" {
		t.Errorf("expected the quoted variant to win, got %q", got)
	}
}

func TestResolve_QuotedSpacedVariant(t *testing.T) {
	store := NewMemory()
	store.Seed(testFolder, "'alice' ", "both")

	value := NewResolver(nil).Resolve(lookupClassification("alice"), store, testFolder)
	if value == nil {
		t.Fatal("expected a hit on the quoted-plus-space variant")
	}
	defer value.Close()

	if got := value.String(); got != "both" {
		t.Errorf("expected %q, got %q", "both", got)
	}
}

func TestResolve_CanonicalBeatsLegacy(t *testing.T) {
	store := NewMemory()
	store.Seed(testFolder, "alice", "canonical")
	store.Seed(testFolder, "'alice'", "legacy")

	value := NewResolver(nil).Resolve(lookupClassification("alice"), store, testFolder)
	if value == nil {
		t.Fatal("expected a hit")
	}
	defer value.Close()

	if got := value.String(); got != "canonical" {
		t.Errorf("expected the canonical entry, got %q", got)
	}
	// No migration ran, so the legacy entry is untouched.
	if store.Entries(testFolder)["'alice'"] != "legacy" {
		t.Error("canonical hit must not disturb other entries")
	}
}

func TestResolve_EmptyValueIsAbsent(t *testing.T) {
	store := NewMemory()
	store.Seed(testFolder, "alice", "")

	if value := NewResolver(nil).Resolve(lookupClassification("alice"), store, testFolder); value != nil {
		t.Error("expected an empty stored value to resolve as absent")
	}
}

// failingWallet errors on every read, standing in for an unreadable
// backing store.
type failingWallet struct {
	Memory
}

func (f *failingWallet) HasFolder(string) bool  { return true }
func (f *failingWallet) SetFolder(string) error { return nil }
func (f *failingWallet) Read(string) (*secret.Buffer, error) {
	return nil, fmt.Errorf("disk on fire")
}

func TestResolve_StoreFailureDegrades(t *testing.T) {
	if value := NewResolver(nil).Resolve(lookupClassification("alice"), &failingWallet{}, testFolder); value != nil {
		t.Error("expected a store failure to resolve as absent")
	}
}

func TestStore_CreatesFolder(t *testing.T) {
	store := NewMemory()
	resolver := NewResolver(nil)

	value, err := secret.NewFromString("hunter2")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	defer value.Close()

	if err := resolver.Store(store, testFolder, "git@example.com", value); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if got := store.Entries(testFolder)["git@example.com"]; got != "hunter2" {
		t.Errorf("expected stored value, got %q", got)
	}
}

func TestStore_OverwritesExisting(t *testing.T) {
	store := NewMemory()
	store.Seed(testFolder, "git@example.com", "old")

	value, err := secret.NewFromString("new")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	defer value.Close()

	if err := NewResolver(nil).Store(store, testFolder, "git@example.com", value); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if got := store.Entries(testFolder)["git@example.com"]; got != "new" {
		t.Errorf("expected overwrite, got %q", got)
	}
}

func TestStore_NoWallet(t *testing.T) {
	value, err := secret.NewFromString("x")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	defer value.Close()

	if err := NewResolver(nil).Store(nil, testFolder, "id", value); err == nil {
		t.Error("expected an error with no wallet open")
	}
}
