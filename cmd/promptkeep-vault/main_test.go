// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/promptkeep/promptkeep/lib/vault"
)

// writeTestConfig points PROMPTKEEP_CONFIG at a config rooted in a
// temp directory and returns the directory.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	directory := t.TempDir()

	configPath := filepath.Join(directory, "promptkeep.yaml")
	content := fmt.Sprintf("store:\n  path: %s\n  key_path: %s\n  folder: promptkeep\n",
		filepath.Join(directory, "vault.db"),
		filepath.Join(directory, "key.age"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("PROMPTKEEP_CONFIG", configPath)
	return directory
}

func TestInitSetRoundTrip(t *testing.T) {
	directory := writeTestConfig(t)

	if err := runInit(nil); err != nil {
		t.Fatalf("init: %v", err)
	}

	valuePath := filepath.Join(directory, "value.txt")
	if err := os.WriteFile(valuePath, []byte("hunter2\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := runSet([]string{"--value-file", valuePath, "git@example.com"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	// The stored value must be readable through the vault API.
	v, err := vault.Open(vault.Config{
		Path:    filepath.Join(directory, "vault.db"),
		KeyPath: filepath.Join(directory, "key.age"),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer v.Close()
	if err := v.SetFolder("promptkeep"); err != nil {
		t.Fatalf("SetFolder: %v", err)
	}

	value, err := v.Read("git@example.com")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if value == nil {
		t.Fatal("expected the stored entry")
	}
	defer value.Close()
	if got := value.String(); got != "hunter2" {
		t.Errorf("expected %q (newline trimmed), got %q", "hunter2", got)
	}
}

func TestInit_RefusesSecondRun(t *testing.T) {
	writeTestConfig(t)

	if err := runInit(nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := runInit(nil); err == nil {
		t.Fatal("a second init must not overwrite the vault key")
	}
}

func TestSet_RequiresIdentifier(t *testing.T) {
	writeTestConfig(t)
	if err := runSet([]string{"--value-file", "-"}); err == nil {
		t.Fatal("expected usage error without an identifier")
	}
}

func TestRemove(t *testing.T) {
	directory := writeTestConfig(t)

	if err := runInit(nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	valuePath := filepath.Join(directory, "value.txt")
	if err := os.WriteFile(valuePath, []byte("v"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := runSet([]string{"--value-file", valuePath, "id"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := runRemove([]string{"id"}); err != nil {
		t.Fatalf("rm: %v", err)
	}

	v, err := vault.Open(vault.Config{
		Path:    filepath.Join(directory, "vault.db"),
		KeyPath: filepath.Join(directory, "key.age"),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer v.Close()
	v.SetFolder("promptkeep")
	value, err := v.Read("id")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if value != nil {
		t.Error("expected the entry removed")
	}
}

func TestCommonFlags_FolderOverride(t *testing.T) {
	writeTestConfig(t)

	common := commonFlags{folder: "work"}
	cfg, err := common.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Folder != "work" {
		t.Errorf("expected folder override, got %q", cfg.Store.Folder)
	}
}
