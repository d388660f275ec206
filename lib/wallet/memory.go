// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"fmt"

	"github.com/promptkeep/promptkeep/lib/secret"
)

// Memory is an in-process Wallet. It backs tests and carries no
// protection for its contents — values live on the ordinary heap.
// Production use goes through lib/vault.
type Memory struct {
	folders  map[string]map[string]string
	selected string
}

// NewMemory returns an empty in-memory wallet.
func NewMemory() *Memory {
	return &Memory{folders: make(map[string]map[string]string)}
}

// Seed stores a raw value, creating and selecting the folder as
// needed. Test setup helper.
func (m *Memory) Seed(folder, key, value string) {
	if m.folders[folder] == nil {
		m.folders[folder] = make(map[string]string)
	}
	m.folders[folder][key] = value
}

// Entries returns a copy of a folder's contents. Test assertion
// helper.
func (m *Memory) Entries(folder string) map[string]string {
	entries := make(map[string]string, len(m.folders[folder]))
	for key, value := range m.folders[folder] {
		entries[key] = value
	}
	return entries
}

// HasFolder implements Wallet.
func (m *Memory) HasFolder(name string) bool {
	_, ok := m.folders[name]
	return ok
}

// CreateFolder implements Wallet.
func (m *Memory) CreateFolder(name string) error {
	if m.folders[name] == nil {
		m.folders[name] = make(map[string]string)
	}
	return nil
}

// SetFolder implements Wallet.
func (m *Memory) SetFolder(name string) error {
	if _, ok := m.folders[name]; !ok {
		return fmt.Errorf("no folder %q", name)
	}
	m.selected = name
	return nil
}

// Read implements Wallet.
func (m *Memory) Read(key string) (*secret.Buffer, error) {
	entries, ok := m.folders[m.selected]
	if !ok {
		return nil, fmt.Errorf("no folder selected")
	}
	value, ok := entries[key]
	if !ok || value == "" {
		// An empty stored value is indistinguishable from no entry.
		return nil, nil
	}
	return secret.NewFromString(value)
}

// Write implements Wallet.
func (m *Memory) Write(key string, value *secret.Buffer) error {
	entries, ok := m.folders[m.selected]
	if !ok {
		return fmt.Errorf("no folder selected")
	}
	entries[key] = value.String()
	return nil
}

// Rename implements Wallet.
func (m *Memory) Rename(oldKey, newKey string) error {
	entries, ok := m.folders[m.selected]
	if !ok {
		return fmt.Errorf("no folder selected")
	}
	value, ok := entries[oldKey]
	if !ok {
		return fmt.Errorf("no entry %q", oldKey)
	}
	entries[newKey] = value
	delete(entries, oldKey)
	return nil
}
