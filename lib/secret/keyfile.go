// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"
)

// ReadKeyFile loads a key file into a protected Buffer. Surrounding
// whitespace is trimmed (key files routinely end with a newline).
// Returns an error if the file is empty after trimming or is readable
// by group or others.
func ReadKeyFile(path string) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return nil, fmt.Errorf("secret: key file %s has mode %04o, want 0600", path, mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret: key file %s is empty", path)
	}

	buffer, err := NewFromBytes(trimmed)
	// trimmed is zeroed by NewFromBytes; zero the untrimmed remainder too.
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
