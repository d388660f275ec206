// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DisableCoreDumps sets RLIMIT_CORE to zero for the current process.
// Secrets read from the terminal pass through Go-heap memory before
// they reach a Buffer, so the whole process must be barred from
// dumping core, not just the mmap regions.
func DisableCoreDumps() error {
	limit := unix.Rlimit{Cur: 0, Max: 0}
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &limit); err != nil {
		return fmt.Errorf("secret: setrlimit(RLIMIT_CORE, 0): %w", err)
	}
	return nil
}
