// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds sensitive values — passphrases, PINs, vault
// keys — in memory that the rest of the process cannot leak by
// accident.
//
// [Buffer] allocates its backing memory outside the Go heap with
// mmap(MAP_ANONYMOUS), pins it in physical RAM with mlock so it is
// never swapped, and marks it MADV_DONTDUMP so it is excluded from
// core dumps. Close zeroes, unlocks, and unmaps the region. The
// garbage collector never sees the allocation, so it cannot copy the
// secret elsewhere in memory.
//
// Constructors:
//
//   - [NewFromBytes] -- copy a byte slice into protected memory and
//     zero the source
//   - [NewFromString] -- same for a string (the string's heap copy
//     cannot be zeroed; use only for values that originate as strings)
//   - [ReadKeyFile] -- load a key file into a Buffer
//
// [DisableCoreDumps] complements the buffer: it sets RLIMIT_CORE to
// zero for the whole process, so values that unavoidably transit the
// Go heap (terminal input, age API boundaries) cannot end up in a
// dump either. Call it before the first secret is handled.
package secret
