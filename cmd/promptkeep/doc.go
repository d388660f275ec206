// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

// Promptkeep is an askpass helper with a local encrypted credential
// vault. Point SSH_ASKPASS, SSH_ASKPASS_REQUIRE=force, or GIT_ASKPASS
// at the binary: it classifies the prompt it is handed, answers from
// the vault when it already knows the credential, and otherwise asks
// on the controlling terminal and optionally remembers the answer.
// The answer is written to stdout; exit status 1 means the user
// declined.
package main
