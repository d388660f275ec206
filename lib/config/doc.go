// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for promptkeep.
//
// Configuration comes from a single file named by the
// PROMPTKEEP_CONFIG environment variable or a --config flag. There is
// no file discovery and no environment-variable override of
// individual values. Unlike a daemon, an askpass helper must work
// with no configuration at all — ssh invokes it with nothing but a
// prompt — so a missing PROMPTKEEP_CONFIG falls back to [Default]
// rather than failing.
//
// The only expansion performed on loaded values is ${VAR} and
// ${VAR:-default} in path fields, so a shared config file can say
// ${XDG_DATA_HOME:-$HOME/.local/share}/promptkeep/vault.db.
package config
