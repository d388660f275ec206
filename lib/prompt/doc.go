// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompt classifies the prompt strings that OpenSSH, git, and
// git-lfs hand to an askpass helper.
//
// The tools give the helper nothing but the display text, so the only
// way to know what is being asked — and which credential it is about —
// is to recognize the exact phrases they emit. None of them localize
// their prompts, which makes the phrases stable match targets.
//
// [Classifier.Classify] evaluates a fixed, ordered rule table against
// the whole prompt; the first rule that matches wins. Order matters:
// "Bad passphrase, try again for X" must be recognized before the more
// general "Enter passphrase for X" so a cached value that just failed
// is not offered again. Each rule yields a [Classification]: the input
// [Kind] (hidden secret, visible text, or yes/no confirmation), the
// credential identifier when the phrase names one, and whether a
// stored credential may be used to answer.
//
// Unrecognized prompts are not an error — the helper still has to ask
// the user something. They classify as a hidden secret with no
// identifier and no store access, and are logged for diagnosis.
package prompt
