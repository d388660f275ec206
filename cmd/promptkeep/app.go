// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/promptkeep/promptkeep/lib/askui"
	"github.com/promptkeep/promptkeep/lib/prompt"
	"github.com/promptkeep/promptkeep/lib/wallet"
)

// defaultDisplayText is shown when the caller supplied no prompt.
const defaultDisplayText = "Please enter passphrase"

// confirmationSentinel is what an accepted confirmation emits. The
// callers of confirmation prompts (ssh-agent, ssh mux) only check
// the exit status, but ssh-askpass compatibility fixes the payload.
const confirmationSentinel = "yes\n"

// app is one askpass invocation: resolve, ask, store.
type app struct {
	resolver *wallet.Resolver
	store    wallet.Wallet // nil when the vault is closed to this prompt
	// prompter opens the interactive fallback. It is only invoked
	// on a vault miss, so a vault hit never needs a terminal.
	prompter func() (askui.Prompter, error)
	folder   string
	stdout   io.Writer
	logger   *slog.Logger
}

// run answers one classified prompt. The vault answer is written
// without a trailing newline; a freshly collected answer gets one.
// The asymmetry is historical and deliberately kept — consumers may
// depend on either form.
func (a *app) run(classification prompt.Classification, displayText string) error {
	if value := a.resolver.Resolve(classification, a.store, a.folder); value != nil {
		defer value.Close()
		if _, err := a.stdout.Write(value.Bytes()); err != nil {
			return fmt.Errorf("writing answer: %w", err)
		}
		return nil
	}

	prompter, err := a.prompter()
	if err != nil {
		return err
	}

	if classification.Kind == prompt.Confirmation {
		if err := prompter.Confirm(displayText); err != nil {
			return err
		}
		// The sentinel ends in a newline; the collected-answer
		// path unconditionally appends another.
		if _, err := fmt.Fprintf(a.stdout, "%s\n", confirmationSentinel); err != nil {
			return fmt.Errorf("writing answer: %w", err)
		}
		return nil
	}

	offerRemember := a.store != nil && classification.HasIdentifier
	answer, err := prompter.AskSecret(displayText, classification.Kind == prompt.SecretVisible, offerRemember)
	if err != nil {
		return err
	}
	if answer.Value != nil {
		defer answer.Value.Close()
	}

	if answer.Remember && offerRemember && answer.Value != nil {
		if err := a.resolver.Store(a.store, a.folder, classification.Identifier, answer.Value); err != nil {
			// Remembering is best effort: the user already has
			// their answer on the way.
			a.logger.Warn("storing credential failed", "error", err)
		}
	}

	if answer.Value != nil {
		if _, err := a.stdout.Write(answer.Value.Bytes()); err != nil {
			return fmt.Errorf("writing answer: %w", err)
		}
	}
	if _, err := io.WriteString(a.stdout, "\n"); err != nil {
		return fmt.Errorf("writing answer: %w", err)
	}
	return nil
}
