// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/promptkeep/promptkeep/lib/askui"
	"github.com/promptkeep/promptkeep/lib/config"
	"github.com/promptkeep/promptkeep/lib/prompt"
	"github.com/promptkeep/promptkeep/lib/secret"
	"github.com/promptkeep/promptkeep/lib/vault"
	"github.com/promptkeep/promptkeep/lib/version"
	"github.com/promptkeep/promptkeep/lib/wallet"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, askui.ErrCancelled) {
			// The only user-visible failure: the prompt was
			// declined. No message, status 1.
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var noStore bool
	var verbose bool

	flagSet := pflag.NewFlagSet("promptkeep", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to config file (default: $PROMPTKEEP_CONFIG or built-in defaults)")
	flagSet.BoolVar(&noStore, "no-store", false, "never consult or update the vault for this prompt")
	flagSet.BoolVar(&verbose, "verbose", false, "log diagnostics at debug level")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("promptkeep")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// Terminal input transits the Go heap before it reaches
	// protected memory, so the whole process must not dump core.
	if err := secret.DisableCoreDumps(); err != nil {
		logger.Warn("could not disable core dumps", "error", err)
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Classify the prompt, if we were given one. With no argument
	// the rule table is never consulted: there is nothing to match
	// and nothing to look up.
	displayText := defaultDisplayText
	classification := prompt.Classification{Kind: prompt.SecretHidden}
	if args := flagSet.Args(); len(args) > 0 {
		displayText = args[0]
		classification = prompt.NewClassifier(logger).Classify(displayText)
	}

	// The vault opens only for prompts allowed to use it, and stays
	// open for the rest of the process (the remember path reuses the
	// handle). Failure to open is a degraded mode, not an error.
	var store wallet.Wallet
	if cfg.Store.Enabled && !noStore && classification.AllowStoreLookup {
		v, err := vault.Open(vault.Config{
			Path:    cfg.Store.Path,
			KeyPath: cfg.Store.KeyPath,
			Logger:  logger,
		})
		if err != nil {
			logger.Warn("vault unavailable, proceeding without store", "error", err)
		} else {
			defer v.Close()
			store = v
		}
	}

	var terminal *askui.Terminal
	defer func() {
		if terminal != nil {
			terminal.Close()
		}
	}()

	application := &app{
		resolver: wallet.NewResolver(logger),
		store:    store,
		folder:   cfg.Store.Folder,
		stdout:   os.Stdout,
		logger:   logger,
		prompter: func() (askui.Prompter, error) {
			if terminal == nil {
				opened, err := askui.NewTerminal()
				if err != nil {
					return nil, err
				}
				terminal = opened
			}
			return terminal, nil
		},
	}

	return application.run(classification, displayText)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Usage: promptkeep [flags] [prompt]

Askpass helper with an encrypted credential vault. Set SSH_ASKPASS or
GIT_ASKPASS to this binary; the invoking tool passes the prompt text
as the single positional argument.

Flags:
%s`, flagSet.FlagUsages())
}
