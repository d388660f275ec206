// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/promptkeep/promptkeep/lib/askui"
	"github.com/promptkeep/promptkeep/lib/config"
	"github.com/promptkeep/promptkeep/lib/secret"
	"github.com/promptkeep/promptkeep/lib/vault"
	"github.com/promptkeep/promptkeep/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand := os.Args[1]
	arguments := os.Args[2:]
	switch subcommand {
	case "init":
		return runInit(arguments)
	case "set":
		return runSet(arguments)
	case "get":
		return runGet(arguments)
	case "list":
		return runList(arguments)
	case "rm":
		return runRemove(arguments)
	case "version":
		version.Print("promptkeep-vault")
		return nil
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: promptkeep-vault <subcommand> [flags]

Subcommands:
  init     Generate the vault key and create the database
  set      Store a credential under an identifier
  get      Print a stored credential
  list     List stored identifiers (or folders with --folders)
  rm       Remove a stored credential
  version  Print version information

Run 'promptkeep-vault <subcommand> --help' for subcommand flags.
`)
}

// commonFlags are shared by every subcommand that touches the vault.
type commonFlags struct {
	configPath string
	folder     string
}

func (c *commonFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.configPath, "config", "", "path to config file (default: $PROMPTKEEP_CONFIG or built-in defaults)")
	flagSet.StringVar(&c.folder, "folder", "", "vault folder to operate on (default: the configured folder)")
}

func (c *commonFlags) load() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if c.folder != "" {
		cfg.Store.Folder = c.folder
	}
	return cfg, nil
}

// openVault opens the configured vault and selects the folder,
// creating it when create is set.
func openVault(cfg *config.Config, create bool) (*vault.Vault, error) {
	v, err := vault.Open(vault.Config{
		Path:    cfg.Store.Path,
		KeyPath: cfg.Store.KeyPath,
		Logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})
	if err != nil {
		return nil, err
	}

	if create {
		if err := v.CreateFolder(cfg.Store.Folder); err != nil {
			v.Close()
			return nil, err
		}
	}
	if err := v.SetFolder(cfg.Store.Folder); err != nil {
		v.Close()
		return nil, fmt.Errorf("folder %q does not exist (store something first)", cfg.Store.Folder)
	}
	return v, nil
}

func runInit(arguments []string) error {
	var common commonFlags
	flagSet := pflag.NewFlagSet("init", pflag.ContinueOnError)
	common.register(flagSet)
	if err := flagSet.Parse(arguments); err != nil {
		return err
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}

	publicKey, err := vault.GenerateKeyFile(cfg.Store.KeyPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Vault key written to %s\n", cfg.Store.KeyPath)
	fmt.Fprintf(os.Stderr, "Public key: %s\n", publicKey)

	v, err := vault.Open(vault.Config{
		Path:    cfg.Store.Path,
		KeyPath: cfg.Store.KeyPath,
	})
	if err != nil {
		return err
	}
	defer v.Close()
	if err := v.CreateFolder(cfg.Store.Folder); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Vault created at %s\n", cfg.Store.Path)
	return nil
}

func runSet(arguments []string) error {
	var common commonFlags
	var valueFile string
	flagSet := pflag.NewFlagSet("set", pflag.ContinueOnError)
	common.register(flagSet)
	flagSet.StringVar(&valueFile, "value-file", "", "read the value from this file, or - for stdin (default: prompt)")
	if err := flagSet.Parse(arguments); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: promptkeep-vault set <identifier> [flags]")
	}
	identifier := flagSet.Arg(0)

	cfg, err := common.load()
	if err != nil {
		return err
	}

	if err := secret.DisableCoreDumps(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not disable core dumps: %v\n", err)
	}

	value, err := readValue(valueFile, identifier)
	if err != nil {
		return err
	}
	defer value.Close()

	v, err := openVault(cfg, true)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.Write(identifier, value); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Stored %s\n", identifier)
	return nil
}

// readValue collects the credential value: from a file, from stdin,
// or interactively with echo disabled.
func readValue(valueFile, identifier string) (*secret.Buffer, error) {
	switch valueFile {
	case "":
		terminal, err := askui.NewTerminal()
		if err != nil {
			return nil, err
		}
		defer terminal.Close()

		answer, err := terminal.AskSecret(fmt.Sprintf("Value for %s:", identifier), false, false)
		if err != nil {
			return nil, err
		}
		if answer.Value == nil {
			return nil, fmt.Errorf("empty value")
		}
		return answer.Value, nil
	case "-":
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return nil, fmt.Errorf("stdin is empty")
		}
		return secret.NewFromBytes(scanner.Bytes())
	default:
		data, err := os.ReadFile(valueFile)
		if err != nil {
			return nil, err
		}
		trimmed := []byte(strings.TrimRight(string(data), "\r\n"))
		secret.Zero(data)
		if len(trimmed) == 0 {
			return nil, fmt.Errorf("file %s is empty", valueFile)
		}
		return secret.NewFromBytes(trimmed)
	}
}

func runGet(arguments []string) error {
	var common commonFlags
	flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
	common.register(flagSet)
	if err := flagSet.Parse(arguments); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: promptkeep-vault get <identifier> [flags]")
	}
	identifier := flagSet.Arg(0)

	cfg, err := common.load()
	if err != nil {
		return err
	}
	v, err := openVault(cfg, false)
	if err != nil {
		return err
	}
	defer v.Close()

	value, err := v.Read(identifier)
	if err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("no entry for %q in folder %q", identifier, cfg.Store.Folder)
	}
	defer value.Close()

	os.Stdout.Write(value.Bytes())
	fmt.Println()
	return nil
}

func runList(arguments []string) error {
	var common commonFlags
	var showFolders bool
	flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
	common.register(flagSet)
	flagSet.BoolVar(&showFolders, "folders", false, "list folders instead of entries")
	if err := flagSet.Parse(arguments); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}

	if showFolders {
		v, err := vault.Open(vault.Config{Path: cfg.Store.Path, KeyPath: cfg.Store.KeyPath})
		if err != nil {
			return err
		}
		defer v.Close()
		names, err := v.Folders()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	v, err := openVault(cfg, false)
	if err != nil {
		return err
	}
	defer v.Close()

	entries, err := v.List()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("%s\t%s\n", entry.UpdatedAt.Format("2006-01-02 15:04"), entry.Identifier)
	}
	return nil
}

func runRemove(arguments []string) error {
	var common commonFlags
	flagSet := pflag.NewFlagSet("rm", pflag.ContinueOnError)
	common.register(flagSet)
	if err := flagSet.Parse(arguments); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: promptkeep-vault rm <identifier> [flags]")
	}
	identifier := flagSet.Arg(0)

	cfg, err := common.load()
	if err != nil {
		return err
	}
	v, err := openVault(cfg, false)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.Delete(identifier); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Removed %s\n", identifier)
	return nil
}
