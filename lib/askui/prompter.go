// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package askui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/promptkeep/promptkeep/lib/secret"
)

// ErrCancelled is returned when the user declines to answer (end of
// input, or "no" to a confirmation).
var ErrCancelled = errors.New("askui: cancelled by user")

// Answer is a collected secret and the user's keep decision.
type Answer struct {
	// Value is the typed text in protected memory. The caller owns
	// it and must Close it.
	Value *secret.Buffer

	// Remember is true when the user asked for the value to be
	// stored for next time. Only ever true when the prompter
	// offered the choice.
	Remember bool
}

// Prompter collects answers interactively.
type Prompter interface {
	// Confirm asks a yes/no question. It returns nil on yes and
	// ErrCancelled on no or end of input.
	Confirm(text string) error

	// AskSecret collects a typed value. Echo is suppressed unless
	// visible is set. When offerRemember is set, the user is asked
	// afterwards whether to keep the value. Returns ErrCancelled
	// on end of input; an empty answer is a valid answer.
	AskSecret(text string, visible bool, offerRemember bool) (*Answer, error)
}

// Terminal is a Prompter on the controlling terminal.
type Terminal struct {
	tty    *os.File
	reader *bufio.Reader
}

// NewTerminal opens /dev/tty. It fails when the process has no
// controlling terminal, in which case no interactive fallback exists.
func NewTerminal() (*Terminal, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("askui: no controlling terminal: %w", err)
	}
	return &Terminal{tty: tty, reader: bufio.NewReader(tty)}, nil
}

// Close releases the terminal.
func (t *Terminal) Close() error {
	return t.tty.Close()
}

// Confirm implements Prompter. Anything but an explicit yes is a no.
func (t *Terminal) Confirm(text string) error {
	fmt.Fprintf(t.tty, "%s[y/N] ", ensureTrailingSpace(text))

	line, err := t.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("askui: reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return ErrCancelled
	}
}

// AskSecret implements Prompter.
func (t *Terminal) AskSecret(text string, visible bool, offerRemember bool) (*Answer, error) {
	fmt.Fprint(t.tty, ensureTrailingSpace(text))

	var typed []byte
	var err error
	if visible {
		var line string
		line, err = t.reader.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil, ErrCancelled
		}
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("askui: reading input: %w", err)
		}
		typed = []byte(strings.TrimRight(line, "\r\n"))
	} else {
		typed, err = term.ReadPassword(int(t.tty.Fd()))
		fmt.Fprintln(t.tty)
		if err != nil {
			if err == io.EOF {
				return nil, ErrCancelled
			}
			return nil, fmt.Errorf("askui: reading hidden input: %w", err)
		}
	}

	answer := &Answer{}
	if len(typed) > 0 {
		answer.Value, err = secret.NewFromBytes(typed)
		if err != nil {
			secret.Zero(typed)
			return nil, err
		}
	}

	if offerRemember {
		if err := t.Confirm("Remember this value?"); err == nil {
			answer.Remember = true
		}
	}
	return answer, nil
}

// ensureTrailingSpace separates the prompt text from the cursor. The
// upstream prompts end in a space already; custom ones may not.
func ensureTrailingSpace(text string) string {
	if strings.HasSuffix(text, " ") || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + " "
}
