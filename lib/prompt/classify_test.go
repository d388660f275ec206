// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// classifyCases covers one literal upstream prompt per rule, plus the
// phrase variants the rules accept.
var classifyCases = []struct {
	name       string
	text       string
	kind       Kind
	identifier string
	hasID      bool
	lookup     bool
}{
	{
		name: "ssh host password", text: "git@example.com's password: ",
		kind: SecretHidden, identifier: "git@example.com", hasID: true, lookup: true,
	},
	{
		name: "ssh host password jpake", text: "user@host's password (JPAKE): ",
		kind: SecretHidden, identifier: "user@host", hasID: true, lookup: true,
	},
	{
		name: "password change old", text: "Enter user@host's old password: ",
		kind: SecretHidden, identifier: "user@host", hasID: true, lookup: false,
	},
	{
		name: "password change retype", text: "Retype user@host's new password: ",
		kind: SecretHidden, identifier: "user@host", hasID: true, lookup: false,
	},
	{
		name: "keyfile passphrase", text: "Enter passphrase for key '/home/user/.ssh/id_rsa': ",
		kind: SecretHidden, identifier: "/home/user/.ssh/id_rsa", hasID: true, lookup: true,
	},
	{
		name: "rsa keyfile passphrase", text: "Enter passphrase for RSA key '/home/user/.ssh/identity': ",
		kind: SecretHidden, identifier: "/home/user/.ssh/identity", hasID: true, lookup: true,
	},
	{
		name: "ssh-add first ask", text: "Enter passphrase for /home/user/.ssh/id_ed25519: ",
		kind: SecretHidden, identifier: "/home/user/.ssh/id_ed25519", hasID: true, lookup: true,
	},
	{
		name: "ssh-add confirm each use", text: "Enter passphrase for /home/user/.ssh/id_ed25519 (will confirm each use): ",
		kind: SecretHidden, identifier: "/home/user/.ssh/id_ed25519", hasID: true, lookup: true,
	},
	{
		name: "ssh-add retry", text: "Bad passphrase, try again for /home/user/.ssh/id_ed25519: ",
		kind: SecretHidden, identifier: "/home/user/.ssh/id_ed25519", hasID: true, lookup: false,
	},
	{
		name: "pkcs11 pin", text: "Enter PIN for 'PIV Card Holder pin (PIV_II)': ",
		kind: SecretHidden, identifier: "PIV Card Holder pin (PIV_II)", hasID: true, lookup: true,
	},
	{
		name: "mux allow shared", text: "Allow shared connection to host.example.com? ",
		kind: Confirmation, identifier: "host.example.com", hasID: true, lookup: false,
	},
	{
		name: "mux terminate shared", text: "Terminate shared connection to host.example.com? ",
		kind: Confirmation, identifier: "host.example.com", hasID: true, lookup: false,
	},
	{
		name: "mux open", text: "Open tun device 1 on host.example.com?",
		kind: Confirmation, identifier: "tun device 1 on host.example.com?", hasID: true, lookup: false,
	},
	{
		name: "mux open bare", text: "Open ",
		kind: Confirmation, hasID: false, lookup: false,
	},
	{
		name: "mux allow forward", text: "Allow forward to localhost:8080? ",
		kind: Confirmation, identifier: "localhost:8080", hasID: true, lookup: false,
	},
	{
		name: "mux disable multiplexing", text: "Disable further multiplexing on shared connection to host.example.com? ",
		kind: Confirmation, identifier: "host.example.com?", hasID: true, lookup: false,
	},
	{
		name: "agent confirm key use", text: "Allow use of key /home/user/.ssh/id_ed25519?\nKey fingerprint SHA256:c2FtcGxlZmluZ2VycHJpbnQ.",
		kind: Confirmation, identifier: "/home/user/.ssh/id_ed25519?", hasID: true, lookup: false,
	},
	{
		name: "add key to agent", text: "Add key /home/user/.ssh/id_ed25519 (user@host) to agent?",
		kind: Confirmation, identifier: "/home/user/.ssh/id_ed25519", hasID: true, lookup: false,
	},
	{
		name: "git imap-send", text: "Password (user@imap.example.com): ",
		kind: SecretHidden, identifier: "user@imap.example.com", hasID: true, lookup: true,
	},
	{
		name: "git anonymous username", text: "Username: ",
		kind: SecretVisible, hasID: false, lookup: false,
	},
	{
		name: "git anonymous password", text: "Password: ",
		kind: SecretHidden, hasID: false, lookup: false,
	},
	{
		name: "git username for url", text: "Username for 'https://github.com': ",
		kind: SecretVisible, identifier: "https://github.com", hasID: true, lookup: true,
	},
	{
		name: "git password for url", text: "Password for 'https://user@github.com': ",
		kind: SecretHidden, identifier: "https://user@github.com", hasID: true, lookup: true,
	},
	{
		name: "git-lfs username", text: "Username for \"https://github.com\"",
		kind: SecretVisible, identifier: "https://github.com", hasID: true, lookup: true,
	},
	{
		name: "git-lfs password", text: "Password for \"https://user@github.com\"",
		kind: SecretHidden, identifier: "https://user@github.com", hasID: true, lookup: true,
	},
	{
		name: "mercurial password", text: "example.org's password: ",
		kind: SecretHidden, identifier: "example.org", hasID: true, lookup: true,
	},
}

func TestClassify(t *testing.T) {
	classifier := NewClassifier(nil)

	for _, testCase := range classifyCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := classifier.Classify(testCase.text)

			if got.Kind != testCase.kind {
				t.Errorf("kind: expected %v, got %v", testCase.kind, got.Kind)
			}
			if got.HasIdentifier != testCase.hasID {
				t.Errorf("has identifier: expected %v, got %v", testCase.hasID, got.HasIdentifier)
			}
			if got.Identifier != testCase.identifier {
				t.Errorf("identifier: expected %q, got %q", testCase.identifier, got.Identifier)
			}
			if got.AllowStoreLookup != testCase.lookup {
				t.Errorf("store lookup: expected %v, got %v", testCase.lookup, got.AllowStoreLookup)
			}
		})
	}
}

// The retry rule must win over the general ssh-add rule even though
// both would extract the same identifier, because a retry means a
// stored value was just rejected.
func TestClassify_RetryBeatsFirstAsk(t *testing.T) {
	classifier := NewClassifier(nil)

	first := classifier.Classify("Enter passphrase for /k: ")
	if !first.AllowStoreLookup {
		t.Error("first ask should allow store lookup")
	}

	retry := classifier.Classify("Bad passphrase, try again for /k: ")
	if retry.AllowStoreLookup {
		t.Error("retry must not allow store lookup")
	}
	if retry.Identifier != "/k" {
		t.Errorf("retry identifier: got %q", retry.Identifier)
	}
}

// The keyfile rule must win over the looser ssh-add rule so the
// identifier excludes the surrounding quotes.
func TestClassify_KeyfileRuleWinsOverLoose(t *testing.T) {
	classifier := NewClassifier(nil)

	got := classifier.Classify("Enter passphrase for key '/path/to/key': ")
	if got.Identifier != "/path/to/key" {
		t.Errorf("expected quoted form stripped, got %q", got.Identifier)
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	var logOutput bytes.Buffer
	classifier := NewClassifier(slog.New(slog.NewTextHandler(&logOutput, nil)))

	got := classifier.Classify("garbage")
	if got.Kind != SecretHidden {
		t.Errorf("expected SecretHidden, got %v", got.Kind)
	}
	if got.HasIdentifier {
		t.Error("expected no identifier")
	}
	if got.AllowStoreLookup {
		t.Error("expected store lookup disallowed")
	}
	if !strings.Contains(logOutput.String(), "unrecognized prompt") {
		t.Errorf("expected a diagnostic log record, got %q", logOutput.String())
	}
}

func TestClassify_EmptyString(t *testing.T) {
	classifier := NewClassifier(nil)

	got := classifier.Classify("")
	if got.Kind != SecretHidden || got.HasIdentifier || got.AllowStoreLookup {
		t.Errorf("expected default classification, got %+v", got)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	classifier := NewClassifier(nil)

	text := "git@example.com's password: "
	if first, second := classifier.Classify(text), classifier.Classify(text); first != second {
		t.Errorf("classification not stable: %+v vs %+v", first, second)
	}
}

// Substrings must not match: the rules account for the entire prompt.
func TestClassify_AnchoredMatching(t *testing.T) {
	classifier := NewClassifier(nil)

	for _, text := range []string{
		"git@example.com's password: extra",
		"Username for 'https://github.com': trailing",
		"Password:",
	} {
		got := classifier.Classify(text)
		if got.HasIdentifier || got.AllowStoreLookup {
			t.Errorf("%q should not match any rule, got %+v", text, got)
		}
	}
}
