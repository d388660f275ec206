// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"io"
	"log/slog"
	"regexp"
)

// Kind is the sort of answer a prompt is asking for.
type Kind int

const (
	// SecretHidden is a password, passphrase, or PIN typed without echo.
	SecretHidden Kind = iota
	// SecretVisible is non-secret text typed with echo, such as a username.
	SecretVisible
	// Confirmation is a yes/no decision.
	Confirmation
)

// String returns the kind's name for logging.
func (k Kind) String() string {
	switch k {
	case SecretHidden:
		return "secret-hidden"
	case SecretVisible:
		return "secret-visible"
	case Confirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying one prompt. It is
// created once per invocation and never mutated.
type Classification struct {
	// Kind is the sort of answer requested.
	Kind Kind

	// Identifier names the credential the prompt is about (a host,
	// a key file path, a token label, a URL). Valid only when
	// HasIdentifier is true; anonymous prompts ("Password: ") have
	// none.
	Identifier string

	// HasIdentifier reports whether a rule captured an identifier.
	HasIdentifier bool

	// AllowStoreLookup reports whether answering from a stored
	// credential is sensible. False for change-of-password prompts,
	// retry-after-failure prompts, and confirmations — even when an
	// identifier is present.
	AllowStoreLookup bool
}

// rule is one entry in the classification table: a fully-anchored
// expression, the capture group holding the identifier (0 for none),
// and the classification it produces.
type rule struct {
	expr        *regexp.Regexp
	group       int
	kind        Kind
	allowLookup bool
}

// rules is evaluated in order; the first match wins. The phrases come
// from the upstream tools' source and must be matched byte for byte,
// trailing spaces included.
var rules = []rule{
	// openssh sshconnect2.c: password for a remote host.
	{regexp.MustCompile(`\A(.*@.*)'s password( \(JPAKE\))?: \z`), 1, SecretHidden, true},
	// openssh sshconnect2.c: password change request. Never answer a
	// "new password" prompt from the store.
	{regexp.MustCompile(`\A(Enter|Retype) (.*@.*)'s (old|new) password: \z`), 2, SecretHidden, false},
	// openssh sshconnect1.c / sshconnect2.c: passphrase for a key file.
	{regexp.MustCompile(`\AEnter passphrase for( RSA)? key '(.*)': \z`), 2, SecretHidden, true},
	// openssh ssh-add.c: first ask for a key file's passphrase.
	{regexp.MustCompile(`\AEnter passphrase for (.*?)( \(will confirm each use\))?: \z`), 1, SecretHidden, true},
	// openssh ssh-add.c: re-ask after a failure. A stored value was
	// likely just rejected, so don't offer it again.
	{regexp.MustCompile(`\ABad passphrase, try again for (.*?)( \(will confirm each use\))?: \z`), 1, SecretHidden, false},
	// openssh ssh-pkcs11.c: PIN for a token label.
	{regexp.MustCompile(`\AEnter PIN for '(.*)': \z`), 1, SecretHidden, true},
	// openssh mux.c: multiplexing confirmations.
	{regexp.MustCompile(`\A(Allow|Terminate) shared connection to (.*)\? \z`), 2, Confirmation, false},
	{regexp.MustCompile(`\AOpen (.* on .*)?\z`), 1, Confirmation, false},
	{regexp.MustCompile(`\AAllow forward to (.*:.*)\? \z`), 1, Confirmation, false},
	{regexp.MustCompile(`\ADisable further multiplexing on shared connection to (.*)? \z`), 1, Confirmation, false},
	// openssh ssh-agent.c: confirmed key use. The fingerprint is on a
	// second line.
	{regexp.MustCompile(`\AAllow use of key (.*)?\nKey fingerprint .*\.\z`), 1, Confirmation, false},
	// openssh sshconnect.c: add a host key to the agent.
	{regexp.MustCompile(`\AAdd key (.*) \(.*\) to agent\?\z`), 1, Confirmation, false},
	// git imap-send.c.
	{regexp.MustCompile(`\APassword \((.*@.*)\): \z`), 1, SecretHidden, true},
	// git credential.c: anonymous prompts carry no identifier, so
	// there is nothing to look up.
	{regexp.MustCompile(`\AUsername: \z`), 0, SecretVisible, false},
	{regexp.MustCompile(`\APassword: \z`), 0, SecretHidden, false},
	{regexp.MustCompile(`\AUsername for '(.*)': \z`), 1, SecretVisible, true},
	{regexp.MustCompile(`\APassword for '(.*)': \z`), 1, SecretHidden, true},
	// git-lfs quotes with double quotes and drops the trailing space.
	{regexp.MustCompile(`\AUsername for "(.*?)"\z`), 1, SecretVisible, true},
	{regexp.MustCompile(`\APassword for "(.*?)"\z`), 1, SecretHidden, true},
	// mercurial: like the openssh host prompt but without the user@
	// shape. Must stay last — it matches almost anything ending in
	// "'s password: ".
	{regexp.MustCompile(`\A(.*?)'s password: \z`), 1, SecretHidden, true},
}

// Classifier classifies prompts against the rule table.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier returns a classifier that reports unrecognized
// prompts to the given logger. A nil logger discards them.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Classifier{logger: logger}
}

// Classify matches the prompt against the rule table and returns the
// resulting classification. It never fails: a prompt no rule accounts
// for is logged and classified as a hidden secret with no identifier
// and no store access.
func (c *Classifier) Classify(text string) Classification {
	for _, r := range rules {
		match := r.expr.FindStringSubmatchIndex(text)
		if match == nil {
			continue
		}

		result := Classification{Kind: r.kind, AllowStoreLookup: r.allowLookup}
		if r.group > 0 && match[2*r.group] >= 0 {
			result.Identifier = text[match[2*r.group]:match[2*r.group+1]]
			result.HasIdentifier = true
		}
		return result
	}

	// Called by a script with a custom prompt, or an upstream phrase
	// changed. Proceed without an identifier; the raw text is still
	// usable as display text.
	c.logger.Warn("unrecognized prompt", "prompt", text)
	return Classification{Kind: SecretHidden}
}
