// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/promptkeep/promptkeep/lib/secret"
)

// entryRecord is the plaintext inside an entry's encrypted envelope.
// The identifier is stored here, not in a database column: outside
// the envelope it exists only as a keyed digest.
type entryRecord struct {
	Identifier string `cbor:"identifier"`
	Value      []byte `cbor:"value"`
	CreatedAt  int64  `cbor:"created_at"`
	UpdatedAt  int64  `cbor:"updated_at"`
}

// encMode encodes envelopes with Core Deterministic Encoding (RFC
// 8949 §4.2) so the same record always produces identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("vault: CBOR encoder initialization failed: " + err.Error())
	}
}

// entryDomainKey is the BLAKE3 keyed-hash domain for entry digests.
// Fixed constant — changing it orphans every existing entry. ASCII so
// the key is inspectable in hex dumps.
var entryDomainKey = [32]byte{
	'p', 'r', 'o', 'm', 'p', 't', 'k', 'e', 'e', 'p', '.', 'v', 'a', 'u', 'l', 't',
	'.', 'e', 'n', 't', 'r', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// entryDigest returns the hex lookup digest for an identifier within
// a folder. Folder and identifier are separated by a NUL so the pair
// ("a", "b c") can never collide with ("a b", "c").
func entryDigest(folder, identifier string) string {
	hasher, err := blake3.NewKeyed(entryDomainKey[:])
	if err != nil {
		// NewKeyed fails only for a wrong key length, which the
		// fixed-size array rules out.
		panic("vault: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(folder))
	hasher.Write([]byte{0})
	hasher.Write([]byte(identifier))
	return hex.EncodeToString(hasher.Sum(nil))
}

// seal encrypts an entry record to the vault's recipient and returns
// the base64 envelope stored in the database. The CBOR intermediate
// is zeroed before returning; the record's Value field is borrowed
// and left to the caller.
func (v *Vault) seal(record *entryRecord) (string, error) {
	plaintext, err := encMode.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encoding entry: %w", err)
	}
	defer secret.Zero(plaintext)

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, v.recipient)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return "", fmt.Errorf("encrypting entry: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalizing entry encryption: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// unseal decrypts a base64 envelope into an entry record. The
// record's Value holds plaintext secret bytes on the heap; callers
// move it into a secret.Buffer (which zeroes it) or zero it
// themselves.
func (v *Vault) unseal(envelope string) (*entryRecord, error) {
	rawCiphertext, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	identity, err := age.ParseX25519Identity(v.identity.String())
	if err != nil {
		return nil, fmt.Errorf("parsing vault key: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(rawCiphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting entry: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted entry: %w", err)
	}
	defer secret.Zero(plaintext)

	var record entryRecord
	if err := cbor.Unmarshal(plaintext, &record); err != nil {
		return nil, fmt.Errorf("decoding entry: %w", err)
	}
	return &record, nil
}

// GenerateKeyFile creates a new age x25519 identity, writes it to
// path with mode 0600 (creating parent directories), and returns the
// corresponding public key. Fails if the file already exists — a
// vault key is generated once, and overwriting it orphans every
// entry encrypted to it.
func GenerateKeyFile(path string) (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating vault key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("creating key directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("creating key file: %w", err)
	}
	if _, err := file.WriteString(identity.String() + "\n"); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing key file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing key file: %w", err)
	}

	return identity.Recipient().String(), nil
}
