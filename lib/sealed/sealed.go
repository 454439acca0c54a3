// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/bureau-foundation/synadmin/lib/secret"
)

// MaxSealedSize bounds a sealed token file. Armor and the age header
// add well under a kilobyte to a token.
const MaxSealedSize = 64 << 10

// Identity is an age x25519 keypair. The caller must Close it.
type Identity struct {
	// PrivateKey is the AGE-SECRET-KEY-1... encoding. Never log it or
	// pass it on a command line.
	PrivateKey *secret.Buffer

	// Recipient is the public age1... encoding; safe to share.
	Recipient string
}

// Close releases the private key memory. Idempotent.
func (i *Identity) Close() error {
	if i.PrivateKey != nil {
		return i.PrivateKey.Close()
	}
	return nil
}

// GenerateIdentity creates a new x25519 identity.
func GenerateIdentity() (*Identity, error) {
	generated, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age identity: %w", err)
	}
	// The string returned by age is heap-resident and left to the GC;
	// the buffer is the only copy this package keeps.
	privateKey, err := secret.NewFromBytes([]byte(generated.String()))
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}
	return &Identity{
		PrivateKey: privateKey,
		Recipient:  generated.Recipient().String(),
	}, nil
}

// WriteIdentity writes identity in the age-keygen file layout.
func WriteIdentity(writer io.Writer, identity *Identity, created time.Time) error {
	header := fmt.Sprintf("# created: %s\n# public key: %s\n",
		created.UTC().Format(time.RFC3339), identity.Recipient)
	if _, err := io.WriteString(writer, header); err != nil {
		return err
	}
	if _, err := writer.Write(identity.PrivateKey.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(writer, "\n")
	return err
}

// ReadIdentityFile loads the private key from an identity file written
// by WriteIdentity or age-keygen. The first line that is neither blank
// nor a comment is the key.
func ReadIdentityFile(path string) (*secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer secret.Zero(data)

	for line := range bytes.SplitSeq(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		privateKey, err := secret.NewFromBytes(line)
		if err != nil {
			return nil, err
		}
		if err := ValidatePrivateKey(privateKey); err != nil {
			privateKey.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return privateKey, nil
	}
	return nil, fmt.Errorf("%s: no identity found", path)
}

// Seal encrypts plaintext to each recipient (age1... keys) and writes
// it ASCII-armored to writer.
func Seal(writer io.Writer, plaintext []byte, recipientKeys []string) error {
	if len(recipientKeys) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return fmt.Errorf("parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	armored := armor.NewWriter(writer)
	encrypted, err := age.Encrypt(armored, recipients...)
	if err != nil {
		return fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := encrypted.Write(plaintext); err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}
	if err := encrypted.Close(); err != nil {
		return fmt.Errorf("finalizing age encryption: %w", err)
	}
	if err := armored.Close(); err != nil {
		return fmt.Errorf("finalizing armor: %w", err)
	}
	return nil
}

// Open decrypts a sealed token with privateKey, which is borrowed and
// not closed. Armored and binary age input are both accepted.
// Surrounding whitespace in the plaintext is trimmed. The caller must
// Close the result.
func Open(reader io.Reader, privateKey *secret.Buffer) (*secret.Buffer, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	buffered := bufio.NewReader(io.LimitReader(reader, MaxSealedSize))
	var source io.Reader = buffered
	if start, _ := buffered.Peek(len(armor.Header)); string(start) == armor.Header {
		source = armor.NewReader(buffered)
	}

	decrypted, err := age.Decrypt(source, identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(decrypted)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("reading decrypted token: %w", err)
	}
	defer secret.Zero(plaintext)

	token := bytes.TrimSpace(plaintext)
	if len(token) == 0 {
		return nil, fmt.Errorf("sealed token is empty")
	}
	return secret.NewFromBytes(token)
}

// OpenFile decrypts the sealed token at sealedPath with the identity at
// identityPath.
func OpenFile(sealedPath, identityPath string) (*secret.Buffer, error) {
	privateKey, err := ReadIdentityFile(identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity: %w", err)
	}
	defer privateKey.Close()

	file, err := os.Open(sealedPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	token, err := Open(file, privateKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sealedPath, err)
	}
	return token, nil
}

// ValidateRecipient checks that key is an age x25519 public key.
func ValidateRecipient(key string) error {
	if _, err := age.ParseX25519Recipient(key); err != nil {
		return fmt.Errorf("invalid age recipient: %w", err)
	}
	return nil
}

// ValidatePrivateKey checks that privateKey holds an age x25519 secret
// key.
func ValidatePrivateKey(privateKey *secret.Buffer) error {
	if _, err := age.ParseX25519Identity(privateKey.String()); err != nil {
		return fmt.Errorf("invalid age private key: %w", err)
	}
	return nil
}
