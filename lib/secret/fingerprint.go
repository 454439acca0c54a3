// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// fingerprintKey is the BLAKE3 key of the fingerprint domain: the ASCII
// domain name, zero-padded to 32 bytes. Changing it changes every
// fingerprint.
var fingerprintKey = [32]byte{
	's', 'y', 'n', 'a', 'd', 'm', 'i', 'n', '.', 't', 'o', 'k', 'e', 'n', '.',
	'f', 'i', 'n', 'g', 'e', 'r', 'p', 'r', 'i', 'n', 't', 0, 0, 0, 0, 0, 0,
}

// Fingerprint returns a short stable identifier for a secret, such as
// "tok-3fa2c19b04de". Equal secrets have equal fingerprints; the
// fingerprint does not reveal the secret. Forty-eight bits are enough
// to tell a handful of configured tokens apart, not to resist a
// targeted collision search.
func Fingerprint(secret []byte) string {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("secret: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(secret)
	return "tok-" + hex.EncodeToString(hasher.Sum(nil)[:6])
}
