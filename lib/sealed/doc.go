// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed stores admin access tokens encrypted with age, so a
// token file at rest is useless without the operator's identity.
//
// A sealed token file is an ASCII-armored age file ("-----BEGIN AGE
// ENCRYPTED FILE-----") whose plaintext is the token. Identity files
// use the age-keygen layout: comment lines, then one AGE-SECRET-KEY-1
// line. Both formats interoperate with the age command-line tool.
//
// Private keys and decrypted tokens are returned in [secret.Buffer]
// values and never pass through long-lived heap strings.
//
//   - [GenerateIdentity] / [WriteIdentity] back "credential keygen"
//   - [Seal] backs "credential seal"
//   - [ReadIdentityFile] / [Open] / [OpenFile] load the token at startup
package sealed
