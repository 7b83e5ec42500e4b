// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package audit records one masked entry per analyzed password.
//
// An entry carries the time, the score, the breach status, the password
// length and a keyed digest. The raw password, or any fragment of it, is never
// written: the digest is a keyed BLAKE2b so it cannot be looked up in public
// hash dumps, and the key is random per process unless one is configured.
package audit
