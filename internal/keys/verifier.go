// Package keys implements the verifier's pluggable crypto: loading a
// functionary's key record and verifying a detached signature over an
// arbitrary byte payload, agnostic to the underlying algorithm.
package keys

import (
	"fmt"

	"github.com/ossvet/chainverify/internal/layout"
)

// Scheme selects which verifier backend a Key record's keyval is decoded
// with.
type Scheme string

const (
	SchemePEM Scheme = "pem" // RSA/ECDSA/Ed25519 SPKI PEM, default
	SchemeGPG Scheme = "gpg" // ASCII-armored OpenPGP public key
	SchemeSSH Scheme = "ssh" // authorized_keys-format line
)

// Verifier checks a detached signature over a message. It is the concrete
// instance behind the spec's abstract verify(object, key) → bool.
type Verifier interface {
	Verify(message, sig []byte) error
}

// Load builds a Verifier for a key record, dispatching on its Scheme.
// Unrecognized or empty schemes fall back to SchemePEM, matching the
// "pem" default most in-toto key generators produce.
func Load(rec layout.Key) (Verifier, error) {
	switch Scheme(rec.Scheme) {
	case SchemeGPG:
		return loadGPGVerifier(rec.KeyValue)
	case SchemeSSH:
		return loadSSHVerifier(rec.KeyValue)
	case SchemePEM, "":
		return loadPEMVerifier(rec.KeyValue)
	default:
		return nil, fmt.Errorf("unknown key scheme %q for keyid %s", rec.Scheme, rec.KeyID)
	}
}
