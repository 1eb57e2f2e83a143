package keys

import (
	"bytes"
	"fmt"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// gpgVerifier checks a detached OpenPGP signature against one of the
// entities in an ASCII-armored keyring block.
type gpgVerifier struct {
	keyring openpgp.EntityList
}

func loadGPGVerifier(armored string) (Verifier, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader([]byte(armored)))
	if err != nil {
		return nil, fmt.Errorf("decode gpg keyring: %w", err)
	}
	if len(keyring) == 0 {
		return nil, fmt.Errorf("gpg keyring is empty")
	}
	return &gpgVerifier{keyring: keyring}, nil
}

// Verify treats sig as an ASCII-armored detached signature packet.
func (g *gpgVerifier) Verify(message, sig []byte) error {
	_, err := openpgp.CheckArmoredDetachedSignature(g.keyring, bytes.NewReader(message), bytes.NewReader(sig), nil)
	if err == nil {
		return nil
	}

	// Fall back to the binary packet form, since link/layout signatures are
	// usually carried as raw bytes rather than re-armored.
	_, err2 := openpgp.CheckDetachedSignature(g.keyring, bytes.NewReader(message), bytes.NewReader(sig), nil)
	if err2 != nil {
		return fmt.Errorf("verify gpg signature: %w", err)
	}
	return nil
}
