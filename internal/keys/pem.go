package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/hex"
	"fmt"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"github.com/sigstore/sigstore/pkg/signature"
)

// pemVerifier wraps a sigstore signature.Verifier built from an SPKI PEM
// public key, covering RSA, ECDSA and Ed25519 uniformly.
type pemVerifier struct {
	inner signature.Verifier
}

func loadPEMVerifier(pemBlock string) (Verifier, error) {
	pub, err := cryptoutils.UnmarshalPEMToPublicKey([]byte(pemBlock))
	if err != nil {
		return nil, fmt.Errorf("decode pem public key: %w", err)
	}

	var v signature.Verifier
	switch k := pub.(type) {
	case *rsa.PublicKey:
		v, err = signature.LoadRSAPKCS1v15Verifier(k, crypto.SHA256)
	case *ecdsa.PublicKey:
		v, err = signature.LoadECDSAVerifier(k, crypto.SHA256)
	case ed25519.PublicKey:
		v, err = signature.LoadED25519Verifier(k)
	default:
		return nil, fmt.Errorf("unsupported pem public key type %T", pub)
	}
	if err != nil {
		return nil, fmt.Errorf("build pem verifier: %w", err)
	}

	return &pemVerifier{inner: v}, nil
}

// Verify checks sig, a hex-encoded detached signature, against message.
func (p *pemVerifier) Verify(message, sig []byte) error {
	raw, err := hexDecodeSig(sig)
	if err != nil {
		return err
	}
	return p.inner.VerifySignature(bytesReader(raw), bytesReader(message))
}

func hexDecodeSig(sig []byte) ([]byte, error) {
	raw, err := hex.DecodeString(string(sig))
	if err != nil {
		return nil, fmt.Errorf("decode hex signature: %w", err)
	}
	return raw, nil
}
