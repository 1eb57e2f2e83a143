package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"testing"

	"github.com/ossvet/chainverify/internal/layout"
)

func seedKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seed := bytes.Repeat([]byte{0x42}, ed25519.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), priv
}

func encodePEM(t *testing.T, pub ed25519.PublicKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block))
}

func TestPEMVerifierEd25519(t *testing.T) {
	pub, priv := seedKey(t)
	rec := layout.Key{KeyID: "test", KeyType: "ed25519", Scheme: "pem", KeyValue: encodePEM(t, pub)}

	v, err := Load(rec)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	message := []byte("step materials digest payload")
	sig := ed25519.Sign(priv, message)
	sigHex := []byte(hex.EncodeToString(sig))

	if err := v.Verify(message, sigHex); err != nil {
		t.Fatalf("Verify valid signature: %v", err)
	}

	if err := v.Verify([]byte("tampered payload"), sigHex); err == nil {
		t.Fatalf("Verify accepted signature over tampered message")
	}
}

func TestLoadUnknownScheme(t *testing.T) {
	_, err := Load(layout.Key{KeyID: "x", Scheme: "quantum-foo"})
	if err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}
