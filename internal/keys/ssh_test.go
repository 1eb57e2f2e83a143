package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestSSHVerifierValidAndTamperedSignature(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	authorizedLine := string(ssh.MarshalAuthorizedKey(signer.PublicKey()))

	v, err := loadSSHVerifier(authorizedLine)
	if err != nil {
		t.Fatalf("loadSSHVerifier: %v", err)
	}

	message := []byte("materials and products recorded here")
	sig, err := signer.Sign(rand.Reader, message)
	if err != nil {
		t.Fatal(err)
	}
	wire := ssh.Marshal(sig)

	if err := v.Verify(message, wire); err != nil {
		t.Errorf("Verify of a genuine signature failed: %v", err)
	}
	if err := v.Verify([]byte("tampered payload"), wire); err == nil {
		t.Error("expected Verify to reject a signature over different bytes")
	}
}

func TestLoadSSHVerifierInvalidKey(t *testing.T) {
	if _, err := loadSSHVerifier("not an ssh key"); err == nil {
		t.Error("expected an error loading a malformed authorized_keys line")
	}
}
