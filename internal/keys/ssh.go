package keys

import (
	"fmt"

	"golang.org/x/crypto/ssh"
)

// sshVerifier checks a signature carried in the SSH wire format against an
// authorized_keys-style public key line.
type sshVerifier struct {
	pub ssh.PublicKey
}

func loadSSHVerifier(authorizedKeyLine string) (Verifier, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(authorizedKeyLine))
	if err != nil {
		return nil, fmt.Errorf("decode ssh public key: %w", err)
	}
	return &sshVerifier{pub: pub}, nil
}

// Verify unmarshals sig as an ssh.Signature wire blob and checks it against
// message.
func (s *sshVerifier) Verify(message, sig []byte) error {
	var wire ssh.Signature
	if err := ssh.Unmarshal(sig, &wire); err != nil {
		return fmt.Errorf("decode ssh signature: %w", err)
	}
	if err := s.pub.Verify(message, &wire); err != nil {
		return fmt.Errorf("verify ssh signature: %w", err)
	}
	return nil
}
