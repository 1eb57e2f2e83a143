package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"
	"fmt"
)

// KeyIDFromPEM derives a keyid from a PEM-encoded public key by hashing
// its DER bytes, the same identifier scheme layouts and links refer to in
// their keys/pubkeys fields. CLI-loaded owner keys have no keyid of their
// own to read, unlike a layout's embedded keys map, so one is computed
// here instead of trusting a filename.
func KeyIDFromPEM(data []byte) (string, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return "", fmt.Errorf("no PEM block found")
	}
	sum := sha256.Sum256(block.Bytes)
	return hex.EncodeToString(sum[:]), nil
}
