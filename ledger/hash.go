package ledger

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// CryptoHash is a 32 byte sha256 digest in base58 text form. Block hashes and
// transaction hashes are both CryptoHashes.
type CryptoHash [32]byte

// ParseCryptoHash parses the base58 text form of a hash.
func ParseCryptoHash(s string) (CryptoHash, error) {
	var h CryptoHash
	s = strings.TrimSpace(s)
	if s == "" {
		return h, fmt.Errorf("hash must not be empty")
	}
	data, err := base58.Decode(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(data) != len(h) {
		return h, fmt.Errorf("invalid hash %q: expected %d bytes, got %d", s, len(h), len(data))
	}
	copy(h[:], data)
	return h, nil
}

func (h CryptoHash) String() string {
	return base58.Encode(h[:])
}

func (h CryptoHash) Bytes() []byte {
	return h[:]
}

// IsZero reports whether h is the all-zero hash.
func (h CryptoHash) IsZero() bool {
	return h == CryptoHash{}
}

// MarshalText and UnmarshalText let hashes travel as JSON strings.
func (h CryptoHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *CryptoHash) UnmarshalText(b []byte) error {
	v, err := ParseCryptoHash(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}
