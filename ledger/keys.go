package ledger

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// KeyType is the curve tag carried in serialized keys and signatures.
type KeyType uint8

const (
	// ED25519 is the only key type supported for signing.
	ED25519 KeyType = 0
	// SECP256K1 keys are recognized but cannot be used by this tool.
	SECP256K1 KeyType = 1
)

func (t KeyType) String() string {
	switch t {
	case ED25519:
		return "ed25519"
	case SECP256K1:
		return "secp256k1"
	default:
		return "unknown"
	}
}

// PublicKey is an ed25519 public key in the ledger's "ed25519:<base58>" text form.
type PublicKey [ed25519.PublicKeySize]byte

// ParsePublicKey parses "ed25519:<base58>". A bare base58 string is treated as ed25519.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	data, err := decodeKeyString(s)
	if err != nil {
		return pk, fmt.Errorf("invalid public key %q: %w", s, err)
	}
	if len(data) != len(pk) {
		return pk, fmt.Errorf("invalid public key %q: expected %d bytes, got %d", s, len(pk), len(data))
	}
	copy(pk[:], data)
	return pk, nil
}

func (pk PublicKey) String() string {
	return ED25519.String() + ":" + base58.Encode(pk[:])
}

// Verify reports whether sig is a valid signature of message by pk.
func (pk PublicKey) Verify(message []byte, sig Signature) bool {
	return ed25519.Verify(pk[:], message, sig[:])
}

// SecretKey is an ed25519 private key. Its text form is "ed25519:<base58 of seed||public key>".
type SecretKey struct {
	key ed25519.PrivateKey
}

// ParseSecretKey accepts the 64 byte expanded form or a 32 byte seed.
func ParseSecretKey(s string) (SecretKey, error) {
	data, err := decodeKeyString(s)
	if err != nil {
		return SecretKey{}, fmt.Errorf("invalid secret key: %w", err)
	}
	switch len(data) {
	case ed25519.PrivateKeySize:
		sk := SecretKeyFromSeed(data[:ed25519.SeedSize])
		if !bytes.Equal(sk.key[ed25519.SeedSize:], data[ed25519.SeedSize:]) {
			return SecretKey{}, fmt.Errorf("invalid secret key: public half does not match seed")
		}
		return sk, nil
	case ed25519.SeedSize:
		return SecretKeyFromSeed(data), nil
	default:
		return SecretKey{}, fmt.Errorf("invalid secret key: expected %d or %d bytes, got %d", ed25519.PrivateKeySize, ed25519.SeedSize, len(data))
	}
}

// SecretKeyFromSeed derives the key pair for a 32 byte seed.
func SecretKeyFromSeed(seed []byte) SecretKey {
	return SecretKey{key: ed25519.NewKeyFromSeed(seed)}
}

func (sk SecretKey) String() string {
	return ED25519.String() + ":" + base58.Encode(sk.key)
}

// PublicKey returns the public half of sk.
func (sk SecretKey) PublicKey() PublicKey {
	var pk PublicKey
	copy(pk[:], sk.key[ed25519.SeedSize:])
	return pk
}

// Sign signs message. ed25519 signing is deterministic.
func (sk SecretKey) Sign(message []byte) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(sk.key, message))
	return sig
}

// Signature is an ed25519 signature.
type Signature [ed25519.SignatureSize]byte

func (sig Signature) String() string {
	return ED25519.String() + ":" + base58.Encode(sig[:])
}

// ImplicitAccountID returns the implicit account owned by pk.
func (pk PublicKey) ImplicitAccountID() AccountID {
	return AccountID(fmt.Sprintf("%x", pk[:]))
}

func decodeKeyString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	body := s
	if curve, rest, ok := strings.Cut(s, ":"); ok {
		switch strings.ToLower(curve) {
		case ED25519.String():
		case SECP256K1.String():
			return nil, fmt.Errorf("%s keys are not supported", SECP256K1)
		default:
			return nil, fmt.Errorf("unknown key type %q", curve)
		}
		body = rest
	}
	if body == "" {
		return nil, fmt.Errorf("empty key data")
	}
	return base58.Decode(body)
}

// hashBytes is the digest that gets signed and that identifies a transaction.
func hashBytes(b []byte) CryptoHash {
	return CryptoHash(sha256.Sum256(b))
}

// Bytes returns the raw key.
func (pk PublicKey) Bytes() []byte {
	return pk[:]
}
