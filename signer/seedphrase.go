package signer

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/tyler-smith/go-bip39"
)

// DefaultSeedPhrasePath is the derivation path wallets use for seed phrase accounts.
const DefaultSeedPhrasePath = "m/44'/397'/0'"

// NewMnemonic returns a fresh 12 word seed phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// KeyFromMnemonic derives the ed25519 key at path from a seed phrase.
func KeyFromMnemonic(mnemonic, passphrase string, path HDPath) (ledger.SecretKey, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return ledger.SecretKey{}, fmt.Errorf("invalid seed phrase: %w", err)
	}
	key, _ := deriveSLIP10(seed, path)
	return ledger.SecretKeyFromSeed(key), nil
}

// deriveSLIP10 walks path from seed using SLIP-0010 for ed25519, which only defines hardened children.
func deriveSLIP10(seed []byte, path HDPath) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	key, chainCode = sum[:32], sum[32:]

	for _, index := range path {
		data := make([]byte, 0, 37)
		data = append(data, 0)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index|hardened)

		mac := hmac.New(sha512.New, chainCode)
		mac.Write(data)
		sum := mac.Sum(nil)
		key, chainCode = sum[:32], sum[32:]
	}
	return key, chainCode
}
