// Package signer holds the key sources transactions can be signed with:
// the OS keychain, hardware devices and seed phrases.
package signer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/99designs/keyring"
	"github.com/strangelove-ventures/nearcli/ledger"
)

// ServiceName namespaces our items in the OS keychain.
const ServiceName = "nearcli"

// ErrNoCredential is returned when the keychain holds no key for an account.
var ErrNoCredential = errors.New("no credential stored")

// Credential is the stored form of an account's full access key.
type Credential struct {
	AccountID  ledger.AccountID `json:"account_id"`
	PublicKey  string           `json:"public_key"`
	PrivateKey string           `json:"private_key"`
}

// Keychain stores credentials per network and account.
type Keychain struct {
	ring keyring.Keyring
}

// NewKeychain wraps an already opened keyring, e.g. keyring.NewArrayKeyring in tests.
func NewKeychain(ring keyring.Keyring) *Keychain {
	return &Keychain{ring: ring}
}

// OpenKeychain opens the named backend. An empty backend lets keyring pick the platform default.
// The file backend keeps encrypted items under dir and asks for its password with passwordFunc.
func OpenKeychain(backend, dir string, passwordFunc keyring.PromptFunc) (*Keychain, error) {
	cfg := keyring.Config{
		ServiceName:      ServiceName,
		FileDir:          dir,
		FilePasswordFunc: passwordFunc,
	}
	if backend != "" {
		cfg.AllowedBackends = []keyring.BackendType{keyring.BackendType(backend)}
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open keychain (backend %q): %w", backend, err)
	}
	return NewKeychain(ring), nil
}

func itemKey(network string, account ledger.AccountID) string {
	return network + "/" + account.String()
}

// Save stores sk as the credential of account on network, replacing any previous one.
func (k *Keychain) Save(network string, account ledger.AccountID, sk ledger.SecretKey) error {
	data, err := json.Marshal(Credential{
		AccountID:  account,
		PublicKey:  sk.PublicKey().String(),
		PrivateKey: sk.String(),
	})
	if err != nil {
		return err
	}
	return k.ring.Set(keyring.Item{
		Key:         itemKey(network, account),
		Data:        data,
		Label:       fmt.Sprintf("%s (%s)", account, network),
		Description: "NEAR access key",
	})
}

// Load returns the secret key stored for account on network.
func (k *Keychain) Load(network string, account ledger.AccountID) (ledger.SecretKey, error) {
	item, err := k.ring.Get(itemKey(network, account))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return ledger.SecretKey{}, fmt.Errorf("%w for %s on %s", ErrNoCredential, account, network)
	}
	if err != nil {
		return ledger.SecretKey{}, fmt.Errorf("read keychain: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(item.Data, &cred); err != nil {
		return ledger.SecretKey{}, fmt.Errorf("credential for %s on %s is corrupt: %w", account, network, err)
	}
	return ledger.ParseSecretKey(cred.PrivateKey)
}

// Accounts lists the accounts with a stored credential on network.
func (k *Keychain) Accounts(network string) ([]ledger.AccountID, error) {
	keys, err := k.ring.Keys()
	if err != nil {
		return nil, err
	}
	var out []ledger.AccountID
	for _, key := range keys {
		if rest, ok := strings.CutPrefix(key, network+"/"); ok {
			out = append(out, ledger.AccountID(rest))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Remove deletes the credential of account on network.
// Backends differ on whether removing a missing item fails, so existence is checked first.
func (k *Keychain) Remove(network string, account ledger.AccountID) error {
	key := itemKey(network, account)
	_, err := k.ring.Get(key)
	if err == nil {
		err = k.ring.Remove(key)
	}
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("%w for %s on %s", ErrNoCredential, account, network)
	}
	return err
}
