package signer_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/strangelove-ventures/nearcli/signer"
	"github.com/stretchr/testify/require"
)

func TestKeychain(t *testing.T) {
	kc := signer.NewKeychain(keyring.NewArrayKeyring(nil))
	sk := ledger.SecretKeyFromSeed(make([]byte, 32))

	_, err := kc.Load("testnet", "alice.testnet")
	require.ErrorIs(t, err, signer.ErrNoCredential)

	require.NoError(t, kc.Save("testnet", "alice.testnet", sk))
	require.NoError(t, kc.Save("testnet", "bob.testnet", sk))
	require.NoError(t, kc.Save("mainnet", "alice.near", sk))

	got, err := kc.Load("testnet", "alice.testnet")
	require.NoError(t, err)
	require.Equal(t, sk.PublicKey(), got.PublicKey())

	_, err = kc.Load("mainnet", "alice.testnet")
	require.ErrorIs(t, err, signer.ErrNoCredential, "credentials are scoped to a network")

	accounts, err := kc.Accounts("testnet")
	require.NoError(t, err)
	require.Equal(t, []ledger.AccountID{"alice.testnet", "bob.testnet"}, accounts)

	require.NoError(t, kc.Remove("testnet", "bob.testnet"))
	_, err = kc.Load("testnet", "bob.testnet")
	require.ErrorIs(t, err, signer.ErrNoCredential)
	require.ErrorIs(t, kc.Remove("testnet", "bob.testnet"), signer.ErrNoCredential)
}

func TestKeychainCorruptItem(t *testing.T) {
	kc := signer.NewKeychain(keyring.NewArrayKeyring([]keyring.Item{
		{Key: "testnet/alice.testnet", Data: []byte("not json")},
	}))
	_, err := kc.Load("testnet", "alice.testnet")
	require.ErrorContains(t, err, "corrupt")
}
