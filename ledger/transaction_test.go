package ledger_test

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/stretchr/testify/require"
)

// RFC 8032 test vector 1.
const (
	testSeedHex   = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"
	testPubKeyHex = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
)

func testSecretKey(t *testing.T) ledger.SecretKey {
	t.Helper()
	seed, err := hex.DecodeString(testSeedHex)
	require.NoError(t, err)
	return ledger.SecretKeyFromSeed(seed)
}

func TestSecretKeyRoundTrip(t *testing.T) {
	sk := testSecretKey(t)
	require.Equal(t, testPubKeyHex, hex.EncodeToString(sk.PublicKey().Bytes()))

	parsed, err := ledger.ParseSecretKey(sk.String())
	require.NoError(t, err, "error parsing expanded secret key")
	require.Equal(t, sk.PublicKey(), parsed.PublicKey())

	pk, err := ledger.ParsePublicKey(sk.PublicKey().String())
	require.NoError(t, err, "error parsing public key")
	require.Equal(t, sk.PublicKey(), pk)
	require.Contains(t, pk.String(), "ed25519:")

	_, err = ledger.ParsePublicKey("secp256k1:" + pk.String()[len("ed25519:"):])
	require.Error(t, err)
	_, err = ledger.ParsePublicKey("ed25519:")
	require.Error(t, err)
	_, err = ledger.ParsePublicKey("ed25519:0OIl")
	require.Error(t, err, "characters outside the base58 alphabet must be rejected")
	_, err = ledger.ParseSecretKey(pk.String())
	require.Error(t, err, "a public key is not a valid secret key")
}

func TestImplicitAccountID(t *testing.T) {
	id := testSecretKey(t).PublicKey().ImplicitAccountID()
	require.Equal(t, ledger.AccountID(testPubKeyHex), id)
	require.True(t, id.IsImplicit())
}

func TestTransferSerialization(t *testing.T) {
	var pk ledger.PublicKey
	copy(pk[:], bytes.Repeat([]byte{1}, 32))
	var blockHash ledger.CryptoHash
	copy(blockHash[:], bytes.Repeat([]byte{2}, 32))

	tx := ledger.NewTransaction("a.near", "b.near").
		WithAccessKey(pk, 7, blockHash).
		Append(ledger.Transfer{Deposit: ledger.NearToYocto(5)})

	want := "06000000612e6e65617200" +
		"0101010101010101010101010101010101010101010101010101010101010101" +
		"0700000000000000" +
		"06000000622e6e656172" +
		"0202020202020202020202020202020202020202020202020202020202020202" +
		"01000000" +
		"03" + "00000025a4000a8bca22040000000000"
	require.Equal(t, want, hex.EncodeToString(tx.Serialize()))

	wantHash, err := hex.DecodeString("619ace64fa0134e3e9c9ba7bca57bb2ddf3eed608476474b00e231a04df8198f")
	require.NoError(t, err)
	require.Equal(t, wantHash, tx.Hash().Bytes())
}

func TestTransactionIsValueType(t *testing.T) {
	base := ledger.NewTransaction("a.near", "b.near").Append(ledger.Transfer{Deposit: ledger.NearToYocto(1)})

	withStake := base.Append(ledger.Stake{Amount: ledger.NearToYocto(2)})
	withDelete := base.Append(ledger.DeleteAccount{Beneficiary: "c.near"})
	require.Len(t, base.Actions(), 1)
	require.Equal(t, ledger.Stake{Amount: ledger.NearToYocto(2)}.Kind(), withStake.Actions()[1].Kind())
	require.Equal(t, "delete-account", withDelete.Actions()[1].Kind())

	moved := withStake.WithSigner("x.near").WithReceiver("y.near")
	require.Equal(t, ledger.AccountID("a.near"), withStake.SignerID)
	require.Len(t, moved.Actions(), 2, "replacing signer and receiver keeps the actions")

	acts := moved.Actions()
	acts[0] = ledger.CreateAccount{}
	require.Equal(t, "transfer", moved.Actions()[0].Kind(), "Actions returns a copy")
}

func TestActionOrderPreserved(t *testing.T) {
	allowance := ledger.NearToYocto(1)
	actions := []ledger.Action{
		ledger.CreateAccount{},
		ledger.Transfer{Deposit: ledger.NearToYocto(3)},
		ledger.AddFunctionCallKey{Allowance: &allowance, Receiver: "app.near", MethodNames: []string{"a", "b"}},
		ledger.FunctionCall{Method: "go", Args: []byte(`{}`), Gas: ledger.DefaultGas},
		ledger.DeployContract{Code: []byte{0, 97, 115, 109}},
		ledger.DeleteKey{},
		ledger.AddFullAccessKey{},
		ledger.DeleteAccount{Beneficiary: "c.near"},
	}
	tx := ledger.NewTransaction("a.near", "b.near")
	for _, a := range actions {
		tx = tx.Append(a)
	}
	diff := cmp.Diff(actions, tx.Actions(), cmp.Comparer(func(a, b ledger.Balance) bool { return a.Cmp(b) == 0 }))
	require.Empty(t, diff)

	// Every variant must encode.
	require.NotEmpty(t, tx.Serialize())
	for _, a := range actions {
		require.NotEmpty(t, ledger.Describe(a))
	}
}

func TestSignDeterministic(t *testing.T) {
	sk := testSecretKey(t)
	tx := ledger.NewTransaction("a.near", "b.near").
		WithAccessKey(sk.PublicKey(), 11, ledger.CryptoHash{9}).
		Append(ledger.Transfer{Deposit: ledger.NearToYocto(5)})
	before := tx.Serialize()

	first := tx.Sign(sk)
	second := tx.Sign(sk)
	require.Equal(t, first.Bytes(), second.Bytes())
	require.Equal(t, first.Base64(), second.Base64())
	require.True(t, first.Verify())
	require.Equal(t, before, tx.Serialize(), "signing must not change the transaction")

	raw, err := base64.StdEncoding.DecodeString(first.Base64())
	require.NoError(t, err)
	require.Equal(t, append(before, append([]byte{0}, first.Signature[:]...)...), raw)
	require.Equal(t, tx.Hash(), first.Hash())
}

func TestCryptoHashText(t *testing.T) {
	h := ledger.CryptoHash{1, 2, 3}
	parsed, err := ledger.ParseCryptoHash(h.String())
	require.NoError(t, err)
	require.Equal(t, h, parsed)

	_, err = ledger.ParseCryptoHash("")
	require.Error(t, err)
	_, err = ledger.ParseCryptoHash("abc")
	require.Error(t, err, "short hashes are rejected")
}
