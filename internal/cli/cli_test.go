package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/strangelove-ventures/nearcli/signer"
	"github.com/strangelove-ventures/nearcli/testutil"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type cliHarness struct {
	t      *testing.T
	node   *testutil.FakeNode
	ring   keyring.Keyring
	dir    string
	config string
	sk     ledger.SecretKey
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

// newCLI starts with account a (10 NEAR, one full access key) and account b (1 NEAR).
func newCLI(t *testing.T, mods testutil.Toml) *cliHarness {
	t.Helper()
	dir := testutil.TempDir(t)
	sk := ledger.SecretKeyFromSeed(bytes.Repeat([]byte{7}, 32))
	return &cliHarness{
		t: t,
		node: testutil.NewFakeNode().
			AddAccount("a", ledger.NearToYocto(10), sk.PublicKey()).
			AddAccount("b", ledger.NearToYocto(1)),
		ring:   keyring.NewArrayKeyring(nil),
		dir:    dir,
		config: testutil.WriteConfig(t, dir, "http://127.0.0.1:3030", mods),
		sk:     sk,
	}
}

// run executes nearcli with the test config and returns the exit code.
func (h *cliHarness) run(args ...string) int {
	h.t.Helper()
	h.out, h.errOut = new(bytes.Buffer), new(bytes.Buffer)
	r := &Runner{
		In:      strings.NewReader(""),
		Out:     h.out,
		Err:     h.errOut,
		Home:    h.dir,
		Dial:    func(ledger.ConnectionConfig) ledger.Client { return h.node },
		Keyring: h.ring,
	}
	return r.Run(context.Background(), append([]string{"--config", h.config}, args...))
}

func (h *cliHarness) transferArgs(amount string) []string {
	return []string{
		"--non-interactive", "transfer",
		"--mode", "network",
		"--network", "localnet",
		"--sender", "a",
		"--receiver", "b",
		"--amount", amount,
		"--sign-with", "private-key",
		"--signer-secret-key", h.sk.String(),
		"--submit", "send",
	}
}

func TestTransfer(t *testing.T) {
	h := newCLI(t, nil)

	code := h.run(h.transferArgs("5NEAR")...)
	require.Equal(t, 0, code, h.errOut.String())
	require.Equal(t, 1, h.node.BroadcastCount())
	require.Contains(t, h.out.String(), "Transaction hash: ")
	require.Contains(t, h.out.String(), "Explorer: https://explorer.localnet/transactions/")
}

func TestNonInteractiveDefaultNetwork(t *testing.T) {
	h := newCLI(t, nil)
	args := h.transferArgs("5NEAR")
	i := slices.Index(args, "--network")
	args = slices.Delete(args, i, i+2)

	code := h.run(args...)
	require.Equal(t, 0, code, h.errOut.String())
	require.Equal(t, 1, h.node.BroadcastCount())
	require.Contains(t, h.out.String(), "Explorer: https://explorer.localnet/transactions/")
}

func TestTransferOverBalance(t *testing.T) {
	h := newCLI(t, nil)

	code := h.run(h.transferArgs("15NEAR")...)
	require.Equal(t, 1, code)
	require.Zero(t, h.node.BroadcastCount())
	require.Contains(t, h.out.String(), "Invalid amount")
	require.Contains(t, h.errOut.String(), "Error: amount:")
}

func TestTransferRejected(t *testing.T) {
	h := newCLI(t, nil)
	h.node.Failure = "a does not have enough balance"

	require.Equal(t, 1, h.run(h.transferArgs("5NEAR")...))
	require.Contains(t, h.errOut.String(), "transaction rejected by the network")
}

func TestOfflineDisplay(t *testing.T) {
	h := newCLI(t, nil)

	code := h.run("--non-interactive", "transfer",
		"--mode", "offline",
		"--sender", "a",
		"--receiver", "whoever",
		"--amount", "500NEAR",
		"--sign-with", "private-key",
		"--signer-secret-key", h.sk.String(),
		"--nonce", "12",
		"--block-hash", ledger.CryptoHash{1}.String(),
		"--submit", "send",
	)
	require.Equal(t, 0, code, h.errOut.String())
	require.Contains(t, h.out.String(), "Signed transaction (base64):")
	require.Zero(t, h.node.BroadcastCount())
}

func TestUsageErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"teleport"}},
		{"unknown flag", []string{"transfer", "--speed", "fast"}},
		{"positional argument", []string{"transfer", "b"}},
		{"missing account", []string{"view", "account"}},
		{"exclusive block flags", []string{"view", "block", "--block-height", "5", "--block-hash", "x"}},
		{"bad chain flag", []string{"construct-transaction", "--", "transfer", "--wasm-file", "x.wasm"}},
		{"skip not last", []string{"construct-transaction", "--", "skip", "transfer"}},
		{"bad access", []string{"add-key", "--access", "partial"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h := newCLI(t, nil)
			require.Equal(t, 2, h.run(tt.args...), h.errOut.String())
			require.Contains(t, h.errOut.String(), "Run 'nearcli --help' for usage.")
		})
	}
}

func TestHelp(t *testing.T) {
	h := newCLI(t, nil)
	require.Equal(t, 0, h.run("--help"))
	require.Contains(t, h.out.String(), "construct-transaction")
}

func TestBadConfig(t *testing.T) {
	h := newCLI(t, nil)
	require.Equal(t, 1, h.run("--log-level", "loud", "view", "block"))
	require.Contains(t, h.errOut.String(), "log.level")

	h.config = filepath.Join(h.dir, "missing.toml")
	require.Equal(t, 1, h.run("view", "block"))
}

func TestConstructTransaction(t *testing.T) {
	h := newCLI(t, nil)
	newKey := ledger.SecretKeyFromSeed(bytes.Repeat([]byte{2}, 32)).PublicKey()

	code := h.run("--non-interactive", "construct-transaction",
		"--mode", "network",
		"--network", "localnet",
		"--sender", "a",
		"--receiver", "b",
		"--sign-with", "private-key",
		"--signer-secret-key", h.sk.String(),
		"--submit", "send",
		"--",
		"transfer", "--amount", "1NEAR",
		"call", "--method", "ping",
		"add-full-access-key", "--public-key", newKey.String(),
		"skip",
	)
	require.Equal(t, 0, code, h.errOut.String())
	require.Equal(t, 1, h.node.BroadcastCount())
	require.Equal(t, 3, strings.Count(h.out.String(), "Added: "))
}

func TestConstructTransactionWithoutSkip(t *testing.T) {
	h := newCLI(t, nil)

	code := h.run("--non-interactive", "construct-transaction",
		"--mode", "network",
		"--network", "localnet",
		"--sender", "a",
		"--receiver", "b",
		"--sign-with", "private-key",
		"--signer-secret-key", h.sk.String(),
		"--submit", "send",
		"--",
		"transfer", "--amount", "1NEAR",
	)
	require.Equal(t, 0, code, h.errOut.String())
	require.Equal(t, 1, h.node.BroadcastCount())
	require.Equal(t, 1, strings.Count(h.out.String(), "Added: "))
}

func TestCallWithDefaults(t *testing.T) {
	h := newCLI(t, nil)

	code := h.run("--non-interactive", "call",
		"--mode", "network",
		"--network", "localnet",
		"--sender", "a",
		"--contract", "b",
		"--method", "ping",
		"--sign-with", "private-key",
		"--signer-secret-key", h.sk.String(),
		"--submit", "display",
	)
	require.Equal(t, 0, code, h.errOut.String())
	require.Contains(t, h.out.String(), "Signed transaction (base64):")
	require.Zero(t, h.node.BroadcastCount())
}

func TestKeychainRoundTrip(t *testing.T) {
	h := newCLI(t, nil)
	sk, err := signer.KeyFromMnemonic(testMnemonic, "", mustHDPath(t, signer.DefaultSeedPhrasePath))
	require.NoError(t, err)
	h.node.AddAccount("carol", ledger.NearToYocto(3), sk.PublicKey())

	code := h.run("generate-key", "--seed-phrase", testMnemonic, "--save-to-keychain", "--account-id", "carol", "--network", "localnet")
	require.Equal(t, 0, code, h.errOut.String())
	require.Contains(t, h.out.String(), sk.PublicKey().String())
	require.NotContains(t, h.out.String(), sk.String())

	code = h.run("--non-interactive", "transfer",
		"--mode", "network",
		"--network", "localnet",
		"--sender", "carol",
		"--receiver", "b",
		"--amount", "1NEAR",
		"--sign-with", "keychain",
		"--submit", "send",
	)
	require.Equal(t, 0, code, h.errOut.String())
	require.Equal(t, 1, h.node.BroadcastCount())
}

func TestKeysListRemove(t *testing.T) {
	h := newCLI(t, nil)

	require.Equal(t, 0, h.run("keys", "list"), h.errOut.String())
	require.Contains(t, h.out.String(), "No keys stored for localnet.")

	for _, account := range []string{"dave", "carol"} {
		code := h.run("generate-key", "--seed-phrase", testMnemonic, "--save-to-keychain", "--account-id", account)
		require.Equal(t, 0, code, h.errOut.String())
	}

	require.Equal(t, 0, h.run("keys", "list", "--network", "localnet"), h.errOut.String())
	require.Equal(t, "carol\ndave\n", h.out.String())

	require.Equal(t, 0, h.run("keys", "remove", "carol"), h.errOut.String())
	require.Contains(t, h.out.String(), "Removed the key for carol on localnet.")

	require.Equal(t, 0, h.run("keys", "list"), h.errOut.String())
	require.Equal(t, "dave\n", h.out.String())

	require.Equal(t, 1, h.run("keys", "remove", "carol"))
	require.Contains(t, h.errOut.String(), "no credential stored")

	require.Equal(t, 2, h.run("keys", "remove"))
	require.Equal(t, 1, h.run("keys", "list", "--network", "nowhere"))
}

func TestGenerateKey(t *testing.T) {
	h := newCLI(t, nil)
	require.Equal(t, 0, h.run("generate-key"))
	out := h.out.String()
	require.Contains(t, out, "Seed phrase:")
	require.Contains(t, out, "Secret key:          ed25519:")

	require.Equal(t, 1, h.run("generate-key", "--seed-phrase", "not a real phrase"))
}

func TestView(t *testing.T) {
	h := newCLI(t, nil)

	require.Equal(t, 0, h.run("view", "account", "a"), h.errOut.String())
	require.Contains(t, h.out.String(), "Balance:      10 NEAR")
	require.Contains(t, h.out.String(), h.sk.PublicKey().String()+"  nonce 0  full access")

	require.Equal(t, 0, h.run("view", "access-keys", "a", "--block-height", "1"), h.errOut.String())
	require.Contains(t, h.out.String(), "Access keys (1):")

	require.Equal(t, 0, h.run("view", "block"), h.errOut.String())
	require.Contains(t, h.out.String(), "Block #1 on localnet")

	require.Equal(t, 1, h.run("view", "account", "ghost"))
	require.Contains(t, h.errOut.String(), "account ghost does not exist on localnet")

	require.Equal(t, 1, h.run("view", "block", "--network", "mainnet2"))
}

func TestHistory(t *testing.T) {
	h := newCLI(t, testutil.Toml{
		"history": testutil.Toml{"enabled": true, "path": filepath.Join(t.TempDir(), "history.db")},
	})

	require.Equal(t, 0, h.run("history"))
	require.Contains(t, h.out.String(), "No transactions recorded.")

	require.Equal(t, 0, h.run(h.transferArgs("2NEAR")...), h.errOut.String())
	require.Equal(t, 0, h.run("history", "--signer", "a"))
	out := h.out.String()
	require.Contains(t, out, "localnet")
	require.Contains(t, out, "SuccessValue")
	require.Contains(t, out, "transfer 2 NEAR")

	require.Equal(t, 0, h.run("history", "--signer", "b"))
	require.Contains(t, h.out.String(), "No transactions recorded.")
}

func TestHistoryDisabled(t *testing.T) {
	h := newCLI(t, nil)
	require.Equal(t, 1, h.run("history"))
	require.Contains(t, h.errOut.String(), "disabled")
}

func mustHDPath(t *testing.T, s string) signer.HDPath {
	t.Helper()
	p, err := signer.ParseHDPath(s)
	require.NoError(t, err)
	return p
}
