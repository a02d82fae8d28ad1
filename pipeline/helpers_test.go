package pipeline

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/strangelove-ventures/nearcli/internal/prompt"
	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/strangelove-ventures/nearcli/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var balanceComparer = cmp.Comparer(func(a, b ledger.Balance) bool { return a.Cmp(b) == 0 })

var localnet = ledger.ConnectionConfig{
	Name:        "localnet",
	RPCURL:      "http://127.0.0.1:3030",
	ExplorerURL: "https://explorer.localnet",
}

func testSecretKey(b byte) ledger.SecretKey {
	return ledger.SecretKeyFromSeed(bytes.Repeat([]byte{b}, 32))
}

type harness struct {
	t    *testing.T
	log  *zap.Logger
	node *testutil.FakeNode
	out  *bytes.Buffer
	r    *Resolver
	sk   ledger.SecretKey
}

// newHarness sets up account a with 10 NEAR and a full access key, and account b with 1 NEAR.
func newHarness(t *testing.T, p prompt.Prompter) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)
	out := new(bytes.Buffer)
	sk := testSecretKey(7)
	node := testutil.NewFakeNode().
		AddAccount("a", ledger.NearToYocto(10), sk.PublicKey()).
		AddAccount("b", ledger.NearToYocto(1))
	return &harness{
		t:    t,
		log:  log,
		node: node,
		out:  out,
		r:    NewResolver(log, p, out),
		sk:   sk,
	}
}

func (h *harness) online() NetworkContext {
	return Connected(&ledger.Connection{ConnectionConfig: localnet, Client: h.node})
}

func (h *harness) pipeline(opts ...Option) *Pipeline {
	dial := func(cfg ledger.ConnectionConfig) ledger.Client {
		if cfg.Name != localnet.Name {
			h.t.Fatalf("dialed unexpected network %q", cfg.Name)
		}
		return h.node
	}
	registry := NewSignRegistry(DefaultSignOptions(h.r, nil, nil)...)
	return New(h.log, h.r, []ledger.ConnectionConfig{localnet}, dial, registry, NewSubmitStep(h.log, h.out, 0), opts...)
}

// transferArgs sends amount from a to b with a's secret key.
func (h *harness) transferArgs(amount string) Args {
	return Args{
		Mode:     ptr("network"),
		Network:  ptr(localnet.Name),
		Sender:   ptr("a"),
		Receiver: ptr("b"),
		Chain: ChainArgs{
			Actions: []ActionArgs{{Kind: ptr(KindTransfer), Amount: ptr(amount)}},
			Done:    true,
		},
		Sign: SignArgs{
			Method:    ptr(SignWithPrivateKey),
			SecretKey: ptr(h.sk.String()),
		},
		Submit: ptr("send"),
	}
}
