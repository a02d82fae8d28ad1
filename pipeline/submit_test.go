package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/strangelove-ventures/nearcli/internal/prompt"
	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/strangelove-ventures/nearcli/testutil"
	"github.com/stretchr/testify/require"
)

func signedTransfer(h *harness) *ledger.SignedTransaction {
	return transferTx().WithAccessKey(h.sk.PublicKey(), 1, h.node.BlockHash).Sign(h.sk)
}

func TestParseSubmitMode(t *testing.T) {
	for in, want := range map[string]SubmitMode{
		"send":         Send,
		" Display ":    Display,
		"display-only": Display,
	} {
		got, err := ParseSubmitMode(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseSubmitMode("later")
	require.Error(t, err)
}

func TestSubmitRetriesTimeouts(t *testing.T) {
	const timeouts = 3
	h := newHarness(t, prompt.NonInteractive{})
	for i := 0; i < timeouts; i++ {
		h.node.BroadcastErrs = append(h.node.BroadcastErrs, testutil.TimeoutError())
	}
	signed := signedTransfer(h)
	before := signed.Bytes()

	outcome, err := NewSubmitStep(h.log, h.out, 0).Submit(context.Background(), signed, Send, h.online())
	require.NoError(t, err)
	require.Equal(t, signed.Hash(), outcome.TransactionHash)
	require.Equal(t, timeouts+1, h.node.BroadcastCount())
	require.Equal(t, timeouts, strings.Count(h.out.String(), "sending it again"))

	require.Equal(t, before, signed.Bytes())
	for _, b := range h.node.Broadcasts {
		require.Equal(t, signed.Base64(), b)
	}
	require.Len(t, signed.Transaction.Actions(), 1)

	out := h.out.String()
	require.Contains(t, out, "Transaction status: SuccessValue")
	require.Contains(t, out, "Transaction hash: "+signed.Hash().String())
	require.Contains(t, out, "Explorer: https://explorer.localnet/transactions/"+signed.Hash().String())
}

func TestSubmitStructuredRejection(t *testing.T) {
	h := newHarness(t, prompt.NonInteractive{})
	h.node.BroadcastErrs = []error{&ledger.RPCError{
		Code:      -32000,
		Message:   "Server error",
		Name:      "HANDLER_ERROR",
		CauseName: "INVALID_TRANSACTION",
		Data:      `{"TxExecutionError":{"InvalidTxError":{"NotEnoughBalance":{"signer_id":"a","balance":"1","cost":"2"}}}}`,
	}}

	_, err := NewSubmitStep(h.log, h.out, 0).Submit(context.Background(), signedTransfer(h), Send, h.online())
	require.ErrorIs(t, err, ErrTransactionRejected)
	require.Equal(t, 1, h.node.BroadcastCount())
	require.Contains(t, h.out.String(), "Transaction rejected: a does not have enough balance")
}

func TestSubmitExecutionFailure(t *testing.T) {
	h := newHarness(t, prompt.NonInteractive{})
	h.node.Failure = "account carol does not exist (action #0)"

	outcome, err := NewSubmitStep(h.log, h.out, 0).Submit(context.Background(), signedTransfer(h), Send, h.online())
	require.ErrorIs(t, err, ErrTransactionRejected)
	require.NotNil(t, outcome)
	require.Equal(t, "Failure", outcome.Status)
	require.Contains(t, h.out.String(), "failed: account carol does not exist")
	require.Contains(t, h.out.String(), "Explorer: ")
}

func TestSubmitOtherErrorNotRetried(t *testing.T) {
	h := newHarness(t, prompt.NonInteractive{})
	refused := errors.New("connection refused")
	h.node.BroadcastErrs = []error{refused}

	_, err := NewSubmitStep(h.log, h.out, 0).Submit(context.Background(), signedTransfer(h), Send, h.online())
	require.ErrorIs(t, err, refused)
	require.NotErrorIs(t, err, ErrTransactionRejected)
	require.Equal(t, 1, h.node.BroadcastCount())
}

func TestSubmitCanceledWhileRetrying(t *testing.T) {
	h := newHarness(t, prompt.NonInteractive{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.node.BroadcastErrs = []error{testutil.TimeoutError(), testutil.TimeoutError()}

	_, err := NewSubmitStep(h.log, h.out, time.Hour).Submit(ctx, signedTransfer(h), Send, h.online())
	require.ErrorIs(t, err, context.Canceled)
	require.LessOrEqual(t, h.node.BroadcastCount(), 1)
}

func TestSubmitDisplay(t *testing.T) {
	h := newHarness(t, prompt.NonInteractive{})
	signed := signedTransfer(h)

	for _, nc := range []NetworkContext{h.online(), Offline()} {
		h.out.Reset()
		mode := Display
		if !nc.Online() {
			mode = Send
		}
		outcome, err := NewSubmitStep(h.log, h.out, 0).Submit(context.Background(), signed, mode, nc)
		require.NoError(t, err)
		require.Nil(t, outcome)
		require.Contains(t, h.out.String(), signed.Base64())
	}
	require.Zero(t, h.node.BroadcastCount())
}
