package ledger_test

import (
	"testing"

	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/stretchr/testify/require"
)

func TestRPCErrorClassification(t *testing.T) {
	timeout := &ledger.RPCError{Code: -32000, Message: "Server error", Name: "HANDLER_ERROR", CauseName: "TIMEOUT_ERROR"}
	require.True(t, timeout.Transient())
	require.False(t, timeout.Structured())

	legacy := &ledger.RPCError{Code: -32000, Message: "Server error", Data: `"Timeout"`}
	require.True(t, legacy.Transient())

	rejected := &ledger.RPCError{
		Code:      -32000,
		Message:   "Server error",
		Name:      "HANDLER_ERROR",
		CauseName: "INVALID_TRANSACTION",
		Data:      `{"TxExecutionError":{"InvalidTxError":{"NotEnoughBalance":{"signer_id":"a.near","balance":"1000000000000000000000000","cost":"5000000000000000000000000"}}}}`,
	}
	require.False(t, rejected.Transient())
	require.True(t, rejected.Structured())
	require.Equal(t, "a.near does not have enough balance (1 NEAR) to cover the transaction cost (5 NEAR) [InvalidTxError]", rejected.Explain())
}

func TestExplainFailure(t *testing.T) {
	for _, tt := range []struct {
		raw  string
		want string
	}{
		{
			`{"ActionError":{"index":0,"kind":{"AccountDoesNotExist":{"account_id":"bob.near"}}}}`,
			"account bob.near does not exist [ActionError] (action #0)",
		},
		{
			`{"InvalidTxError":"Expired"}`,
			"transaction expired: the block hash is too old, construct it again [InvalidTxError]",
		},
		{
			`{"InvalidTxError":{"InvalidNonce":{"tx_nonce":5,"ak_nonce":9}}}`,
			"nonce 5 must be greater than the access key nonce 9 [InvalidTxError]",
		},
		{
			`{"ActionError":{"index":2,"kind":{"FunctionCallError":{"ExecutionError":"Smart contract panicked: nope"}}}}`,
			"Smart contract panicked: nope [ActionError > FunctionCallError > ExecutionError] (action #2)",
		},
		{
			`{"Weird":{"a":1,"b":"x"}}`,
			"Weird: a=1, b=x",
		},
	} {
		require.Equal(t, tt.want, ledger.ExplainFailure(tt.raw), tt.raw)
	}
}
