package cli

import (
	"errors"
	"testing"

	"github.com/strangelove-ventures/nearcli/pipeline"
	"github.com/stretchr/testify/require"
)

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestParseChain(t *testing.T) {
	chain, err := parseChain([]string{
		"create-account",
		"transfer", "--amount", "1NEAR",
		"add-function-call-key", "--public-key=ed25519:abc", "--contract", "app.near", "--method-names", "a,b",
		"skip",
	}, false)
	require.NoError(t, err)
	require.True(t, chain.Done)
	require.Len(t, chain.Actions, 3)

	require.Equal(t, pipeline.KindCreateAccount, deref(chain.Actions[0].Kind))
	require.Equal(t, "1NEAR", deref(chain.Actions[1].Amount))

	fc := chain.Actions[2]
	require.Equal(t, pipeline.KindAddFunctionCallKey, deref(fc.Kind))
	require.Equal(t, "ed25519:abc", deref(fc.PublicKey))
	require.Equal(t, "app.near", deref(fc.Receiver))
	require.Equal(t, "a,b", deref(fc.MethodNames))
	require.Nil(t, fc.Allowance, "interactive mode asks instead of using the default")
}

func TestParseChainDefaults(t *testing.T) {
	chain, err := parseChain([]string{"call", "--method", "ping"}, true)
	require.NoError(t, err)
	require.True(t, chain.Done, "non-interactive chains end without skip")
	require.Len(t, chain.Actions, 1)

	call := chain.Actions[0]
	require.Equal(t, "{}", deref(call.Args))
	require.Equal(t, "100 Tgas", deref(call.Gas))
	require.Equal(t, "0NEAR", deref(call.Deposit))
}

func TestParseChainDone(t *testing.T) {
	for _, tt := range []struct {
		name           string
		tokens         []string
		nonInteractive bool
		done           bool
	}{
		{"interactive without skip", []string{"transfer", "--amount", "1NEAR"}, false, false},
		{"interactive with skip", []string{"transfer", "--amount", "1NEAR", "skip"}, false, true},
		{"non-interactive without skip", []string{"transfer", "--amount", "1NEAR"}, true, true},
		{"non-interactive empty", nil, true, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := parseChain(tt.tokens, tt.nonInteractive)
			require.NoError(t, err)
			require.Equal(t, tt.done, chain.Done)
		})
	}
}

func TestParseChainUnknownAction(t *testing.T) {
	chain, err := parseChain([]string{"mint", "transfer"}, false)
	require.NoError(t, err)
	require.Len(t, chain.Actions, 2)
	require.Equal(t, "mint", deref(chain.Actions[0].Kind))
}

func TestParseChainErrors(t *testing.T) {
	for _, tokens := range [][]string{
		{"transfer", "--amount"},
		{"deploy", "--amount", "1NEAR"},
		{"skip", "skip"},
		{"create-account", "--public-key", "x"},
	} {
		_, err := parseChain(tokens, false)
		var uerr *usageError
		require.True(t, errors.As(err, &uerr), "tokens %q: %v", tokens, err)
	}
}

func TestParseChainEmpty(t *testing.T) {
	chain, err := parseChain(nil, false)
	require.NoError(t, err)
	require.Empty(t, chain.Actions)
	require.False(t, chain.Done)
}
