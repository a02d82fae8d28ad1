package ledger

import (
	"context"
	"strings"
)

// Querier answers read-only questions about ledger state.
type Querier interface {
	// ViewAccount returns an error wrapping ErrAccountNotFound when the account does not exist.
	ViewAccount(ctx context.Context, id AccountID, at BlockReference) (*AccountView, error)
	// ViewAccessKey returns an error wrapping ErrKeyNotFound when the key is not registered.
	ViewAccessKey(ctx context.Context, id AccountID, pk PublicKey, at BlockReference) (*AccessKeyView, error)
	ViewAccessKeyList(ctx context.Context, id AccountID, at BlockReference) ([]AccessKeyInfo, error)
	Block(ctx context.Context, at BlockReference) (*BlockView, error)
}

// Broadcaster submits a signed transaction and waits until it is committed.
// Failures are reported as *RPCError where the node answered.
type Broadcaster interface {
	BroadcastTxCommit(ctx context.Context, signedTxBase64 string) (*ExecutionOutcome, error)
}

// Client is everything the transaction pipeline needs from a node.
type Client interface {
	Querier
	Broadcaster
}

// ConnectionConfig describes one named network.
type ConnectionConfig struct {
	Name        string
	RPCURL      string
	WalletURL   string
	ExplorerURL string
}

// TransactionURL links to tx in the network's explorer, or returns "" if none is configured.
func (c ConnectionConfig) TransactionURL(hash CryptoHash) string {
	if c.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(c.ExplorerURL, "/") + "/transactions/" + hash.String()
}

// Connection is an online network: its configuration and a client bound to it.
type Connection struct {
	ConnectionConfig
	Client Client
}
