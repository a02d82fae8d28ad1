package pipeline

import (
	"github.com/strangelove-ventures/nearcli/ledger"
)

// NetworkContext is the root of every resolution. A nil Connection means offline:
// nothing is queried and network checks are skipped.
type NetworkContext struct {
	Connection *ledger.Connection
}

// Offline returns the air-gapped root context.
func Offline() NetworkContext {
	return NetworkContext{}
}

// Connected returns a root context bound to conn.
func Connected(conn *ledger.Connection) NetworkContext {
	return NetworkContext{Connection: conn}
}

func (n NetworkContext) Online() bool {
	return n.Connection != nil
}

// NetworkName is "" offline.
func (n NetworkContext) NetworkName() string {
	if n.Connection == nil {
		return ""
	}
	return n.Connection.Name
}

func (n NetworkContext) WithSender(id ledger.AccountID) SenderContext {
	return SenderContext{NetworkContext: n, SenderID: id}
}

type SenderContext struct {
	NetworkContext
	SenderID ledger.AccountID
}

func (s SenderContext) WithReceiver(id ledger.AccountID) TransactionContext {
	return TransactionContext{SenderContext: s, ReceiverID: id}
}

type TransactionContext struct {
	SenderContext
	ReceiverID ledger.AccountID
}

// ForSigning narrows to what a sign option may see.
func (t TransactionContext) ForSigning() SignContext {
	return SignContext{NetworkContext: t.NetworkContext, SignerID: t.SenderID}
}

type SignContext struct {
	NetworkContext
	SignerID ledger.AccountID
}
