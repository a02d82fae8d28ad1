// Package testutil provides in-memory stand-ins for a node, for use in tests.
package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/strangelove-ventures/nearcli/ledger"
)

var _ ledger.Client = (*FakeNode)(nil)

// FakeNode answers queries from maps and scripts broadcast results.
// The zero value is an empty network. Safe for concurrent use.
type FakeNode struct {
	mu sync.Mutex

	Accounts  map[ledger.AccountID]ledger.Balance
	Keys      map[ledger.AccountID]map[ledger.PublicKey]ledger.AccessKeyView
	Height    uint64
	BlockHash ledger.CryptoHash
	// QueryErr, if set, fails every account query.
	QueryErr error

	// BroadcastErrs are returned by successive broadcasts before one succeeds.
	BroadcastErrs []error
	// Failure makes the committed transaction fail with this explanation.
	Failure string
	// Broadcasts records every transaction submitted, including failed attempts.
	Broadcasts []string
}

// NewFakeNode returns a node at height 1 with a fixed block hash.
func NewFakeNode() *FakeNode {
	return &FakeNode{
		Accounts:  map[ledger.AccountID]ledger.Balance{},
		Keys:      map[ledger.AccountID]map[ledger.PublicKey]ledger.AccessKeyView{},
		Height:    1,
		BlockHash: ledger.CryptoHash{0xb1, 0x0c, 0x4},
	}
}

// AddAccount creates id with balance and, if keys are given, full access keys at nonce 0.
func (n *FakeNode) AddAccount(id ledger.AccountID, balance ledger.Balance, keys ...ledger.PublicKey) *FakeNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Accounts == nil {
		n.Accounts = map[ledger.AccountID]ledger.Balance{}
	}
	if n.Keys == nil {
		n.Keys = map[ledger.AccountID]map[ledger.PublicKey]ledger.AccessKeyView{}
	}
	n.Accounts[id] = balance
	for _, pk := range keys {
		if n.Keys[id] == nil {
			n.Keys[id] = map[ledger.PublicKey]ledger.AccessKeyView{}
		}
		n.Keys[id][pk] = ledger.AccessKeyView{FullAccess: true}
	}
	return n
}

// BroadcastCount is the number of broadcast attempts so far.
func (n *FakeNode) BroadcastCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Broadcasts)
}

func (n *FakeNode) ViewAccount(_ context.Context, id ledger.AccountID, _ ledger.BlockReference) (*ledger.AccountView, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.QueryErr != nil {
		return nil, n.QueryErr
	}
	b, ok := n.Accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, id)
	}
	return &ledger.AccountView{Amount: b, BlockHeight: n.Height, BlockHash: n.BlockHash}, nil
}

func (n *FakeNode) ViewAccessKey(_ context.Context, id ledger.AccountID, pk ledger.PublicKey, _ ledger.BlockReference) (*ledger.AccessKeyView, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.QueryErr != nil {
		return nil, n.QueryErr
	}
	ak, ok := n.Keys[id][pk]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrKeyNotFound, pk)
	}
	return &ak, nil
}

func (n *FakeNode) ViewAccessKeyList(_ context.Context, id ledger.AccountID, _ ledger.BlockReference) ([]ledger.AccessKeyInfo, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.QueryErr != nil {
		return nil, n.QueryErr
	}
	if _, ok := n.Accounts[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, id)
	}
	var out []ledger.AccessKeyInfo
	for pk, ak := range n.Keys[id] {
		out = append(out, ledger.AccessKeyInfo{PublicKey: pk, AccessKey: ak})
	}
	return out, nil
}

func (n *FakeNode) Block(_ context.Context, _ ledger.BlockReference) (*ledger.BlockView, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return &ledger.BlockView{
		Height:    n.Height,
		Hash:      n.BlockHash,
		Timestamp: time.Unix(1700000000, 0).UTC(),
	}, nil
}

// BroadcastTxCommit fails with the next BroadcastErrs entry, if any, then commits.
func (n *FakeNode) BroadcastTxCommit(_ context.Context, signedTxBase64 string) (*ledger.ExecutionOutcome, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Broadcasts = append(n.Broadcasts, signedTxBase64)
	if len(n.BroadcastErrs) > 0 {
		err := n.BroadcastErrs[0]
		n.BroadcastErrs = n.BroadcastErrs[1:]
		return nil, err
	}
	hash, err := transactionHash(signedTxBase64)
	if err != nil {
		return nil, &ledger.RPCError{Code: -32700, Message: "Parse error", Name: "REQUEST_VALIDATION_ERROR", Data: err.Error()}
	}
	out := &ledger.ExecutionOutcome{
		TransactionHash: hash,
		Status:          "SuccessValue",
	}
	if n.Failure != "" {
		out.Status = "Failure"
		out.Failure = n.Failure
	}
	return out, nil
}

// TimeoutError is the error a node returns when a transaction is not committed in time.
func TimeoutError() error {
	return &ledger.RPCError{Code: -32000, Message: "Server error", Name: "HANDLER_ERROR", CauseName: "TIMEOUT_ERROR", Data: `"Timeout"`}
}

// transactionHash strips the signature (a key type byte and 64 bytes) from a signed
// transaction and hashes the rest.
func transactionHash(signedTxBase64 string) (ledger.CryptoHash, error) {
	raw, err := base64.StdEncoding.DecodeString(signedTxBase64)
	if err != nil {
		return ledger.CryptoHash{}, err
	}
	if len(raw) <= 65 {
		return ledger.CryptoHash{}, fmt.Errorf("signed transaction too short: %d bytes", len(raw))
	}
	return ledger.CryptoHash(sha256.Sum256(raw[:len(raw)-65])), nil
}
