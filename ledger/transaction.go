package ledger

import (
	"encoding/base64"
	"slices"
)

// Transaction is an unsigned transaction. It is a value type: every method that
// changes it returns a new Transaction with its own copy of the action list.
type Transaction struct {
	SignerID   AccountID
	ReceiverID AccountID
	PublicKey  PublicKey
	Nonce      uint64
	BlockHash  CryptoHash

	actions []Action
}

// NewTransaction returns a transaction from signer to receiver with no actions.
func NewTransaction(signer, receiver AccountID) Transaction {
	return Transaction{SignerID: signer, ReceiverID: receiver}
}

// Actions returns a copy of the action list in execution order.
func (tx Transaction) Actions() []Action {
	return slices.Clone(tx.actions)
}

// Append returns tx with a added after the existing actions.
func (tx Transaction) Append(a Action) Transaction {
	out := tx.clone()
	out.actions = append(out.actions, a)
	return out
}

func (tx Transaction) WithSigner(id AccountID) Transaction {
	out := tx.clone()
	out.SignerID = id
	return out
}

func (tx Transaction) WithReceiver(id AccountID) Transaction {
	out := tx.clone()
	out.ReceiverID = id
	return out
}

// WithAccessKey sets the signing key together with the nonce and block hash it is valid for.
func (tx Transaction) WithAccessKey(pk PublicKey, nonce uint64, blockHash CryptoHash) Transaction {
	out := tx.clone()
	out.PublicKey = pk
	out.Nonce = nonce
	out.BlockHash = blockHash
	return out
}

// Serialize returns the canonical encoding of tx.
func (tx Transaction) Serialize() []byte {
	var e encoder
	e.transaction(tx)
	return e.buf.Bytes()
}

// Hash is the sha256 of the canonical encoding; it is what gets signed.
func (tx Transaction) Hash() CryptoHash {
	return hashBytes(tx.Serialize())
}

// Base64 is the transport form of the unsigned transaction.
func (tx Transaction) Base64() string {
	return base64.StdEncoding.EncodeToString(tx.Serialize())
}

// Sign produces a SignedTransaction. tx is not modified.
func (tx Transaction) Sign(sk SecretKey) *SignedTransaction {
	frozen := tx.clone()
	return NewSignedTransaction(frozen, sk.Sign(frozen.Hash().Bytes()))
}

func (tx Transaction) clone() Transaction {
	out := tx
	out.actions = slices.Clone(tx.actions)
	return out
}

// SignedTransaction is a transaction with its signature and canonical bytes.
// It is produced once and consumed by submission.
type SignedTransaction struct {
	Transaction Transaction
	Signature   Signature

	encoded []byte
}

// NewSignedTransaction attaches a signature obtained elsewhere, e.g. from a hardware device.
func NewSignedTransaction(tx Transaction, sig Signature) *SignedTransaction {
	tx = tx.clone()
	var e encoder
	e.transaction(tx)
	e.signature(sig)
	return &SignedTransaction{Transaction: tx, Signature: sig, encoded: e.buf.Bytes()}
}

// Bytes returns a copy of the canonical encoding.
func (st *SignedTransaction) Bytes() []byte {
	return slices.Clone(st.encoded)
}

// Base64 is the form accepted by broadcast_tx_commit.
func (st *SignedTransaction) Base64() string {
	return base64.StdEncoding.EncodeToString(st.encoded)
}

// Hash identifies the transaction on chain.
func (st *SignedTransaction) Hash() CryptoHash {
	return st.Transaction.Hash()
}

// Verify checks the signature against the transaction's public key.
func (st *SignedTransaction) Verify() bool {
	return st.Transaction.PublicKey.Verify(st.Hash().Bytes(), st.Signature)
}
