package ledger

import (
	"fmt"
	"time"
)

// BlockReference selects the block a query is answered at. The zero value means the latest final block.
type BlockReference struct {
	Height *uint64
	Hash   *CryptoHash
}

// FinalBlock is the latest final block.
func FinalBlock() BlockReference { return BlockReference{} }

// AtHeight selects a block by height.
func AtHeight(h uint64) BlockReference { return BlockReference{Height: &h} }

// AtHash selects a block by hash.
func AtHash(h CryptoHash) BlockReference { return BlockReference{Hash: &h} }

func (r BlockReference) String() string {
	switch {
	case r.Hash != nil:
		return "block " + r.Hash.String()
	case r.Height != nil:
		return fmt.Sprintf("block #%d", *r.Height)
	default:
		return "final block"
	}
}

type AccountView struct {
	Amount       Balance
	Locked       Balance
	CodeHash     CryptoHash
	StorageUsage uint64
	BlockHeight  uint64
	BlockHash    CryptoHash
}

// HasContract reports whether a contract is deployed on the account.
func (v AccountView) HasContract() bool {
	return !v.CodeHash.IsZero()
}

// AccessKeyView is the state of one access key.
type AccessKeyView struct {
	Nonce uint64
	// FullAccess is false for function call keys, which carry the fields below.
	FullAccess  bool
	Allowance   *Balance
	Receiver    AccountID
	MethodNames []string
	BlockHash   CryptoHash
}

type AccessKeyInfo struct {
	PublicKey PublicKey
	AccessKey AccessKeyView
}

type BlockView struct {
	Height    uint64
	Hash      CryptoHash
	PrevHash  CryptoHash
	Timestamp time.Time
	Author    AccountID
}

// ExecutionOutcome is the result of a committed transaction.
type ExecutionOutcome struct {
	TransactionHash CryptoHash
	SignerID        AccountID
	ReceiverID      AccountID
	// Status is "SuccessValue", "SuccessReceiptId" or "Failure".
	Status       string
	SuccessValue string
	// Failure explains why execution failed. Empty on success.
	Failure     string
	GasBurnt    Gas
	TokensBurnt Balance
	Receipts    int
}

// Succeeded reports whether the transaction executed without failure.
func (o ExecutionOutcome) Succeeded() bool {
	return o.Failure == ""
}
