package ledger

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
)

// Action and permission tags of the canonical encoding.
const (
	tagCreateAccount uint8 = iota
	tagDeployContract
	tagFunctionCall
	tagTransfer
	tagStake
	tagAddKey
	tagDeleteKey
	tagDeleteAccount
)

const (
	permissionFunctionCall uint8 = 0
	permissionFullAccess   uint8 = 1
)

var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// encoder writes the ledger's canonical binary layout. Encoding failures are
// programming errors, so the encoder panics instead of returning them.
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) u8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) u128(v *big.Int) {
	if v.Sign() < 0 || v.Cmp(maxU128) > 0 {
		panic(fmt.Sprintf("value %s does not fit in u128", v))
	}
	var b [16]byte
	v.FillBytes(b[:])
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	e.buf.Write(b[:])
}

func (e *encoder) bytes(v []byte) {
	e.u32(uint32(len(v)))
	e.buf.Write(v)
}

func (e *encoder) fixed(v []byte) {
	e.buf.Write(v)
}

func (e *encoder) string(v string) {
	e.bytes([]byte(v))
}

func (e *encoder) balance(b Balance) {
	e.u128(b.Yocto())
}

func (e *encoder) publicKey(pk PublicKey) {
	e.u8(uint8(ED25519))
	e.fixed(pk[:])
}

func (e *encoder) signature(sig Signature) {
	e.u8(uint8(ED25519))
	e.fixed(sig[:])
}

func (e *encoder) action(a Action) {
	switch a := a.(type) {
	case CreateAccount:
		e.u8(tagCreateAccount)
	case DeployContract:
		e.u8(tagDeployContract)
		e.bytes(a.Code)
	case FunctionCall:
		e.u8(tagFunctionCall)
		e.string(a.Method)
		e.bytes(a.Args)
		e.u64(uint64(a.Gas))
		e.balance(a.Deposit)
	case Transfer:
		e.u8(tagTransfer)
		e.balance(a.Deposit)
	case Stake:
		e.u8(tagStake)
		e.balance(a.Amount)
		e.publicKey(a.PublicKey)
	case AddFullAccessKey:
		e.u8(tagAddKey)
		e.publicKey(a.PublicKey)
		e.u64(0)
		e.u8(permissionFullAccess)
	case AddFunctionCallKey:
		e.u8(tagAddKey)
		e.publicKey(a.PublicKey)
		e.u64(0)
		e.u8(permissionFunctionCall)
		if a.Allowance == nil {
			e.u8(0)
		} else {
			e.u8(1)
			e.balance(*a.Allowance)
		}
		e.string(string(a.Receiver))
		e.u32(uint32(len(a.MethodNames)))
		for _, m := range a.MethodNames {
			e.string(m)
		}
	case DeleteKey:
		e.u8(tagDeleteKey)
		e.publicKey(a.PublicKey)
	case DeleteAccount:
		e.u8(tagDeleteAccount)
		e.string(string(a.Beneficiary))
	default:
		panic(fmt.Sprintf("unknown action %T", a))
	}
}

func (e *encoder) transaction(tx Transaction) {
	e.string(string(tx.SignerID))
	e.publicKey(tx.PublicKey)
	e.u64(tx.Nonce)
	e.string(string(tx.ReceiverID))
	e.fixed(tx.BlockHash[:])
	e.u32(uint32(len(tx.actions)))
	for _, a := range tx.actions {
		e.action(a)
	}
}
