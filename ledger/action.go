package ledger

import (
	"fmt"
	"strings"
)

// Action is one operation inside a transaction. The set of variants is closed;
// switch over the concrete types below.
type Action interface {
	// Kind is the operator-facing name of the variant.
	Kind() string
	isAction()
}

type (
	CreateAccount struct{}

	DeployContract struct {
		Code []byte
	}

	FunctionCall struct {
		Method  string
		Args    []byte
		Gas     Gas
		Deposit Balance
	}

	Transfer struct {
		Deposit Balance
	}

	Stake struct {
		Amount    Balance
		PublicKey PublicKey
	}

	AddFullAccessKey struct {
		PublicKey PublicKey
	}

	// AddFunctionCallKey adds a key limited to calling MethodNames on Receiver.
	// A nil Allowance means unlimited. Empty MethodNames allows every method.
	AddFunctionCallKey struct {
		PublicKey   PublicKey
		Allowance   *Balance
		Receiver    AccountID
		MethodNames []string
	}

	DeleteKey struct {
		PublicKey PublicKey
	}

	DeleteAccount struct {
		Beneficiary AccountID
	}
)

func (CreateAccount) Kind() string      { return "create-account" }
func (DeployContract) Kind() string     { return "deploy" }
func (FunctionCall) Kind() string       { return "call" }
func (Transfer) Kind() string           { return "transfer" }
func (Stake) Kind() string              { return "stake" }
func (AddFullAccessKey) Kind() string   { return "add-full-access-key" }
func (AddFunctionCallKey) Kind() string { return "add-function-call-key" }
func (DeleteKey) Kind() string          { return "delete-key" }
func (DeleteAccount) Kind() string      { return "delete-account" }

func (CreateAccount) isAction()      {}
func (DeployContract) isAction()     {}
func (FunctionCall) isAction()       {}
func (Transfer) isAction()           {}
func (Stake) isAction()              {}
func (AddFullAccessKey) isAction()   {}
func (AddFunctionCallKey) isAction() {}
func (DeleteKey) isAction()          {}
func (DeleteAccount) isAction()      {}

// Describe renders a one line summary of a for operator output.
func Describe(a Action) string {
	switch a := a.(type) {
	case CreateAccount:
		return "create account"
	case DeployContract:
		return fmt.Sprintf("deploy contract (%d bytes)", len(a.Code))
	case FunctionCall:
		return fmt.Sprintf("call %s(%s) with %s attached, deposit %s", a.Method, a.Args, a.Gas, a.Deposit)
	case Transfer:
		return fmt.Sprintf("transfer %s", a.Deposit)
	case Stake:
		return fmt.Sprintf("stake %s with validator key %s", a.Amount, a.PublicKey)
	case AddFullAccessKey:
		return fmt.Sprintf("add full access key %s", a.PublicKey)
	case AddFunctionCallKey:
		allowance := "unlimited"
		if a.Allowance != nil {
			allowance = a.Allowance.String()
		}
		methods := "any method"
		if len(a.MethodNames) > 0 {
			methods = strings.Join(a.MethodNames, ", ")
		}
		return fmt.Sprintf("add function call key %s for %s on %s, allowance %s", a.PublicKey, methods, a.Receiver, allowance)
	case DeleteKey:
		return fmt.Sprintf("delete key %s", a.PublicKey)
	case DeleteAccount:
		return fmt.Sprintf("delete account, beneficiary %s", a.Beneficiary)
	default:
		panic(fmt.Sprintf("unknown action %T", a))
	}
}
