package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrKeyNotFound     = errors.New("access key not found")
)

// RPCError is an error object returned by the node's JSON-RPC endpoint.
type RPCError struct {
	Code      int
	Message   string
	Name      string
	CauseName string
	// Cause is the raw JSON of error.cause.info.
	Cause string
	// Data is the raw JSON of error.data, which carries execution errors.
	Data string
}

func (e *RPCError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rpc error %d: %s", e.Code, e.Message)
	if e.Name != "" {
		fmt.Fprintf(&b, " (%s", e.Name)
		if e.CauseName != "" {
			fmt.Fprintf(&b, "/%s", e.CauseName)
		}
		b.WriteString(")")
	}
	if e.Data != "" && !e.Structured() {
		fmt.Fprintf(&b, ": %s", gjson.Parse(e.Data).String())
	}
	return b.String()
}

// Transient reports whether the request timed out and may be retried unchanged.
func (e *RPCError) Transient() bool {
	if e.CauseName == "TIMEOUT_ERROR" || e.Name == "TIMEOUT_ERROR" {
		return true
	}
	return strings.Contains(e.Data, "Timeout") || strings.Contains(e.Message, "Timeout")
}

// Structured reports whether the ledger rejected the transaction for semantic reasons.
func (e *RPCError) Structured() bool {
	if e.CauseName == "INVALID_TRANSACTION" {
		return true
	}
	return gjson.Get(e.Data, "TxExecutionError").Exists()
}

// Explain renders a structured execution error for an operator.
func (e *RPCError) Explain() string {
	if v := gjson.Get(e.Data, "TxExecutionError"); v.Exists() {
		return ExplainFailure(v.Raw)
	}
	if e.Cause != "" {
		return ExplainFailure(e.Cause)
	}
	return e.Message
}

// ExplainFailure turns a nested execution error such as
// {"ActionError":{"index":0,"kind":{"AccountDoesNotExist":{"account_id":"bob"}}}}
// into a readable sentence.
func ExplainFailure(raw string) string {
	v := gjson.Parse(raw)
	if v.Get("TxExecutionError").Exists() {
		v = v.Get("TxExecutionError")
	}
	if v.Get("Failure").Exists() {
		v = v.Get("Failure")
	}

	var (
		path   []string
		action = -1
	)
	for v.IsObject() {
		if idx := v.Get("index"); idx.Exists() && v.Get("kind").Exists() {
			action = int(idx.Int())
			v = v.Get("kind")
			continue
		}
		// Variants are CamelCase, fields snake_case.
		m := v.Map()
		if len(m) != 1 {
			break
		}
		var (
			name string
			next gjson.Result
		)
		for name, next = range m {
		}
		if !isVariant(name) || !(next.IsObject() || next.Type == gjson.String) {
			break
		}
		path = append(path, name)
		v = next
	}
	if v.Type == gjson.String && v.String() != "" {
		path = append(path, v.String())
		v = gjson.Result{}
	}

	var b strings.Builder
	if len(path) == 0 {
		b.WriteString("transaction failed")
	} else {
		b.WriteString(describeFailure(path[len(path)-1], v))
		if len(path) > 1 {
			fmt.Fprintf(&b, " [%s]", strings.Join(path[:len(path)-1], " > "))
		}
	}
	if action >= 0 {
		fmt.Fprintf(&b, " (action #%d)", action)
	}
	return b.String()
}

func isVariant(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

func describeFailure(kind string, fields gjson.Result) string {
	switch kind {
	case "NotEnoughBalance":
		return fmt.Sprintf("%s does not have enough balance (%s) to cover the transaction cost (%s)",
			fields.Get("signer_id").String(), yoctoField(fields, "balance"), yoctoField(fields, "cost"))
	case "AccountDoesNotExist":
		return fmt.Sprintf("account %s does not exist", fields.Get("account_id").String())
	case "AccountAlreadyExists":
		return fmt.Sprintf("account %s already exists", fields.Get("account_id").String())
	case "InvalidNonce":
		return fmt.Sprintf("nonce %d must be greater than the access key nonce %d",
			fields.Get("tx_nonce").Int(), fields.Get("ak_nonce").Int())
	case "Expired":
		return "transaction expired: the block hash is too old, construct it again"
	case "InvalidSignature":
		return "signature does not match the transaction and public key"
	case "DeleteAccountWithLargeState":
		return fmt.Sprintf("account %s has too much state to be deleted", fields.Get("account_id").String())
	}
	var parts []string
	fields.ForEach(func(k, v gjson.Result) bool {
		parts = append(parts, k.String()+"="+v.String())
		return true
	})
	if len(parts) == 0 {
		return kind
	}
	sort.Strings(parts)
	return kind + ": " + strings.Join(parts, ", ")
}

func yoctoField(fields gjson.Result, name string) string {
	b, err := ParseYocto(fields.Get(name).String())
	if err != nil {
		return fields.Get(name).String()
	}
	return b.String()
}
