package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/strangelove-ventures/nearcli/ledger"
)

var wasmMagic = []byte{0x00, 'a', 's', 'm'}

// checkAccount returns nil when the query result satisfies wantExists. Accounts about to be
// created must also pass the naming rules; existing ones already did.
// A failed query counts as "not found", but the message says the query failed.
func checkAccount(ctx context.Context, q ledger.Querier, id ledger.AccountID, wantExists bool) error {
	if !wantExists {
		if err := id.Validate(); err != nil {
			return err
		}
	}
	_, err := q.ViewAccount(ctx, id, ledger.FinalBlock())
	switch {
	case err == nil && wantExists:
		return nil
	case err == nil:
		return fmt.Errorf("account %s already exists", id)
	case errors.Is(err, ledger.ErrAccountNotFound) && wantExists:
		return fmt.Errorf("account %s does not exist", id)
	case errors.Is(err, ledger.ErrAccountNotFound):
		return nil
	default:
		return fmt.Errorf("could not query account %s, treating it as not found: %w", id, err)
	}
}

func accountField(scope NetworkContext, name, message string, preset *string, policy AccountPolicy) Field[ledger.AccountID] {
	f := Field[ledger.AccountID]{
		Name:   name,
		Prompt: message,
		Preset: preset,
		Parse:  ledger.ParseAccountID,
	}
	if !scope.Online() {
		return f
	}
	q := scope.Connection.Client
	switch policy {
	case MustExist:
		f.Validate = func(ctx context.Context, id ledger.AccountID) error {
			return checkAccount(ctx, q, id, true)
		}
	case MayBeImplicit:
		f.Validate = func(ctx context.Context, id ledger.AccountID) error {
			err := checkAccount(ctx, q, id, true)
			if err != nil && id.IsImplicit() {
				return nil
			}
			return err
		}
	case MustNotExist:
		f.Validate = func(ctx context.Context, id ledger.AccountID) error {
			return checkAccount(ctx, q, id, false)
		}
	}
	return f
}

// amountField bounds the value by bound when it is known. Offline there is no bound.
func amountField(name, message string, preset *string, bound *ledger.Balance, defaultVal string) Field[ledger.Balance] {
	f := Field[ledger.Balance]{
		Name:    name,
		Prompt:  message,
		Preset:  preset,
		Default: defaultVal,
		Parse:   ledger.ParseBalance,
	}
	if bound != nil {
		limit := *bound
		if f.Default == "" {
			f.Default = limit.String()
		}
		f.Prompt = fmt.Sprintf("%s (available: %s)", message, limit)
		f.Validate = func(_ context.Context, v ledger.Balance) error {
			if v.Cmp(limit) > 0 {
				return fmt.Errorf("%s exceeds the available balance of %s", v, limit)
			}
			return nil
		}
	}
	return f
}

func publicKeyField(name, message string, preset *string) Field[ledger.PublicKey] {
	return Field[ledger.PublicKey]{
		Name:   name,
		Prompt: message,
		Preset: preset,
		Parse:  ledger.ParsePublicKey,
	}
}

func allowanceField(preset *string) Field[*ledger.Balance] {
	return Field[*ledger.Balance]{
		Name:    "allowance",
		Prompt:  "Enter the allowance the key may spend on gas, or \"unlimited\"",
		Preset:  preset,
		Default: "unlimited",
		Parse: func(s string) (*ledger.Balance, error) {
			s = strings.TrimSpace(s)
			if s == "" || strings.EqualFold(s, "unlimited") {
				return nil, nil
			}
			b, err := ledger.ParseBalance(s)
			if err != nil {
				return nil, err
			}
			return &b, nil
		},
	}
}

func methodNamesField(preset *string) Field[[]string] {
	return Field[[]string]{
		Name:   "method-names",
		Prompt: "Enter the comma separated method names the key may call (empty for any method)",
		Preset: preset,
		Parse: func(s string) ([]string, error) {
			var names []string
			for _, n := range strings.Split(s, ",") {
				if n = strings.TrimSpace(n); n == "" {
					continue
				}
				if err := checkMethodName(n); err != nil {
					return nil, err
				}
				names = append(names, n)
			}
			return names, nil
		},
	}
}

func methodField(preset *string) Field[string] {
	return Field[string]{
		Name:   "method",
		Prompt: "Enter the name of the method to call",
		Preset: preset,
		Parse: func(s string) (string, error) {
			s = strings.TrimSpace(s)
			if s == "" {
				return "", fmt.Errorf("method name must not be empty")
			}
			if err := checkMethodName(s); err != nil {
				return "", err
			}
			return s, nil
		},
	}
}

// checkMethodName requires a single token, as contract exports are.
func checkMethodName(name string) error {
	if i := strings.IndexFunc(name, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }); i >= 0 {
		return fmt.Errorf("method name %q must not contain whitespace or control characters", name)
	}
	return nil
}

func argsField(preset *string) Field[[]byte] {
	return Field[[]byte]{
		Name:    "args",
		Prompt:  "Enter the call arguments as JSON",
		Preset:  preset,
		Default: "{}",
		Parse: func(s string) ([]byte, error) {
			b := []byte(strings.TrimSpace(s))
			if !json.Valid(b) {
				return nil, fmt.Errorf("arguments must be valid JSON, got %q", s)
			}
			var compact bytes.Buffer
			if err := json.Compact(&compact, b); err != nil {
				return nil, err
			}
			return compact.Bytes(), nil
		},
	}
}

func gasField(preset *string) Field[ledger.Gas] {
	return Field[ledger.Gas]{
		Name:    "gas",
		Prompt:  fmt.Sprintf("Enter the gas to attach (at most %s)", ledger.MaxGas),
		Preset:  preset,
		Default: ledger.DefaultGas.String(),
		Parse: func(s string) (ledger.Gas, error) {
			g, err := ledger.ParseGas(s)
			if err != nil {
				return 0, err
			}
			if g > ledger.MaxGas {
				return 0, fmt.Errorf("%s exceeds the maximum of %s", g, ledger.MaxGas)
			}
			if g == 0 {
				return 0, fmt.Errorf("gas must be positive")
			}
			return g, nil
		},
	}
}

func codeFileField(preset *string) Field[[]byte] {
	return Field[[]byte]{
		Name:   "code",
		Prompt: "Enter the path to the contract's wasm file",
		Preset: preset,
		Parse: func(path string) ([]byte, error) {
			code, err := os.ReadFile(strings.TrimSpace(path))
			if err != nil {
				return nil, err
			}
			if !bytes.HasPrefix(code, wasmMagic) {
				return nil, fmt.Errorf("%s is not a wasm module", path)
			}
			return code, nil
		},
	}
}

// ptr is for presets built in code.
func ptr(s string) *string {
	return &s
}
