package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/strangelove-ventures/nearcli/ledger"
	"go.uber.org/zap"
)

// Action kinds as named on the command line and in the menu.
const (
	KindTransfer           = "transfer"
	KindStake              = "stake"
	KindAddFullAccessKey   = "add-full-access-key"
	KindAddFunctionCallKey = "add-function-call-key"
	KindDeleteKey          = "delete-key"
	KindDeleteAccount      = "delete-account"
	KindCall               = "call"
	KindDeploy             = "deploy"
	KindCreateAccount      = "create-account"
)

// ActionKinds lists every kind in menu order.
var ActionKinds = []string{
	KindTransfer,
	KindStake,
	KindAddFullAccessKey,
	KindAddFunctionCallKey,
	KindDeleteKey,
	KindDeleteAccount,
	KindCall,
	KindDeploy,
	KindCreateAccount,
}

const (
	choiceAddAction = "Add an action"
	choiceSign      = "Skip adding actions and sign the transaction"
)

type chainState int

const (
	awaitingChoice chainState = iota
	resolving
	signing
)

// ChainBuilder appends actions to a transaction until the operator moves on to signing.
type ChainBuilder struct {
	r   *Resolver
	log *zap.Logger
}

func NewChainBuilder(log *zap.Logger, r *Resolver) *ChainBuilder {
	return &ChainBuilder{r: r, log: log}
}

// Build consumes args.Actions in order, then either stops (args.Done) or asks whether to add more.
// Actions are appended in the order they are resolved and never reordered.
func (b *ChainBuilder) Build(ctx context.Context, tc TransactionContext, tx ledger.Transaction, args ChainArgs) (ledger.Transaction, error) {
	var (
		state   = awaitingChoice
		pending = args.Actions
		current ActionArgs
	)
	for state != signing {
		switch state {
		case awaitingChoice:
			if len(pending) > 0 {
				current, pending = pending[0], pending[1:]
				state = resolving
				continue
			}
			if args.Done {
				state = signing
				continue
			}
			add, err := Resolve(ctx, b.r, tc.NetworkContext, Field[bool]{
				Name:    "next-action",
				Prompt:  fmt.Sprintf("The transaction has %d action(s). What do you want to do next?", len(tx.Actions())),
				Choices: []string{choiceAddAction, choiceSign},
				Default: choiceAddAction,
				Parse:   parseNextAction,
			})
			if err != nil {
				return tx, err
			}
			if add {
				current = ActionArgs{}
				state = resolving
			} else {
				state = signing
			}

		case resolving:
			a, err := b.resolveAction(ctx, tc, current)
			if err != nil {
				return tx, err
			}
			tx = tx.Append(a)
			b.log.Debug("Action added", zap.String("kind", a.Kind()), zap.Int("actions", len(tx.Actions())))
			fmt.Fprintf(b.r.Out(), "Added: %s\n", ledger.Describe(a))
			state = awaitingChoice
		}
	}
	return tx, nil
}

func parseNextAction(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case strings.ToLower(choiceAddAction), "add":
		return true, nil
	case strings.ToLower(choiceSign), "skip", "sign":
		return false, nil
	default:
		return false, fmt.Errorf("choose %q or %q", choiceAddAction, choiceSign)
	}
}

func parseKind(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range ActionKinds {
		if s == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown action %q, expected one of %s", s, strings.Join(ActionKinds, ", "))
}

func (b *ChainBuilder) resolveAction(ctx context.Context, tc TransactionContext, args ActionArgs) (ledger.Action, error) {
	kind, err := Resolve(ctx, b.r, tc.NetworkContext, Field[string]{
		Name:    "action",
		Prompt:  "Select an action to add to the transaction",
		Preset:  args.Kind,
		Choices: ActionKinds,
		Parse:   parseKind,
	})
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindCreateAccount:
		return ledger.CreateAccount{}, nil

	case KindTransfer:
		amount, err := Resolve(ctx, b.r, tc.NetworkContext, amountField("amount",
			"How many NEAR tokens do you want to transfer?", args.Amount, b.balance(ctx, tc.SenderContext), ""))
		if err != nil {
			return nil, err
		}
		return ledger.Transfer{Deposit: amount}, nil

	case KindStake:
		amount, err := Resolve(ctx, b.r, tc.NetworkContext, amountField("amount",
			"How many NEAR tokens do you want to stake?", args.Amount, b.balance(ctx, tc.SenderContext), ""))
		if err != nil {
			return nil, err
		}
		pk, err := Resolve(ctx, b.r, tc.NetworkContext, publicKeyField("public-key",
			"Enter the validator's public key", args.PublicKey))
		if err != nil {
			return nil, err
		}
		return ledger.Stake{Amount: amount, PublicKey: pk}, nil

	case KindAddFullAccessKey:
		pk, err := Resolve(ctx, b.r, tc.NetworkContext, publicKeyField("public-key",
			"Enter the public key to grant full access to", args.PublicKey))
		if err != nil {
			return nil, err
		}
		return ledger.AddFullAccessKey{PublicKey: pk}, nil

	case KindAddFunctionCallKey:
		pk, err := Resolve(ctx, b.r, tc.NetworkContext, publicKeyField("public-key",
			"Enter the public key of the function call key", args.PublicKey))
		if err != nil {
			return nil, err
		}
		allowance, err := Resolve(ctx, b.r, tc.NetworkContext, allowanceField(args.Allowance))
		if err != nil {
			return nil, err
		}
		receiver, err := Resolve(ctx, b.r, tc.NetworkContext, accountField(tc.NetworkContext, "receiver",
			"Enter the contract account the key may call", args.Receiver, MustExist))
		if err != nil {
			return nil, err
		}
		methods, err := Resolve(ctx, b.r, tc.NetworkContext, methodNamesField(args.MethodNames))
		if err != nil {
			return nil, err
		}
		return ledger.AddFunctionCallKey{PublicKey: pk, Allowance: allowance, Receiver: receiver, MethodNames: methods}, nil

	case KindDeleteKey:
		f := publicKeyField("public-key", "Enter the public key to delete", args.PublicKey)
		if tc.Online() {
			q := tc.Connection.Client
			f.Validate = func(ctx context.Context, pk ledger.PublicKey) error {
				if _, err := q.ViewAccessKey(ctx, tc.SenderID, pk, ledger.FinalBlock()); err != nil {
					return fmt.Errorf("access key %s of %s: %w", pk, tc.SenderID, err)
				}
				return nil
			}
		}
		pk, err := Resolve(ctx, b.r, tc.NetworkContext, f)
		if err != nil {
			return nil, err
		}
		return ledger.DeleteKey{PublicKey: pk}, nil

	case KindDeleteAccount:
		beneficiary, err := Resolve(ctx, b.r, tc.NetworkContext, accountField(tc.NetworkContext, "beneficiary",
			"Enter the account that receives the remaining balance", args.Beneficiary, MustExist))
		if err != nil {
			return nil, err
		}
		return ledger.DeleteAccount{Beneficiary: beneficiary}, nil

	case KindCall:
		method, err := Resolve(ctx, b.r, tc.NetworkContext, methodField(args.Method))
		if err != nil {
			return nil, err
		}
		callArgs, err := Resolve(ctx, b.r, tc.NetworkContext, argsField(args.Args))
		if err != nil {
			return nil, err
		}
		gas, err := Resolve(ctx, b.r, tc.NetworkContext, gasField(args.Gas))
		if err != nil {
			return nil, err
		}
		deposit, err := Resolve(ctx, b.r, tc.NetworkContext, amountField("deposit",
			"How many NEAR tokens do you want to attach to the call?", args.Deposit, b.balance(ctx, tc.SenderContext), "0 NEAR"))
		if err != nil {
			return nil, err
		}
		return ledger.FunctionCall{Method: method, Args: callArgs, Gas: gas, Deposit: deposit}, nil

	case KindDeploy:
		code, err := Resolve(ctx, b.r, tc.NetworkContext, codeFileField(args.CodeFile))
		if err != nil {
			return nil, err
		}
		return ledger.DeployContract{Code: code}, nil

	default:
		panic(fmt.Sprintf("unhandled action kind %q", kind))
	}
}

// balance is the sender's spendable balance, or nil offline. An account that
// cannot be found has nothing to spend.
func (b *ChainBuilder) balance(ctx context.Context, sc SenderContext) *ledger.Balance {
	if !sc.Online() {
		return nil
	}
	view, err := sc.Connection.Client.ViewAccount(ctx, sc.SenderID, ledger.FinalBlock())
	if err != nil {
		b.log.Warn("Could not query sender balance", zap.String("sender_id", sc.SenderID.String()), zap.Error(err))
		zero := ledger.Balance{}
		return &zero
	}
	return &view.Amount
}
