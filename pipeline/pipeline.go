// Package pipeline constructs, signs and submits transactions. Every value comes
// either from the command line or from the operator, one step at a time:
// mode, network, sender, receiver, actions, signing and submission.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/strangelove-ventures/nearcli/history"
	"github.com/strangelove-ventures/nearcli/ledger"
	"go.uber.org/zap"
)

const (
	modeNetwork = "Yes, I keep it simple"
	modeOffline = "No, I want to work in no-network (air-gapped) environment"
)

// Dialer binds a client to a network.
type Dialer func(ledger.ConnectionConfig) ledger.Client

// Recorder keeps a log of finished transactions.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Pipeline runs one transaction from empty to submitted.
type Pipeline struct {
	log            *zap.Logger
	r              *Resolver
	networks       []ledger.ConnectionConfig
	defaultNetwork string
	dial           Dialer
	chain          *ChainBuilder
	sign           *SignStep
	submit         *SubmitStep
	recorder       Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder records every displayed or sent transaction.
func WithRecorder(rec Recorder) Option {
	return func(p *Pipeline) { p.recorder = rec }
}

// WithDefaultNetwork preselects a network in the menu.
func WithDefaultNetwork(name string) Option {
	return func(p *Pipeline) { p.defaultNetwork = name }
}

func New(
	log *zap.Logger,
	r *Resolver,
	networks []ledger.ConnectionConfig,
	dial Dialer,
	registry *SignRegistry,
	submit *SubmitStep,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		log:      log,
		r:        r,
		networks: networks,
		dial:     dial,
		chain:    NewChainBuilder(log, r),
		sign:     NewSignStep(log, r, registry),
		submit:   submit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes how a run ended.
type Result struct {
	Transaction ledger.Transaction
	// Signed is nil when the transaction was handed off for manual signing.
	Signed *ledger.SignedTransaction
	Mode   SubmitMode
	// Outcome is set only for sent transactions.
	Outcome *ledger.ExecutionOutcome
}

// Run walks every step. The returned Result is non-nil whenever a transaction was signed,
// including when the network rejected it.
func (p *Pipeline) Run(ctx context.Context, args Args) (*Result, error) {
	nc, err := p.resolveNetwork(ctx, args)
	if err != nil {
		return nil, err
	}

	senderID, err := Resolve(ctx, p.r, nc, accountField(nc, "sender",
		"What is the account ID of the sender?", args.Sender, MustExist))
	if err != nil {
		return nil, err
	}
	sc := nc.WithSender(senderID)

	receiverID := senderID
	if args.ReceiverPolicy != ReceiverIsSender {
		receiverID, err = Resolve(ctx, p.r, nc, accountField(nc, "receiver",
			"What is the account ID of the receiver?", args.Receiver, args.ReceiverPolicy))
		if err != nil {
			return nil, err
		}
	}
	tc := sc.WithReceiver(receiverID)
	p.log.Debug("Accounts resolved", zap.String("sender_id", senderID.String()), zap.String("receiver_id", receiverID.String()), zap.Bool("online", nc.Online()))

	tx, err := p.chain.Build(ctx, tc, ledger.NewTransaction(senderID, receiverID), args.Chain)
	if err != nil {
		return nil, err
	}
	if ce := p.log.Check(zap.DebugLevel, "Transaction assembled"); ce != nil {
		ce.Write(zap.String("tx", spew.Sdump(tx)))
	}

	signed, err := p.sign.Sign(ctx, tc.ForSigning(), tx, args.Sign)
	if err != nil {
		return nil, err
	}
	res := &Result{Transaction: tx, Signed: signed, Mode: Display}
	if signed == nil {
		return res, nil
	}

	if nc.Online() {
		res.Mode, err = Resolve(ctx, p.r, nc, Field[SubmitMode]{
			Name:    "submit",
			Prompt:  "How would you like to proceed?",
			Preset:  args.Submit,
			Choices: []string{Send.String(), Display.String()},
			Default: Send.String(),
			Parse:   ParseSubmitMode,
		})
		if err != nil {
			return res, err
		}
	}

	res.Outcome, err = p.submit.Submit(ctx, signed, res.Mode, nc)
	p.record(ctx, nc, res)
	return res, err
}

func (p *Pipeline) resolveNetwork(ctx context.Context, args Args) (NetworkContext, error) {
	online, err := Resolve(ctx, p.r, Offline(), Field[bool]{
		Name: "mode",
		Prompt: "To construct a transaction you will need to provide information about sender (signer) and receiver accounts, and actions that need to be performed.\n" +
			"Do you want to derive some information required for transaction construction automatically querying it online?",
		Preset:  args.Mode,
		Choices: []string{modeNetwork, modeOffline},
		Default: modeNetwork,
		Parse: func(s string) (bool, error) {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case strings.ToLower(modeNetwork), "network", "online":
				return true, nil
			case strings.ToLower(modeOffline), "offline":
				return false, nil
			default:
				return false, fmt.Errorf("mode %q must be network or offline", s)
			}
		},
	})
	if err != nil {
		return NetworkContext{}, err
	}
	if !online {
		return Offline(), nil
	}

	names := make([]string, len(p.networks))
	for i, n := range p.networks {
		names[i] = n.Name
	}
	cfg, err := Resolve(ctx, p.r, Offline(), Field[ledger.ConnectionConfig]{
		Name:    "network",
		Prompt:  "Select the network to connect to",
		Preset:  args.Network,
		Choices: names,
		Default: p.defaultNetwork,
		Parse: func(s string) (ledger.ConnectionConfig, error) {
			s = strings.TrimSpace(s)
			for _, n := range p.networks {
				if n.Name == s {
					return n, nil
				}
			}
			return ledger.ConnectionConfig{}, fmt.Errorf("network %q is not configured, expected one of %s", s, strings.Join(names, ", "))
		},
	})
	if err != nil {
		return NetworkContext{}, err
	}
	return Connected(&ledger.Connection{ConnectionConfig: cfg, Client: p.dial(cfg)}), nil
}

func (p *Pipeline) record(ctx context.Context, nc NetworkContext, res *Result) {
	if p.recorder == nil || res.Signed == nil {
		return
	}
	tx := res.Transaction
	status := "displayed"
	if res.Outcome != nil {
		status = res.Outcome.Status
	} else if res.Mode == Send {
		status = "not committed"
	}
	actions := tx.Actions()
	described := make([]string, len(actions))
	for i, a := range actions {
		described[i] = ledger.Describe(a)
	}
	_, err := p.recorder.Record(ctx, history.Entry{
		Network:    nc.NetworkName(),
		SignerID:   tx.SignerID.String(),
		ReceiverID: tx.ReceiverID.String(),
		Hash:       res.Signed.Hash().String(),
		Mode:       res.Mode.String(),
		Status:     status,
		Actions:    described,
		SignedTx:   res.Signed.Base64(),
	})
	if err != nil {
		p.log.Warn("Could not record transaction history", zap.Error(err))
	}
}
