package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/strangelove-ventures/nearcli/ledger"
	"go.uber.org/zap"
)

type SubmitMode int

const (
	Send SubmitMode = iota
	Display
)

func (m SubmitMode) String() string {
	if m == Display {
		return "display"
	}
	return "send"
}

func ParseSubmitMode(s string) (SubmitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "send":
		return Send, nil
	case "display", "display-only":
		return Display, nil
	default:
		return Send, fmt.Errorf("submit mode %q must be send or display", s)
	}
}

// SubmitStep broadcasts or displays a signed transaction.
type SubmitStep struct {
	out        io.Writer
	log        *zap.Logger
	retryDelay time.Duration
}

// NewSubmitStep pauses retryDelay between broadcast attempts after a timeout.
func NewSubmitStep(log *zap.Logger, out io.Writer, retryDelay time.Duration) *SubmitStep {
	return &SubmitStep{out: out, log: log, retryDelay: retryDelay}
}

// Submit displays signed, or sends it and waits for the outcome. Timeouts are retried
// until the node answers. A rejected transaction is explained and reported as
// ErrTransactionRejected.
func (s *SubmitStep) Submit(ctx context.Context, signed *ledger.SignedTransaction, mode SubmitMode, nc NetworkContext) (*ledger.ExecutionOutcome, error) {
	if mode == Display || !nc.Online() {
		fmt.Fprintln(s.out, "Signed transaction (base64):")
		fmt.Fprintln(s.out, signed.Base64())
		fmt.Fprintf(s.out, "Transaction hash: %s\n", signed.Hash())
		return nil, nil
	}

	fmt.Fprintf(s.out, "Sending transaction %s to %s...\n", signed.Hash(), nc.NetworkName())
	encoded := signed.Base64()
	var outcome *ledger.ExecutionOutcome
	err := retry.Do(
		func() error {
			o, err := nc.Connection.Client.BroadcastTxCommit(ctx, encoded)
			if err != nil {
				return err
			}
			outcome = o
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn("Broadcast timed out", zap.Uint("attempt", n+1), zap.Error(err))
			fmt.Fprintf(s.out, "Transaction not committed yet (%v), sending it again...\n", err)
		}),
	)
	if err != nil {
		var rpcErr *ledger.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Structured() {
			explanation := rpcErr.Explain()
			fmt.Fprintf(s.out, "Transaction rejected: %s\n", explanation)
			return nil, fmt.Errorf("%w: %s", ErrTransactionRejected, explanation)
		}
		return nil, fmt.Errorf("broadcast transaction: %w", err)
	}

	if !outcome.Succeeded() {
		fmt.Fprintf(s.out, "Transaction %s failed: %s\n", outcome.TransactionHash, outcome.Failure)
		s.printLink(nc, outcome)
		return outcome, fmt.Errorf("%w: %s", ErrTransactionRejected, outcome.Failure)
	}

	fmt.Fprintf(s.out, "Transaction status: %s\n", outcome.Status)
	if outcome.SuccessValue != "" {
		fmt.Fprintf(s.out, "Return value: %s\n", outcome.SuccessValue)
	}
	fmt.Fprintf(s.out, "Transaction hash: %s\n", outcome.TransactionHash)
	s.printLink(nc, outcome)
	return outcome, nil
}

func (s *SubmitStep) printLink(nc NetworkContext, outcome *ledger.ExecutionOutcome) {
	if link := nc.Connection.TransactionURL(outcome.TransactionHash); link != "" {
		fmt.Fprintf(s.out, "Explorer: %s\n", link)
	}
}

func isTransient(err error) bool {
	var rpcErr *ledger.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Transient()
}
