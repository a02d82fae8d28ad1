package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// BroadcastTxCommit submits a signed transaction and waits for it to execute.
// A transaction that executed but failed is returned with Failure set, not as an error.
func (c *NearClient) BroadcastTxCommit(ctx context.Context, signedTxBase64 string) (*ledger.ExecutionOutcome, error) {
	result, err := c.makeRPCCall(ctx, "broadcast_tx_commit", []any{signedTxBase64})
	if err != nil {
		return nil, err
	}

	var resp TxResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("broadcast_tx_commit, unmarshal: %w", err)
	}

	outcome := &ledger.ExecutionOutcome{
		SignerID:   ledger.AccountID(resp.Transaction.SignerID),
		ReceiverID: ledger.AccountID(resp.Transaction.ReceiverID),
		GasBurnt:   ledger.Gas(resp.TransactionOutcome.Outcome.GasBurnt),
		Receipts:   len(resp.ReceiptsOutcome),
	}
	hash := resp.Transaction.Hash
	if hash == "" {
		hash = resp.TransactionOutcome.ID
	}
	if outcome.TransactionHash, err = ledger.ParseCryptoHash(hash); err != nil {
		return nil, fmt.Errorf("broadcast_tx_commit: %w", err)
	}
	if burnt := resp.TransactionOutcome.Outcome.TokensBurnt; burnt != "" {
		if outcome.TokensBurnt, err = ledger.ParseYocto(burnt); err != nil {
			return nil, err
		}
	}

	status := gjson.ParseBytes(resp.Status)
	switch {
	case status.Get("Failure").Exists():
		outcome.Status = "Failure"
		outcome.Failure = ledger.ExplainFailure(status.Get("Failure").Raw)
	case status.Get("SuccessValue").Exists():
		outcome.Status = "SuccessValue"
		outcome.SuccessValue = status.Get("SuccessValue").String()
	case status.Get("SuccessReceiptId").Exists():
		outcome.Status = "SuccessReceiptId"
		outcome.SuccessValue = status.Get("SuccessReceiptId").String()
	default:
		outcome.Status = status.String()
	}

	c.log.Info("Transaction committed",
		zap.String("tx_hash", outcome.TransactionHash.String()),
		zap.String("status", outcome.Status),
	)
	return outcome, nil
}
