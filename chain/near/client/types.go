package client

import (
	"encoding/json"
)

type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type RPCResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCErrorBody   `json:"error,omitempty"`
	ID     string          `json:"id"`
}

type RPCErrorBody struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Name    string          `json:"name"`
	Data    json.RawMessage `json:"data"`
	Cause   *struct {
		Name string          `json:"name"`
		Info json.RawMessage `json:"info"`
	} `json:"cause"`
}

// Response from query view_account.
type AccountResponse struct {
	Amount       string `json:"amount"`
	Locked       string `json:"locked"`
	CodeHash     string `json:"code_hash"`
	StorageUsage uint64 `json:"storage_usage"`
	BlockHeight  uint64 `json:"block_height"`
	BlockHash    string `json:"block_hash"`
}

// Response from query view_access_key. Permission is either the string
// "FullAccess" or {"FunctionCall": {...}}.
type AccessKeyResponse struct {
	Nonce       uint64          `json:"nonce"`
	Permission  json.RawMessage `json:"permission"`
	BlockHeight uint64          `json:"block_height"`
	BlockHash   string          `json:"block_hash"`
}

type AccessKeyListResponse struct {
	Keys []struct {
		PublicKey string            `json:"public_key"`
		AccessKey AccessKeyResponse `json:"access_key"`
	} `json:"keys"`
}

type BlockResponse struct {
	Author string `json:"author"`
	Header struct {
		Height    uint64 `json:"height"`
		Hash      string `json:"hash"`
		PrevHash  string `json:"prev_hash"`
		Timestamp uint64 `json:"timestamp"`
	} `json:"header"`
}

// Response from broadcast_tx_commit.
type TxResponse struct {
	Status      json.RawMessage `json:"status"`
	Transaction struct {
		SignerID   string `json:"signer_id"`
		ReceiverID string `json:"receiver_id"`
		Hash       string `json:"hash"`
	} `json:"transaction"`
	TransactionOutcome struct {
		ID      string `json:"id"`
		Outcome struct {
			GasBurnt    uint64 `json:"gas_burnt"`
			TokensBurnt string `json:"tokens_burnt"`
		} `json:"outcome"`
	} `json:"transaction_outcome"`
	ReceiptsOutcome []json.RawMessage `json:"receipts_outcome"`
}
