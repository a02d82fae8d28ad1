package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/strangelove-ventures/nearcli/ledger"
	"github.com/tidwall/gjson"
)

func blockParams(at ledger.BlockReference, params map[string]any) map[string]any {
	switch {
	case at.Hash != nil:
		params["block_id"] = at.Hash.String()
	case at.Height != nil:
		params["block_id"] = *at.Height
	default:
		params["finality"] = "final"
	}
	return params
}

// query runs a "query" request and maps the node's not-found answers onto notFound.
func (c *NearClient) query(ctx context.Context, params map[string]any, notFound error, out any) error {
	result, err := c.makeRPCCall(ctx, "query", params)
	if err != nil {
		var rpcErr *ledger.RPCError
		if notFound != nil && errors.As(err, &rpcErr) && isUnknown(rpcErr.CauseName) {
			return fmt.Errorf("%w: %s", notFound, rpcErr.Data)
		}
		return err
	}
	// Older nodes answer with a result carrying an "error" string.
	if e := gjson.GetBytes(result, "error"); e.Exists() {
		if notFound != nil && strings.Contains(e.String(), "does not exist") {
			return fmt.Errorf("%w: %s", notFound, e.String())
		}
		return fmt.Errorf("query %s: %s", params["request_type"], e.String())
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("query %s, unmarshal: %w", params["request_type"], err)
	}
	return nil
}

func isUnknown(cause string) bool {
	return cause == "UNKNOWN_ACCOUNT" || cause == "UNKNOWN_ACCESS_KEY"
}

func (c *NearClient) ViewAccount(ctx context.Context, id ledger.AccountID, at ledger.BlockReference) (*ledger.AccountView, error) {
	var resp AccountResponse
	err := c.query(ctx, blockParams(at, map[string]any{
		"request_type": "view_account",
		"account_id":   id.String(),
	}), ledger.ErrAccountNotFound, &resp)
	if err != nil {
		return nil, err
	}

	amount, err := ledger.ParseYocto(resp.Amount)
	if err != nil {
		return nil, err
	}
	locked, err := ledger.ParseYocto(resp.Locked)
	if err != nil {
		return nil, err
	}
	view := &ledger.AccountView{
		Amount:       amount,
		Locked:       locked,
		StorageUsage: resp.StorageUsage,
		BlockHeight:  resp.BlockHeight,
	}
	if view.CodeHash, err = ledger.ParseCryptoHash(resp.CodeHash); err != nil {
		return nil, err
	}
	if view.BlockHash, err = ledger.ParseCryptoHash(resp.BlockHash); err != nil {
		return nil, err
	}
	return view, nil
}

func (c *NearClient) ViewAccessKey(ctx context.Context, id ledger.AccountID, pk ledger.PublicKey, at ledger.BlockReference) (*ledger.AccessKeyView, error) {
	var resp AccessKeyResponse
	err := c.query(ctx, blockParams(at, map[string]any{
		"request_type": "view_access_key",
		"account_id":   id.String(),
		"public_key":   pk.String(),
	}), ledger.ErrKeyNotFound, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toLedger()
}

func (c *NearClient) ViewAccessKeyList(ctx context.Context, id ledger.AccountID, at ledger.BlockReference) ([]ledger.AccessKeyInfo, error) {
	var resp AccessKeyListResponse
	err := c.query(ctx, blockParams(at, map[string]any{
		"request_type": "view_access_key_list",
		"account_id":   id.String(),
	}), ledger.ErrAccountNotFound, &resp)
	if err != nil {
		return nil, err
	}

	keys := make([]ledger.AccessKeyInfo, 0, len(resp.Keys))
	for _, k := range resp.Keys {
		pk, err := ledger.ParsePublicKey(k.PublicKey)
		if err != nil {
			// secp256k1 keys can be listed but not used here.
			continue
		}
		ak, err := k.AccessKey.toLedger()
		if err != nil {
			return nil, err
		}
		keys = append(keys, ledger.AccessKeyInfo{PublicKey: pk, AccessKey: *ak})
	}
	return keys, nil
}

func (c *NearClient) Block(ctx context.Context, at ledger.BlockReference) (*ledger.BlockView, error) {
	result, err := c.makeRPCCall(ctx, "block", blockParams(at, map[string]any{}))
	if err != nil {
		return nil, err
	}
	var resp BlockResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("block, unmarshal: %w", err)
	}

	view := &ledger.BlockView{
		Height:    resp.Header.Height,
		Timestamp: time.Unix(0, int64(resp.Header.Timestamp)).UTC(),
		Author:    ledger.AccountID(resp.Author),
	}
	if view.Hash, err = ledger.ParseCryptoHash(resp.Header.Hash); err != nil {
		return nil, err
	}
	if resp.Header.PrevHash != "" {
		if view.PrevHash, err = ledger.ParseCryptoHash(resp.Header.PrevHash); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (r AccessKeyResponse) toLedger() (*ledger.AccessKeyView, error) {
	view := &ledger.AccessKeyView{Nonce: r.Nonce}
	if r.BlockHash != "" {
		h, err := ledger.ParseCryptoHash(r.BlockHash)
		if err != nil {
			return nil, err
		}
		view.BlockHash = h
	}

	perm := gjson.ParseBytes(r.Permission)
	if perm.Type == gjson.String {
		if perm.String() != "FullAccess" {
			return nil, fmt.Errorf("unknown access key permission %q", perm.String())
		}
		view.FullAccess = true
		return view, nil
	}

	fc := perm.Get("FunctionCall")
	if !fc.Exists() {
		return nil, fmt.Errorf("unknown access key permission %s", perm.Raw)
	}
	if a := fc.Get("allowance"); a.Exists() && a.Type != gjson.Null {
		allowance, err := ledger.ParseYocto(a.String())
		if err != nil {
			return nil, err
		}
		view.Allowance = &allowance
	}
	view.Receiver = ledger.AccountID(fc.Get("receiver_id").String())
	for _, m := range fc.Get("method_names").Array() {
		view.MethodNames = append(view.MethodNames, m.String())
	}
	return view, nil
}
