package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/strangelove-ventures/nearcli/ledger"
	"go.uber.org/zap"
)

var _ ledger.Client = (*NearClient)(nil)

// DefaultTimeout bounds a single request. broadcast_tx_commit waits for the
// node, which answers with a timeout error of its own well before this.
const DefaultTimeout = 2 * time.Minute

type NearClient struct {
	url  string
	http *http.Client
	log  *zap.Logger
}

func NewNearClient(log *zap.Logger, url string) *NearClient {
	return &NearClient{
		url:  url,
		http: &http.Client{Timeout: DefaultTimeout},
		log:  log.With(zap.String("rpc_url", url)),
	}
}

// WithHTTPClient replaces the transport, e.g. in tests.
func (c *NearClient) WithHTTPClient(h *http.Client) *NearClient {
	out := *c
	out.http = h
	return &out
}

func (c *NearClient) makeRPCCall(ctx context.Context, method string, params any) (json.RawMessage, error) {
	request := RPCRequest{
		JSONRPC: "2.0",
		ID:      "nearcli",
		Method:  method,
		Params:  params,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("RPC request", zap.String("method", method), zap.ByteString("body", requestBody))

	resp, err := c.http.Do(req)
	if err != nil {
		if rpcErr := transportTimeout(ctx, err); rpcErr != nil {
			return nil, rpcErr
		}
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if rpcErr := transportTimeout(ctx, err); rpcErr != nil {
			return nil, rpcErr
		}
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}

	c.log.Debug("RPC response", zap.String("method", method), zap.Int("status", resp.StatusCode), zap.ByteString("body", body))

	switch resp.StatusCode {
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return nil, &ledger.RPCError{
			Code:      resp.StatusCode,
			Message:   http.StatusText(resp.StatusCode),
			Name:      "HANDLER_ERROR",
			CauseName: "TIMEOUT_ERROR",
		}
	}

	var response RPCResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%s: unmarshal response (http %d): %w", method, resp.StatusCode, err)
	}

	if response.Error != nil {
		return nil, response.Error.toLedger()
	}

	return response.Result, nil
}

// transportTimeout reports a request that timed out before the node answered the
// same way as the node's own timeout. Cancellation of ctx is not a timeout.
func transportTimeout(ctx context.Context, err error) *ledger.RPCError {
	var netErr net.Error
	if ctx.Err() != nil || !errors.As(err, &netErr) || !netErr.Timeout() {
		return nil
	}
	return &ledger.RPCError{
		Message:   err.Error(),
		Name:      "HANDLER_ERROR",
		CauseName: "TIMEOUT_ERROR",
	}
}

func (e *RPCErrorBody) toLedger() *ledger.RPCError {
	out := &ledger.RPCError{
		Code:    e.Code,
		Message: e.Message,
		Name:    e.Name,
		Data:    string(e.Data),
	}
	if e.Cause != nil {
		out.CauseName = e.Cause.Name
		out.Cause = string(e.Cause.Info)
	}
	return out
}
