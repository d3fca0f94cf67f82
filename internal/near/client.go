// Package near provides a NEAR JSON-RPC client for contract reads and
// signed transaction broadcast.
package near

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/raffle-labs/raffler-go/pkg/logger"
)

// ErrNoSigner is returned by FunctionCall when the client has no transaction
// signer configured. Views never need one.
var ErrNoSigner = errors.New("no transaction signer configured")

// Signer produces a signed, base64-encoded NEAR transaction for a function
// call. Signing is delegated to the surrounding wallet integration; the
// client only broadcasts.
type Signer interface {
	SignTransaction(ctx context.Context, signerID, receiverID, method string, args []byte, gas uint64, deposit *big.Int) (string, error)
}

// SignerFunc adapts a function to the Signer interface.
type SignerFunc func(ctx context.Context, signerID, receiverID, method string, args []byte, gas uint64, deposit *big.Int) (string, error)

func (f SignerFunc) SignTransaction(ctx context.Context, signerID, receiverID, method string, args []byte, gas uint64, deposit *big.Int) (string, error) {
	return f(ctx, signerID, receiverID, method, args, gas, deposit)
}

// Client talks to a NEAR node over JSON-RPC.
type Client struct {
	rpcURL     string
	httpClient *http.Client
	signer     Signer
	log        *logger.Logger
}

// Config holds client configuration.
type Config struct {
	RPCURL  string
	Timeout time.Duration
	Signer  Signer
	Logger  *logger.Logger
}

// NewClient creates a NEAR JSON-RPC client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("near-client")
	}

	return &Client{
		rpcURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		signer: cfg.Signer,
		log:    log,
	}, nil
}

// Call makes a raw JSON-RPC call to the node.
func (c *Client) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// ViewFunction executes a read-only contract call and returns the raw result
// bytes (the contract's JSON return value).
func (c *Client) ViewFunction(ctx context.Context, contractID, method string, args []byte) ([]byte, error) {
	if len(args) == 0 {
		args = []byte("{}")
	}

	result, err := c.Call(ctx, "query", queryRequest{
		RequestType: "call_function",
		Finality:    "final",
		AccountID:   contractID,
		MethodName:  method,
		ArgsBase64:  base64.StdEncoding.EncodeToString(args),
	})
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", method, err)
	}

	// The node returns the contract result as an array of byte values.
	raw := gjson.GetBytes(result, "result")
	if !raw.IsArray() {
		return nil, fmt.Errorf("view %s: unexpected result shape", method)
	}

	arr := raw.Array()
	out := make([]byte, len(arr))
	for i, v := range arr {
		out[i] = byte(v.Uint())
	}
	return out, nil
}

// ViewAccount returns the yocto balance of an account as a decimal string.
func (c *Client) ViewAccount(ctx context.Context, accountID string) (string, error) {
	result, err := c.Call(ctx, "query", queryRequest{
		RequestType: "view_account",
		Finality:    "final",
		AccountID:   accountID,
	})
	if err != nil {
		return "", fmt.Errorf("view account %s: %w", accountID, err)
	}

	amount := gjson.GetBytes(result, "amount")
	if !amount.Exists() {
		return "", fmt.Errorf("view account %s: no amount in response", accountID)
	}
	return amount.String(), nil
}

// FunctionCall signs and broadcasts a state-changing contract call, waits for
// inclusion, and returns the decoded return value.
func (c *Client) FunctionCall(ctx context.Context, signerID, contractID, method string, args []byte, gas uint64, deposit *big.Int) ([]byte, error) {
	if c.signer == nil {
		return nil, ErrNoSigner
	}
	if len(args) == 0 {
		args = []byte("{}")
	}
	if deposit == nil {
		deposit = big.NewInt(0)
	}

	signedTx, err := c.signer.SignTransaction(ctx, signerID, contractID, method, args, gas, deposit)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", method, err)
	}

	result, err := c.Call(ctx, "broadcast_tx_commit", []interface{}{signedTx})
	if err != nil {
		return nil, fmt.Errorf("broadcast %s: %w", method, err)
	}

	if failure := gjson.GetBytes(result, "status.Failure"); failure.Exists() {
		return nil, &TxFailureError{Failure: failure.Raw}
	}

	success := gjson.GetBytes(result, "status.SuccessValue")
	if !success.Exists() {
		return nil, fmt.Errorf("broadcast %s: no execution status", method)
	}

	decoded, err := base64.StdEncoding.DecodeString(success.String())
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", method, err)
	}

	c.log.WithField("method", method).
		WithField("signer", signerID).
		Debug("transaction executed")

	return decoded, nil
}

// View implements the contract caller surface on top of ViewFunction.
func (c *Client) View(ctx context.Context, contractID, method string, args []byte) ([]byte, error) {
	return c.ViewFunction(ctx, contractID, method, args)
}

// Change implements the contract caller surface on top of FunctionCall.
func (c *Client) Change(ctx context.Context, signerID, contractID, method string, args []byte, gas uint64, deposit *big.Int) ([]byte, error) {
	return c.FunctionCall(ctx, signerID, contractID, method, args, gas, deposit)
}
