// Package legacynetworkclient implements the backward-compatible backend:
// rippled's legacy JSON-over-HTTP command interface. It exists for nodes
// that predate the JSON-RPC service and supports only the three core
// operations; status queries return ErrNotSupported.
package legacynetworkclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/xpring-eng/xpring-go/internal"
)

// ErrNotSupported is returned for status queries the legacy command
// interface cannot answer.
var ErrNotSupported = errors.New("operation not supported by the legacy backend")

// The legacy interface historically assumed a host environment that
// supplies its own HTTP transport. Outside such environments a compatible
// transport must be substituted exactly once, process-wide, before the
// first client is built. ensureDefaultTransport is that substitution step,
// invoked explicitly from New rather than from package init.
var (
	transportOnce    sync.Once
	defaultTransport *http.Client
)

func ensureDefaultTransport() *http.Client {
	transportOnce.Do(func() {
		defaultTransport = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        16,
			},
		}
	})
	return defaultTransport
}

// Client wraps one legacy HTTP endpoint and implements
// internal.NetworkClient. Construction performs no network I/O.
type Client struct {
	url  string
	http *http.Client
}

// New builds a legacy client for the command endpoint at url, substituting
// the process-wide default transport.
func New(url string) *Client {
	return NewWithHTTPClient(url, ensureDefaultTransport())
}

// NewWithHTTPClient builds a legacy client with an explicit transport,
// bypassing the default-transport substitution.
func NewWithHTTPClient(url string, httpClient *http.Client) *Client {
	return &Client{url: url, http: httpClient}
}

// commandRequest is the legacy command envelope: a method name plus a
// single-element params array.
type commandRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params,omitempty"`
}

type commandEnvelope struct {
	Result json.RawMessage `json:"result"`
}

type commandStatus struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"error"`
	ErrorMessage string `json:"error_message"`
}

// call posts one legacy command and decodes the result envelope into out.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	req := commandRequest{Method: method}
	if params != nil {
		req.Params = []interface{}{params}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return &internal.NetworkError{Op: method, Err: errors.Wrap(err, "encoding request")}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &internal.NetworkError{Op: method, Err: errors.Wrap(err, "building request")}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &internal.NetworkError{
			Op:      method,
			Err:     err,
			Timeout: errors.Is(err, context.DeadlineExceeded) || isTimeout(err),
		}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &internal.NetworkError{
			Op:       method,
			Err:      errors.Errorf("unexpected HTTP status %d", resp.StatusCode),
			NotFound: resp.StatusCode == http.StatusNotFound,
			Timeout:  resp.StatusCode == http.StatusGatewayTimeout,
		}
	}

	var envelope commandEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &internal.NetworkError{Op: method, Err: errors.Wrap(err, "decoding response")}
	}
	if len(envelope.Result) == 0 {
		return &internal.NetworkError{Op: method, Err: errors.New("response carried no result")}
	}
	var status commandStatus
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return &internal.NetworkError{Op: method, Err: errors.Wrap(err, "decoding result status")}
	}
	if status.Status == "error" {
		return &internal.NetworkError{
			Op:       method,
			Err:      errors.Errorf("%s: %s", status.ErrorCode, status.ErrorMessage),
			NotFound: status.ErrorCode == "actNotFound" || status.ErrorCode == "txnNotFound",
		}
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return &internal.NetworkError{Op: method, Err: errors.Wrap(err, "decoding result")}
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type legacyAccountData struct {
	Account  string  `json:"Account"`
	Balance  *string `json:"Balance"`
	Sequence *uint32 `json:"Sequence"`
	Flags    uint32  `json:"Flags"`
}

type legacyAccountInfoResult struct {
	AccountData *legacyAccountData `json:"account_data"`
	LedgerIndex uint32             `json:"ledger_index"`
	Validated   bool               `json:"validated"`
}

// GetAccountInfo retrieves the state of an account through the legacy
// command interface.
func (c *Client) GetAccountInfo(ctx context.Context, req internal.GetAccountInfoRequest) (*internal.GetAccountInfoResponse, error) {
	params := struct {
		Account     string `json:"account"`
		LedgerIndex string `json:"ledger_index"`
	}{Account: req.Account, LedgerIndex: "validated"}

	var result legacyAccountInfoResult
	if err := c.call(ctx, "account_info", params, &result); err != nil {
		return nil, err
	}
	if result.AccountData == nil {
		return nil, &internal.NetworkError{Op: "account_info", Err: errors.New("response carried no account data")}
	}
	data := &internal.AccountData{
		Account:  result.AccountData.Account,
		Flags:    result.AccountData.Flags,
		Sequence: result.AccountData.Sequence,
	}
	if result.AccountData.Balance != nil {
		balance, err := strconv.ParseUint(*result.AccountData.Balance, 10, 64)
		if err != nil {
			return nil, &internal.NetworkError{Op: "account_info", Err: errors.Wrap(err, "parsing balance")}
		}
		drops := internal.Drops(balance)
		data.Balance = &drops
	}
	return &internal.GetAccountInfoResponse{
		AccountData: data,
		LedgerIndex: result.LedgerIndex,
		Validated:   result.Validated,
	}, nil
}

type legacyFeeResult struct {
	Drops *struct {
		MinimumFee *string `json:"minimum_fee"`
	} `json:"drops"`
	LedgerCurrentIndex uint32 `json:"ledger_current_index"`
}

// GetFee retrieves the fee schedule through the legacy command interface.
func (c *Client) GetFee(ctx context.Context, _ internal.GetFeeRequest) (*internal.GetFeeResponse, error) {
	var result legacyFeeResult
	if err := c.call(ctx, "fee", nil, &result); err != nil {
		return nil, err
	}
	if result.Drops == nil {
		return nil, &internal.NetworkError{Op: "fee", Err: errors.New("response carried no drops")}
	}
	drops := &internal.FeeDrops{}
	if result.Drops.MinimumFee != nil {
		minimum, err := strconv.ParseUint(*result.Drops.MinimumFee, 10, 64)
		if err != nil {
			return nil, &internal.NetworkError{Op: "fee", Err: errors.Wrap(err, "parsing minimum fee")}
		}
		d := internal.Drops(minimum)
		drops.MinimumFee = &d
	}
	return &internal.GetFeeResponse{Drops: drops, LedgerCurrentIndex: result.LedgerCurrentIndex}, nil
}

type legacySubmitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultCode    int    `json:"engine_result_code"`
	EngineResultMessage string `json:"engine_result_message"`
	TxBlob              string `json:"tx_blob"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

// SubmitSignedTransaction broadcasts a signed transaction blob through the
// legacy command interface.
func (c *Client) SubmitSignedTransaction(ctx context.Context, req internal.SubmitSignedTransactionRequest) (*internal.SubmissionResult, error) {
	if req.SignedTransaction == nil {
		return nil, &internal.NetworkError{Op: "submit", Err: errors.New("no signed transaction to submit")}
	}
	params := struct {
		TxBlob string `json:"tx_blob"`
	}{TxBlob: req.SignedTransaction.Blob}

	var result legacySubmitResult
	if err := c.call(ctx, "submit", params, &result); err != nil {
		return nil, err
	}
	if result.EngineResult == "" && result.TxBlob == "" {
		return nil, &internal.NetworkError{Op: "submit", Err: errors.New("response carried no engine result")}
	}
	return &internal.SubmissionResult{
		EngineResult:        result.EngineResult,
		EngineResultCode:    result.EngineResultCode,
		EngineResultMessage: result.EngineResultMessage,
		TxBlob:              result.TxBlob,
		Hash:                result.TxJSON.Hash,
	}, nil
}

// GetLatestValidatedLedgerSequence is not supported by the legacy backend.
func (c *Client) GetLatestValidatedLedgerSequence(_ context.Context) (uint32, error) {
	return 0, ErrNotSupported
}

// GetTransactionStatus is not supported by the legacy backend.
func (c *Client) GetTransactionStatus(_ context.Context, _ string) (*internal.TransactionStatus, error) {
	return nil, ErrNotSupported
}
