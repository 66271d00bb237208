// Package rpcnetworkclient implements the primary backend: a JSON-RPC
// client speaking to a rippled node's RPC interface over HTTP.
package rpcnetworkclient

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/pkg/errors"
	"github.com/xpring-eng/xpring-go/internal"
)

// Client wraps a single JSON-RPC channel and implements
// internal.NetworkClient. Construction prepares the channel but performs no
// network I/O; the transport multiplexes concurrent calls. No operation is
// retried here: retry policy belongs to the caller.
type Client struct {
	rpc *jrpc2.Client
}

// New builds a client for the RPC endpoint at url. A nil httpClient uses
// http.DefaultClient.
func New(url string, httpClient *http.Client) *Client {
	opts := &jhttp.ChannelOptions{}
	if httpClient != nil {
		opts.Client = httpClient
	}
	ch := jhttp.NewChannel(url, opts)
	return &Client{rpc: jrpc2.NewClient(ch, nil)}
}

// Close shuts down the underlying channel.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// Wire shapes, following rippled's public API method results.
type accountData struct {
	Account  string  `json:"Account"`
	Balance  *string `json:"Balance"`
	Sequence *uint32 `json:"Sequence"`
	Flags    uint32  `json:"Flags"`
}

type accountInfoResult struct {
	AccountData *accountData `json:"account_data"`
	LedgerIndex uint32       `json:"ledger_index"`
	Validated   bool         `json:"validated"`
}

type feeDrops struct {
	MinimumFee    *string `json:"minimum_fee"`
	MedianFee     string  `json:"median_fee"`
	OpenLedgerFee string  `json:"open_ledger_fee"`
}

type feeResult struct {
	Drops              *feeDrops `json:"drops"`
	LedgerCurrentIndex uint32    `json:"ledger_current_index"`
}

type submitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultCode    int    `json:"engine_result_code"`
	EngineResultMessage string `json:"engine_result_message"`
	TxBlob              string `json:"tx_blob"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

type ledgerResult struct {
	LedgerIndex uint32 `json:"ledger_index"`
}

type txResult struct {
	Hash      string `json:"hash"`
	Validated bool   `json:"validated"`
	Meta      struct {
		TransactionResult string `json:"TransactionResult"`
	} `json:"meta"`
}

// GetAccountInfo retrieves the validated state of an account.
func (c *Client) GetAccountInfo(ctx context.Context, req internal.GetAccountInfoRequest) (*internal.GetAccountInfoResponse, error) {
	params := struct {
		Account     string `json:"account"`
		LedgerIndex string `json:"ledger_index"`
	}{Account: req.Account, LedgerIndex: "validated"}

	var result accountInfoResult
	if err := c.rpc.CallResult(ctx, "account_info", params, &result); err != nil {
		return nil, wrapError("account_info", err)
	}
	if result.AccountData == nil {
		return nil, &internal.NetworkError{Op: "account_info", Err: errors.New("response carried no account data")}
	}
	data := &internal.AccountData{
		Account: result.AccountData.Account,
		Flags:   result.AccountData.Flags,
	}
	if result.AccountData.Balance != nil {
		balance, err := parseDrops(*result.AccountData.Balance)
		if err != nil {
			return nil, &internal.NetworkError{Op: "account_info", Err: errors.Wrap(err, "parsing balance")}
		}
		data.Balance = &balance
	}
	data.Sequence = result.AccountData.Sequence
	return &internal.GetAccountInfoResponse{
		AccountData: data,
		LedgerIndex: result.LedgerIndex,
		Validated:   result.Validated,
	}, nil
}

// GetFee retrieves the network's current fee schedule.
func (c *Client) GetFee(ctx context.Context, _ internal.GetFeeRequest) (*internal.GetFeeResponse, error) {
	var result feeResult
	if err := c.rpc.CallResult(ctx, "fee", struct{}{}, &result); err != nil {
		return nil, wrapError("fee", err)
	}
	if result.Drops == nil {
		return nil, &internal.NetworkError{Op: "fee", Err: errors.New("response carried no drops")}
	}
	drops := &internal.FeeDrops{}
	if result.Drops.MinimumFee != nil {
		minimum, err := parseDrops(*result.Drops.MinimumFee)
		if err != nil {
			return nil, &internal.NetworkError{Op: "fee", Err: errors.Wrap(err, "parsing minimum fee")}
		}
		drops.MinimumFee = &minimum
	}
	if result.Drops.MedianFee != "" {
		median, err := parseDrops(result.Drops.MedianFee)
		if err != nil {
			return nil, &internal.NetworkError{Op: "fee", Err: errors.Wrap(err, "parsing median fee")}
		}
		drops.MedianFee = median
	}
	if result.Drops.OpenLedgerFee != "" {
		open, err := parseDrops(result.Drops.OpenLedgerFee)
		if err != nil {
			return nil, &internal.NetworkError{Op: "fee", Err: errors.Wrap(err, "parsing open ledger fee")}
		}
		drops.OpenLedgerFee = open
	}
	return &internal.GetFeeResponse{Drops: drops, LedgerCurrentIndex: result.LedgerCurrentIndex}, nil
}

// SubmitSignedTransaction broadcasts a signed transaction blob.
func (c *Client) SubmitSignedTransaction(ctx context.Context, req internal.SubmitSignedTransactionRequest) (*internal.SubmissionResult, error) {
	if req.SignedTransaction == nil {
		return nil, &internal.NetworkError{Op: "submit", Err: errors.New("no signed transaction to submit")}
	}
	params := struct {
		TxBlob string `json:"tx_blob"`
	}{TxBlob: req.SignedTransaction.Blob}

	var result submitResult
	if err := c.rpc.CallResult(ctx, "submit", params, &result); err != nil {
		return nil, wrapError("submit", err)
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

// GetLatestValidatedLedgerSequence returns the most recently validated
// ledger index.
func (c *Client) GetLatestValidatedLedgerSequence(ctx context.Context) (uint32, error) {
	params := struct {
		LedgerIndex string `json:"ledger_index"`
	}{LedgerIndex: "validated"}

	var result ledgerResult
	if err := c.rpc.CallResult(ctx, "ledger", params, &result); err != nil {
		return 0, wrapError("ledger", err)
	}
	if result.LedgerIndex == 0 {
		return 0, &internal.NetworkError{Op: "ledger", Err: errors.New("response carried no ledger index")}
	}
	return result.LedgerIndex, nil
}

// GetTransactionStatus reports the validation status of a transaction.
func (c *Client) GetTransactionStatus(ctx context.Context, hash string) (*internal.TransactionStatus, error) {
	params := struct {
		Transaction string `json:"transaction"`
	}{Transaction: hash}

	var result txResult
	if err := c.rpc.CallResult(ctx, "tx", params, &result); err != nil {
		return nil, wrapError("tx", err)
	}
	if result.Hash == "" && !result.Validated && result.Meta.TransactionResult == "" {
		return nil, &internal.NetworkError{Op: "tx", Err: errors.New("response carried no transaction data")}
	}
	return &internal.TransactionStatus{
		Hash:      result.Hash,
		Validated: result.Validated,
		Result:    result.Meta.TransactionResult,
	}, nil
}

// wrapError translates a transport or JSON-RPC error into the backend's
// NetworkError, classifying not-found and timeout cases.
func wrapError(op string, err error) *internal.NetworkError {
	ne := &internal.NetworkError{Op: op, Err: err}
	if errors.Is(err, context.DeadlineExceeded) {
		ne.Timeout = true
	}
	var rpcErr *jrpc2.Error
	if errors.As(err, &rpcErr) {
		msg := rpcErr.Message
		if strings.Contains(msg, "actNotFound") || strings.Contains(msg, "txnNotFound") {
			ne.NotFound = true
		}
		if strings.Contains(msg, "timeout") {
			ne.Timeout = true
		}
	}
	return ne
}

func parseDrops(s string) (internal.Drops, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return internal.Drops(v), nil
}
