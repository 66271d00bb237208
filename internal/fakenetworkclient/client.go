// Package fakenetworkclient provides a deterministic in-memory backend used
// to exercise the submission pipeline without network I/O.
package fakenetworkclient

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/xpring-eng/xpring-go/internal"
)

// ErrDefault is the shared error installed in every slot by NewAllFailure.
var ErrDefault = errors.New("fake network client error")

// Canned defaults used by NewAllSuccess.
const (
	DefaultBalance        internal.Drops = 4000
	DefaultFee            internal.Drops = 10
	DefaultSequence       uint32         = 12
	DefaultLedgerSequence uint32         = 12
	DefaultEngineResult                  = "tesSUCCESS"
	DefaultTxBlob                        = "DEADBEEF"
)

// Client implements internal.NetworkClient with one independently
// configurable response-or-error per operation. For each slot, a configured
// error wins over the configured value. It performs no I/O and records every
// call so tests can assert the backend was (or was not) touched.
type Client struct {
	AccountInfoResponse *internal.GetAccountInfoResponse
	AccountInfoError    error

	FeeResponse *internal.GetFeeResponse
	FeeError    error

	SubmitResult *internal.SubmissionResult
	SubmitError  error

	LedgerSequence      uint32
	LedgerSequenceError error

	TransactionStatus      *internal.TransactionStatus
	TransactionStatusError error

	mu    sync.Mutex
	calls []string
}

// NewAllSuccess returns a fake whose five slots all hold the canned success
// defaults.
func NewAllSuccess() *Client {
	balance := DefaultBalance
	sequence := DefaultSequence
	fee := DefaultFee
	return &Client{
		AccountInfoResponse: &internal.GetAccountInfoResponse{
			AccountData: &internal.AccountData{
				Balance:  &balance,
				Sequence: &sequence,
			},
			LedgerIndex: DefaultLedgerSequence,
			Validated:   true,
		},
		FeeResponse: &internal.GetFeeResponse{
			Drops:              &internal.FeeDrops{MinimumFee: &fee},
			LedgerCurrentIndex: DefaultLedgerSequence,
		},
		SubmitResult: &internal.SubmissionResult{
			EngineResult:        DefaultEngineResult,
			EngineResultCode:    0,
			EngineResultMessage: "The transaction was applied. Only final in a validated ledger.",
			TxBlob:              DefaultTxBlob,
		},
		LedgerSequence: DefaultLedgerSequence,
		TransactionStatus: &internal.TransactionStatus{
			Validated: true,
			Result:    DefaultEngineResult,
		},
	}
}

// NewAllFailure returns a fake whose five slots all fail with ErrDefault.
func NewAllFailure() *Client {
	return &Client{
		AccountInfoError:       ErrDefault,
		FeeError:               ErrDefault,
		SubmitError:            ErrDefault,
		LedgerSequenceError:    ErrDefault,
		TransactionStatusError: ErrDefault,
	}
}

// Calls returns the operation names invoked so far, in order.
func (c *Client) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *Client) record(op string) {
	c.mu.Lock()
	c.calls = append(c.calls, op)
	c.mu.Unlock()
}

// GetAccountInfo returns the configured account info slot.
func (c *Client) GetAccountInfo(_ context.Context, _ internal.GetAccountInfoRequest) (*internal.GetAccountInfoResponse, error) {
	c.record("GetAccountInfo")
	if c.AccountInfoError != nil {
		return nil, c.AccountInfoError
	}
	return c.AccountInfoResponse, nil
}

// GetFee returns the configured fee slot.
func (c *Client) GetFee(_ context.Context, _ internal.GetFeeRequest) (*internal.GetFeeResponse, error) {
	c.record("GetFee")
	if c.FeeError != nil {
		return nil, c.FeeError
	}
	return c.FeeResponse, nil
}

// SubmitSignedTransaction returns the configured submission slot, echoing
// the submitted transaction's hash when the slot has none of its own.
func (c *Client) SubmitSignedTransaction(_ context.Context, req internal.SubmitSignedTransactionRequest) (*internal.SubmissionResult, error) {
	c.record("SubmitSignedTransaction")
	if c.SubmitError != nil {
		return nil, c.SubmitError
	}
	result := c.SubmitResult
	if result != nil && result.Hash == "" && req.SignedTransaction != nil {
		copied := *result
		copied.Hash = req.SignedTransaction.Hash
		return &copied, nil
	}
	return result, nil
}

// GetLatestValidatedLedgerSequence returns the configured ledger slot.
func (c *Client) GetLatestValidatedLedgerSequence(_ context.Context) (uint32, error) {
	c.record("GetLatestValidatedLedgerSequence")
	if c.LedgerSequenceError != nil {
		return 0, c.LedgerSequenceError
	}
	return c.LedgerSequence, nil
}

// GetTransactionStatus returns the configured status slot.
func (c *Client) GetTransactionStatus(_ context.Context, _ string) (*internal.TransactionStatus, error) {
	c.record("GetTransactionStatus")
	if c.TransactionStatusError != nil {
		return nil, c.TransactionStatusError
	}
	return c.TransactionStatus, nil
}
