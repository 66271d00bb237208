package internal

import "context"

// Drops is an amount of XRP expressed in drops, the ledger's smallest
// indivisible unit. Amounts are always integral; floating point is never
// used so no precision is lost.
type Drops uint64

// GetAccountInfoRequest asks for the current state of one account.
type GetAccountInfoRequest struct {
	Account string
}

// GetFeeRequest asks for the current fee schedule. It carries no parameters.
type GetFeeRequest struct{}

// SubmitSignedTransactionRequest carries a signed transaction for broadcast.
type SubmitSignedTransactionRequest struct {
	SignedTransaction *SignedTransaction
}

// AccountData is the remote account snapshot. Balance and Sequence are
// pointers so a response that omits them can be told apart from a zero
// value; the client turns such omissions into MalformedResponseError.
type AccountData struct {
	Account  string
	Balance  *Drops
	Sequence *uint32
	Flags    uint32
}

// GetAccountInfoResponse is the typed account_info response.
type GetAccountInfoResponse struct {
	AccountData *AccountData
	LedgerIndex uint32
	Validated   bool
}

// FeeDrops is the fee schedule portion of a fee response. MinimumFee is a
// pointer for the same omission-detection reason as AccountData fields.
type FeeDrops struct {
	MinimumFee    *Drops
	MedianFee     Drops
	OpenLedgerFee Drops
}

// GetFeeResponse is the typed fee response.
type GetFeeResponse struct {
	Drops              *FeeDrops
	LedgerCurrentIndex uint32
}

// SubmissionResult is the remote engine's verdict for a submitted
// transaction, returned verbatim to callers. The client does not interpret
// the engine result beyond surfacing it.
type SubmissionResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultCode    int    `json:"engine_result_code"`
	EngineResultMessage string `json:"engine_result_message"`
	TxBlob              string `json:"tx_blob"`
	Hash                string `json:"hash"`
}

// TransactionStatus describes a previously submitted transaction.
type TransactionStatus struct {
	Hash      string `json:"hash"`
	Validated bool   `json:"validated"`
	Result    string `json:"result"`
}

// NetworkClient defines a general interface for talking to an XRP ledger
// node. It abstracts the operations the submission pipeline needs, allowing
// different backends (JSON-RPC, legacy HTTP, fakes) to be used
// interchangeably.
//
// Implementations must not retry internally: retry policy belongs to the
// caller. A call that succeeds at the transport level but returns no payload
// must fail with a NetworkError, never resolve with an empty success.
type NetworkClient interface {
	// GetAccountInfo retrieves the current state of the given account.
	GetAccountInfo(ctx context.Context, req GetAccountInfoRequest) (*GetAccountInfoResponse, error)

	// GetFee retrieves the network's current fee schedule.
	GetFee(ctx context.Context, req GetFeeRequest) (*GetFeeResponse, error)

	// SubmitSignedTransaction broadcasts a signed transaction. On success
	// the transaction has been handed to the network, not necessarily
	// validated yet.
	SubmitSignedTransaction(ctx context.Context, req SubmitSignedTransactionRequest) (*SubmissionResult, error)

	// GetLatestValidatedLedgerSequence returns the index of the most
	// recently validated ledger. Backends that cannot answer status
	// queries (like the legacy backend) return an error.
	GetLatestValidatedLedgerSequence(ctx context.Context) (uint32, error)

	// GetTransactionStatus reports whether the transaction with the given
	// hash has been validated and with what engine result. Backends that
	// cannot answer status queries return an error.
	GetTransactionStatus(ctx context.Context, hash string) (*TransactionStatus, error)
}
