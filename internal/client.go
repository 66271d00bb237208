package internal

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var clientTracer = otel.Tracer("xpring_submission_client")

// Client orchestrates the transaction submission pipeline against whichever
// NetworkClient it is configured with. It holds no mutable state across
// calls, so one instance is safe for concurrent sends; every send fetches a
// fresh fee and account snapshot rather than caching them.
type Client struct {
	networkClient NetworkClient
	signer        Signer
	log           logrus.FieldLogger
}

// NewClient builds a submission client over the given backend. A nil signer
// defaults to the in-process LocalSigner; a nil logger defaults to the
// standard logrus logger.
func NewClient(networkClient NetworkClient, signer Signer, log logrus.FieldLogger) *Client {
	if signer == nil {
		signer = LocalSigner{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{networkClient: networkClient, signer: signer, log: log}
}

// Send pays amount drops from the wallet's account to destination. The
// destination may be a classic address or an X-address; an embedded
// destination tag is carried onto the transaction.
//
// The pipeline is strict: validate locally, fetch the fee and the sender's
// account info (concurrently, joining before assembly), assemble, sign,
// submit. Any failure aborts the remaining steps and surfaces immediately;
// nothing is retried.
func (c *Client) Send(ctx context.Context, wallet *Wallet, amount Drops, destination string) (*SubmissionResult, error) {
	ctx, span := clientTracer.Start(ctx, "client.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("xrpl.destination", destination),
		attribute.Int64("xrpl.amount_drops", int64(amount)),
	)

	// Wallets hold keys for a classic address, so the sender must be one;
	// only the destination may arrive in X-address form.
	if wallet == nil || !IsValidClassicAddress(wallet.Address) {
		err := &InvalidAddressError{}
		if wallet != nil {
			err.Address = wallet.Address
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	destClassic, destTag, err := ResolveAddress(destination)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Fee and account info depend only on inputs known here, so fetch them
	// together and join before assembly.
	var (
		feeResp  *GetFeeResponse
		acctResp *GetAccountInfoResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gerr error
		feeResp, gerr = c.networkClient.GetFee(gctx, GetFeeRequest{})
		return errors.Wrap(gerr, "fetching fee")
	})
	g.Go(func() error {
		var gerr error
		acctResp, gerr = c.networkClient.GetAccountInfo(gctx, GetAccountInfoRequest{Account: wallet.Address})
		return errors.Wrap(gerr, "fetching account info")
	})
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if feeResp == nil || feeResp.Drops == nil || feeResp.Drops.MinimumFee == nil {
		err := &MalformedResponseError{Missing: "fee drops"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if acctResp == nil || acctResp.AccountData == nil || acctResp.AccountData.Sequence == nil {
		err := &MalformedResponseError{Missing: "account sequence"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tx := &Transaction{
		Account:        wallet.Address,
		Destination:    destClassic,
		DestinationTag: destTag,
		Amount:         amount,
		Fee:            *feeResp.Drops.MinimumFee,
		Sequence:       *acctResp.AccountData.Sequence,
	}
	span.SetAttributes(
		attribute.Int64("xrpl.fee_drops", int64(tx.Fee)),
		attribute.Int64("xrpl.sequence", int64(tx.Sequence)),
	)

	signed, err := c.signer.Sign(tx, wallet)
	if err != nil {
		serr := &SigningFailureError{Err: err}
		span.SetStatus(codes.Error, serr.Error())
		return nil, serr
	}
	if signed == nil || signed.Blob == "" {
		serr := &SigningFailureError{}
		span.SetStatus(codes.Error, serr.Error())
		return nil, serr
	}

	result, err := c.networkClient.SubmitSignedTransaction(ctx, SubmitSignedTransactionRequest{SignedTransaction: signed})
	if err != nil {
		span.AddEvent("transaction submission failed")
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrap(err, "submitting signed transaction")
	}
	c.log.WithFields(logrus.Fields{
		"hash":          result.Hash,
		"engine_result": result.EngineResult,
	}).Info("transaction submitted")
	span.AddEvent("transaction submission success")
	span.SetStatus(codes.Ok, codes.Ok.String())
	return result, nil
}

// GetBalance returns the account's balance in drops.
func (c *Client) GetBalance(ctx context.Context, address string) (Drops, error) {
	ctx, span := clientTracer.Start(ctx, "client.get_balance")
	defer span.End()
	span.SetAttributes(attribute.String("xrpl.account", address))

	if !IsValidAddress(address) {
		err := &InvalidAddressError{Address: address}
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	classic, _, err := ResolveAddress(address)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	resp, err := c.networkClient.GetAccountInfo(ctx, GetAccountInfoRequest{Account: classic})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, errors.Wrap(err, "fetching account info")
	}
	if resp == nil || resp.AccountData == nil || resp.AccountData.Balance == nil {
		merr := &MalformedResponseError{Missing: "account balance"}
		span.SetStatus(codes.Error, merr.Error())
		return 0, merr
	}
	span.SetStatus(codes.Ok, codes.Ok.String())
	return *resp.AccountData.Balance, nil
}

// GetLatestValidatedLedgerSequence returns the index of the most recently
// validated ledger.
func (c *Client) GetLatestValidatedLedgerSequence(ctx context.Context) (uint32, error) {
	seq, err := c.networkClient.GetLatestValidatedLedgerSequence(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "fetching validated ledger sequence")
	}
	return seq, nil
}

// GetTransactionStatus reports the validation status and engine result of a
// previously submitted transaction.
func (c *Client) GetTransactionStatus(ctx context.Context, hash string) (*TransactionStatus, error) {
	status, err := c.networkClient.GetTransactionStatus(ctx, hash)
	if err != nil {
		return nil, errors.Wrap(err, "fetching transaction status")
	}
	return status, nil
}
