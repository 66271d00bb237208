package internal_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpring-eng/xpring-go/internal"
	"github.com/xpring-eng/xpring-go/internal/fakenetworkclient"
	"github.com/xpring-eng/xpring-go/internal/testutil"
)

// capturingSigner records the transaction it was asked to sign and returns a
// configured result.
type capturingSigner struct {
	signed   *internal.SignedTransaction
	err      error
	captured *internal.Transaction
}

func (s *capturingSigner) Sign(tx *internal.Transaction, _ *internal.Wallet) (*internal.SignedTransaction, error) {
	s.captured = tx
	if s.err != nil {
		return nil, s.err
	}
	return s.signed, nil
}

func TestGetBalance_ReturnsConfiguredBalance(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	client := internal.NewClient(fake, nil, nil)

	balance, err := client.GetBalance(context.Background(), testutil.NewAddress(t))
	require.NoError(t, err)
	assert.Equal(t, fakenetworkclient.DefaultBalance, balance)
}

func TestGetBalance_InvalidAddressSkipsBackend(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	client := internal.NewClient(fake, nil, nil)

	_, err := client.GetBalance(context.Background(), "not an address")

	var invalidErr *internal.InvalidAddressError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "not an address", invalidErr.Address)
	assert.Empty(t, fake.Calls(), "backend must not be called for an invalid address")
}

func TestGetBalance_MissingBalanceField(t *testing.T) {
	sequence := uint32(7)
	fake := fakenetworkclient.NewAllSuccess()
	fake.AccountInfoResponse = &internal.GetAccountInfoResponse{
		AccountData: &internal.AccountData{Sequence: &sequence},
	}
	client := internal.NewClient(fake, nil, nil)

	_, err := client.GetBalance(context.Background(), testutil.NewAddress(t))

	var malformedErr *internal.MalformedResponseError
	require.ErrorAs(t, err, &malformedErr)
	assert.Contains(t, malformedErr.Error(), "balance")
}

func TestGetBalance_XAddressResolvesToClassic(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	client := internal.NewClient(fake, nil, nil)

	balance, err := client.GetBalance(context.Background(), "X7AcgcsBL6XDcUb289X4mJ8djcdyKaB5hJDWMArnXr61cqZ")
	require.NoError(t, err)
	assert.Equal(t, fakenetworkclient.DefaultBalance, balance)
	assert.Equal(t, []string{"GetAccountInfo"}, fake.Calls())
}

func TestAllFailureBackend_EveryOperationFails(t *testing.T) {
	fake := fakenetworkclient.NewAllFailure()
	client := internal.NewClient(fake, nil, nil)
	wallet := testutil.NewWallet(t)
	ctx := context.Background()

	_, err := client.GetBalance(ctx, wallet.Address)
	assert.ErrorIs(t, err, fakenetworkclient.ErrDefault)

	_, err = client.Send(ctx, wallet, 1, testutil.NewAddress(t))
	assert.ErrorIs(t, err, fakenetworkclient.ErrDefault)

	_, err = client.GetLatestValidatedLedgerSequence(ctx)
	assert.ErrorIs(t, err, fakenetworkclient.ErrDefault)

	_, err = client.GetTransactionStatus(ctx, "ABCD")
	assert.ErrorIs(t, err, fakenetworkclient.ErrDefault)
}

func TestSend_EndToEnd(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	signer := &capturingSigner{signed: &internal.SignedTransaction{Blob: "F00D", Hash: "CAFE"}}
	client := internal.NewClient(fake, signer, nil)
	wallet := testutil.NewWallet(t)
	destination := testutil.NewAddress(t)

	result, err := client.Send(context.Background(), wallet, 1, destination)
	require.NoError(t, err)
	assert.Equal(t, fakenetworkclient.DefaultEngineResult, result.EngineResult)
	assert.Equal(t, fakenetworkclient.DefaultTxBlob, result.TxBlob)

	// The assembled transaction carries the fetched fee and sequence.
	require.NotNil(t, signer.captured)
	assert.Equal(t, fakenetworkclient.DefaultFee, signer.captured.Fee)
	assert.Equal(t, fakenetworkclient.DefaultSequence, signer.captured.Sequence)
	assert.Equal(t, internal.Drops(1), signer.captured.Amount)
	assert.Equal(t, wallet.Address, signer.captured.Account)
	assert.Equal(t, destination, signer.captured.Destination)
	assert.Nil(t, signer.captured.DestinationTag)
}

func TestSend_LocalSignerDefault(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	client := internal.NewClient(fake, nil, nil)
	wallet := testutil.NewWallet(t)

	result, err := client.Send(context.Background(), wallet, 25, testutil.NewAddress(t))
	require.NoError(t, err)
	assert.Equal(t, fakenetworkclient.DefaultEngineResult, result.EngineResult)
	assert.NotEmpty(t, result.Hash, "fake echoes the signed transaction hash")
}

func TestSend_XAddressDestinationTag(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	signer := &capturingSigner{signed: &internal.SignedTransaction{Blob: "F00D"}}
	client := internal.NewClient(fake, signer, nil)

	_, err := client.Send(context.Background(), testutil.NewWallet(t), 5, "XV5sbjUmgPpvXv4ixFWZ5ptAYZ6PD28Sq49uo34VyjnmK5H")
	require.NoError(t, err)
	require.NotNil(t, signer.captured)
	assert.Equal(t, "rPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY", signer.captured.Destination)
	require.NotNil(t, signer.captured.DestinationTag)
	assert.Equal(t, uint32(12345), *signer.captured.DestinationTag)
}

func TestSend_InvalidDestinationSkipsBackend(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	client := internal.NewClient(fake, nil, nil)

	_, err := client.Send(context.Background(), testutil.NewWallet(t), 1, "bogus")

	var invalidErr *internal.InvalidAddressError
	require.ErrorAs(t, err, &invalidErr)
	assert.Empty(t, fake.Calls())
}

func TestSend_InvalidSenderSkipsBackend(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	client := internal.NewClient(fake, nil, nil)

	_, err := client.Send(context.Background(), &internal.Wallet{Address: "bogus"}, 1, testutil.NewAddress(t))

	var invalidErr *internal.InvalidAddressError
	require.ErrorAs(t, err, &invalidErr)
	assert.Empty(t, fake.Calls())
}

func TestSend_XAddressSenderSkipsBackend(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	client := internal.NewClient(fake, nil, nil)
	// A wallet's keys belong to a classic address; an X-address sender is
	// rejected locally rather than handed to the backend as-is.
	wallet := &internal.Wallet{Address: "X7AcgcsBL6XDcUb289X4mJ8djcdyKaB5hJDWMArnXr61cqZ"}

	_, err := client.Send(context.Background(), wallet, 1, testutil.NewAddress(t))

	var invalidErr *internal.InvalidAddressError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, wallet.Address, invalidErr.Address)
	assert.Empty(t, fake.Calls())
}

func TestSend_MissingFeeField(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	fake.FeeResponse = &internal.GetFeeResponse{Drops: &internal.FeeDrops{}}
	client := internal.NewClient(fake, nil, nil)

	_, err := client.Send(context.Background(), testutil.NewWallet(t), 1, testutil.NewAddress(t))

	var malformedErr *internal.MalformedResponseError
	require.ErrorAs(t, err, &malformedErr)
	assert.Contains(t, malformedErr.Error(), "fee")
}

func TestSend_MissingSequenceField(t *testing.T) {
	balance := internal.Drops(4000)
	fake := fakenetworkclient.NewAllSuccess()
	fake.AccountInfoResponse = &internal.GetAccountInfoResponse{
		AccountData: &internal.AccountData{Balance: &balance},
	}
	client := internal.NewClient(fake, nil, nil)

	_, err := client.Send(context.Background(), testutil.NewWallet(t), 1, testutil.NewAddress(t))

	var malformedErr *internal.MalformedResponseError
	require.ErrorAs(t, err, &malformedErr)
	assert.Contains(t, malformedErr.Error(), "sequence")
}

func TestSend_SignerErrorWrapped(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	signer := &capturingSigner{err: errors.New("hardware token unplugged")}
	client := internal.NewClient(fake, signer, nil)

	_, err := client.Send(context.Background(), testutil.NewWallet(t), 1, testutil.NewAddress(t))

	var signingErr *internal.SigningFailureError
	require.ErrorAs(t, err, &signingErr)
	assert.Contains(t, err.Error(), "hardware token unplugged")
}

func TestSend_SignerReturnsNothing(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	signer := &capturingSigner{} // nil result, nil error
	client := internal.NewClient(fake, signer, nil)

	_, err := client.Send(context.Background(), testutil.NewWallet(t), 1, testutil.NewAddress(t))

	var signingErr *internal.SigningFailureError
	require.ErrorAs(t, err, &signingErr)
	assert.Contains(t, err.Error(), "no signed transaction")
}

func TestSend_SubmitErrorPropagates(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	fake.SubmitError = &internal.NetworkError{Op: "submit", Err: errors.New("connection reset")}
	client := internal.NewClient(fake, nil, nil)

	_, err := client.Send(context.Background(), testutil.NewWallet(t), 1, testutil.NewAddress(t))

	var netErr *internal.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "submit", netErr.Op)
}

func TestSend_NoDeduplication(t *testing.T) {
	wallet := testutil.NewWallet(t)
	destination := testutil.NewAddress(t)

	for i := 0; i < 2; i++ {
		fake := fakenetworkclient.NewAllSuccess()
		client := internal.NewClient(fake, nil, nil)
		result, err := client.Send(context.Background(), wallet, 1, destination)
		require.NoError(t, err)
		assert.Equal(t, fakenetworkclient.DefaultEngineResult, result.EngineResult)
		assert.Equal(t, []string{"GetAccountInfo", "GetFee"}, sorted(fake.Calls())[0:2])
		assert.Contains(t, fake.Calls(), "SubmitSignedTransaction")
	}
}

func TestStatusQueries(t *testing.T) {
	fake := fakenetworkclient.NewAllSuccess()
	client := internal.NewClient(fake, nil, nil)

	seq, err := client.GetLatestValidatedLedgerSequence(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fakenetworkclient.DefaultLedgerSequence, seq)

	status, err := client.GetTransactionStatus(context.Background(), "ABCD")
	require.NoError(t, err)
	assert.True(t, status.Validated)
	assert.Equal(t, fakenetworkclient.DefaultEngineResult, status.Result)
}

// sorted returns a copy of calls in a deterministic order; the fee and
// account-info lookups run concurrently so their recorded order varies.
func sorted(calls []string) []string {
	out := append([]string(nil), calls...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
