package internal

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWallet(t *testing.T) {
	wallet, err := GenerateWallet()
	require.NoError(t, err)
	assert.True(t, IsValidClassicAddress(wallet.Address))
	assert.Len(t, wallet.PublicKeyHex(), 66, "compressed secp256k1 key is 33 bytes")
}

func TestNewWallet_RejectsMismatchedKey(t *testing.T) {
	a, err := GenerateWallet()
	require.NoError(t, err)
	b, err := GenerateWallet()
	require.NoError(t, err)

	// b's key serialized under a's address must be rejected.
	raw := b.privateKey.Serialize()
	_, err = NewWallet(a.Address, hex.EncodeToString(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestNewWallet_RoundTrip(t *testing.T) {
	wallet, err := GenerateWallet()
	require.NoError(t, err)

	rebuilt, err := NewWallet(wallet.Address, hex.EncodeToString(wallet.privateKey.Serialize()))
	require.NoError(t, err)
	assert.Equal(t, wallet.Address, rebuilt.Address)
	assert.Equal(t, wallet.PublicKeyHex(), rebuilt.PublicKeyHex())
}

func TestNewWallet_InvalidInputs(t *testing.T) {
	_, err := NewWallet("bogus", "00")
	var invalidErr *InvalidAddressError
	assert.ErrorAs(t, err, &invalidErr)

	_, err = NewWallet("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", "zz")
	assert.Error(t, err)

	_, err = NewWallet("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", "00ff")
	assert.Error(t, err)
}

func TestLocalSigner_SignAndVerify(t *testing.T) {
	wallet, err := GenerateWallet()
	require.NoError(t, err)
	tag := uint32(99)
	tx := &Transaction{
		Account:        wallet.Address,
		Destination:    "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		DestinationTag: &tag,
		Amount:         1000,
		Fee:            10,
		Sequence:       12,
	}

	signed, err := LocalSigner{}.Sign(tx, wallet)
	require.NoError(t, err)
	require.NotNil(t, signed)
	assert.NotEmpty(t, signed.Blob)
	assert.NotEmpty(t, signed.Hash)

	ok, err := LocalSigner{}.Verify(signed, wallet)
	require.NoError(t, err)
	assert.True(t, ok)

	// The blob decodes to the canonical payload with the assembled values.
	raw, err := hex.DecodeString(signed.Blob)
	require.NoError(t, err)
	var payload txPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "Payment", payload.TransactionType)
	assert.Equal(t, "1000", payload.Amount)
	assert.Equal(t, "10", payload.Fee)
	assert.Equal(t, uint32(12), payload.Sequence)
	assert.Equal(t, wallet.PublicKeyHex(), payload.SigningPubKey)
	assert.NotEmpty(t, payload.TxnSignature)
}

func TestLocalSigner_SignIsDeterministicPerInput(t *testing.T) {
	wallet, err := GenerateWallet()
	require.NoError(t, err)
	tx := &Transaction{
		Account:     wallet.Address,
		Destination: "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		Amount:      1,
		Fee:         10,
		Sequence:    1,
	}

	first, err := LocalSigner{}.Sign(tx, wallet)
	require.NoError(t, err)
	second, err := LocalSigner{}.Sign(tx, wallet)
	require.NoError(t, err)
	// RFC 6979 nonces make repeat signatures identical.
	assert.Equal(t, first.Blob, second.Blob)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestLocalSigner_NilInputs(t *testing.T) {
	wallet, err := GenerateWallet()
	require.NoError(t, err)

	_, err = LocalSigner{}.Sign(nil, wallet)
	assert.Error(t, err)

	_, err = LocalSigner{}.Sign(&Transaction{}, &Wallet{Address: wallet.Address})
	assert.Error(t, err)
}

func TestLocalSigner_VerifyRejectsTamperedBlob(t *testing.T) {
	wallet, err := GenerateWallet()
	require.NoError(t, err)
	tx := &Transaction{
		Account:     wallet.Address,
		Destination: "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		Amount:      1,
		Fee:         10,
		Sequence:    1,
	}
	signed, err := LocalSigner{}.Sign(tx, wallet)
	require.NoError(t, err)

	raw, err := hex.DecodeString(signed.Blob)
	require.NoError(t, err)
	var payload txPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	payload.Amount = "2"
	tampered, err := json.Marshal(payload)
	require.NoError(t, err)

	ok, err := LocalSigner{}.Verify(&SignedTransaction{Blob: hex.EncodeToString(tampered)}, wallet)
	require.NoError(t, err)
	assert.False(t, ok)
}
