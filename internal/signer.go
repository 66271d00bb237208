package internal

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // XRPL account IDs are defined over RIPEMD-160
)

// Signing hash prefixes, per the XRPL serialization rules.
var (
	signingPrefix = []byte{0x53, 0x54, 0x58, 0x00} // "STX\0"
	txIDPrefix    = []byte{0x54, 0x58, 0x4E, 0x00} // "TXN\0"
)

// Wallet holds the key material for one sending account.
type Wallet struct {
	// Address is the account's classic address.
	Address string

	privateKey *btcec.PrivateKey
}

// NewWallet builds a wallet from a classic address and a hex-encoded
// secp256k1 private key. The address must match the key.
func NewWallet(address, privateKeyHex string) (*Wallet, error) {
	if !IsValidClassicAddress(address) {
		return nil, &InvalidAddressError{Address: address}
	}
	raw, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, errors.Wrap(err, "decoding private key")
	}
	if len(raw) != 32 {
		return nil, errors.New("private key must be 32 bytes")
	}
	key, _ := btcec.PrivKeyFromBytes(raw)
	if derived := AddressFromPublicKey(key.PubKey()); derived != address {
		return nil, errors.Errorf("address %s does not match private key (derived %s)", address, derived)
	}
	return &Wallet{Address: address, privateKey: key}, nil
}

// GenerateWallet creates a wallet with a fresh random key.
func GenerateWallet() (*Wallet, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generating private key")
	}
	return &Wallet{Address: AddressFromPublicKey(key.PubKey()), privateKey: key}, nil
}

// PublicKeyHex returns the wallet's compressed public key, hex encoded, as
// it appears in the SigningPubKey transaction field.
func (w *Wallet) PublicKeyHex() string {
	return strings.ToUpper(hex.EncodeToString(w.privateKey.PubKey().SerializeCompressed()))
}

// AddressFromPublicKey derives the classic address for a secp256k1 public
// key: ripemd160(sha256(compressed pubkey)) wrapped in base58check.
func AddressFromPublicKey(pub *btcec.PublicKey) string {
	inner := sha256.Sum256(pub.SerializeCompressed())
	h := ripemd160.New()
	h.Write(inner[:])
	return encodeClassicAddress(h.Sum(nil))
}

// Signer turns an assembled transaction and a wallet into a signed
// transaction. Implementations may fail; the client wraps any failure in a
// SigningFailureError.
type Signer interface {
	Sign(tx *Transaction, wallet *Wallet) (*SignedTransaction, error)
}

// LocalSigner signs transactions in-process with the wallet's secp256k1 key.
type LocalSigner struct{}

// txPayload is the serialized transaction form the signature covers. Field
// names follow the ledger's canonical transaction JSON.
type txPayload struct {
	TransactionType string  `json:"TransactionType"`
	Account         string  `json:"Account"`
	Destination     string  `json:"Destination"`
	DestinationTag  *uint32 `json:"DestinationTag,omitempty"`
	Amount          string  `json:"Amount"`
	Fee             string  `json:"Fee"`
	Sequence        uint32  `json:"Sequence"`
	SigningPubKey   string  `json:"SigningPubKey"`
	TxnSignature    string  `json:"TxnSignature,omitempty"`
	Memos           []Memo  `json:"Memos,omitempty"`
}

// Sign serializes the transaction, signs its hash, and returns the signed
// blob with its transaction hash.
func (LocalSigner) Sign(tx *Transaction, wallet *Wallet) (*SignedTransaction, error) {
	if tx == nil {
		return nil, errors.New("no transaction to sign")
	}
	if wallet == nil || wallet.privateKey == nil {
		return nil, errors.New("wallet has no private key")
	}
	payload := txPayload{
		TransactionType: "Payment",
		Account:         tx.Account,
		Destination:     tx.Destination,
		DestinationTag:  tx.DestinationTag,
		Amount:          strconv.FormatUint(uint64(tx.Amount), 10),
		Fee:             strconv.FormatUint(uint64(tx.Fee), 10),
		Sequence:        tx.Sequence,
		SigningPubKey:   wallet.PublicKeyHex(),
		Memos:           tx.Memos,
	}
	unsigned, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "serializing transaction")
	}
	digest := signingHash(signingPrefix, unsigned)
	sig := ecdsa.Sign(wallet.privateKey, digest)
	payload.TxnSignature = strings.ToUpper(hex.EncodeToString(sig.Serialize()))

	signed, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "serializing signed transaction")
	}
	return &SignedTransaction{
		Blob: strings.ToUpper(hex.EncodeToString(signed)),
		Hash: strings.ToUpper(hex.EncodeToString(signingHash(txIDPrefix, signed))),
	}, nil
}

// Verify checks a LocalSigner signature against the wallet's public key.
// Used by tests and by callers that want to sanity-check a blob before
// submission.
func (LocalSigner) Verify(signed *SignedTransaction, wallet *Wallet) (bool, error) {
	raw, err := hex.DecodeString(signed.Blob)
	if err != nil {
		return false, errors.Wrap(err, "decoding blob")
	}
	var payload txPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false, errors.Wrap(err, "decoding transaction payload")
	}
	sigHex := payload.TxnSignature
	payload.TxnSignature = ""
	unsigned, err := json.Marshal(payload)
	if err != nil {
		return false, errors.Wrap(err, "reserializing transaction")
	}
	sigBytes, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, errors.Wrap(err, "decoding signature")
	}
	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return false, errors.Wrap(err, "parsing signature")
	}
	return sig.Verify(signingHash(signingPrefix, unsigned), wallet.privateKey.PubKey()), nil
}

// signingHash is the first half of sha512 over prefix||payload.
func signingHash(prefix, payload []byte) []byte {
	h := sha512.New()
	h.Write(prefix)
	h.Write(payload)
	return h.Sum(nil)[:sha512.Size/2]
}
