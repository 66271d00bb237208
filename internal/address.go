package internal

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// rippleAlphabet is the base58 dictionary used by the XRP ledger. It differs
// from the Bitcoin dictionary in the ordering of the first characters.
const rippleAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

var xrplAlphabet = base58.NewAlphabet(rippleAlphabet)

// Address prefixes. Classic addresses carry a single version byte; X-addresses
// carry a two-byte network prefix selecting mainnet or testnet.
var (
	classicAddressPrefix = []byte{0x00}
	xAddressMainPrefix   = []byte{0x05, 0x44}
	xAddressTestPrefix   = []byte{0x04, 0x93}
)

const accountIDLength = 20

// encodeBase58Check appends a 4-byte double-sha256 checksum to payload and
// encodes the whole with the XRPL alphabet.
func encodeBase58Check(payload []byte) string {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	full := make([]byte, 0, len(payload)+4)
	full = append(full, payload...)
	full = append(full, second[:4]...)
	return base58.FastBase58EncodingAlphabet(full, xrplAlphabet)
}

// decodeBase58Check decodes s with the XRPL alphabet and verifies its
// trailing checksum, returning the payload without the checksum.
func decodeBase58Check(s string) ([]byte, error) {
	raw, err := base58.FastBase58DecodingAlphabet(s, xrplAlphabet)
	if err != nil {
		return nil, errors.Wrap(err, "decoding base58")
	}
	if len(raw) < 5 {
		return nil, errors.New("encoded payload too short")
	}
	payload, checksum := raw[:len(raw)-4], raw[len(raw)-4:]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(second[:4], checksum) {
		return nil, errors.New("checksum mismatch")
	}
	return payload, nil
}

// IsValidAddress reports whether address is a well-formed classic address or
// X-address. It performs no network I/O.
func IsValidAddress(address string) bool {
	return IsValidClassicAddress(address) || IsValidXAddress(address)
}

// IsValidClassicAddress reports whether address is a well-formed classic
// (r...) address.
func IsValidClassicAddress(address string) bool {
	payload, err := decodeBase58Check(address)
	if err != nil {
		return false
	}
	return len(payload) == len(classicAddressPrefix)+accountIDLength &&
		bytes.HasPrefix(payload, classicAddressPrefix)
}

// IsValidXAddress reports whether address is a well-formed X-address.
func IsValidXAddress(address string) bool {
	_, _, _, err := DecodeXAddress(address)
	return err == nil
}

// EncodeXAddress packs a classic address and an optional destination tag
// into an X-address on the selected network.
func EncodeXAddress(classicAddress string, tag *uint32, testnet bool) (string, error) {
	accountID, err := classicAddressAccountID(classicAddress)
	if err != nil {
		return "", err
	}
	prefix := xAddressMainPrefix
	if testnet {
		prefix = xAddressTestPrefix
	}
	payload := make([]byte, 0, len(prefix)+accountIDLength+9)
	payload = append(payload, prefix...)
	payload = append(payload, accountID...)
	tagBytes := make([]byte, 9)
	if tag != nil {
		tagBytes[0] = 0x01
		binary.LittleEndian.PutUint32(tagBytes[1:5], *tag)
	}
	payload = append(payload, tagBytes...)
	return encodeBase58Check(payload), nil
}

// DecodeXAddress unpacks an X-address into its classic address, optional
// destination tag, and network.
func DecodeXAddress(address string) (classicAddress string, tag *uint32, testnet bool, err error) {
	payload, err := decodeBase58Check(address)
	if err != nil {
		return "", nil, false, err
	}
	if len(payload) != 2+accountIDLength+9 {
		return "", nil, false, errors.New("unexpected X-address length")
	}
	switch {
	case bytes.HasPrefix(payload, xAddressMainPrefix):
		testnet = false
	case bytes.HasPrefix(payload, xAddressTestPrefix):
		testnet = true
	default:
		return "", nil, false, errors.New("unknown X-address prefix")
	}
	accountID := payload[2 : 2+accountIDLength]
	tagBytes := payload[2+accountIDLength:]
	switch tagBytes[0] {
	case 0x00:
		if !bytes.Equal(tagBytes[1:], make([]byte, 8)) {
			return "", nil, false, errors.New("nonzero tag with tag flag unset")
		}
	case 0x01:
		t := binary.LittleEndian.Uint32(tagBytes[1:5])
		if !bytes.Equal(tagBytes[5:], make([]byte, 4)) {
			return "", nil, false, errors.New("tag exceeds 32 bits")
		}
		tag = &t
	default:
		return "", nil, false, errors.New("unknown tag flag")
	}
	classic := make([]byte, 0, len(classicAddressPrefix)+accountIDLength)
	classic = append(classic, classicAddressPrefix...)
	classic = append(classic, accountID...)
	return encodeBase58Check(classic), tag, testnet, nil
}

// ResolveAddress normalizes a destination to a classic address plus optional
// destination tag. Classic addresses pass through with no tag.
func ResolveAddress(address string) (classicAddress string, tag *uint32, err error) {
	if IsValidClassicAddress(address) {
		return address, nil, nil
	}
	classicAddress, tag, _, err = DecodeXAddress(address)
	if err != nil {
		return "", nil, &InvalidAddressError{Address: address}
	}
	return classicAddress, tag, nil
}

func classicAddressAccountID(address string) ([]byte, error) {
	payload, err := decodeBase58Check(address)
	if err != nil {
		return nil, errors.Wrap(err, "decoding classic address")
	}
	if len(payload) != len(classicAddressPrefix)+accountIDLength || !bytes.HasPrefix(payload, classicAddressPrefix) {
		return nil, errors.New("not a classic address")
	}
	return payload[1:], nil
}

// encodeClassicAddress renders a 20-byte account ID as a classic address.
func encodeClassicAddress(accountID []byte) string {
	payload := make([]byte, 0, len(classicAddressPrefix)+accountIDLength)
	payload = append(payload, classicAddressPrefix...)
	payload = append(payload, accountID...)
	return encodeBase58Check(payload)
}
