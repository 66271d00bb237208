// Package testutil provides helpers shared by this module's tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xpring-eng/xpring-go/internal"
)

// NewWallet generates a wallet with a fresh key for use in tests.
func NewWallet(t *testing.T) *internal.Wallet {
	t.Helper()
	wallet, err := internal.GenerateWallet()
	require.NoError(t, err)
	return wallet
}

// NewAddress generates a fresh, valid classic address with no usable key.
func NewAddress(t *testing.T) string {
	t.Helper()
	return NewWallet(t).Address
}
