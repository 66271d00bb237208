package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpring-eng/xpring-go/internal"
	"github.com/xpring-eng/xpring-go/internal/rpcnetworkclient"
)

// Integration coverage against a live rippled RPC endpoint, enabled by
// setting XRPL_RPC_URL (e.g. a local standalone node or a testnet server).

func TestIntegration_LedgerAndAccountInfo(t *testing.T) {
	url := os.Getenv("XRPL_RPC_URL")
	if url == "" {
		t.Skip("XRPL_RPC_URL environment variable not set, skipping test")
	}

	log := logrus.New()
	backend := rpcnetworkclient.New(url, nil)
	defer backend.Close()
	client := internal.NewClient(backend, internal.LocalSigner{}, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seq, err := client.GetLatestValidatedLedgerSequence(ctx)
	require.NoError(t, err)
	assert.NotZero(t, seq)

	// The genesis account exists on every network.
	balance, err := client.GetBalance(ctx, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh")
	require.NoError(t, err)
	assert.NotZero(t, balance)
}

func TestIntegration_UnknownAccountIsNotFound(t *testing.T) {
	url := os.Getenv("XRPL_RPC_URL")
	if url == "" {
		t.Skip("XRPL_RPC_URL environment variable not set, skipping test")
	}

	backend := rpcnetworkclient.New(url, nil)
	defer backend.Close()

	wallet, err := internal.GenerateWallet()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = backend.GetAccountInfo(ctx, internal.GetAccountInfoRequest{Account: wallet.Address})
	var netErr *internal.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.IsNotFound())
}
