package main

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xpring-eng/xpring-go/internal"
	"github.com/xpring-eng/xpring-go/internal/legacynetworkclient"
	"github.com/xpring-eng/xpring-go/internal/rpcnetworkclient"
)

// initClient builds a submission client over the backend selected by cfg.
// Construction performs no network I/O; the first RPC happens on first use.
func initClient(cfg Config, log logrus.FieldLogger) (*internal.Client, error) {
	networkClient, err := initNetworkClient(cfg)
	if err != nil {
		return nil, err
	}
	return internal.NewClient(networkClient, internal.LocalSigner{}, log), nil
}

func initNetworkClient(cfg Config) (internal.NetworkClient, error) {
	if cfg.UseLegacy {
		if cfg.LegacyURL == "" {
			return nil, errors.New("legacy backend selected but no legacy URL configured")
		}
		return legacynetworkclient.New(cfg.LegacyURL), nil
	}
	if cfg.RPCURL == "" {
		return nil, errors.New("no RPC URL configured")
	}
	return rpcnetworkclient.New(cfg.RPCURL, nil), nil
}

// initWallet builds the sending wallet from config. Payments require both
// the address and its private key; read-only commands do not call this.
func initWallet(cfg Config) (*internal.Wallet, error) {
	if cfg.Address == "" || cfg.PrivateKey == "" {
		return nil, errors.New("sending requires XRPGO_ADDRESS and XRPGO_PRIVATE_KEY")
	}
	wallet, err := internal.NewWallet(cfg.Address, cfg.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "building wallet")
	}
	return wallet, nil
}

func initLogger(cfg Config) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
