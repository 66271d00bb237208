package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/xpring-eng/xpring-go/internal"
)

const (
	pollInitialInterval = 500 * time.Millisecond
	pollMaxInterval     = 3500 * time.Millisecond
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xpring",
		Short:         "Submit and inspect XRP ledger payments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("rpc-url", "http://localhost:5005", "primary JSON-RPC endpoint")
	root.PersistentFlags().String("legacy-url", "http://localhost:5005", "legacy command endpoint")
	root.PersistentFlags().Bool("legacy", false, "use the legacy backend")
	root.PersistentFlags().String("log-level", "info", "log level")

	root.AddCommand(newBalanceCmd(), newSendCmd(), newStatusCmd(), newLedgerCmd(), newServeCmd())
	return root
}

func setup(cmd *cobra.Command) (Config, *internal.Client, error) {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return Config{}, nil, err
	}
	client, err := initClient(cfg, initLogger(cfg))
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, client, nil
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance ADDRESS",
		Short: "Show an account's balance in drops",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			balance, err := client.GetBalance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", balance)
			return nil
		},
	}
}

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send DESTINATION DROPS",
		Short: "Send a payment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup(cmd)
			if err != nil {
				return err
			}
			wallet, err := initWallet(cfg)
			if err != nil {
				return err
			}
			drops, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return errors.Wrap(err, "parsing amount")
			}

			result, err := client.Send(cmd.Context(), wallet, internal.Drops(drops), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", result.EngineResult, result.Hash)

			wait, _ := cmd.Flags().GetBool("wait")
			if !wait {
				return nil
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")
			status, err := waitForValidation(cmd.Context(), client, result.Hash, timeout)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "validated %s\n", status.Result)
			return nil
		},
	}
	cmd.Flags().Bool("wait", false, "poll until the transaction is validated")
	cmd.Flags().Duration("timeout", 30*time.Second, "how long to wait for validation")
	return cmd
}

// waitForValidation polls transaction status until the ledger validates it
// or the deadline passes. Retry policy lives here, in the caller, never in
// the backends.
func waitForValidation(ctx context.Context, client *internal.Client, hash string, timeout time.Duration) (*internal.TransactionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = pollInitialInterval
	b.MaxInterval = pollMaxInterval

	var status *internal.TransactionStatus
	err := backoff.Retry(func() error {
		s, err := client.GetTransactionStatus(ctx, hash)
		if err != nil {
			var netErr *internal.NetworkError
			if errors.As(err, &netErr) && netErr.IsNotFound() {
				// Submitted transactions eventually appear; keep polling.
				return err
			}
			return backoff.Permanent(err)
		}
		if !s.Validated {
			return errors.New("transaction not yet validated")
		}
		status = s
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "waiting for transaction %s", hash)
	}
	return status, nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status HASH",
		Short: "Show a transaction's validation status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			status, err := client.GetTransactionStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "validated=%t result=%s\n", status.Validated, status.Result)
			return nil
		},
	}
}

func newLedgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Show the latest validated ledger index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			seq, err := client.GetLatestValidatedLedgerSequence(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", seq)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the payment API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := setup(cmd)
			if err != nil {
				return err
			}
			log := initLogger(cfg)
			// The wallet is optional in serve mode; without one the API is
			// read-only and payment requests are rejected.
			wallet, werr := initWallet(cfg)
			if werr != nil {
				log.WithError(werr).Warn("serving without a sending wallet")
				wallet = nil
			}
			addr := fmt.Sprintf(":%d", cfg.Port)
			log.WithField("addr", addr).Info("listening")
			server := &http.Server{
				Addr:              addr,
				Handler:           initRouter(client, wallet, log),
				ReadHeaderTimeout: 5 * time.Second,
			}
			return server.ListenAndServe()
		},
	}
	cmd.Flags().Int("port", 8000, "HTTP listen port")
	return cmd
}
