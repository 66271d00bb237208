package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything the CLI and HTTP glue need to build a client.
// Values come from flags, XRPGO_* environment variables, or an optional
// xpring.yaml in the working directory, in that order of precedence.
type Config struct {
	// RPCURL is the primary JSON-RPC endpoint.
	RPCURL string
	// LegacyURL is the legacy command endpoint used when UseLegacy is set.
	LegacyURL string
	// UseLegacy selects the backward-compatible backend.
	UseLegacy bool

	// Address and PrivateKey identify the sending wallet for payments.
	Address    string
	PrivateKey string

	// Port is the HTTP listen port for serve mode.
	Port int
	// LogLevel is a logrus level name.
	LogLevel string
}

func loadConfig(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("XRPGO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc-url", "http://localhost:5005")
	v.SetDefault("legacy-url", "http://localhost:5005")
	v.SetDefault("port", 8000)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, errors.Wrap(err, "binding flags")
		}
	}

	v.SetConfigName("xpring")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "reading config file")
		}
	}

	return Config{
		RPCURL:     v.GetString("rpc-url"),
		LegacyURL:  v.GetString("legacy-url"),
		UseLegacy:  v.GetBool("legacy"),
		Address:    v.GetString("address"),
		PrivateKey: v.GetString("private-key"),
		Port:       v.GetInt("port"),
		LogLevel:   v.GetString("log-level"),
	}, nil
}
