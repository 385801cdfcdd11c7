// Package config loads process configuration from the environment. It is
// intentionally small and stdlib-only: nothing in the retrieved example
// corpus reaches for a dedicated config library (spf13/viper shows up only
// as a transitive dependency of a Cosmos SDK CLI stack, not as a deliberate
// choice for a config this size) so os.Getenv plus explicit defaults is the
// idiom actually grounded here.
package config

import (
	"os"
	"strconv"
)

// Config holds the settings cmd/exchange needs to stand up the process.
type Config struct {
	ListenAddr          string
	Verbose             bool
	DefaultUnitDecimals int32
}

const (
	envListenAddr  = "EXCHANGE_LISTEN_ADDR"
	envVerbose     = "EXCHANGE_VERBOSE"
	envUnitDecimal = "EXCHANGE_DEFAULT_UNIT_DECIMALS"
)

// Load reads configuration from the environment, falling back to defaults
// for anything unset or unparsable.
func Load() Config {
	cfg := Config{
		ListenAddr:          ":8080",
		Verbose:             true,
		DefaultUnitDecimals: 2,
	}
	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envVerbose); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = b
		}
	}
	if v := os.Getenv(envUnitDecimal); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			cfg.DefaultUnitDecimals = int32(n)
		}
	}
	return cfg
}
