package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config carries everything the raffle client needs to talk to the chain.
type Config struct {
	RPCURL      string        `validate:"required,url"`
	ContractID  string        `validate:"required"`
	AccountID   string        // empty means browsing without a signed-in account
	LogLevel    string        `validate:"omitempty,oneof=debug info warn error"`
	CallTimeout time.Duration `validate:"gte=0"`
}

const (
	defaultRPCURL      = "https://rpc.testnet.near.org"
	defaultCallTimeout = 30 * time.Second
)

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		RPCURL:      getenv("RAFFLER_RPC_URL", defaultRPCURL),
		ContractID:  strings.TrimSpace(os.Getenv("RAFFLER_CONTRACT_ID")),
		AccountID:   strings.TrimSpace(os.Getenv("NEAR_ACCOUNT_ID")),
		LogLevel:    getenv("RAFFLER_LOG_LEVEL", "info"),
		CallTimeout: defaultCallTimeout,
	}

	if raw := strings.TrimSpace(os.Getenv("RAFFLER_CALL_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse RAFFLER_CALL_TIMEOUT: %w", err)
		}
		cfg.CallTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
