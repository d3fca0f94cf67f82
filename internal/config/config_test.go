package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RAFFLER_CONTRACT_ID", "raffle.testnet")
	t.Setenv("RAFFLER_RPC_URL", "")
	t.Setenv("NEAR_ACCOUNT_ID", "")
	t.Setenv("RAFFLER_LOG_LEVEL", "")
	t.Setenv("RAFFLER_CALL_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultRPCURL, cfg.RPCURL)
	assert.Equal(t, "raffle.testnet", cfg.ContractID)
	assert.Empty(t, cfg.AccountID)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, defaultCallTimeout, cfg.CallTimeout)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("RAFFLER_RPC_URL", "https://rpc.mainnet.near.org")
	t.Setenv("RAFFLER_CONTRACT_ID", "raffle.near")
	t.Setenv("NEAR_ACCOUNT_ID", "alice.near")
	t.Setenv("RAFFLER_LOG_LEVEL", "debug")
	t.Setenv("RAFFLER_CALL_TIMEOUT", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.mainnet.near.org", cfg.RPCURL)
	assert.Equal(t, "raffle.near", cfg.ContractID)
	assert.Equal(t, "alice.near", cfg.AccountID)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.CallTimeout)
}

func TestLoadRequiresContractID(t *testing.T) {
	t.Setenv("RAFFLER_CONTRACT_ID", "")
	t.Setenv("RAFFLER_RPC_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("RAFFLER_CONTRACT_ID", "raffle.testnet")
	t.Setenv("RAFFLER_CALL_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := &Config{
		RPCURL:     "https://rpc.testnet.near.org",
		ContractID: "raffle.testnet",
		LogLevel:   "loud",
	}
	assert.Error(t, cfg.Validate())
}
