package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raffle-labs/raffler-go/internal/config"
	"github.com/raffle-labs/raffler-go/internal/wallet"
)

func testConfig() *config.Config {
	return &config.Config{
		RPCURL:      "https://rpc.testnet.near.org",
		ContractID:  "raffle.testnet",
		LogLevel:    "error",
		CallTimeout: time.Second,
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestNewWiresEveryStore(t *testing.T) {
	a, err := New(testConfig(), Options{})
	require.NoError(t, err)

	assert.NotNil(t, a.Client)
	assert.NotNil(t, a.Accounts)
	assert.NotNil(t, a.Auth)
	assert.NotNil(t, a.Bindings)
	assert.NotNil(t, a.Events)
	assert.NotNil(t, a.Rewards)
	assert.NotNil(t, a.Forms)
}

func TestStartResolvesInjectedWalletSession(t *testing.T) {
	a, err := New(testConfig(), Options{
		Wallet: wallet.NewStaticWallet("alice.testnet"),
	})
	require.NoError(t, err)

	// Signed-out wallet: the session resolves to no account without any
	// network traffic.
	require.NoError(t, a.Start(context.Background()))
	assert.True(t, a.Auth.Ready())
	assert.False(t, a.Auth.IsLoggedIn())
}

func TestAccountIDConfigYieldsSignedInWallet(t *testing.T) {
	cfg := testConfig()
	cfg.AccountID = "alice.testnet"

	a, err := New(cfg, Options{})
	require.NoError(t, err)

	id, err := a.Wallet.SignedInAccountID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice.testnet", string(id))
}
