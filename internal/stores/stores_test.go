package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/wallet"
	"github.com/raffle-labs/raffler-go/pkg/logger"
)

func logTest() *logger.Logger {
	return logger.NewDefault("test")
}

// staticBalances is a BalanceFetcher with canned per-account balances.
type staticBalances map[string]string

func (b staticBalances) ViewAccount(ctx context.Context, accountID string) (string, error) {
	if amount, ok := b[accountID]; ok {
		return amount, nil
	}
	return "0", nil
}

// testEnv wires a full store set over a mock ledger. A non-empty accountID
// resolves to a signed-in session.
type testEnv struct {
	ledger   *contract.MockLedger
	wallet   *wallet.StaticWallet
	accounts *AccountStore
	auth     *AuthStore
	bindings *ContractCache
	events   *EventStore
	rewards  *RewardStore
}

func newTestEnv(t *testing.T, accountID contract.AccountID) *testEnv {
	t.Helper()

	log := logger.NewDefault("test")
	ledger := contract.NewMockLedger()

	var w *wallet.StaticWallet
	if accountID != "" {
		w = wallet.NewSignedInWallet(accountID)
	} else {
		w = wallet.NewStaticWallet("")
	}

	accounts := NewAccountStore(staticBalances{string(accountID): "5000000000000000000000000"}, log)
	auth := NewAuthStore(w, accounts, log)
	bindings := NewContractCache(ledger, "raffle.testnet")
	events := NewEventStore(auth, bindings, log)
	rewards := NewRewardStore(auth, events, bindings, log)

	require.NoError(t, auth.UpdateAuthAccount(context.Background()))

	return &testEnv{
		ledger:   ledger,
		wallet:   w,
		accounts: accounts,
		auth:     auth,
		bindings: bindings,
		events:   events,
		rewards:  rewards,
	}
}

func seedVisibleEvent(env *testEnv, id contract.EventID, owner contract.AccountID) contract.JsonEvent {
	event := contract.JsonEvent{
		ID:      id,
		Title:   "Seeded event",
		Status:  contract.StatusVisible,
		OwnerID: owner,
		Prizes:  []contract.Prize{{PrizeType: contract.PrizeType{Amount: "100000000000000000000000"}}},
	}
	env.ledger.SeedEvent(event)
	return event
}
