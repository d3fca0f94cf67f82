// Package stores holds the reactive entity caches of the raffler client:
// accounts, auth session, contract bindings, events, and reward tickets.
// The ledger is the source of truth; stores keep a locally consistent view
// and notify observers after every mutation.
package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/near"
	"github.com/raffle-labs/raffler-go/pkg/logger"
	"github.com/raffle-labs/raffler-go/pkg/observable"
)

// Account is a cached ledger account with its last known balance.
type Account struct {
	ID contract.AccountID

	mu           sync.RWMutex
	yoctoBalance string // empty until refreshed
}

// YoctoBalance returns the raw balance string, empty when unknown.
func (a *Account) YoctoBalance() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.yoctoBalance
}

// SetYoctoBalance replaces the raw balance.
func (a *Account) SetYoctoBalance(balance string) {
	a.mu.Lock()
	a.yoctoBalance = balance
	a.mu.Unlock()
}

// BalanceInNear formats the balance for display with 3 fraction digits.
// Empty when the balance has not been loaded yet.
func (a *Account) BalanceInNear() string {
	yocto := a.YoctoBalance()
	if yocto == "" {
		return ""
	}
	formatted, err := near.FormatNearAmount(yocto, 3)
	if err != nil {
		return ""
	}
	return formatted
}

// BalanceFetcher reads account balances from the ledger.
type BalanceFetcher interface {
	ViewAccount(ctx context.Context, accountID string) (string, error)
}

// AccountStore maps account ids to cached account entities. Entries are
// never deleted; the cache grows monotonically within a session.
type AccountStore struct {
	mu       sync.RWMutex
	balances BalanceFetcher
	accounts map[contract.AccountID]*Account

	emitter *observable.Emitter
	log     *logger.Logger
}

// NewAccountStore creates an empty account cache.
func NewAccountStore(balances BalanceFetcher, log *logger.Logger) *AccountStore {
	return &AccountStore{
		balances: balances,
		accounts: make(map[contract.AccountID]*Account),
		emitter:  observable.NewEmitter(),
		log:      log,
	}
}

// Subscribe registers an observer for cache mutations.
func (s *AccountStore) Subscribe(fn func()) func() {
	return s.emitter.Subscribe(fn)
}

// Get returns the cached account or nil.
func (s *AccountStore) Get(id contract.AccountID) *Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[id]
}

// Upsert ensures an entity exists for id and returns it. An existing entity
// keeps its balance.
func (s *AccountStore) Upsert(id contract.AccountID) *Account {
	s.mu.Lock()
	account, ok := s.accounts[id]
	if !ok {
		account = &Account{ID: id}
		s.accounts[id] = account
	}
	s.mu.Unlock()

	if !ok {
		s.emitter.Notify()
	}
	return account
}

// UpdateBalance refreshes the cached balance of id from the ledger.
func (s *AccountStore) UpdateBalance(ctx context.Context, id contract.AccountID) error {
	account := s.Get(id)
	if account == nil {
		return fmt.Errorf("account %q not cached", id)
	}

	balance, err := s.balances.ViewAccount(ctx, string(id))
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	account.SetYoctoBalance(balance)
	s.emitter.Notify()
	return nil
}
