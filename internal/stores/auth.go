package stores

import (
	"context"
	"sync"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/wallet"
	"github.com/raffle-labs/raffler-go/pkg/logger"
	"github.com/raffle-labs/raffler-go/pkg/observable"
)

// AuthStore resolves the session identity from the wallet collaborator.
// There is exactly one active account per session; it is the join key for
// every ownership and participation predicate.
type AuthStore struct {
	mu             sync.RWMutex
	accountID      contract.AccountID // empty when signed out
	authInProgress bool
	ready          bool

	wallet   wallet.Wallet
	accounts *AccountStore
	emitter  *observable.Emitter
	log      *logger.Logger
}

// NewAuthStore creates a session store with no resolved account.
func NewAuthStore(w wallet.Wallet, accounts *AccountStore, log *logger.Logger) *AuthStore {
	return &AuthStore{
		wallet:   w,
		accounts: accounts,
		emitter:  observable.NewEmitter(),
		log:      log,
	}
}

// Subscribe registers an observer for session changes.
func (s *AuthStore) Subscribe(fn func()) func() {
	return s.emitter.Subscribe(fn)
}

// ActiveAccountID returns the active account id, empty when signed out.
func (s *AuthStore) ActiveAccountID() contract.AccountID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountID
}

// Account returns the active account entity, nil when signed out.
func (s *AuthStore) Account() *Account {
	id := s.ActiveAccountID()
	if id == "" {
		return nil
	}
	return s.accounts.Get(id)
}

// IsLoggedIn reports whether an active account entity exists.
func (s *AuthStore) IsLoggedIn() bool {
	return s.Account() != nil
}

// Ready reports whether the session state has been resolved at least once.
func (s *AuthStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// AuthInProgress reports whether a login/logout is currently running.
func (s *AuthStore) AuthInProgress() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authInProgress
}

// Login starts the wallet sign-in flow and re-resolves the session.
// A no-op when already logged in.
func (s *AuthStore) Login(ctx context.Context) error {
	if s.IsLoggedIn() {
		return nil
	}

	s.setAuthProgress(true)
	defer s.setAuthProgress(false)

	if err := s.wallet.RequestSignIn(ctx); err != nil {
		return err
	}
	return s.UpdateAuthAccount(ctx)
}

// Logout terminates the wallet session and re-resolves. A no-op on an
// unauthenticated session.
func (s *AuthStore) Logout(ctx context.Context) error {
	if s.ActiveAccountID() == "" {
		return nil
	}

	s.setAuthProgress(true)
	defer s.setAuthProgress(false)

	if err := s.wallet.RequestSignOut(ctx); err != nil {
		return err
	}
	return s.UpdateAuthAccount(ctx)
}

// UpdateAuthAccount queries the wallet for the signed-in account. Absent: the
// local session is cleared. Present: the account is upserted into the account
// cache, its balance refreshed, and it becomes active.
func (s *AuthStore) UpdateAuthAccount(ctx context.Context) error {
	accountID, err := s.wallet.SignedInAccountID(ctx)
	if err != nil {
		return err
	}

	if accountID == "" {
		s.resetAuthAccount()
		return nil
	}

	s.accounts.Upsert(accountID)
	if err := s.accounts.UpdateBalance(ctx, accountID); err != nil {
		s.log.WithError(err).
			WithField("account_id", accountID).
			Warn("failed to refresh account balance")
	}

	s.setAccountID(accountID)
	return nil
}

func (s *AuthStore) resetAuthAccount() {
	s.mu.Lock()
	s.accountID = ""
	s.ready = true
	s.mu.Unlock()
	s.emitter.Notify()
}

func (s *AuthStore) setAccountID(id contract.AccountID) {
	s.mu.Lock()
	s.accountID = id
	s.ready = true
	s.mu.Unlock()
	s.emitter.Notify()
}

func (s *AuthStore) setAuthProgress(inProgress bool) {
	s.mu.Lock()
	s.authInProgress = inProgress
	s.mu.Unlock()
	s.emitter.Notify()
}
