// Package wallet defines the interface to the external wallet collaborator.
// The sign-in flow itself (browser redirect, key management) lives outside
// this module; only its observable result is consumed.
package wallet

import (
	"context"
	"sync"

	"github.com/raffle-labs/raffler-go/internal/contract"
)

// Wallet is the surface the auth layer consumes.
type Wallet interface {
	// SignedInAccountID returns the currently signed-in account, or empty
	// when no session exists.
	SignedInAccountID(ctx context.Context) (contract.AccountID, error)
	// RequestSignIn starts the external sign-in flow.
	RequestSignIn(ctx context.Context) error
	// RequestSignOut terminates the session.
	RequestSignOut(ctx context.Context) error
}

// StaticWallet is a wallet with a fixed account identity, toggled between
// signed in and signed out. The CLI uses it with an account from the
// environment; tests use it to script session state.
type StaticWallet struct {
	mu        sync.Mutex
	accountID contract.AccountID
	signedIn  bool
}

// NewStaticWallet creates a signed-out wallet for the given account.
func NewStaticWallet(accountID contract.AccountID) *StaticWallet {
	return &StaticWallet{accountID: accountID}
}

// NewSignedInWallet creates a wallet already holding a session.
func NewSignedInWallet(accountID contract.AccountID) *StaticWallet {
	return &StaticWallet{accountID: accountID, signedIn: true}
}

func (w *StaticWallet) SignedInAccountID(ctx context.Context) (contract.AccountID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.signedIn {
		return "", nil
	}
	return w.accountID, nil
}

func (w *StaticWallet) RequestSignIn(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signedIn = true
	return nil
}

func (w *StaticWallet) RequestSignOut(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signedIn = false
	return nil
}
