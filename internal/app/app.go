// Package app wires the chain client, stores, and forms into one root
// object mirroring the lifetime of a user session.
package app

import (
	"context"
	"fmt"

	"github.com/raffle-labs/raffler-go/internal/config"
	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/forms"
	"github.com/raffle-labs/raffler-go/internal/near"
	"github.com/raffle-labs/raffler-go/internal/stores"
	"github.com/raffle-labs/raffler-go/internal/wallet"
	"github.com/raffle-labs/raffler-go/pkg/logger"
)

// Application ties the stores together and manages their lifecycle. All
// members share a single chain client and one auth session.
type Application struct {
	log *logger.Logger

	Client   *near.Client
	Wallet   wallet.Wallet
	Accounts *stores.AccountStore
	Auth     *stores.AuthStore
	Bindings *stores.ContractCache
	Events   *stores.EventStore
	Rewards  *stores.RewardStore
	Forms    *forms.Set
}

// Options allow tests and embedders to substitute collaborators. Nil fields
// fall back to defaults built from the config.
type Options struct {
	Wallet wallet.Wallet
	Signer near.Signer
	Logger *logger.Logger
}

// New builds a fully initialised application from the config.
func New(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.New("app", logger.Config{Level: cfg.LogLevel})
	}

	client, err := near.NewClient(near.Config{
		RPCURL:  cfg.RPCURL,
		Timeout: cfg.CallTimeout,
		Signer:  opts.Signer,
		Logger:  log.WithField("component", "near-client"),
	})
	if err != nil {
		return nil, fmt.Errorf("build chain client: %w", err)
	}

	w := opts.Wallet
	if w == nil {
		if cfg.AccountID != "" {
			w = wallet.NewSignedInWallet(contract.AccountID(cfg.AccountID))
		} else {
			w = wallet.NewStaticWallet("")
		}
	}

	accounts := stores.NewAccountStore(client, log)
	auth := stores.NewAuthStore(w, accounts, log)
	bindings := stores.NewContractCache(client, cfg.ContractID)
	events := stores.NewEventStore(auth, bindings, log)
	rewards := stores.NewRewardStore(auth, events, bindings, log)

	return &Application{
		log:      log,
		Client:   client,
		Wallet:   w,
		Accounts: accounts,
		Auth:     auth,
		Bindings: bindings,
		Events:   events,
		Rewards:  rewards,
		Forms:    forms.NewSet(events, log),
	}, nil
}

// Start resolves the wallet session so ownership and participation
// predicates have an identity to key on.
func (a *Application) Start(ctx context.Context) error {
	if err := a.Auth.UpdateAuthAccount(ctx); err != nil {
		return fmt.Errorf("resolve wallet session: %w", err)
	}
	if id := a.Auth.ActiveAccountID(); id != "" {
		a.log.WithField("account_id", id).Info("session resolved")
	} else {
		a.log.Info("no active session")
	}
	return nil
}
