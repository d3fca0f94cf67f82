package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/metrics"
	"github.com/raffle-labs/raffler-go/pkg/logger"
	"github.com/raffle-labs/raffler-go/pkg/observable"
)

// RewardStore maps account ids to their unclaimed reward tickets. Tickets
// are identity-matched pointers into the cache: claiming removes the exact
// ticket object that was loaded, so callers must pass cached tickets, not
// reconstructed equivalents.
type RewardStore struct {
	mu      sync.RWMutex
	buckets map[contract.AccountID][]*contract.EventPrize

	auth     *AuthStore
	events   *EventStore
	bindings *ContractCache
	inflight *inflightGuard
	emitter  *observable.Emitter
	log      *logger.Logger
}

// NewRewardStore creates an empty reward cache.
func NewRewardStore(auth *AuthStore, events *EventStore, bindings *ContractCache, log *logger.Logger) *RewardStore {
	return &RewardStore{
		buckets:  make(map[contract.AccountID][]*contract.EventPrize),
		auth:     auth,
		events:   events,
		bindings: bindings,
		inflight: newInflightGuard(),
		emitter:  observable.NewEmitter(),
		log:      log,
	}
}

// Subscribe registers an observer for cache mutations.
func (s *RewardStore) Subscribe(fn func()) func() {
	return s.emitter.Subscribe(fn)
}

// MyUnclaimedRewards returns the active account's ticket bucket, empty when
// unauthenticated. The returned slice is a copy; the tickets are the cached
// objects themselves.
func (s *RewardStore) MyUnclaimedRewards() []*contract.EventPrize {
	account := s.auth.Account()
	if account == nil {
		return []*contract.EventPrize{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*contract.EventPrize{}, s.buckets[account.ID]...)
}

// LoadAccountUnclaimedRewards fetches the active account's unclaimed
// tickets, loads any referenced event that is not yet cached (in parallel,
// each failure logged independently), then appends the fetched tickets to
// the account's bucket. Appending is additive: repeated loads may produce
// duplicates, which is accepted behavior.
func (s *RewardStore) LoadAccountUnclaimedRewards(ctx context.Context) error {
	account := s.auth.Account()
	if account == nil {
		return nil
	}

	raffler := s.bindings.Raffler(account.ID)
	tickets, err := raffler.GetAccountUnclaimedPrizes(ctx, account.ID, nil)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, ticket := range tickets {
		if s.events.GetEvent(ticket.EventID) != nil {
			continue
		}
		wg.Add(1)
		go func(id contract.EventID) {
			defer wg.Done()
			if err := s.events.LoadEvent(ctx, id); err != nil {
				s.log.WithError(err).
					WithField("event_id", id).
					Warn("failed to load event referenced by reward")
			}
		}(ticket.EventID)
	}
	wg.Wait()

	loaded := make([]*contract.EventPrize, len(tickets))
	for i := range tickets {
		loaded[i] = &tickets[i]
	}

	s.mu.Lock()
	s.buckets[account.ID] = append(s.buckets[account.ID], loaded...)
	s.mu.Unlock()
	s.emitter.Notify()
	return nil
}

// ClaimReward submits the claim and, on success, removes the first ticket
// in the bucket that is the same object as the argument. A ticket is removed
// at most once per claim and never re-added within the session.
func (s *RewardStore) ClaimReward(ctx context.Context, ticket *contract.EventPrize) error {
	account := s.auth.Account()
	if account == nil {
		return ErrNoActiveAccount
	}

	key := fmt.Sprintf("claim_prize/%d/%d/%s", ticket.EventID, ticket.PrizeIndex, account.ID)
	if err := s.inflight.begin(key); err != nil {
		return err
	}
	defer s.inflight.end(key)

	raffler := s.bindings.Raffler(account.ID)
	err := raffler.ClaimPrize(ctx, contract.ClaimPrizeArgs{Prize: *ticket}, contract.CallOptions{})
	if err != nil {
		return err
	}

	s.removeTicket(account.ID, ticket)
	return nil
}

func (s *RewardStore) removeTicket(accountID contract.AccountID, ticket *contract.EventPrize) {
	s.mu.Lock()
	bucket := s.buckets[accountID]
	removed := false
	for i, t := range bucket {
		if t == ticket {
			s.buckets[accountID] = append(bucket[:i], bucket[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.emitter.Notify()
	}
}

// Reset clears all reward buckets. Called on logout.
func (s *RewardStore) Reset() {
	s.mu.Lock()
	s.buckets = make(map[contract.AccountID][]*contract.EventPrize)
	s.mu.Unlock()

	metrics.ObserveCacheReset()
	s.emitter.Notify()
}
