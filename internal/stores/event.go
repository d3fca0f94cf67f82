package stores

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/metrics"
	"github.com/raffle-labs/raffler-go/pkg/logger"
	"github.com/raffle-labs/raffler-go/pkg/observable"
)

// Deposit formulas from the contract's storage pricing. All values are
// yoctoNEAR decimal strings; arithmetic stays in big.Int.
var (
	storagePricePerByte = mustYocto("10000000000000000000")    // 0.00001 NEAR per byte
	createEventDeposit  = mustYocto("7500000000000000000000")  // fixed add_event storage deposit
	prizeStorageFee     = mustYocto("10000000000000000000000") // fixed add_near_prize storage fee
	rafflePrizeDeposit  = mustYocto("4500000000000000000000")  // per-prize raffle deposit
	joinBaseFee         = mustYocto("2750000000000000000000")  // fixed join_event base fee
)

func mustYocto(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid yocto constant " + s)
	}
	return v
}

// JoinEventDeposit computes the join_event deposit for an account id:
// per-byte storage price over the id plus struct overhead, doubled as a
// safety margin, plus the fixed base fee.
func JoinEventDeposit(accountID contract.AccountID) *big.Int {
	deposit := new(big.Int).Mul(storagePricePerByte, big.NewInt(int64(len(accountID)+4)))
	deposit.Add(deposit, joinBaseFee)
	deposit.Mul(deposit, big.NewInt(2))
	return deposit
}

// Event is the cached entity for one ledger event. Reloads replace the
// entity wholesale; optimistic writes patch only the fields an operation is
// known to change, never Status.
type Event struct {
	ID                 contract.EventID
	Title              string
	StartedAt          contract.TimestampMs
	EndedAt            contract.TimestampMs
	Status             contract.EventStatus
	Prizes             []contract.Prize
	ParticipantsAmount uint64
	OwnerID            contract.AccountID
}

func newEvent(json contract.JsonEvent) *Event {
	return &Event{
		ID:                 json.ID,
		Title:              json.Title,
		StartedAt:          json.StartedAt,
		EndedAt:            json.EndedAt,
		Status:             json.Status,
		Prizes:             append([]contract.Prize(nil), json.Prizes...),
		ParticipantsAmount: json.ParticipantsAmount,
		OwnerID:            json.OwnerID,
	}
}

// IsUserEventOwner reports whether accountID owns this event.
func (e *Event) IsUserEventOwner(accountID contract.AccountID) bool {
	return e.OwnerID == accountID
}

type ownedMemo struct {
	version uint64
	account contract.AccountID
	valid   bool
	result  []*Event
}

type predicateMemo struct {
	version uint64
	account contract.AccountID
	result  bool
}

// EventStore caches ledger events, tracks which ones the active account
// participates in, and issues event-related ledger calls through the bound
// contract client.
type EventStore struct {
	mu            sync.RWMutex
	events        map[contract.EventID]*Event
	participation map[contract.EventID]struct{}
	version       uint64 // bumped on every mutation, keys the memos

	ownedMemo        ownedMemo
	participatedMemo ownedMemo
	ownerMemo        map[contract.EventID]predicateMemo
	participantMemo  map[contract.EventID]predicateMemo

	auth     *AuthStore
	bindings *ContractCache
	loads    singleflight.Group
	inflight *inflightGuard
	emitter  *observable.Emitter
	log      *logger.Logger
}

// NewEventStore creates an empty event cache.
func NewEventStore(auth *AuthStore, bindings *ContractCache, log *logger.Logger) *EventStore {
	return &EventStore{
		events:          make(map[contract.EventID]*Event),
		participation:   make(map[contract.EventID]struct{}),
		ownerMemo:       make(map[contract.EventID]predicateMemo),
		participantMemo: make(map[contract.EventID]predicateMemo),
		auth:            auth,
		bindings:        bindings,
		inflight:        newInflightGuard(),
		emitter:         observable.NewEmitter(),
		log:             log,
	}
}

// Subscribe registers an observer for cache mutations.
func (s *EventStore) Subscribe(fn func()) func() {
	return s.emitter.Subscribe(fn)
}

func (s *EventStore) bound() *contract.Raffler {
	return s.bindings.Raffler(s.auth.ActiveAccountID())
}

// GetEvent is a pure cache lookup, nil on miss. Safe to call from derived
// view computations; never touches the network.
func (s *EventStore) GetEvent(id contract.EventID) *Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events[id]
}

// AllEvents returns every cached event ordered by id.
func (s *EventStore) AllEvents() []*Event {
	s.mu.RLock()
	events := make([]*Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events
}

func (s *EventStore) upsert(json contract.JsonEvent) {
	s.mu.Lock()
	s.events[json.ID] = newEvent(json)
	s.version++
	s.mu.Unlock()
	s.emitter.Notify()
}

func (s *EventStore) markParticipated(id contract.EventID) {
	s.mu.Lock()
	s.participation[id] = struct{}{}
	s.version++
	s.mu.Unlock()
	s.emitter.Notify()
}

// Reset clears all cached events and participation markers. Called on
// logout.
func (s *EventStore) Reset() {
	s.mu.Lock()
	s.events = make(map[contract.EventID]*Event)
	s.participation = make(map[contract.EventID]struct{})
	s.version++
	s.mu.Unlock()

	metrics.ObserveCacheReset()
	s.emitter.Notify()
}

// LoadEvent fetches the authoritative event by id and replaces the cached
// entity wholesale. A missing id is a soft failure: a warning, an unchanged
// cache, and a nil error, because callers routinely probe unknown ids.
// Concurrent loads of the same id are coalesced.
func (s *EventStore) LoadEvent(ctx context.Context, id contract.EventID) error {
	_, err, _ := s.loads.Do(strconv.FormatUint(uint64(id), 10), func() (interface{}, error) {
		event, err := s.bound().GetEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		if event == nil {
			s.log.WithField("event_id", id).Warnf("couldn't find an event with id '%d'", id)
			return nil, nil
		}
		s.upsert(*event)
		return nil, nil
	})
	return err
}

// LoadOwnedEvents fetches the active account's owned events and upserts
// each into the cache.
func (s *EventStore) LoadOwnedEvents(ctx context.Context) error {
	accountID := s.auth.ActiveAccountID()

	events, err := s.bound().GetOwnerEvents(ctx, accountID, nil)
	if err != nil {
		return err
	}
	for _, e := range events {
		s.upsert(e)
	}
	return nil
}

// LoadParticipatedEvents fetches the events the active account joined,
// upserting each and marking it as participated.
func (s *EventStore) LoadParticipatedEvents(ctx context.Context) error {
	accountID := s.auth.ActiveAccountID()

	events, err := s.bound().GetParticipantEvents(ctx, accountID, nil)
	if err != nil {
		return err
	}
	for _, e := range events {
		s.upsert(e)
		s.markParticipated(e.ID)
	}
	return nil
}

// LoadEventParticipatingStatus probes the ledger for whether the active
// account joined the event and marks participation on a positive answer.
func (s *EventStore) LoadEventParticipatingStatus(ctx context.Context, id contract.EventID) error {
	account := s.auth.Account()
	if account == nil {
		return nil
	}

	joined, err := s.bound().IsUserJoinedEvent(ctx, account.ID, id)
	if err != nil {
		return err
	}
	if joined {
		s.markParticipated(id)
	}
	return nil
}

// CreateEvent submits an event creation with the fixed storage deposit and
// returns the ledger-assigned id. The created event is not inserted into the
// cache; callers reload or navigate.
func (s *EventStore) CreateEvent(ctx context.Context, args contract.AddEventArgs) (contract.EventID, error) {
	accountID := s.auth.ActiveAccountID()
	if accountID == "" {
		return 0, ErrNoActiveAccount
	}

	key := fmt.Sprintf("add_event/%s", accountID)
	if err := s.inflight.begin(key); err != nil {
		return 0, err
	}
	defer s.inflight.end(key)

	return s.bound().AddEvent(ctx, args, contract.CallOptions{
		AttachedDeposit: createEventDeposit,
	})
}

// SetEventTime updates the event timeline on the ledger and then patches
// the cached entity's StartedAt/EndedAt optimistically, keeping the UI
// snappy until a confirming reload is triggered elsewhere.
func (s *EventStore) SetEventTime(ctx context.Context, event *Event, startTime, endTime contract.TimestampMs) error {
	accountID := s.auth.ActiveAccountID()
	if accountID == "" {
		return ErrNoActiveAccount
	}

	key := fmt.Sprintf("set_event_time/%d/%s", event.ID, accountID)
	if err := s.inflight.begin(key); err != nil {
		return err
	}
	defer s.inflight.end(key)

	err := s.bound().SetEventTime(ctx, contract.SetEventTimeArgs{
		EventID:   event.ID,
		StartTime: startTime,
		EndTime:   endTime,
	}, contract.CallOptions{})
	if err != nil {
		return err
	}

	s.mu.Lock()
	event.StartedAt = startTime
	event.EndedAt = endTime
	s.version++
	s.mu.Unlock()
	s.emitter.Notify()
	return nil
}

// AddNearPrize attaches a NEAR prize. The deposit covers the prize amount
// plus the fixed storage fee. The prize list shape is ledger-assigned, so the
// event is fully reloaded instead of patched.
func (s *EventStore) AddNearPrize(ctx context.Context, event *Event, amount contract.U128) error {
	accountID := s.auth.ActiveAccountID()
	if accountID == "" {
		return ErrNoActiveAccount
	}

	prize, ok := new(big.Int).SetString(string(amount), 10)
	if !ok {
		return fmt.Errorf("invalid prize amount %q", amount)
	}

	key := fmt.Sprintf("add_near_prize/%d/%s", event.ID, accountID)
	if err := s.inflight.begin(key); err != nil {
		return err
	}
	defer s.inflight.end(key)

	err := s.bound().AddNearPrize(ctx, contract.AddNearPrizeArgs{
		EventID: event.ID,
		Amount:  amount,
	}, contract.CallOptions{
		AttachedDeposit: new(big.Int).Add(prize, prizeStorageFee),
	})
	if err != nil {
		return err
	}

	return s.LoadEvent(ctx, event.ID)
}

// SetEventVisible submits the visibility transition and reloads the event to
// pick up the new status.
func (s *EventStore) SetEventVisible(ctx context.Context, id contract.EventID) error {
	accountID := s.auth.ActiveAccountID()

	key := fmt.Sprintf("set_event_visible/%d/%s", id, accountID)
	if err := s.inflight.begin(key); err != nil {
		return err
	}
	defer s.inflight.end(key)

	err := s.bound().SetEventVisible(ctx, contract.SetEventVisibleArgs{EventID: id}, contract.CallOptions{})
	if err != nil {
		return err
	}

	return s.LoadEvent(ctx, id)
}

// RaffleEventPrizes triggers the draw, attaching a deposit that scales
// linearly with the prize count, then reloads the event.
func (s *EventStore) RaffleEventPrizes(ctx context.Context, id contract.EventID, prizeCount int) error {
	accountID := s.auth.ActiveAccountID()

	key := fmt.Sprintf("raffle_event_prizes/%d/%s", id, accountID)
	if err := s.inflight.begin(key); err != nil {
		return err
	}
	defer s.inflight.end(key)

	deposit := new(big.Int).Mul(rafflePrizeDeposit, big.NewInt(int64(prizeCount)))
	_, err := s.bound().RaffleEventPrizes(ctx, contract.RaffleEventPrizesArgs{EventID: id}, contract.CallOptions{
		AttachedDeposit: deposit,
	})
	if err != nil {
		return err
	}

	return s.LoadEvent(ctx, id)
}

// JoinEvent registers the active account as a participant, attaching the
// size-dependent storage deposit. On success the event is marked as
// participated locally; no reload.
func (s *EventStore) JoinEvent(ctx context.Context, event *Event) error {
	account := s.auth.Account()
	if account == nil {
		return ErrNoActiveAccount
	}

	key := fmt.Sprintf("join_event/%d/%s", event.ID, account.ID)
	if err := s.inflight.begin(key); err != nil {
		return err
	}
	defer s.inflight.end(key)

	err := s.bound().JoinEvent(ctx, contract.JoinEventArgs{EventID: event.ID}, contract.CallOptions{
		AttachedDeposit: JoinEventDeposit(account.ID),
	})
	if err != nil {
		return err
	}

	s.markParticipated(event.ID)
	return nil
}

// OwnedEvents returns the active account's events. Referentially stable
// while the cache and session are unchanged.
func (s *EventStore) OwnedEvents() []*Event {
	account := s.auth.Account()
	if account == nil {
		return []*Event{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownedMemo.valid && s.ownedMemo.version == s.version && s.ownedMemo.account == account.ID {
		return s.ownedMemo.result
	}

	owned := []*Event{}
	for _, e := range s.eventsByIDLocked() {
		if e.IsUserEventOwner(account.ID) {
			owned = append(owned, e)
		}
	}
	s.ownedMemo = ownedMemo{version: s.version, account: account.ID, valid: true, result: owned}
	return owned
}

// ParticipatedEvents returns the cached events marked as participated.
func (s *EventStore) ParticipatedEvents() []*Event {
	account := s.auth.Account()
	if account == nil {
		return []*Event{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.participatedMemo.valid && s.participatedMemo.version == s.version && s.participatedMemo.account == account.ID {
		return s.participatedMemo.result
	}

	participated := []*Event{}
	for _, e := range s.eventsByIDLocked() {
		if _, ok := s.participation[e.ID]; ok {
			participated = append(participated, e)
		}
	}
	s.participatedMemo = ownedMemo{version: s.version, account: account.ID, valid: true, result: participated}
	return participated
}

// AreYouOwnerOfEvent reports whether the active account owns the cached
// event. False, never an error, when unauthenticated or the event is absent.
func (s *EventStore) AreYouOwnerOfEvent(id contract.EventID) bool {
	account := s.auth.Account()
	if account == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if memo, ok := s.ownerMemo[id]; ok && memo.version == s.version && memo.account == account.ID {
		return memo.result
	}

	result := false
	if event, ok := s.events[id]; ok {
		result = event.IsUserEventOwner(account.ID)
	}
	s.ownerMemo[id] = predicateMemo{version: s.version, account: account.ID, result: result}
	return result
}

// AreYouParticipatingAtEvent reports whether the active account joined the
// cached event.
func (s *EventStore) AreYouParticipatingAtEvent(id contract.EventID) bool {
	account := s.auth.Account()
	if account == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if memo, ok := s.participantMemo[id]; ok && memo.version == s.version && memo.account == account.ID {
		return memo.result
	}

	result := false
	if _, ok := s.events[id]; ok {
		_, result = s.participation[id]
	}
	s.participantMemo[id] = predicateMemo{version: s.version, account: account.ID, result: result}
	return result
}

func (s *EventStore) eventsByIDLocked() []*Event {
	events := make([]*Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events
}
