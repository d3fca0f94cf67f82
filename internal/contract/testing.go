package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
)

// RecordedCall captures one ledger call made through the mock.
type RecordedCall struct {
	Method   string
	SignerID string
	Args     json.RawMessage
	Gas      uint64
	Deposit  string // decimal yocto; empty for views
}

// MockLedger is an in-memory ledger implementing Caller for tests. It keeps
// a small authoritative world (events, participation, unclaimed tickets) and
// applies the contract's rules to change calls.
type MockLedger struct {
	mu sync.Mutex

	NextEventID EventID
	Events      map[EventID]*JsonEvent
	Joined      map[EventID]map[AccountID]bool
	Unclaimed   map[AccountID][]EventPrize

	Calls []RecordedCall
	// Fail makes the named method return the given error once.
	Fail map[string]error
}

// NewMockLedger creates an empty mock ledger.
func NewMockLedger() *MockLedger {
	return &MockLedger{
		NextEventID: 1,
		Events:      make(map[EventID]*JsonEvent),
		Joined:      make(map[EventID]map[AccountID]bool),
		Unclaimed:   make(map[AccountID][]EventPrize),
		Fail:        make(map[string]error),
	}
}

// SeedEvent inserts an event directly, bypassing call recording.
func (m *MockLedger) SeedEvent(event JsonEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := event
	copied.Prizes = append([]Prize(nil), event.Prizes...)
	m.Events[event.ID] = &copied
	if event.ID >= m.NextEventID {
		m.NextEventID = event.ID + 1
	}
}

// SeedUnclaimed assigns unclaimed tickets to an account.
func (m *MockLedger) SeedUnclaimed(accountID AccountID, tickets ...EventPrize) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Unclaimed[accountID] = append(m.Unclaimed[accountID], tickets...)
}

// CallsTo returns the recorded calls for one method.
func (m *MockLedger) CallsTo(method string) []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RecordedCall
	for _, c := range m.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockLedger) failure(method string) error {
	if err, ok := m.Fail[method]; ok {
		delete(m.Fail, method)
		return err
	}
	return nil
}

// View implements Caller.
func (m *MockLedger) View(ctx context.Context, contractID, method string, args []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, RecordedCall{Method: method, Args: append(json.RawMessage(nil), args...)})
	if err := m.failure(method); err != nil {
		return nil, err
	}

	switch method {
	case "get_event":
		var a getEventArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		event, ok := m.Events[a.EventID]
		if !ok {
			return []byte("null"), nil
		}
		return json.Marshal(event)

	case "get_owner_events":
		var a accountEventsArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		events := []JsonEvent{}
		for _, e := range m.Events {
			if e.OwnerID == a.AccountID {
				events = append(events, *e)
			}
		}
		return json.Marshal(events)

	case "get_participant_events":
		var a accountEventsArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		events := []JsonEvent{}
		for id, joiners := range m.Joined {
			if joiners[a.AccountID] {
				if e, ok := m.Events[id]; ok {
					events = append(events, *e)
				}
			}
		}
		return json.Marshal(events)

	case "get_account_unclaimed_prizes":
		var a accountEventsArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		tickets := m.Unclaimed[a.AccountID]
		if tickets == nil {
			tickets = []EventPrize{}
		}
		return json.Marshal(tickets)

	case "is_user_joined_event":
		var a isUserJoinedEventArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		return json.Marshal(m.Joined[a.EventID][a.AccountID])
	}

	return nil, fmt.Errorf("mock: unknown view method %q", method)
}

// Change implements Caller.
func (m *MockLedger) Change(ctx context.Context, signerID, contractID, method string, args []byte, gas uint64, deposit *big.Int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dep := ""
	if deposit != nil {
		dep = deposit.String()
	}
	m.Calls = append(m.Calls, RecordedCall{
		Method:   method,
		SignerID: signerID,
		Args:     append(json.RawMessage(nil), args...),
		Gas:      gas,
		Deposit:  dep,
	})
	if err := m.failure(method); err != nil {
		return nil, err
	}

	switch method {
	case "add_event":
		var a AddEventArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		id := m.NextEventID
		m.NextEventID++
		m.Events[id] = &JsonEvent{
			ID:        id,
			Title:     a.Title,
			StartedAt: a.StartTime,
			EndedAt:   a.EndTime,
			Status:    StatusConfiguration,
			Prizes:    []Prize{},
			OwnerID:   AccountID(signerID),
		}
		return json.Marshal(id)

	case "set_event_time":
		var a SetEventTimeArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		event, ok := m.Events[a.EventID]
		if !ok {
			return nil, fmt.Errorf("mock: event %d not found", a.EventID)
		}
		event.StartedAt = a.StartTime
		event.EndedAt = a.EndTime
		return nil, nil

	case "set_event_visible":
		var a SetEventVisibleArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		event, ok := m.Events[a.EventID]
		if !ok {
			return nil, fmt.Errorf("mock: event %d not found", a.EventID)
		}
		event.Status = StatusVisible
		return nil, nil

	case "add_near_prize":
		var a AddNearPrizeArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		event, ok := m.Events[a.EventID]
		if !ok {
			return nil, fmt.Errorf("mock: event %d not found", a.EventID)
		}
		event.Prizes = append(event.Prizes, Prize{PrizeType: PrizeType{Amount: a.Amount}})
		return nil, nil

	case "join_event":
		var a JoinEventArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		event, ok := m.Events[a.EventID]
		if !ok {
			return nil, fmt.Errorf("mock: event %d not found", a.EventID)
		}
		if event.OwnerID == AccountID(signerID) {
			return nil, fmt.Errorf("mock: owner cannot join own event")
		}
		if m.Joined[a.EventID] == nil {
			m.Joined[a.EventID] = make(map[AccountID]bool)
		}
		if m.Joined[a.EventID][AccountID(signerID)] {
			return nil, fmt.Errorf("mock: already joined")
		}
		m.Joined[a.EventID][AccountID(signerID)] = true
		event.ParticipantsAmount++
		return nil, nil

	case "raffle_event_prizes":
		var a RaffleEventPrizesArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		event, ok := m.Events[a.EventID]
		if !ok {
			return nil, fmt.Errorf("mock: event %d not found", a.EventID)
		}
		var joiners []AccountID
		for acc := range m.Joined[a.EventID] {
			joiners = append(joiners, acc)
		}
		tickets := []EventPrize{}
		for i := range event.Prizes {
			if len(joiners) == 0 {
				break
			}
			winner := joiners[i%len(joiners)]
			event.Prizes[i].WinnerAccountID = winner
			ticket := EventPrize{EventID: a.EventID, PrizeIndex: uint64(i)}
			m.Unclaimed[winner] = append(m.Unclaimed[winner], ticket)
			tickets = append(tickets, ticket)
		}
		event.Status = StatusClaiming
		return json.Marshal(tickets)

	case "claim_prize":
		var a ClaimPrizeArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
		event, ok := m.Events[a.Prize.EventID]
		if !ok {
			return nil, fmt.Errorf("mock: event %d not found", a.Prize.EventID)
		}
		if a.Prize.PrizeIndex >= uint64(len(event.Prizes)) {
			return nil, fmt.Errorf("mock: prize %d out of range", a.Prize.PrizeIndex)
		}
		prize := &event.Prizes[a.Prize.PrizeIndex]
		if prize.WinnerAccountID != AccountID(signerID) {
			return nil, fmt.Errorf("mock: %s is not the winner", signerID)
		}
		if prize.Claimed {
			return nil, fmt.Errorf("mock: prize already claimed")
		}
		prize.Claimed = true
		remaining := m.Unclaimed[AccountID(signerID)][:0]
		for _, t := range m.Unclaimed[AccountID(signerID)] {
			if t != a.Prize {
				remaining = append(remaining, t)
			}
		}
		m.Unclaimed[AccountID(signerID)] = remaining
		return nil, nil
	}

	return nil, fmt.Errorf("mock: unknown change method %q", method)
}
