package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/raffle-labs/raffler-go/internal/metrics"
)

// DefaultFunctionCallGas is the gas attached to change calls unless
// overridden, matching the contract binding default of 30 Tgas.
const DefaultFunctionCallGas uint64 = 30_000_000_000_000

// Caller abstracts the transport beneath the contract binding. The NEAR
// JSON-RPC client implements it in production; tests use a mock ledger.
type Caller interface {
	// View executes a read-only contract method and returns its JSON result.
	View(ctx context.Context, contractID, method string, args []byte) ([]byte, error)
	// Change executes a state-changing contract method signed by signerID,
	// attaching gas and a yocto deposit, and returns its JSON result.
	Change(ctx context.Context, signerID, contractID, method string, args []byte, gas uint64, deposit *big.Int) ([]byte, error)
}

// CallOptions carries per-call gas and deposit overrides.
type CallOptions struct {
	Gas             uint64
	AttachedDeposit *big.Int
}

// Raffler is the contract call client bound to one signer account.
type Raffler struct {
	caller     Caller
	contractID string
	account    AccountID
}

// NewRaffler binds a caller to the raffler contract on behalf of account.
// An empty account is valid for view-only use.
func NewRaffler(caller Caller, contractID string, account AccountID) *Raffler {
	return &Raffler{
		caller:     caller,
		contractID: contractID,
		account:    account,
	}
}

// Account returns the signer account this binding is bound to.
func (r *Raffler) Account() AccountID {
	return r.account
}

func (r *Raffler) view(ctx context.Context, method string, args interface{}, out interface{}) error {
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal %s args: %w", method, err)
	}

	start := time.Now()
	result, err := r.caller.View(ctx, r.contractID, method, body)
	metrics.ObserveLedgerCall(method, "view", start, err)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return nil
}

func (r *Raffler) change(ctx context.Context, method string, args interface{}, opts CallOptions, out interface{}) error {
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal %s args: %w", method, err)
	}

	gas := opts.Gas
	if gas == 0 {
		gas = DefaultFunctionCallGas
	}
	deposit := opts.AttachedDeposit
	if deposit == nil {
		deposit = big.NewInt(0)
	}

	start := time.Now()
	result, err := r.caller.Change(ctx, string(r.account), r.contractID, method, body, gas, deposit)
	metrics.ObserveLedgerCall(method, "change", start, err)
	if err != nil {
		return err
	}

	if out == nil || len(result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return nil
}

// AddEvent creates an event and returns its ledger-assigned id.
func (r *Raffler) AddEvent(ctx context.Context, args AddEventArgs, opts CallOptions) (EventID, error) {
	var id EventID
	if err := r.change(ctx, "add_event", args, opts, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// SetEventTime updates an event's timeline.
func (r *Raffler) SetEventTime(ctx context.Context, args SetEventTimeArgs, opts CallOptions) error {
	return r.change(ctx, "set_event_time", args, opts, nil)
}

// SetEventVisible moves an event out of Configuration.
func (r *Raffler) SetEventVisible(ctx context.Context, args SetEventVisibleArgs, opts CallOptions) error {
	return r.change(ctx, "set_event_visible", args, opts, nil)
}

// AddNearPrize attaches a NEAR prize to an event.
func (r *Raffler) AddNearPrize(ctx context.Context, args AddNearPrizeArgs, opts CallOptions) error {
	return r.change(ctx, "add_near_prize", args, opts, nil)
}

// JoinEvent registers the signer as a participant.
func (r *Raffler) JoinEvent(ctx context.Context, args JoinEventArgs, opts CallOptions) error {
	return r.change(ctx, "join_event", args, opts, nil)
}

// RaffleEventPrizes draws winners and returns the assigned reward tickets.
func (r *Raffler) RaffleEventPrizes(ctx context.Context, args RaffleEventPrizesArgs, opts CallOptions) ([]EventPrize, error) {
	var tickets []EventPrize
	if err := r.change(ctx, "raffle_event_prizes", args, opts, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// ClaimPrize claims a won prize.
func (r *Raffler) ClaimPrize(ctx context.Context, args ClaimPrizeArgs, opts CallOptions) error {
	return r.change(ctx, "claim_prize", args, opts, nil)
}

// GetOwnerEvents lists events owned by an account.
func (r *Raffler) GetOwnerEvents(ctx context.Context, accountID AccountID, pagination *Pagination) ([]JsonEvent, error) {
	var events []JsonEvent
	err := r.view(ctx, "get_owner_events", accountEventsArgs{AccountID: accountID, Pagination: pagination}, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetParticipantEvents lists events an account participates in.
func (r *Raffler) GetParticipantEvents(ctx context.Context, accountID AccountID, pagination *Pagination) ([]JsonEvent, error) {
	var events []JsonEvent
	err := r.view(ctx, "get_participant_events", accountEventsArgs{AccountID: accountID, Pagination: pagination}, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent fetches one event. A missing id is a miss, not an error: the
// contract serializes null and the binding returns (nil, nil).
func (r *Raffler) GetEvent(ctx context.Context, id EventID) (*JsonEvent, error) {
	var event *JsonEvent
	if err := r.view(ctx, "get_event", getEventArgs{EventID: id}, &event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetAccountUnclaimedPrizes lists an account's unclaimed reward tickets.
func (r *Raffler) GetAccountUnclaimedPrizes(ctx context.Context, accountID AccountID, pagination *Pagination) ([]EventPrize, error) {
	var tickets []EventPrize
	err := r.view(ctx, "get_account_unclaimed_prizes", accountEventsArgs{AccountID: accountID, Pagination: pagination}, &tickets)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// IsUserJoinedEvent reports whether an account has joined an event.
func (r *Raffler) IsUserJoinedEvent(ctx context.Context, accountID AccountID, eventID EventID) (bool, error) {
	var joined bool
	err := r.view(ctx, "is_user_joined_event", isUserJoinedEventArgs{AccountID: accountID, EventID: eventID}, &joined)
	if err != nil {
		return false, err
	}
	return joined, nil
}
