// Package contract defines the raffler ledger contract surface: the entity
// types the contract serializes and a call client bound to a signer account.
package contract

// EventID identifies an event on the ledger.
type EventID uint64

// AccountID is a NEAR account identifier.
type AccountID string

// TimestampMs is a millisecond Unix timestamp.
type TimestampMs uint64

// U128 is the decimal string representation of a 128-bit integer amount in
// yoctoNEAR. Amounts are never handled as floats.
type U128 string

// EventStatus is the ledger-driven lifecycle state of an event. The client
// never self-transitions an event; it only reflects what reloads report.
type EventStatus string

const (
	// StatusConfiguration: owner edits timeline and prizes, invisible to others.
	StatusConfiguration EventStatus = "Configuration"
	// StatusVisible: discoverable, not yet started.
	StatusVisible EventStatus = "Visible"
	// StatusActive: current time within [started_at, ended_at), joining open.
	StatusActive EventStatus = "Active"
	// StatusRaffling: ended, winners not yet drawn.
	StatusRaffling EventStatus = "Raffling"
	// StatusClaiming: winners assigned, claims open.
	StatusClaiming EventStatus = "Claiming"
)

// PrizeType describes what a prize pays out.
type PrizeType struct {
	Amount U128 `json:"amount"`
}

// Prize is a single prize slot of an event, addressed by its index within
// the owning event.
type Prize struct {
	PrizeType       PrizeType `json:"prize_type"`
	WinnerAccountID AccountID `json:"winner_account_id,omitempty"`
	Claimed         bool      `json:"claimed"`
}

// JsonEvent is the wire shape of an event as the contract serializes it.
type JsonEvent struct {
	ID                 EventID     `json:"id"`
	Title              string      `json:"title"`
	StartedAt          TimestampMs `json:"started_at"`
	EndedAt            TimestampMs `json:"ended_at"`
	Status             EventStatus `json:"status"`
	Prizes             []Prize     `json:"prizes"`
	ParticipantsAmount uint64      `json:"participants_amount"`
	OwnerID            AccountID   `json:"owner_id"`
}

// EventPrize is a reward ticket: a reference to an unclaimed prize, not an
// owning copy of it.
type EventPrize struct {
	EventID    EventID `json:"event_id"`
	PrizeIndex uint64  `json:"prize_index"`
}

// Pagination bounds list reads.
type Pagination struct {
	Page  uint64 `json:"page"`
	Limit uint64 `json:"limit"`
}

// Argument shapes, one per contract method.

type AddEventArgs struct {
	Title     string      `json:"title"`
	StartTime TimestampMs `json:"start_time,omitempty"`
	EndTime   TimestampMs `json:"end_time,omitempty"`
}

type SetEventTimeArgs struct {
	EventID   EventID     `json:"event_id"`
	StartTime TimestampMs `json:"start_time"`
	EndTime   TimestampMs `json:"end_time"`
}

type SetEventVisibleArgs struct {
	EventID EventID `json:"event_id"`
}

type AddNearPrizeArgs struct {
	EventID EventID `json:"event_id"`
	Amount  U128    `json:"amount"`
}

type JoinEventArgs struct {
	EventID EventID `json:"event_id"`
}

type RaffleEventPrizesArgs struct {
	EventID EventID `json:"event_id"`
}

type ClaimPrizeArgs struct {
	Prize EventPrize `json:"prize"`
}

type accountEventsArgs struct {
	AccountID  AccountID   `json:"account_id"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type getEventArgs struct {
	EventID EventID `json:"event_id"`
}

type isUserJoinedEventArgs struct {
	AccountID AccountID `json:"account_id"`
	EventID   EventID   `json:"event_id"`
}
