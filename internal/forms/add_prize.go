package forms

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/near"
	"github.com/raffle-labs/raffler-go/internal/stores"
)

// MinNearPrizeAmount is the smallest allowed prize, 0.1 NEAR in yocto.
const MinNearPrizeAmount = "100000000000000000000000"

// AddEventPrizeForm collects a NEAR prize amount for an event.
type AddEventPrizeForm struct {
	*Form
	events *stores.EventStore

	Amount *Field[string]

	mu         sync.RWMutex
	submitting bool
}

// NewAddEventPrizeForm builds the form, defaulting to the minimum prize.
func NewAddEventPrizeForm(events *stores.EventStore) *AddEventPrizeForm {
	minYocto, _ := new(big.Int).SetString(MinNearPrizeAmount, 10)
	defaultAmount, _ := near.FormatNearAmount(MinNearPrizeAmount, -1)

	amount := NewField(FieldConfig[string]{
		DefaultValue: defaultAmount,
		Label:        "Prize amount",
		Required:     true,
		Validate: func(v string) string {
			yocto, err := near.ParseNearAmount(v)
			if err != nil {
				return "Amount could be only a number"
			}
			actual, ok := new(big.Int).SetString(yocto, 10)
			if !ok {
				return "Invalid number"
			}
			if actual.Cmp(minYocto) < 0 {
				formatted, _ := near.FormatNearAmount(MinNearPrizeAmount, 3)
				return fmt.Sprintf("Near prize couldn't be less than %sN", formatted)
			}
			return ""
		},
	})

	return &AddEventPrizeForm{
		Form:   NewForm(map[string]FormField{"amount": amount}),
		events: events,
		Amount: amount,
	}
}

// Submitting reports whether a submit is in progress.
func (f *AddEventPrizeForm) Submitting() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitting
}

func (f *AddEventPrizeForm) setSubmitting(v bool) {
	f.mu.Lock()
	f.submitting = v
	f.mu.Unlock()
}

// Submit attaches the prize to the event. The store reloads the event after
// the call because the prize list shape is ledger-assigned.
func (f *AddEventPrizeForm) Submit(ctx context.Context, event *stores.Event) error {
	if !f.IsValidFormValues() {
		return nil
	}

	f.setSubmitting(true)
	defer f.setSubmitting(false)

	yocto, err := near.ParseNearAmount(f.Amount.Value())
	if err != nil {
		return err
	}

	return f.events.AddNearPrize(ctx, event, contract.U128(yocto))
}
