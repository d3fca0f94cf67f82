package forms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/stores"
	"github.com/raffle-labs/raffler-go/internal/wallet"
	"github.com/raffle-labs/raffler-go/pkg/logger"
)

type fixedBalances struct{}

func (fixedBalances) ViewAccount(ctx context.Context, accountID string) (string, error) {
	return "5000000000000000000000000", nil
}

func newFormEnv(t *testing.T) (*contract.MockLedger, *stores.EventStore) {
	t.Helper()

	log := logger.NewDefault("test")
	ledger := contract.NewMockLedger()
	accounts := stores.NewAccountStore(fixedBalances{}, log)
	auth := stores.NewAuthStore(wallet.NewSignedInWallet("owner.testnet"), accounts, log)
	bindings := stores.NewContractCache(ledger, "raffle.testnet")
	events := stores.NewEventStore(auth, bindings, log)

	require.NoError(t, auth.UpdateAuthAccount(context.Background()))
	return ledger, events
}

func TestCreateEventFormDefaultsAreValid(t *testing.T) {
	_, events := newFormEnv(t)
	form := NewCreateEventForm(events)

	form.Title.SetValue("Launch raffle")
	form.HighlightErrorFields()
	assert.True(t, form.IsValidFormValues())
}

func TestCreateEventFormTitleBounds(t *testing.T) {
	_, events := newFormEnv(t)
	form := NewCreateEventForm(events)

	form.Title.SetValue("abc")
	assert.Equal(t, "Title length should be at least 4 symbols", form.Title.ErrorText())

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'x'
	}
	form.Title.SetValue(string(long))
	assert.Equal(t, "Title length should be maximum of 64 symbols", form.Title.ErrorText())
}

func TestCreateEventFormRejectsPastTimes(t *testing.T) {
	_, events := newFormEnv(t)
	form := NewCreateEventForm(events)

	form.StartedAt.SetValue(nowMs() - 1000)
	assert.Equal(t, "Start time couldn't be set before now", form.StartedAt.ErrorText())

	form.EndedAt.SetValue(nowMs() - 1000)
	assert.Equal(t, "End time couldn't be set before now", form.EndedAt.ErrorText())
}

func TestCreateEventFormSubmit(t *testing.T) {
	ledger, events := newFormEnv(t)
	form := NewCreateEventForm(events)

	form.Title.SetValue("Launch raffle")
	id, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contract.EventID(1), id)

	calls := ledger.CallsTo("add_event")
	require.Len(t, calls, 1)
	assert.Equal(t, "7500000000000000000000", calls[0].Deposit)
}

func TestCreateEventFormSubmitIsNoOpWhenInvalid(t *testing.T) {
	ledger, events := newFormEnv(t)
	form := NewCreateEventForm(events)

	form.Title.SetValue("ab")
	id, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contract.EventID(0), id)
	assert.Empty(t, ledger.CallsTo("add_event"))
}

func TestEditEventTimelineFormSubmit(t *testing.T) {
	ledger, events := newFormEnv(t)
	ledger.SeedEvent(contract.JsonEvent{ID: 1, Title: "Editable", Status: contract.StatusConfiguration, OwnerID: "owner.testnet"})
	require.NoError(t, events.LoadEvent(context.Background(), 1))

	form := NewEditEventTimelineForm(events, logger.NewDefault("test"))
	start := nowMs() + 3600_000
	end := nowMs() + 2*3600_000
	form.StartedAt.SetValue(start)
	form.EndedAt.SetValue(end)

	require.NoError(t, form.Submit(context.Background(), 1))
	assert.False(t, form.Submitting())

	event := events.GetEvent(1)
	assert.Equal(t, start, event.StartedAt)
	assert.Equal(t, end, event.EndedAt)

	require.Len(t, ledger.CallsTo("set_event_time"), 1)
	assert.NotEmpty(t, ledger.CallsTo("get_event"), "submit reloads the event")
}

func TestEditEventTimelineFormUnknownEventIsSoftFailure(t *testing.T) {
	ledger, events := newFormEnv(t)
	form := NewEditEventTimelineForm(events, logger.NewDefault("test"))

	form.StartedAt.SetValue(nowMs() + 3600_000)
	form.EndedAt.SetValue(nowMs() + 2*3600_000)

	require.NoError(t, form.Submit(context.Background(), 404))
	assert.Empty(t, ledger.CallsTo("set_event_time"))
}

func TestAddEventPrizeFormValidation(t *testing.T) {
	_, events := newFormEnv(t)
	form := NewAddEventPrizeForm(events)

	form.Amount.SetValue("not a number")
	assert.Equal(t, "Amount could be only a number", form.Amount.ErrorText())

	form.Amount.SetValue("0.05")
	assert.Equal(t, "Near prize couldn't be less than 0.1N", form.Amount.ErrorText())

	form.Amount.SetValue("0.1")
	assert.Empty(t, form.Amount.ErrorText())
}

func TestAddEventPrizeFormDefaultsToMinimum(t *testing.T) {
	_, events := newFormEnv(t)
	form := NewAddEventPrizeForm(events)

	assert.Equal(t, "0.1", form.Amount.Value())
}

func TestAddEventPrizeFormSubmit(t *testing.T) {
	ledger, events := newFormEnv(t)
	ledger.SeedEvent(contract.JsonEvent{ID: 1, Title: "Prized", Status: contract.StatusConfiguration, OwnerID: "owner.testnet"})
	require.NoError(t, events.LoadEvent(context.Background(), 1))

	form := NewAddEventPrizeForm(events)
	form.Amount.SetValue("2.5")

	require.NoError(t, form.Submit(context.Background(), events.GetEvent(1)))

	calls := ledger.CallsTo("add_near_prize")
	require.Len(t, calls, 1)
	// 2.5 NEAR prize plus the 0.01 NEAR storage fee.
	assert.Equal(t, "2510000000000000000000000", calls[0].Deposit)

	event := events.GetEvent(1)
	require.Len(t, event.Prizes, 1)
	assert.Equal(t, contract.U128("2500000000000000000000000"), event.Prizes[0].PrizeType.Amount)
}

func TestAddEventPrizeFormSubmitIsNoOpWhenInvalid(t *testing.T) {
	ledger, events := newFormEnv(t)
	form := NewAddEventPrizeForm(events)

	form.Amount.SetValue("0.01")
	require.NoError(t, form.Submit(context.Background(), &stores.Event{ID: 1}))
	assert.Empty(t, ledger.CallsTo("add_near_prize"))
}

func TestNewSetWiresEveryForm(t *testing.T) {
	_, events := newFormEnv(t)
	set := NewSet(events, logger.NewDefault("test"))

	assert.NotNil(t, set.CreateEvent)
	assert.NotNil(t, set.EditEventTimeline)
	assert.NotNil(t, set.AddEventPrize)
}
