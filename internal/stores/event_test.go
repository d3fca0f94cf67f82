package stores

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raffle-labs/raffler-go/internal/contract"
)

func TestLoadEventCachesWholesale(t *testing.T) {
	env := newTestEnv(t, "alice.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")

	require.NoError(t, env.events.LoadEvent(context.Background(), 1))

	event := env.events.GetEvent(1)
	require.NotNil(t, event)
	assert.Equal(t, "Seeded event", event.Title)
	assert.Equal(t, contract.StatusVisible, event.Status)
	require.Len(t, event.Prizes, 1)
}

func TestLoadEventMissLeavesCacheUntouched(t *testing.T) {
	env := newTestEnv(t, "alice.testnet")

	require.NoError(t, env.events.LoadEvent(context.Background(), 404))
	assert.Nil(t, env.events.GetEvent(404))
}

func TestGetEventNeverTouchesTheLedger(t *testing.T) {
	env := newTestEnv(t, "alice.testnet")

	env.events.GetEvent(9)
	assert.Empty(t, env.ledger.CallsTo("get_event"))
}

func TestCreateEventAttachesFixedDepositAndDoesNotCache(t *testing.T) {
	env := newTestEnv(t, "alice.testnet")

	id, err := env.events.CreateEvent(context.Background(), contract.AddEventArgs{Title: "Fresh"})
	require.NoError(t, err)
	assert.Equal(t, contract.EventID(1), id)

	// Not cached until an explicit reload.
	assert.Nil(t, env.events.GetEvent(id))

	calls := env.ledger.CallsTo("add_event")
	require.Len(t, calls, 1)
	assert.Equal(t, "7500000000000000000000", calls[0].Deposit)
	assert.Equal(t, "alice.testnet", calls[0].SignerID)
}

func TestCreateEventRequiresSession(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.events.CreateEvent(context.Background(), contract.AddEventArgs{Title: "Nope"})
	assert.ErrorIs(t, err, ErrNoActiveAccount)
	assert.Empty(t, env.ledger.CallsTo("add_event"))
}

func TestSetEventTimePatchesOptimistically(t *testing.T) {
	env := newTestEnv(t, "owner.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")
	require.NoError(t, env.events.LoadEvent(context.Background(), 1))

	event := env.events.GetEvent(1)
	require.NoError(t, env.events.SetEventTime(context.Background(), event, 1000, 2000))

	// Same entity object, patched fields, untouched status.
	assert.Same(t, event, env.events.GetEvent(1))
	assert.Equal(t, contract.TimestampMs(1000), event.StartedAt)
	assert.Equal(t, contract.TimestampMs(2000), event.EndedAt)
	assert.Equal(t, contract.StatusVisible, event.Status)
}

func TestAddNearPrizeDepositCoversAmountPlusStorageAndReloads(t *testing.T) {
	env := newTestEnv(t, "owner.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")
	require.NoError(t, env.events.LoadEvent(context.Background(), 1))

	event := env.events.GetEvent(1)
	require.NoError(t, env.events.AddNearPrize(context.Background(), event, "100000000000000000000000"))

	calls := env.ledger.CallsTo("add_near_prize")
	require.Len(t, calls, 1)
	// 0.1 NEAR prize + 0.01 NEAR storage fee.
	assert.Equal(t, "110000000000000000000000", calls[0].Deposit)

	// The reload replaced the entity; the prize list now has both prizes.
	reloaded := env.events.GetEvent(1)
	require.NotNil(t, reloaded)
	assert.NotSame(t, event, reloaded)
	assert.Len(t, reloaded.Prizes, 2)
}

func TestSetEventVisibleReloadsStatus(t *testing.T) {
	env := newTestEnv(t, "owner.testnet")
	env.ledger.SeedEvent(contract.JsonEvent{ID: 1, Title: "Hidden", Status: contract.StatusConfiguration, OwnerID: "owner.testnet"})
	require.NoError(t, env.events.LoadEvent(context.Background(), 1))

	require.NoError(t, env.events.SetEventVisible(context.Background(), 1))
	assert.Equal(t, contract.StatusVisible, env.events.GetEvent(1).Status)
}

func TestRaffleEventPrizesDepositScalesWithPrizeCount(t *testing.T) {
	env := newTestEnv(t, "owner.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")

	require.NoError(t, env.events.RaffleEventPrizes(context.Background(), 1, 3))

	calls := env.ledger.CallsTo("raffle_event_prizes")
	require.Len(t, calls, 1)
	assert.Equal(t, "13500000000000000000000", calls[0].Deposit)
}

func TestJoinEventDepositDependsOnAccountLength(t *testing.T) {
	// (0.00001 NEAR * (len+4) + base fee) * 2.
	assert.Equal(t, "5800000000000000000000", JoinEventDeposit("bob.testnet").String())   // 11 chars
	assert.Equal(t, "5840000000000000000000", JoinEventDeposit("alice.testnet").String()) // 13 chars
}

func TestJoinEventMarksParticipationWithoutReload(t *testing.T) {
	env := newTestEnv(t, "alice.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")
	require.NoError(t, env.events.LoadEvent(context.Background(), 1))
	loads := len(env.ledger.CallsTo("get_event"))

	event := env.events.GetEvent(1)
	require.NoError(t, env.events.JoinEvent(context.Background(), event))

	assert.True(t, env.events.AreYouParticipatingAtEvent(1))
	assert.Len(t, env.ledger.CallsTo("get_event"), loads, "join must not reload the event")

	calls := env.ledger.CallsTo("join_event")
	require.Len(t, calls, 1)
	assert.Equal(t, "5840000000000000000000", calls[0].Deposit)
}

func TestJoinEventRequiresSession(t *testing.T) {
	env := newTestEnv(t, "")

	err := env.events.JoinEvent(context.Background(), &Event{ID: 1})
	assert.ErrorIs(t, err, ErrNoActiveAccount)
}

func TestCreatedEventShowsUpInOwnedEvents(t *testing.T) {
	env := newTestEnv(t, "owner.testnet")

	_, err := env.events.CreateEvent(context.Background(), contract.AddEventArgs{Title: "Birthday"})
	require.NoError(t, err)
	require.NoError(t, env.events.LoadOwnedEvents(context.Background()))

	owned := env.events.OwnedEvents()
	require.Len(t, owned, 1)
	assert.Equal(t, "Birthday", owned[0].Title)
	assert.Equal(t, contract.StatusConfiguration, owned[0].Status)
}

func TestLoadOwnedEventsPopulatesCache(t *testing.T) {
	env := newTestEnv(t, "owner.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")
	seedVisibleEvent(env, 2, "someone-else.testnet")
	seedVisibleEvent(env, 3, "owner.testnet")

	require.NoError(t, env.events.LoadOwnedEvents(context.Background()))

	owned := env.events.OwnedEvents()
	require.Len(t, owned, 2)
	assert.Equal(t, contract.EventID(1), owned[0].ID)
	assert.Equal(t, contract.EventID(3), owned[1].ID)
}

func TestLoadParticipatedEventsMarksParticipation(t *testing.T) {
	env := newTestEnv(t, "alice.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")
	require.NoError(t, env.events.LoadEvent(context.Background(), 1))
	require.NoError(t, env.events.JoinEvent(context.Background(), env.events.GetEvent(1)))

	// A fresh session sees participation only after loading it.
	fresh := newTestEnv(t, "alice.testnet")
	fresh.ledger = env.ledger
	fresh.bindings = NewContractCache(env.ledger, "raffle.testnet")
	fresh.events = NewEventStore(fresh.auth, fresh.bindings, logTest())

	require.NoError(t, fresh.events.LoadParticipatedEvents(context.Background()))
	assert.True(t, fresh.events.AreYouParticipatingAtEvent(1))
	require.Len(t, fresh.events.ParticipatedEvents(), 1)
}

func TestLoadEventParticipatingStatus(t *testing.T) {
	env := newTestEnv(t, "alice.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")
	require.NoError(t, env.events.LoadEvent(context.Background(), 1))

	require.NoError(t, env.events.LoadEventParticipatingStatus(context.Background(), 1))
	assert.False(t, env.events.AreYouParticipatingAtEvent(1))

	require.NoError(t, env.events.JoinEvent(context.Background(), env.events.GetEvent(1)))
	require.NoError(t, env.events.LoadEventParticipatingStatus(context.Background(), 1))
	assert.True(t, env.events.AreYouParticipatingAtEvent(1))
}

func TestPredicatesAreFalseWithoutSession(t *testing.T) {
	env := newTestEnv(t, "")

	assert.False(t, env.events.AreYouOwnerOfEvent(1))
	assert.False(t, env.events.AreYouParticipatingAtEvent(1))
	assert.Empty(t, env.events.OwnedEvents())
	assert.Empty(t, env.events.ParticipatedEvents())
}

func TestOwnerPredicateFalseForUncachedEvent(t *testing.T) {
	env := newTestEnv(t, "owner.testnet")
	assert.False(t, env.events.AreYouOwnerOfEvent(42))
}

func TestDerivedViewsAreReferentiallyStable(t *testing.T) {
	env := newTestEnv(t, "owner.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")
	require.NoError(t, env.events.LoadOwnedEvents(context.Background()))

	first := env.events.OwnedEvents()
	second := env.events.OwnedEvents()
	assert.Equal(t, reflect.ValueOf(first).Pointer(), reflect.ValueOf(second).Pointer(),
		"repeated reads without mutation must return the same slice")

	// A cache mutation invalidates the memo.
	seedVisibleEvent(env, 2, "owner.testnet")
	require.NoError(t, env.events.LoadEvent(context.Background(), 2))
	third := env.events.OwnedEvents()
	assert.NotEqual(t, reflect.ValueOf(first).Pointer(), reflect.ValueOf(third).Pointer())
	assert.Len(t, third, 2)
}

func TestResetClearsEventsAndParticipation(t *testing.T) {
	env := newTestEnv(t, "alice.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")
	require.NoError(t, env.events.LoadEvent(context.Background(), 1))
	require.NoError(t, env.events.JoinEvent(context.Background(), env.events.GetEvent(1)))

	env.events.Reset()

	assert.Nil(t, env.events.GetEvent(1))
	assert.False(t, env.events.AreYouParticipatingAtEvent(1))
	assert.Empty(t, env.events.AllEvents())
}

func TestStoreNotifiesSubscribersOnMutation(t *testing.T) {
	env := newTestEnv(t, "alice.testnet")
	seedVisibleEvent(env, 1, "owner.testnet")

	notified := 0
	unsubscribe := env.events.Subscribe(func() { notified++ })
	defer unsubscribe()

	require.NoError(t, env.events.LoadEvent(context.Background(), 1))
	assert.Equal(t, 1, notified)

	env.events.GetEvent(1)
	assert.Equal(t, 1, notified, "reads must not notify")
}

func TestInflightGuardRejectsDuplicateKeys(t *testing.T) {
	g := newInflightGuard()

	require.NoError(t, g.begin("join_event/1/alice.testnet"))
	assert.ErrorIs(t, g.begin("join_event/1/alice.testnet"), ErrCallInFlight)
	require.NoError(t, g.begin("join_event/2/alice.testnet"))

	g.end("join_event/1/alice.testnet")
	require.NoError(t, g.begin("join_event/1/alice.testnet"))
}
