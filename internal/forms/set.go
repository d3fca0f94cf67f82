package forms

import (
	"github.com/raffle-labs/raffler-go/internal/stores"
	"github.com/raffle-labs/raffler-go/pkg/logger"
)

// Set bundles the application forms so callers wire them once.
type Set struct {
	CreateEvent       *CreateEventForm
	EditEventTimeline *EditEventTimelineForm
	AddEventPrize     *AddEventPrizeForm
}

// NewSet builds every form against the shared event store.
func NewSet(events *stores.EventStore, log *logger.Logger) *Set {
	return &Set{
		CreateEvent:       NewCreateEventForm(events),
		EditEventTimeline: NewEditEventTimelineForm(events, log),
		AddEventPrize:     NewAddEventPrizeForm(events),
	}
}
