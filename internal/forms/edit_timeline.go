package forms

import (
	"context"
	"sync"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/stores"
	"github.com/raffle-labs/raffler-go/pkg/logger"
)

// EditEventTimelineForm edits the timeline of an existing event. The store
// applies the change optimistically; the form triggers the confirming
// reload afterwards.
type EditEventTimelineForm struct {
	*Form
	events *stores.EventStore
	log    *logger.Logger

	StartedAt *Field[contract.TimestampMs]
	EndedAt   *Field[contract.TimestampMs]

	mu         sync.RWMutex
	submitting bool
}

// NewEditEventTimelineForm builds the form.
func NewEditEventTimelineForm(events *stores.EventStore, log *logger.Logger) *EditEventTimelineForm {
	startedAt := NewField(FieldConfig[contract.TimestampMs]{
		DefaultValue: nowMs() + 3600_000,
		Label:        "Event start time",
		Required:     true,
		Validate: func(v contract.TimestampMs) string {
			if v <= nowMs() {
				return "Start time couldn't be set before now"
			}
			return ""
		},
	})
	endedAt := NewField(FieldConfig[contract.TimestampMs]{
		DefaultValue: nowMs() + 2*3600_000,
		Label:        "Event end time",
		Required:     true,
		Validate: func(v contract.TimestampMs) string {
			if v <= nowMs() {
				return "End time couldn't be set before now"
			}
			return ""
		},
	})

	return &EditEventTimelineForm{
		Form: NewForm(map[string]FormField{
			"started_at": startedAt,
			"ended_at":   endedAt,
		}),
		events:    events,
		log:       log,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	}
}

// Submitting reports whether a submit is in progress.
func (f *EditEventTimelineForm) Submitting() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitting
}

func (f *EditEventTimelineForm) setSubmitting(v bool) {
	f.mu.Lock()
	f.submitting = v
	f.mu.Unlock()
}

// Submit applies the timeline to the identified event: optimistic store
// write, then a confirming reload. The submitting flag always resets,
// whatever the outcome.
func (f *EditEventTimelineForm) Submit(ctx context.Context, eventID contract.EventID) error {
	if !f.IsValidFormValues() {
		return nil
	}

	f.setSubmitting(true)
	defer f.setSubmitting(false)

	event := f.events.GetEvent(eventID)
	if event == nil {
		f.log.WithField("event_id", eventID).Warnf("couldn't find event with id '%d'", eventID)
		return nil
	}

	if err := f.events.SetEventTime(ctx, event, f.StartedAt.Value(), f.EndedAt.Value()); err != nil {
		return err
	}

	return f.events.LoadEvent(ctx, eventID)
}
