package forms

import (
	"context"
	"time"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/stores"
)

func nowMs() contract.TimestampMs {
	return contract.TimestampMs(time.Now().UnixMilli())
}

// CreateEventForm collects title and timeline for a new event.
type CreateEventForm struct {
	*Form
	events *stores.EventStore

	Title     *Field[string]
	StartedAt *Field[contract.TimestampMs]
	EndedAt   *Field[contract.TimestampMs]
}

// NewCreateEventForm builds the form with its default timeline one and two
// hours out.
func NewCreateEventForm(events *stores.EventStore) *CreateEventForm {
	title := NewField(FieldConfig[string]{
		DefaultValue: "",
		Label:        "Event title",
		Required:     true,
		Validate: func(v string) string {
			if len(v) < 4 {
				return "Title length should be at least 4 symbols"
			}
			if len(v) > 64 {
				return "Title length should be maximum of 64 symbols"
			}
			return ""
		},
	})
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

	return &CreateEventForm{
		Form: NewForm(map[string]FormField{
			"title":      title,
			"started_at": startedAt,
			"ended_at":   endedAt,
		}),
		events:    events,
		Title:     title,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	}
}

// Submit creates the event from the validated field values. A no-op when the
// form is invalid. The created event is not cached; the caller reloads.
func (f *CreateEventForm) Submit(ctx context.Context) (contract.EventID, error) {
	if !f.IsValidFormValues() {
		return 0, nil
	}

	return f.events.CreateEvent(ctx, contract.AddEventArgs{
		Title:     f.Title.Value(),
		StartTime: f.StartedAt.Value(),
		EndTime:   f.EndedAt.Value(),
	})
}
