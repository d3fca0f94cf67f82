package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/raffle-labs/raffler-go/internal/contract"
	"github.com/raffle-labs/raffler-go/internal/near"
	"github.com/raffle-labs/raffler-go/internal/stores"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Browse and manage raffle events",
	}

	cmd.AddCommand(
		newEventsListCmd(),
		newEventsGetCmd(),
		newEventsCreateCmd(),
		newEventsSetTimeCmd(),
		newEventsAddPrizeCmd(),
		newEventsVisibleCmd(),
		newEventsJoinCmd(),
		newEventsRaffleCmd(),
	)
	return cmd
}

func newEventsListCmd() *cobra.Command {
	var participated bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events owned by or joined by the active account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			var events []*stores.Event
			if participated {
				if err := a.Events.LoadParticipatedEvents(ctx); err != nil {
					return err
				}
				events = a.Events.ParticipatedEvents()
			} else {
				if err := a.Events.LoadOwnedEvents(ctx); err != nil {
					return err
				}
				events = a.Events.OwnedEvents()
			}

			printEventTable(events)
			return nil
		},
	}

	cmd.Flags().BoolVar(&participated, "participated", false, "list joined events instead of owned ones")
	return cmd
}

func newEventsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <event-id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			if err := a.Events.LoadEvent(ctx, id); err != nil {
				return err
			}
			event := a.Events.GetEvent(id)
			if event == nil {
				return fmt.Errorf("event %d not found", id)
			}

			printEvent(event, a.Events)
			return nil
		},
	}
}

func newEventsCreateCmd() *cobra.Command {
	var (
		title string
		start string
		end   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event in configuration state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			form := a.Forms.CreateEvent
			form.Title.SetValue(title)
			if start != "" {
				ts, err := parseTimestamp(start)
				if err != nil {
					return fmt.Errorf("parse --start: %w", err)
				}
				form.StartedAt.SetValue(ts)
			}
			if end != "" {
				ts, err := parseTimestamp(end)
				if err != nil {
					return fmt.Errorf("parse --end: %w", err)
				}
				form.EndedAt.SetValue(ts)
			}

			form.HighlightErrorFields()
			if !form.IsValidFormValues() {
				return formErrors(form.Errors())
			}

			id, err := form.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Created event %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "event title")
	cmd.Flags().StringVar(&start, "start", "", "start time (RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "end time (RFC 3339)")
	return cmd
}

func newEventsSetTimeCmd() *cobra.Command {
	var (
		start string
		end   string
	)

	cmd := &cobra.Command{
		Use:   "set-time <event-id>",
		Short: "Update an event's timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			if err := a.Events.LoadEvent(ctx, id); err != nil {
				return err
			}

			form := a.Forms.EditEventTimeline
			if start != "" {
				ts, err := parseTimestamp(start)
				if err != nil {
					return fmt.Errorf("parse --start: %w", err)
				}
				form.StartedAt.SetValue(ts)
			}
			if end != "" {
				ts, err := parseTimestamp(end)
				if err != nil {
					return fmt.Errorf("parse --end: %w", err)
				}
				form.EndedAt.SetValue(ts)
			}

			form.HighlightErrorFields()
			if !form.IsValidFormValues() {
				return formErrors(form.Errors())
			}
			return form.Submit(ctx, id)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start time (RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "end time (RFC 3339)")
	return cmd
}

func newEventsAddPrizeCmd() *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "add-prize <event-id>",
		Short: "Attach a NEAR prize to an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			if err := a.Events.LoadEvent(ctx, id); err != nil {
				return err
			}
			event := a.Events.GetEvent(id)
			if event == nil {
				return fmt.Errorf("event %d not found", id)
			}

			form := a.Forms.AddEventPrize
			if amount != "" {
				form.Amount.SetValue(amount)
			}
			form.HighlightErrorFields()
			if !form.IsValidFormValues() {
				return formErrors(form.Errors())
			}
			return form.Submit(ctx, event)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "prize amount in NEAR")
	return cmd
}

func newEventsVisibleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visible <event-id>",
		Short: "Publish a configured event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			return a.Events.SetEventVisible(ctx, id)
		},
	}
}

func newEventsJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <event-id>",
		Short: "Join an active event with the active account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			if err := a.Events.LoadEvent(ctx, id); err != nil {
				return err
			}
			event := a.Events.GetEvent(id)
			if event == nil {
				return fmt.Errorf("event %d not found", id)
			}
			if err := a.Events.JoinEvent(ctx, event); err != nil {
				return err
			}
			fmt.Printf("Joined event %d\n", id)
			return nil
		},
	}
}

func newEventsRaffleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raffle <event-id>",
		Short: "Draw winners for an ended event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			if err := a.Events.LoadEvent(ctx, id); err != nil {
				return err
			}
			event := a.Events.GetEvent(id)
			if event == nil {
				return fmt.Errorf("event %d not found", id)
			}
			return a.Events.RaffleEventPrizes(ctx, id, len(event.Prizes))
		},
	}
}

func parseEventID(s string) (contract.EventID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid event id %q", s)
	}
	return contract.EventID(v), nil
}

func parseTimestamp(s string) (contract.TimestampMs, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, err
	}
	return contract.TimestampMs(t.UnixMilli()), nil
}

func formErrors(errs map[string]string) error {
	for field, msg := range errs {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
	}
	return fmt.Errorf("invalid form values")
}

func printEventTable(events []*stores.Event) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tSTART\tEND\tPRIZES\tPARTICIPANTS")
	for _, e := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
			e.ID, e.Title, e.Status,
			formatMs(e.StartedAt), formatMs(e.EndedAt),
			len(e.Prizes), e.ParticipantsAmount)
	}
	w.Flush()
}

func printEvent(e *stores.Event, events *stores.EventStore) {
	fmt.Printf("Event %d: %s\n", e.ID, e.Title)
	fmt.Printf("  Status:       %s\n", e.Status)
	fmt.Printf("  Owner:        %s\n", e.OwnerID)
	fmt.Printf("  Start:        %s\n", formatMs(e.StartedAt))
	fmt.Printf("  End:          %s\n", formatMs(e.EndedAt))
	fmt.Printf("  Participants: %d\n", e.ParticipantsAmount)
	fmt.Printf("  Owned by you: %v\n", events.AreYouOwnerOfEvent(e.ID))
	for i, p := range e.Prizes {
		amount, err := near.FormatNearAmount(string(p.PrizeType.Amount), 3)
		if err != nil {
			amount = string(p.PrizeType.Amount) + " yocto"
		}
		line := fmt.Sprintf("  Prize %d: %sN", i, amount)
		if p.WinnerAccountID != "" {
			line += fmt.Sprintf(" won by %s", p.WinnerAccountID)
			if p.Claimed {
				line += " (claimed)"
			}
		}
		fmt.Println(line)
	}
}

func formatMs(ts contract.TimestampMs) string {
	return time.UnixMilli(int64(ts)).UTC().Format("2006-01-02 15:04")
}
