package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raffle-labs/raffler-go/internal/near"
)

func newRewardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "List and claim won prizes",
	}

	cmd.AddCommand(newRewardsListCmd(), newRewardsClaimCmd())
	return cmd
}

func newRewardsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unclaimed prizes of the active account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			if err := a.Rewards.LoadAccountUnclaimedRewards(ctx); err != nil {
				return err
			}

			tickets := a.Rewards.MyUnclaimedRewards()
			if len(tickets) == 0 {
				fmt.Println("No unclaimed rewards")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EVENT\tPRIZE\tTITLE\tAMOUNT")
			for _, t := range tickets {
				title := "?"
				amount := "?"
				if e := a.Events.GetEvent(t.EventID); e != nil {
					title = e.Title
					if int(t.PrizeIndex) < len(e.Prizes) {
						raw := string(e.Prizes[t.PrizeIndex].PrizeType.Amount)
						if formatted, err := near.FormatNearAmount(raw, 3); err == nil {
							amount = formatted + "N"
						}
					}
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", t.EventID, t.PrizeIndex, title, amount)
			}
			w.Flush()
			return nil
		},
	}
}

func newRewardsClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <event-id> <prize-index>",
		Short: "Claim a won prize",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			prizeIndex, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid prize index %q", args[1])
			}

			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			if err := a.Rewards.LoadAccountUnclaimedRewards(ctx); err != nil {
				return err
			}

			// Claiming goes through the cached ticket so the store can drop
			// exactly that ticket on success.
			for _, t := range a.Rewards.MyUnclaimedRewards() {
				if t.EventID == eventID && t.PrizeIndex == prizeIndex {
					if err := a.Rewards.ClaimReward(ctx, t); err != nil {
						return err
					}
					fmt.Printf("Claimed prize %d of event %d\n", prizeIndex, eventID)
					return nil
				}
			}
			return fmt.Errorf("no unclaimed prize %d for event %d", prizeIndex, eventID)
		},
	}
}
