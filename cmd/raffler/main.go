// Command raffler is a CLI for the event raffle contract: it browses events,
// joins raffles, and claims prizes against a NEAR JSON-RPC node.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raffle-labs/raffler-go/internal/app"
	"github.com/raffle-labs/raffler-go/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:           "raffler",
		Short:         "Client for the event raffle contract",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newEventsCmd(), newRewardsCmd(), newAccountCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildApp loads config, wires the application, and resolves the session.
func buildApp(ctx context.Context) (*app.Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg, app.Options{})
	if err != nil {
		return nil, err
	}

	if err := a.Start(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}
