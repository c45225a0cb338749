package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"readnext/models"

	"github.com/urfave/cli/v2"
)

func updateCmd() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Fetch all channels once",
		Description: `Runs one update cycle: fetches every channel, merges new items
		into the inbox and recomputes quality scores.

		Interrupting with Ctrl-C stops channels that have not started fetching;
		already-fetched items are still ingested and scored before exiting.`,
		Action: func(cliCtx *cli.Context) error {
			a, err := setup(cliCtx)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			progress := make(chan models.ProgressEvent, 64)
			done := make(chan error, 1)
			go func() {
				done <- a.coordinator.Run(ctx, progress)
			}()

			for event := range progress {
				switch {
				case event.Done:
					fmt.Println("Update finished")
				case event.Err != "":
					fmt.Printf("[%d/%d] %s: %s\n", event.Index, event.Total, event.Channel, event.Err)
				default:
					fmt.Printf("[%d/%d] %s: %d new\n", event.Index, event.Total, event.Channel, event.Inserted)
				}
			}

			if err := <-done; err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
}
