package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func wordsCmd() *cli.Command {
	return &cli.Command{
		Name:  "words",
		Usage: "Manage the learned vocabulary",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List learned words, heaviest first",
				Action: func(ctx *cli.Context) error {
					a, err := setup(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					words, err := a.store.Words()
					if err != nil {
						return err
					}
					for _, word := range words {
						state := ""
						if !word.Enabled {
							state = " (disabled)"
						}
						fmt.Printf("%-30s %6.0f%s\n", word.Word, word.Weight, state)
					}
					return nil
				},
			},
			{
				Name:      "enable",
				Usage:     "Re-enable a word for scoring",
				ArgsUsage: "<word>",
				Action: func(ctx *cli.Context) error {
					return setWordEnabled(ctx, true)
				},
			},
			{
				Name:      "disable",
				Usage:     "Exclude a word from scoring without losing its weight",
				ArgsUsage: "<word>",
				Action: func(ctx *cli.Context) error {
					return setWordEnabled(ctx, false)
				},
			},
		},
	}
}

func setWordEnabled(ctx *cli.Context, enabled bool) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("usage: words %s <word>", map[bool]string{true: "enable", false: "disable"}[enabled])
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	word := ctx.Args().First()
	if err := a.store.SetWordEnabled(word, enabled); err != nil {
		return err
	}

	// Toggling changes which items match, so refresh all scores.
	if _, err := a.engine.RecomputeAll(); err != nil {
		return err
	}

	fmt.Printf("Word %q enabled=%v\n", word, enabled)
	return nil
}
