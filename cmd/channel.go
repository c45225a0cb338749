package cmd

import (
	"fmt"
	"strings"

	"readnext/models"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"
)

// inferKind maps a channel URL to its fetcher kind. Scripted scrapers are
// addressed as script:<name>:<url>, everything else is treated as a feed.
func inferKind(url string) models.ChannelKind {
	if strings.HasPrefix(url, "script:") {
		return models.KindScript
	}
	return models.KindFeed
}

func channelCmd() *cli.Command {
	return &cli.Command{
		Name:  "channel",
		Usage: "Manage channels",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a channel",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Channel title"},
					&cli.StringFlag{Name: "url", Usage: "Feed URL or script:<name>:<url>"},
					&cli.StringFlag{Name: "folder", Usage: "Folder to file the channel under"},
				},
				Action: func(ctx *cli.Context) error {
					title := ctx.String("title")
					url := ctx.String("url")

					var err error
					if title == "" {
						if title, err = prompt.New().Ask("Channel title:").Input(""); err != nil {
							return err
						}
					}
					if url == "" {
						if url, err = prompt.New().Ask("URL:").Input("https://example.com/feed.xml"); err != nil {
							return err
						}
					}

					a, err := setup(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					if _, err := a.store.AddChannel(title, url, inferKind(url), ctx.String("folder")); err != nil {
						return err
					}
					fmt.Printf("Added channel %q\n", title)
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a channel and all its items",
				ArgsUsage: "<title>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 1 {
						return fmt.Errorf("usage: channel remove <title>")
					}

					a, err := setup(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					title := ctx.Args().First()
					if err := a.store.RemoveChannel(title); err != nil {
						return err
					}
					fmt.Printf("Removed channel %q\n", title)
					return nil
				},
			},
			{
				Name:      "move",
				Usage:     "Move a channel into a folder",
				ArgsUsage: "<channel> <folder>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 2 {
						return fmt.Errorf("usage: channel move <channel> <folder>")
					}

					a, err := setup(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					channel, folder := ctx.Args().Get(0), ctx.Args().Get(1)
					if err := a.store.MoveChannel(channel, folder); err != nil {
						return err
					}
					a.tree.OnMove(channel, folder)
					fmt.Printf("Moved channel %q to folder %q\n", channel, folder)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List channels with unread counts",
				Action: func(ctx *cli.Context) error {
					a, err := setup(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					channels, err := a.store.Channels()
					if err != nil {
						return err
					}
					for _, channel := range channels {
						folder := channel.FolderTitle
						if folder == "" {
							folder = "-"
						}
						fmt.Printf("%-30s %-20s %4d unread\n", channel.Title, folder, channel.Unread)
					}
					return nil
				},
			},
		},
	}
}
