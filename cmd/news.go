package cmd

import (
	"fmt"

	"readnext/models"

	"github.com/urfave/cli/v2"
)

func printNews(item *models.NewsItem) {
	fmt.Printf("#%d [%s] %s\n", item.Id, item.ChannelTitle, item.Title)
	fmt.Printf("quality %.2f\n%s\n%s\n", item.Quality, item.Url, item.Summary)
}

func nextCmd() *cli.Command {
	return &cli.Command{
		Name:  "next",
		Usage: "Show the next unread item and mark it read",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Only consider items from this channel",
			},
			&cli.BoolFlag{
				Name:  "random",
				Usage: "Pick a uniformly random unread item instead of the ranked one",
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "Do not mark the shown item as read",
			},
		},
		Action: func(ctx *cli.Context) error {
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var item *models.NewsItem
			if ctx.Bool("random") {
				item, err = a.policy.SelectRandom(ctx.String("channel"))
			} else {
				item, err = a.policy.SelectNext(ctx.String("channel"))
			}
			if err != nil {
				return err
			}
			if item == nil {
				fmt.Println("No unread news")
				return nil
			}

			printNews(item)

			if !ctx.Bool("keep") {
				if err := a.store.MarkRead(item.Id); err != nil {
					return err
				}
				a.tree.OnRead(item.ChannelTitle)
			}
			return nil
		},
	}
}

func likeCmd() *cli.Command {
	return &cli.Command{
		Name:      "like",
		Usage:     "Record positive feedback on an item",
		ArgsUsage: "<news-id>",
		Description: `Reinforces every word of the item's channel title, title and summary
		in the vocabulary and recomputes quality for unread items sharing those
		words.`,
		Action: func(ctx *cli.Context) error {
			var id int64
			if _, err := fmt.Sscanf(ctx.Args().First(), "%d", &id); err != nil {
				return fmt.Errorf("usage: like <news-id>")
			}

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := a.store.NewsByID(id)
			if err != nil {
				return err
			}
			if err := a.engine.Like(item); err != nil {
				return err
			}

			item, err = a.store.NewsByID(id)
			if err != nil {
				return err
			}
			fmt.Printf("Liked #%d, quality now %.2f\n", item.Id, item.Quality)
			return nil
		},
	}
}

func readAllCmd() *cli.Command {
	return &cli.Command{
		Name:  "read-all",
		Usage: "Mark every item as read",
		Action: func(ctx *cli.Context) error {
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.MarkAllRead(); err != nil {
				return err
			}
			a.tree.OnMarkAllRead()
			fmt.Println("All news marked as read")
			return nil
		},
	}
}
