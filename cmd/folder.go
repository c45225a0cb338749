package cmd

import (
	"fmt"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"
)

func folderCmd() *cli.Command {
	return &cli.Command{
		Name:  "folder",
		Usage: "Manage folders",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a folder",
				ArgsUsage: "[title]",
				Action: func(ctx *cli.Context) error {
					title := ctx.Args().First()

					var err error
					if title == "" {
						if title, err = prompt.New().Ask("Folder title:").Input(""); err != nil {
							return err
						}
					}

					a, err := setup(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					if _, err := a.store.AddFolder(title); err != nil {
						return err
					}
					fmt.Printf("Added folder %q\n", title)
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove an empty folder",
				ArgsUsage: "<title>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 1 {
						return fmt.Errorf("usage: folder remove <title>")
					}

					a, err := setup(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					title := ctx.Args().First()
					if err := a.store.RemoveFolder(title); err != nil {
						return err
					}
					fmt.Printf("Removed folder %q\n", title)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List folders with unread counts",
				Action: func(ctx *cli.Context) error {
					a, err := setup(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					folders, err := a.store.Folders()
					if err != nil {
						return err
					}
					for _, folder := range folders {
						fmt.Printf("%-30s %4d unread\n", folder.Title, folder.Unread)
					}
					return nil
				},
			},
		},
	}
}
