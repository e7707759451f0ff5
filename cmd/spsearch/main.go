package main

import (
	"os"

	"github.com/marekgalovic/spsearch/cmd/spsearch/commands"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "spsearch",
		Usage: "Find images by superpixel region similarity",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		Before: commands.SetupLogging,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Index a directory of images and find the best match for each query",
				ArgsUsage: "<query image>...",
				Flags: append(commands.EngineFlags(),
					&cli.StringFlag{Name: "images", Aliases: []string{"i"}, Usage: "Directory of images to index"},
					&cli.BoolFlag{Name: "restore", Usage: "Index every image already registered in the catalog"},
					&cli.StringFlag{Name: "metrics-addr", Usage: "Serve prometheus metrics on this address until interrupted"},
				),
				Action: commands.Search,
			},
			{
				Name:      "inspect",
				Usage:     "Print the regions and bucket keys of an image",
				ArgsUsage: "<image>",
				Flags:     commands.EngineFlags(),
				Action:    commands.Inspect,
			},
			{
				Name:  "catalog",
				Usage: "Manage the image catalog",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List registered images",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "data-dir", Required: true}},
						Action: commands.ListCatalog,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
