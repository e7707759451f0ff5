package commands

import (
	"github.com/marekgalovic/spsearch"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func SetupLogging(c *cli.Context) error {
	if c.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
	return nil
}

// EngineFlags are shared by every command that segments images.
func EngineFlags() []cli.Flag {
	defaults := spsearch.NewConfig()
	return []cli.Flag{
		&cli.StringFlag{Name: "data-dir", Usage: "Catalog directory, in memory when empty"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent workers, logical cores when 0"},
		&cli.StringFlag{Name: "segmenter", Value: defaults.Segmenter, Usage: "slic or grid"},
		&cli.IntFlag{Name: "region-size", Value: defaults.RegionSize, Usage: "Average pixels per region"},
		&cli.Float64Flag{Name: "compactness", Value: defaults.Compactness},
		&cli.IntFlag{Name: "max-image-size", Value: defaults.MaxImageSize, Usage: "Downscale larger images before segmentation, 0 disables"},
		&cli.BoolFlag{Name: "rescale", Usage: "Bucket region centers relative to the image size"},
		&cli.StringFlag{Name: "color-space", Value: defaults.ColorSpace, Usage: "rgb or lab"},
		&cli.IntFlag{Name: "top", Value: defaults.TopMatches, Usage: "Number of ranked matches per query"},
	}
}

func engineConfig(c *cli.Context) *spsearch.Config {
	config := spsearch.NewConfig()
	config.DataDir = c.String("data-dir")
	config.Workers = c.Int("workers")
	config.Segmenter = c.String("segmenter")
	config.RegionSize = c.Int("region-size")
	config.Compactness = c.Float64("compactness")
	config.MaxImageSize = c.Int("max-image-size")
	config.RescaleToReference = c.Bool("rescale")
	config.ColorSpace = c.String("color-space")
	config.TopMatches = c.Int("top")
	return config
}
