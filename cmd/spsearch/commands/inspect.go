package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/marekgalovic/spsearch"
	"github.com/marekgalovic/spsearch/index"
	"github.com/marekgalovic/spsearch/region"

	"github.com/olekukonko/tablewriter"
	uuid "github.com/satori/go.uuid"
	"github.com/urfave/cli/v2"
)

func Inspect(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("No image provided")
	}
	path := c.Args().Get(0)

	engine, err := spsearch.NewEngine(engineConfig(c), nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	input, err := engine.Inspect(path)
	if err != nil {
		return err
	}
	agg, err := region.Aggregate(uuid.Nil, input.Labels, input.Colors, input.RegionCount, input.PixelCounts)
	if err != nil {
		return err
	}

	quantizer := engine.Index().Quantizer()
	width, height := input.Labels.Cols, input.Labels.Rows

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"region", "pixels", "average color", "bounds", "key"})
	table.AppendBulk(regionRows(agg, quantizer, width, height))
	table.SetFooter([]string{"", fmt.Sprintf("%d", agg.PixelCount()), "", fmt.Sprintf("%dx%d", width, height), quantizer.String()})
	table.Render()
	return nil
}

func regionRows(agg *region.Aggregation, quantizer *index.Quantizer, width, height int) [][]string {
	rows := make([][]string, 0, len(agg.Records))
	for _, record := range agg.Records {
		key := quantizer.Key(record, width, height)
		keyStr := fmt.Sprintf("%d", key)
		if key == index.Unindexable {
			keyStr = "-"
		}
		avg := record.AverageColor()

		rows = append(rows, []string{
			fmt.Sprintf("%d", record.Region),
			fmt.Sprintf("%d", record.PixelCount),
			fmt.Sprintf("%.1f, %.1f, %.1f", avg[0], avg[1], avg[2]),
			record.Bounds.String(),
			keyStr,
		})
	}
	return rows
}
