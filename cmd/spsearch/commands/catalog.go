package commands

import (
	"fmt"
	"os"

	"github.com/marekgalovic/spsearch/storage"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func ListCatalog(c *cli.Context) error {
	catalog, err := storage.OpenCatalog(c.String("data-dir"))
	if err != nil {
		return err
	}
	defer catalog.Close()

	entries, err := catalog.List()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "path", "width", "height", "regions"})
	for _, entry := range entries {
		table.Append([]string{
			entry.Id.String(),
			entry.Path,
			fmt.Sprintf("%d", entry.Width),
			fmt.Sprintf("%d", entry.Height),
			fmt.Sprintf("%d", entry.Regions),
		})
	}
	table.Render()
	return nil
}
