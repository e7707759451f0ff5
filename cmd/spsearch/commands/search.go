package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/marekgalovic/spsearch"
	"github.com/marekgalovic/spsearch/imageio"
	"github.com/marekgalovic/spsearch/utils"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/mem"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func Search(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("No query image provided")
	}

	registry := prometheus.NewRegistry()
	engine, err := spsearch.NewEngine(engineConfig(c), registry)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	if c.Bool("restore") {
		restored, err := engine.Restore(ctx)
		if err != nil {
			return err
		}
		log.WithField("images", restored).Info("Catalog restored")
	}
	if dir := c.String("images"); dir != "" {
		paths, err := imageio.List(dir)
		if err != nil {
			return err
		}
		if _, err := engine.AddImages(ctx, paths); err != nil {
			return err
		}
	}
	logMemoryUsage()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"query", "rank", "match", "votes", "query regions", "colliding regions"})
	for _, query := range c.Args().Slice() {
		result, err := engine.Query(ctx, query)
		if err != nil {
			return err
		}

		if len(result.Matches) == 0 {
			table.Append([]string{query, "-", "no match", "0", fmt.Sprintf("%d", result.Regions), fmt.Sprintf("%d", result.CollidingRegions)})
			continue
		}
		for rank, match := range result.Matches {
			table.Append([]string{
				query,
				fmt.Sprintf("%d", rank+1),
				match.Image.Path,
				fmt.Sprintf("%d", match.Votes),
				fmt.Sprintf("%d", result.Regions),
				fmt.Sprintf("%d", result.CollidingRegions),
			})
		}
	}
	table.Render()

	if addr := c.String("metrics-addr"); addr != "" {
		return serveMetrics(addr, registry)
	}
	return nil
}

func serveMetrics(addr string, registry *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	log.WithField("addr", addr).Info("Serving metrics")

	select {
	case err := <-serveErr:
		return err
	case <-utils.InterruptSignal():
	}

	log.Info("Shutdown")
	return server.Shutdown(context.Background())
}

func logMemoryUsage() {
	stat, err := mem.VirtualMemory()
	if err != nil {
		log.Warn(err)
		return
	}
	log.WithFields(log.Fields{
		"used":        stat.Used,
		"usedPercent": fmt.Sprintf("%.1f", stat.UsedPercent),
	}).Info("Memory usage")
}
