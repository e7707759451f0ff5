package spsearch

import (
	"context"
	"errors"
	"fmt"
	goMath "math"
	"path/filepath"
	"strings"

	"github.com/marekgalovic/spsearch/imageio"
	"github.com/marekgalovic/spsearch/index"
	"github.com/marekgalovic/spsearch/metrics"
	"github.com/marekgalovic/spsearch/segment"
	"github.com/marekgalovic/spsearch/storage"

	"github.com/prometheus/client_golang/prometheus"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	UnknownSegmenterError error = errors.New("Unknown segmenter")
)

// Engine ties the image catalog to the superpixel index. Files are loaded,
// segmented and registered in the catalog; the index only ever sees catalog ids.
type Engine struct {
	config     *Config
	colorSpace imageio.ColorSpace
	segmenter  segment.Segmenter
	catalog    *storage.Catalog
	index      *index.Index
	metrics    *metrics.Metrics
}

type Match struct {
	Image *storage.ImageEntry
	Votes uint64
}

type QueryResult struct {
	Path             string
	Regions          int
	CollidingRegions int
	Votes            uint64
	Matches          []Match
}

// Best returns the top ranked match. ok is false when no region of the query
// collided with an indexed one.
func (this *QueryResult) Best() (Match, bool) {
	if len(this.Matches) == 0 {
		return Match{}, false
	}
	return this.Matches[0], true
}

func NewEngine(config *Config, registerer prometheus.Registerer) (*Engine, error) {
	if config == nil {
		config = NewConfig()
	}

	colorSpace, err := imageio.ParseColorSpace(config.ColorSpace)
	if err != nil {
		return nil, err
	}
	segmenter, err := newSegmenter(config)
	if err != nil {
		return nil, err
	}

	quantizer, err := index.NewQuantizer(index.QuantizerRescaleToReference(config.RescaleToReference))
	if err != nil {
		return nil, err
	}
	catalog, err := storage.OpenCatalog(config.DataDir)
	if err != nil {
		return nil, err
	}

	m := metrics.NewMetrics(registerer)
	engine := &Engine{
		config:     config,
		colorSpace: colorSpace,
		segmenter:  segmenter,
		catalog:    catalog,
		metrics:    m,
		index: index.NewIndex(
			index.IndexQuantizer(quantizer),
			index.IndexUniqueImages(config.UniqueImages),
			index.IndexBuildWorkers(config.Workers),
			index.IndexMetrics(m),
		),
	}

	log.WithField("config", config).Debug("Engine created")
	return engine, nil
}

func newSegmenter(config *Config) (segment.Segmenter, error) {
	switch strings.ToLower(config.Segmenter) {
	case "slic", "":
		return segment.NewSlicSegmenter(
			segment.SlicRegionSize(config.RegionSize),
			segment.SlicCompactness(config.Compactness),
		), nil
	case "grid":
		return segment.NewGridSegmenter(int(goMath.Sqrt(float64(config.RegionSize)) + 0.5)), nil
	default:
		return nil, fmt.Errorf("%w: %q", UnknownSegmenterError, config.Segmenter)
	}
}

func (this *Engine) Close() error {
	return this.catalog.Close()
}

func (this *Engine) Catalog() *storage.Catalog {
	return this.catalog
}

func (this *Engine) Index() *index.Index {
	return this.index
}

// AddImages indexes image files. A file already known to the catalog keeps its id.
// With UniqueImages, files already in the index are skipped. Only images that made
// it into the index are registered, also when the batch fails. Returns the catalog
// entries of the newly indexed files.
func (this *Engine) AddImages(ctx context.Context, paths []string) ([]*storage.ImageEntry, error) {
	prepared, err := this.prepareAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	entries := make([]*storage.ImageEntry, 0, len(prepared))
	inputs := make([]index.ImageInput, 0, len(prepared))
	ids := make(map[string]uuid.UUID)
	for i, input := range prepared {
		entry := &storage.ImageEntry{
			Path:    paths[i],
			Width:   input.Labels.Cols,
			Height:  input.Labels.Rows,
			Regions: input.RegionCount,
		}
		if abs, err := filepath.Abs(paths[i]); err == nil {
			entry.Path = abs
		}

		id, seen := ids[entry.Path]
		if !seen {
			if id, err = this.imageId(entry.Path); err != nil {
				return nil, fmt.Errorf("image %s: %w", paths[i], err)
			}
			ids[entry.Path] = id
		}
		if this.config.UniqueImages && (seen || this.index.Contains(id)) {
			log.WithField("path", entry.Path).Debug("Image already indexed")
			continue
		}

		entry.Id = id
		input.ImageId = id
		entries = append(entries, entry)
		inputs = append(inputs, *input)
	}

	insertErr := this.index.InsertImages(ctx, inputs)

	indexed := make([]*storage.ImageEntry, 0, len(entries))
	for _, entry := range entries {
		if !this.index.Contains(entry.Id) {
			continue
		}
		if err := this.catalog.Register(entry); err != nil {
			return nil, fmt.Errorf("image %s: %w", entry.Path, err)
		}
		indexed = append(indexed, entry)
	}
	if insertErr != nil {
		return nil, insertErr
	}

	log.WithFields(log.Fields{
		"added":   len(indexed),
		"images":  this.index.ImagesCount(),
		"records": this.index.Len(),
	}).Info("Images indexed")

	return indexed, nil
}

// imageId returns the catalog id of path, or a new one for unknown paths.
func (this *Engine) imageId(path string) (uuid.UUID, error) {
	entry, err := this.catalog.GetByPath(path)
	if err == storage.ImageNotFoundError {
		return uuid.NewV4(), nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return entry.Id, nil
}

// Restore indexes every image registered in the catalog. Used to rebuild the index
// of a persistent catalog after a restart.
func (this *Engine) Restore(ctx context.Context) (int, error) {
	entries, err := this.catalog.List()
	if err != nil {
		return 0, err
	}

	paths := make([]string, len(entries))
	for i, entry := range entries {
		paths[i] = entry.Path
	}
	added, err := this.AddImages(ctx, paths)
	if err != nil {
		return 0, err
	}
	return len(added), nil
}

// Query segments the image at path and ranks indexed images by bucket collisions.
func (this *Engine) Query(ctx context.Context, path string) (*QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input, err := this.prepare(path)
	if err != nil {
		return nil, err
	}

	retrieved, err := index.Retrieve(this.index, input.Labels, input.Colors, input.RegionCount, input.PixelCounts)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", path, err)
	}

	result := &QueryResult{
		Path:             path,
		Regions:          retrieved.QueryRegions,
		CollidingRegions: retrieved.CollidingRegions,
		Votes:            retrieved.Votes,
		Matches:          make([]Match, 0),
	}
	for _, candidate := range retrieved.Candidates {
		if len(result.Matches) >= this.config.TopMatches && this.config.TopMatches > 0 {
			break
		}
		entry, err := this.catalog.Get(candidate.ImageId)
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", candidate.ImageId, err)
		}
		result.Matches = append(result.Matches, Match{Image: entry, Votes: candidate.Votes})
	}

	return result, nil
}

// Inspect segments the image at path without touching the index.
func (this *Engine) Inspect(path string) (*index.ImageInput, error) {
	return this.prepare(path)
}

func (this *Engine) prepareAll(ctx context.Context, paths []string) ([]*index.ImageInput, error) {
	prepared := make([]*index.ImageInput, len(paths))

	workers, workersCtx := errgroup.WithContext(ctx)
	workers.SetLimit(this.workers())
	for i, path := range paths {
		i, path := i, path
		workers.Go(func() error {
			if err := workersCtx.Err(); err != nil {
				return err
			}

			input, err := this.prepare(path)
			if err != nil {
				return err
			}
			prepared[i] = input
			return nil
		})
	}

	if err := workers.Wait(); err != nil {
		return nil, err
	}
	return prepared, nil
}

func (this *Engine) prepare(path string) (*index.ImageInput, error) {
	img, err := imageio.Load(path)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", path, err)
	}

	colors := imageio.ToColorGrid(imageio.Fit(img, this.config.MaxImageSize), this.colorSpace)
	segmentation, err := this.segmenter.Segment(colors)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", path, err)
	}

	return &index.ImageInput{
		Labels:      segmentation.Labels,
		Colors:      colors,
		RegionCount: segmentation.Count,
		PixelCounts: segmentation.PixelCounts,
	}, nil
}

func (this *Engine) workers() int {
	if this.config.Workers > 0 {
		return this.config.Workers
	}
	return index.DefaultWorkers()
}
