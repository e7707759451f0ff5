package index

import (
	"context"
	"fmt"
	"time"

	"github.com/marekgalovic/spsearch/region"

	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ImageInput is one segmented image: its label grid, the aligned color grid and the
// segmenter's per region pixel counts (may be nil).
type ImageInput struct {
	ImageId     uuid.UUID
	Labels      region.LabelGrid
	Colors      region.ColorGrid
	RegionCount int
	PixelCounts []uint64
}

type aggregatedImage struct {
	imageId uuid.UUID
	width   int
	height  int
	records []region.Record
}

// Build aggregates images concurrently into a new index. See InsertImages.
func Build(ctx context.Context, images []ImageInput, options ...IndexOption) (*Index, error) {
	index := NewIndex(options...)
	if err := index.InsertImages(ctx, images); err != nil {
		return nil, err
	}
	return index, nil
}

// InsertImages aggregates images concurrently and inserts them through a single
// writer. Tie-break order follows the order of images. The first failing image
// aborts the batch; images inserted before the failure stay in the index, the
// others are forgotten.
func (this *Index) InsertImages(ctx context.Context, images []ImageInput) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reserved := make([]uuid.UUID, 0, len(images))
	for _, image := range images {
		if this.reserveImage(image.ImageId) {
			reserved = append(reserved, image.ImageId)
		}
	}

	aggregated := make(chan *aggregatedImage)
	writerErr := make(chan error, 1)
	go func() {
		var err error
		for item := range aggregated {
			if err != nil {
				continue
			}
			if _, err = this.InsertImage(item.imageId, item.width, item.height, item.records); err != nil {
				err = fmt.Errorf("image %s: %w", item.imageId, err)
			}
		}
		writerErr <- err
	}()

	workers, workersCtx := errgroup.WithContext(ctx)
	workers.SetLimit(this.config.buildWorkers)
	for _, image := range images {
		image := image
		workers.Go(func() error {
			if err := workersCtx.Err(); err != nil {
				return err
			}

			item, err := this.aggregate(image)
			if err != nil {
				return fmt.Errorf("image %s: %w", image.ImageId, err)
			}

			select {
			case aggregated <- item:
				return nil
			case <-workersCtx.Done():
				return workersCtx.Err()
			}
		})
	}

	err := workers.Wait()
	close(aggregated)
	if writeErr := <-writerErr; err == nil {
		err = writeErr
	}
	if err != nil {
		this.releaseImages(reserved)
		return err
	}

	log.WithFields(log.Fields{
		"batch":   len(images),
		"images":  this.ImagesCount(),
		"records": this.Len(),
		"buckets": this.BucketsCount(),
	}).Debug("Images inserted")

	return nil
}

func (this *Index) aggregate(image ImageInput) (*aggregatedImage, error) {
	startAt := time.Now()
	agg, err := region.Aggregate(image.ImageId, image.Labels, image.Colors, image.RegionCount, image.PixelCounts)
	if err != nil {
		return nil, err
	}
	this.config.metrics.ObserveAggregation(time.Since(startAt))

	return &aggregatedImage{
		imageId: image.ImageId,
		width:   image.Labels.Cols,
		height:  image.Labels.Rows,
		records: agg.NonEmpty(),
	}, nil
}
