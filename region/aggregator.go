package region

import (
	"errors"
	"fmt"

	uuid "github.com/satori/go.uuid"
)

var (
	InvalidLabelValueError  error = errors.New("Label value outside of region range")
	ShapeMismatchError      error = errors.New("Label grid and color grid dimensions differ")
	PixelCountMismatchError error = errors.New("Expected pixel counts do not match label grid")
	InvalidRegionCountError error = errors.New("Region count must not be negative")
)

// Aggregation is the result of a single pass over one image.
type Aggregation struct {
	// Records is addressed by region id. Regions that never occur keep PixelCount == 0.
	Records []Record
	// Finalized lists region ids in the order their statistics became complete.
	Finalized []int
}

// NonEmpty returns records with at least one pixel, ordered by region id.
func (this *Aggregation) NonEmpty() []Record {
	result := make([]Record, 0, len(this.Records))
	for _, record := range this.Records {
		if !record.Empty() {
			result = append(result, record)
		}
	}
	return result
}

func (this *Aggregation) PixelCount() uint64 {
	var total uint64
	for _, record := range this.Records {
		total += record.PixelCount
	}
	return total
}

// Aggregate visits every cell of labels exactly once and accumulates color sums,
// pixel count and bounding box per region. When expected is non-nil, a region is
// finalized as soon as its running count reaches expected[region]; otherwise all
// non-empty regions are finalized after the pass. On error no partial result is
// returned.
func Aggregate(imageId uuid.UUID, labels LabelGrid, colors ColorGrid, regionCount int, expected []uint64) (*Aggregation, error) {
	if err := labels.validate(); err != nil {
		return nil, err
	}
	if err := colors.validate(); err != nil {
		return nil, err
	}
	if labels.Rows != colors.Rows || labels.Cols != colors.Cols {
		return nil, fmt.Errorf("%w: labels %dx%d, colors %dx%d", ShapeMismatchError, labels.Rows, labels.Cols, colors.Rows, colors.Cols)
	}
	if regionCount < 0 {
		return nil, InvalidRegionCountError
	}
	if expected != nil && len(expected) != regionCount {
		return nil, fmt.Errorf("%w: %d counts for %d regions", PixelCountMismatchError, len(expected), regionCount)
	}

	records := make([]Record, regionCount)
	for i := range records {
		records[i].ImageId = imageId
		records[i].Region = i
	}
	finalized := make([]int, 0, regionCount)

	for row := 0; row < labels.Rows; row++ {
		for col := 0; col < labels.Cols; col++ {
			label := int(labels.At(row, col))
			if label < 0 || label >= regionCount {
				return nil, fmt.Errorf("%w: %d at (%d, %d), region count %d", InvalidLabelValueError, label, row, col, regionCount)
			}

			record := &records[label]
			record.add(col, row, colors.At(row, col))

			if expected != nil {
				if record.PixelCount > expected[label] {
					return nil, fmt.Errorf("%w: region %d exceeds %d pixels", PixelCountMismatchError, label, expected[label])
				}
				if record.PixelCount == expected[label] {
					finalized = append(finalized, label)
				}
			}
		}
	}

	if expected != nil {
		for region, count := range expected {
			if records[region].PixelCount != count {
				return nil, fmt.Errorf("%w: region %d has %d of %d pixels", PixelCountMismatchError, region, records[region].PixelCount, count)
			}
		}
	} else {
		for region := range records {
			if !records[region].Empty() {
				finalized = append(finalized, region)
			}
		}
	}

	return &Aggregation{
		Records:   records,
		Finalized: finalized,
	}, nil
}
