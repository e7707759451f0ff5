package index

import (
	"github.com/marekgalovic/spsearch/region"

	uuid "github.com/satori/go.uuid"
)

var (
	dark   = region.Color{10, 10, 10}
	bright = region.Color{200, 200, 200}
	gray   = region.Color{128, 128, 128}
)

// halvesImage is a 4x4 image split into a left region (id 0) and a right region (id 1).
func halvesImage(id uuid.UUID, left, right region.Color) ImageInput {
	labels := region.NewLabelGrid(4, 4)
	colors := region.NewColorGrid(4, 4)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if col < 2 {
				colors.Set(row, col, left)
			} else {
				labels.Set(row, col, 1)
				colors.Set(row, col, right)
			}
		}
	}

	return ImageInput{
		ImageId:     id,
		Labels:      labels,
		Colors:      colors,
		RegionCount: 2,
		PixelCounts: []uint64{8, 8},
	}
}

// uniformImage is a single region image of one color.
func uniformImage(id uuid.UUID, rows, cols int, c region.Color) ImageInput {
	colors := region.NewColorGrid(rows, cols)
	colors.Fill(0, 0, rows, cols, c)

	return ImageInput{
		ImageId:     id,
		Labels:      region.NewLabelGrid(rows, cols),
		Colors:      colors,
		RegionCount: 1,
		PixelCounts: []uint64{uint64(rows * cols)},
	}
}

func insertInput(index *Index, input ImageInput) (int, error) {
	agg, err := region.Aggregate(input.ImageId, input.Labels, input.Colors, input.RegionCount, input.PixelCounts)
	if err != nil {
		return 0, err
	}
	return index.InsertImage(input.ImageId, input.Labels.Cols, input.Labels.Rows, agg.NonEmpty())
}

func retrieveInput(index *Index, input ImageInput) (*RetrievalResult, error) {
	return Retrieve(index, input.Labels, input.Colors, input.RegionCount, input.PixelCounts)
}

func singlePixelRecord(x, y int, c region.Color) region.Record {
	return region.Record{
		ColorSum:   [3]int64{int64(c[0]), int64(c[1]), int64(c[2])},
		PixelCount: 1,
		Bounds:     region.Bounds{XMin: x, XMax: x, YMin: y, YMax: y},
	}
}

// leftHalfRecord matches region 0 of halvesImage.
func leftHalfRecord(c region.Color) region.Record {
	return region.Record{
		ColorSum:   [3]int64{8 * int64(c[0]), 8 * int64(c[1]), 8 * int64(c[2])},
		PixelCount: 8,
		Bounds:     region.Bounds{XMin: 0, XMax: 1, YMin: 0, YMax: 3},
	}
}
