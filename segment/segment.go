package segment

import (
	"fmt"

	"github.com/marekgalovic/spsearch/region"
)

// Segmenter partitions a color grid into regions. Labels of the result form the
// dense range [0, Count) and PixelCounts[r] is the number of cells labeled r.
type Segmenter interface {
	Segment(colors region.ColorGrid) (*Segmentation, error)
}

type Segmentation struct {
	Labels      region.LabelGrid
	Count       int
	PixelCounts []uint64
}

// CountPixels counts the cells of every region id in [0, count).
func CountPixels(labels region.LabelGrid, count int) ([]uint64, error) {
	counts := make([]uint64, count)
	for i, label := range labels.Labels {
		if label < 0 || int(label) >= count {
			return nil, fmt.Errorf("%w: %d at cell %d, region count %d", region.InvalidLabelValueError, label, i, count)
		}
		counts[label]++
	}
	return counts, nil
}

// GridSegmenter cuts the image into square cells of a fixed size. Cells on the
// right and bottom edges may be smaller.
type GridSegmenter struct {
	cellSize int
}

func NewGridSegmenter(cellSize int) *GridSegmenter {
	if cellSize < 1 {
		cellSize = 1
	}
	return &GridSegmenter{cellSize: cellSize}
}

func (this *GridSegmenter) String() string {
	return fmt.Sprintf("GridSegmenter(cellSize: %d)", this.cellSize)
}

func (this *GridSegmenter) Segment(colors region.ColorGrid) (*Segmentation, error) {
	if colors.Rows <= 0 || colors.Cols <= 0 {
		return nil, region.EmptyGridError
	}

	cellsX := (colors.Cols + this.cellSize - 1) / this.cellSize
	cellsY := (colors.Rows + this.cellSize - 1) / this.cellSize

	labels := region.NewLabelGrid(colors.Rows, colors.Cols)
	for row := 0; row < colors.Rows; row++ {
		for col := 0; col < colors.Cols; col++ {
			labels.Set(row, col, int32((row/this.cellSize)*cellsX+col/this.cellSize))
		}
	}

	counts, err := CountPixels(labels, cellsX*cellsY)
	if err != nil {
		return nil, err
	}

	return &Segmentation{
		Labels:      labels,
		Count:       cellsX * cellsY,
		PixelCounts: counts,
	}, nil
}
