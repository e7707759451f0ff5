package region

import (
	"errors"
)

var (
	EmptyGridError error = errors.New("Grid has no cells")
	GridSizeError  error = errors.New("Grid buffer does not match its dimensions")
)

// Color is a single 3 channel sample. Channel semantics (RGB, CIELAB) are decided
// by the image provider.
type Color [3]uint8

// LabelGrid assigns every pixel of a rows x cols image a region id. Cells are
// stored row-major.
type LabelGrid struct {
	Rows   int
	Cols   int
	Labels []int32
}

func NewLabelGrid(rows, cols int) LabelGrid {
	return LabelGrid{
		Rows:   rows,
		Cols:   cols,
		Labels: make([]int32, rows*cols),
	}
}

func (this LabelGrid) At(row, col int) int32 {
	return this.Labels[row*this.Cols+col]
}

func (this LabelGrid) Set(row, col int, label int32) {
	this.Labels[row*this.Cols+col] = label
}

func (this LabelGrid) Len() int {
	return this.Rows * this.Cols
}

func (this LabelGrid) validate() error {
	if this.Rows <= 0 || this.Cols <= 0 {
		return EmptyGridError
	}
	if len(this.Labels) != this.Rows*this.Cols {
		return GridSizeError
	}
	return nil
}

// ColorGrid holds 3 interleaved channels per pixel, row-major.
type ColorGrid struct {
	Rows int
	Cols int
	Pix  []uint8
}

func NewColorGrid(rows, cols int) ColorGrid {
	return ColorGrid{
		Rows: rows,
		Cols: cols,
		Pix:  make([]uint8, rows*cols*3),
	}
}

func (this ColorGrid) At(row, col int) Color {
	i := (row*this.Cols + col) * 3
	return Color{this.Pix[i], this.Pix[i+1], this.Pix[i+2]}
}

func (this ColorGrid) Set(row, col int, c Color) {
	i := (row*this.Cols + col) * 3
	this.Pix[i], this.Pix[i+1], this.Pix[i+2] = c[0], c[1], c[2]
}

// Fill sets every pixel inside [row0,row1) x [col0,col1) to c.
func (this ColorGrid) Fill(row0, col0, row1, col1 int, c Color) {
	for row := row0; row < row1; row++ {
		for col := col0; col < col1; col++ {
			this.Set(row, col, c)
		}
	}
}

func (this ColorGrid) validate() error {
	if this.Rows <= 0 || this.Cols <= 0 {
		return EmptyGridError
	}
	if len(this.Pix) != this.Rows*this.Cols*3 {
		return GridSizeError
	}
	return nil
}
