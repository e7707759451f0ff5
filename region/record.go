package region

import (
	"fmt"

	uuid "github.com/satori/go.uuid"
)

// Bounds is an inclusive pixel rectangle.
type Bounds struct {
	XMin int
	XMax int
	YMin int
	YMax int
}

func (this Bounds) Contains(x, y int) bool {
	return x >= this.XMin && x <= this.XMax && y >= this.YMin && y <= this.YMax
}

// Center returns the midpoint of the box on both axes.
func (this Bounds) Center() (float32, float32) {
	return float32(this.XMin+this.XMax) / 2, float32(this.YMin+this.YMax) / 2
}

func (this Bounds) String() string {
	return fmt.Sprintf("[%d,%d]x[%d,%d]", this.XMin, this.XMax, this.YMin, this.YMax)
}

// Record summarizes one region of one image. Bounds are meaningless while
// PixelCount is zero.
type Record struct {
	ImageId    uuid.UUID
	Region     int
	ColorSum   [3]int64
	PixelCount uint64
	Bounds     Bounds
}

func (this *Record) add(x, y int, c Color) {
	if this.PixelCount == 0 {
		this.Bounds = Bounds{XMin: x, XMax: x, YMin: y, YMax: y}
	} else {
		if x < this.Bounds.XMin {
			this.Bounds.XMin = x
		}
		if x > this.Bounds.XMax {
			this.Bounds.XMax = x
		}
		if y < this.Bounds.YMin {
			this.Bounds.YMin = y
		}
		if y > this.Bounds.YMax {
			this.Bounds.YMax = y
		}
	}
	this.ColorSum[0] += int64(c[0])
	this.ColorSum[1] += int64(c[1])
	this.ColorSum[2] += int64(c[2])
	this.PixelCount++
}

func (this Record) Empty() bool {
	return this.PixelCount == 0
}

// AverageColor returns the per channel mean. Empty records yield zeros.
func (this Record) AverageColor() [3]float32 {
	var avg [3]float32
	if this.PixelCount == 0 {
		return avg
	}
	for i := 0; i < 3; i++ {
		avg[i] = float32(float64(this.ColorSum[i]) / float64(this.PixelCount))
	}
	return avg
}

func (this Record) String() string {
	avg := this.AverageColor()
	return fmt.Sprintf(
		"Record(region: %d, pixels: %d, color: [%.1f %.1f %.1f], bounds: %s)",
		this.Region, this.PixelCount, avg[0], avg[1], avg[2], this.Bounds,
	)
}
