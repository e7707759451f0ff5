package imageio

import (
	"fmt"
	"image"
	goMath "math"
	"strings"

	"github.com/marekgalovic/spsearch/math"
	"github.com/marekgalovic/spsearch/region"

	"github.com/lucasb-eyer/go-colorful"
)

type ColorSpace int

const (
	ColorSpaceRGB ColorSpace = iota
	ColorSpaceLab
)

var colorSpaceNames = [...]string{
	"rgb",
	"lab",
}

func (c ColorSpace) String() string {
	return colorSpaceNames[c]
}

func ParseColorSpace(name string) (ColorSpace, error) {
	for i, n := range colorSpaceNames {
		if strings.EqualFold(n, name) {
			return ColorSpace(i), nil
		}
	}
	return ColorSpaceRGB, fmt.Errorf("Unknown color space %q", name)
}

// ToColorGrid samples img into a grid of 8-bit channels in the given color space.
// Lab channels use the 8-bit convention L*255/100, a+128, b+128.
func ToColorGrid(img image.Image, space ColorSpace) region.ColorGrid {
	bounds := img.Bounds()
	grid := region.NewColorGrid(bounds.Dy(), bounds.Dx())

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			r, g, b, _ := img.At(bounds.Min.X+col, bounds.Min.Y+row).RGBA()
			c := region.Color{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
			if space == ColorSpaceLab {
				c = RGBToLab(c)
			}
			grid.Set(row, col, c)
		}
	}
	return grid
}

func to8bit(v float64) uint8 {
	return uint8(math.ClampInt(int(goMath.Round(v)), 0, 255))
}

// RGBToLab converts an sRGB color to 8-bit CIELAB under a D65 white point.
func RGBToLab(c region.Color) region.Color {
	l, a, b := colorful.Color{
		R: float64(c[0]) / 255.0,
		G: float64(c[1]) / 255.0,
		B: float64(c[2]) / 255.0,
	}.Lab()

	return region.Color{to8bit(l * 255.0), to8bit(a*100.0 + 128.0), to8bit(b*100.0 + 128.0)}
}
