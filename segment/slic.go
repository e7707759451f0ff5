package segment

import (
	"fmt"
	goMath "math"

	"github.com/marekgalovic/spsearch/math"
	"github.com/marekgalovic/spsearch/region"

	log "github.com/sirupsen/logrus"
)

// Options
type SlicOption interface {
	apply(*slicConfig)
}

type slicOption struct {
	applyFunc func(*slicConfig)
}

func (opt *slicOption) apply(config *slicConfig) {
	opt.applyFunc(config)
}

// SlicRegionSize sets the average number of pixels per superpixel.
func SlicRegionSize(value int) SlicOption {
	return &slicOption{func(config *slicConfig) {
		config.regionSize = value
	}}
}

// SlicCompactness weighs spatial distance against color distance.
func SlicCompactness(value float64) SlicOption {
	return &slicOption{func(config *slicConfig) {
		config.compactness = value
	}}
}

func SlicIterations(value int) SlicOption {
	return &slicOption{func(config *slicConfig) {
		config.iterations = value
	}}
}

// SlicMinRegionDivisor merges connected segments smaller than
// regionSize / value into a neighbour.
func SlicMinRegionDivisor(value int) SlicOption {
	return &slicOption{func(config *slicConfig) {
		config.minRegionDivisor = value
	}}
}

type slicConfig struct {
	regionSize       int
	compactness      float64
	iterations       int
	minRegionDivisor int
}

func newSlicConfig(options []SlicOption) *slicConfig {
	config := &slicConfig{
		regionSize:       100,
		compactness:      10,
		iterations:       10,
		minRegionDivisor: 4,
	}
	for _, option := range options {
		option.apply(config)
	}

	if config.regionSize < 1 {
		config.regionSize = 1
	}
	if config.compactness <= 0 {
		config.compactness = 10
	}
	if config.iterations < 1 {
		config.iterations = 1
	}
	if config.minRegionDivisor < 1 {
		config.minRegionDivisor = 1
	}

	return config
}

func (this *slicConfig) String() string {
	return fmt.Sprintf("regionSize: %d, compactness: %.2f, iterations: %d, minRegionDivisor: %d", this.regionSize, this.compactness, this.iterations, this.minRegionDivisor)
}

type slicCenter struct {
	color [3]float64
	x     float64
	y     float64
}

// SlicSegmenter clusters pixels by color and position (simple linear iterative
// clustering) and then relabels connected components densely.
type SlicSegmenter struct {
	config *slicConfig
}

func NewSlicSegmenter(options ...SlicOption) *SlicSegmenter {
	return &SlicSegmenter{config: newSlicConfig(options)}
}

func (this *SlicSegmenter) String() string {
	return fmt.Sprintf("SlicSegmenter(%s)", this.config)
}

func (this *SlicSegmenter) Segment(colors region.ColorGrid) (*Segmentation, error) {
	if colors.Rows <= 0 || colors.Cols <= 0 {
		return nil, region.EmptyGridError
	}
	if len(colors.Pix) != colors.Rows*colors.Cols*3 {
		return nil, region.GridSizeError
	}

	w, h := colors.Cols, colors.Rows
	step := int(goMath.Sqrt(float64(this.config.regionSize)) + 0.5)
	if step < 1 {
		step = 1
	}

	centers := this.seedCenters(colors, step)
	assigned := make([]int, w*h)
	for i := range assigned {
		assigned[i] = -1
	}
	distances := make([]float64, w*h)

	fstep := float64(step)
	invwt := 1.0 / ((fstep / this.config.compactness) * (fstep / this.config.compactness))

	for iter := 0; iter < this.config.iterations; iter++ {
		for i := range distances {
			distances[i] = goMath.MaxFloat64
		}

		for k, center := range centers {
			y1 := math.MaxInt(0, int(center.y-fstep))
			y2 := math.MinInt(h, int(center.y+fstep)+1)
			x1 := math.MaxInt(0, int(center.x-fstep))
			x2 := math.MinInt(w, int(center.x+fstep)+1)

			for y := y1; y < y2; y++ {
				for x := x1; x < x2; x++ {
					i := y*w + x
					c := colors.At(y, x)
					dc := 0.0
					for ch := 0; ch < 3; ch++ {
						d := float64(c[ch]) - center.color[ch]
						dc += d * d
					}
					dx, dy := float64(x)-center.x, float64(y)-center.y
					dist := dc + (dx*dx+dy*dy)*invwt

					if dist < distances[i] {
						distances[i] = dist
						assigned[i] = k
					}
				}
			}
		}

		this.recalculateCenters(colors, assigned, centers)
	}

	labels, count := this.enforceConnectivity(w, h, assigned, len(centers))
	counts, err := CountPixels(labels, count)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"seeds":   len(centers),
		"regions": count,
		"step":    step,
		"rows":    h,
		"cols":    w,
	}).Debug("SLIC segmentation")

	return &Segmentation{
		Labels:      labels,
		Count:       count,
		PixelCounts: counts,
	}, nil
}

func (this *SlicSegmenter) seedCenters(colors region.ColorGrid, step int) []slicCenter {
	centers := make([]slicCenter, 0)
	for y := math.MinInt(step/2, colors.Rows-1); y < colors.Rows; y += step {
		for x := math.MinInt(step/2, colors.Cols-1); x < colors.Cols; x += step {
			c := colors.At(y, x)
			centers = append(centers, slicCenter{
				color: [3]float64{float64(c[0]), float64(c[1]), float64(c[2])},
				x:     float64(x),
				y:     float64(y),
			})
		}
	}
	return centers
}

func (this *SlicSegmenter) recalculateCenters(colors region.ColorGrid, assigned []int, centers []slicCenter) {
	sums := make([]slicCenter, len(centers))
	sizes := make([]float64, len(centers))

	for y := 0; y < colors.Rows; y++ {
		for x := 0; x < colors.Cols; x++ {
			k := assigned[y*colors.Cols+x]
			if k < 0 {
				continue
			}
			c := colors.At(y, x)
			for ch := 0; ch < 3; ch++ {
				sums[k].color[ch] += float64(c[ch])
			}
			sums[k].x += float64(x)
			sums[k].y += float64(y)
			sizes[k]++
		}
	}

	for k := range centers {
		if sizes[k] == 0 {
			continue
		}
		for ch := 0; ch < 3; ch++ {
			centers[k].color[ch] = sums[k].color[ch] / sizes[k]
		}
		centers[k].x = sums[k].x / sizes[k]
		centers[k].y = sums[k].y / sizes[k]
	}
}

// enforceConnectivity relabels 4-connected components in scan order and merges
// components smaller than the minimum size into the previously seen neighbour.
func (this *SlicSegmenter) enforceConnectivity(w, h int, assigned []int, seeds int) (region.LabelGrid, int) {
	dx4 := [...]int{-1, 0, 1, 0}
	dy4 := [...]int{0, -1, 0, 1}

	minSize := (w * h / math.MaxInt(seeds, 1)) / this.config.minRegionDivisor
	labels := region.NewLabelGrid(h, w)
	for i := range labels.Labels {
		labels.Labels[i] = -1
	}

	xvec := make([]int, w*h)
	yvec := make([]int, w*h)
	label := 0
	adjLabel := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			start := y*w + x
			if labels.Labels[start] >= 0 {
				continue
			}
			labels.Labels[start] = int32(label)
			xvec[0], yvec[0] = x, y

			for n := 0; n < 4; n++ {
				nx, ny := x+dx4[n], y+dy4[n]
				if nx >= 0 && nx < w && ny >= 0 && ny < h && labels.Labels[ny*w+nx] >= 0 {
					adjLabel = int(labels.Labels[ny*w+nx])
				}
			}

			count := 1
			for c := 0; c < count; c++ {
				for n := 0; n < 4; n++ {
					nx, ny := xvec[c]+dx4[n], yvec[c]+dy4[n]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					ni := ny*w + nx
					if labels.Labels[ni] < 0 && assigned[start] == assigned[ni] {
						xvec[count], yvec[count] = nx, ny
						labels.Labels[ni] = int32(label)
						count++
					}
				}
			}

			if count <= minSize {
				for c := 0; c < count; c++ {
					labels.Labels[yvec[c]*w+xvec[c]] = int32(adjLabel)
				}
				continue
			}
			label++
		}
	}

	if label == 0 {
		label = 1
	}
	return labels, label
}
