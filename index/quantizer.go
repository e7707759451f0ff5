package index

import (
	"errors"
	"fmt"

	"github.com/marekgalovic/spsearch/math"
	"github.com/marekgalovic/spsearch/region"
)

// QuantizerVersion identifies the axis order and default bucket layout. Any change
// to either invalidates keys of previously built indexes.
const QuantizerVersion int = 1

var (
	InvalidQuantizerConfigError error = errors.New("Invalid quantizer config")
)

// BucketKey is a non-negative mixed-radix bucket number, or Unindexable.
type BucketKey int64

const Unindexable BucketKey = -1

// Quantizer maps a region record onto a bucket over five axes in the fixed order:
// color channel 1, color channel 2, color channel 3, spatial x, spatial y.
type Quantizer struct {
	config *quantizerConfig
	dims   [5]int
	widths [5]float32
}

func NewQuantizer(options ...QuantizerOption) (*Quantizer, error) {
	config := newQuantizerConfig(options)
	if err := config.validate(); err != nil {
		return nil, err
	}

	colorWidth := float32(config.colorRange / config.colorBuckets)
	return &Quantizer{
		config: config,
		dims:   [5]int{config.colorBuckets, config.colorBuckets, config.colorBuckets, config.xBuckets, config.yBuckets},
		widths: [5]float32{
			colorWidth,
			colorWidth,
			colorWidth,
			float32(config.referenceWidth / config.xBuckets),
			float32(config.referenceHeight / config.yBuckets),
		},
	}, nil
}

// DefaultQuantizer uses 16 buckets per 8-bit channel and a 10x10 spatial grid of
// 384x216 pixel cells over a 3840x2160 reference frame.
func DefaultQuantizer() *Quantizer {
	q, err := NewQuantizer()
	if err != nil {
		panic(err)
	}
	return q
}

func (this *Quantizer) String() string {
	return fmt.Sprintf("Quantizer(version: %d, %s)", QuantizerVersion, this.config)
}

// TotalBuckets is the size of the key space. Valid keys are in [0, TotalBuckets()).
func (this *Quantizer) TotalBuckets() int64 {
	total := int64(1)
	for _, d := range this.dims {
		total *= int64(d)
	}
	return total
}

// Buckets returns the clamped per axis bucket indices of a record from a
// width x height image. Spatial buckets divide the reference frame, so centers are
// taken in raw pixel coordinates unless rescaling is enabled. ok is false for
// records that cannot be indexed.
func (this *Quantizer) Buckets(record region.Record, width, height int) (buckets [5]int, ok bool) {
	if record.PixelCount == 0 || width <= 0 || height <= 0 {
		return buckets, false
	}

	avg := record.AverageColor()
	cx, cy := record.Bounds.Center()
	if this.config.rescale {
		cx = cx * float32(this.config.referenceWidth) / float32(width)
		cy = cy * float32(this.config.referenceHeight) / float32(height)
	}
	values := [5]float32{avg[0], avg[1], avg[2], cx, cy}

	for i, v := range values {
		buckets[i] = math.ClampInt(math.Trunc(v/this.widths[i]), 0, this.dims[i]-1)
	}
	return buckets, true
}

func (this *Quantizer) Key(record region.Record, width, height int) BucketKey {
	buckets, ok := this.Buckets(record, width, height)
	if !ok {
		return Unindexable
	}

	key := int64(buckets[0])
	for i := 1; i < len(buckets); i++ {
		key = key*int64(this.dims[i]) + int64(buckets[i])
	}
	return BucketKey(key)
}
