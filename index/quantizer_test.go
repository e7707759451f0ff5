package index

import (
	"math/rand"
	"testing"

	"github.com/marekgalovic/spsearch/region"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizerTotalBuckets(t *testing.T) {
	q := DefaultQuantizer()
	assert.Equal(t, int64(16*16*16*10*10), q.TotalBuckets())

	q, err := NewQuantizer(QuantizerColorBuckets(8, 256), QuantizerSpatialBuckets(4, 3))
	require.Nil(t, err)
	assert.Equal(t, int64(8*8*8*4*3), q.TotalBuckets())
}

func TestQuantizerInvalidConfig(t *testing.T) {
	_, err := NewQuantizer(QuantizerColorBuckets(0, 256))
	assert.Equal(t, InvalidQuantizerConfigError, err)

	_, err = NewQuantizer(QuantizerSpatialBuckets(10, -1))
	assert.Equal(t, InvalidQuantizerConfigError, err)

	_, err = NewQuantizer(QuantizerReferenceResolution(5, 2160))
	assert.Equal(t, InvalidQuantizerConfigError, err)
}

func TestQuantizerKnownKeys(t *testing.T) {
	q := DefaultQuantizer()

	assert.Equal(t, BucketKey(0), q.Key(singlePixelRecord(0, 0, dark), 4, 4))

	// Right half of a 4x4 image: center (2.5, 1.5) lies in the first 384x216 cell.
	record := region.Record{
		ColorSum:   [3]int64{1600, 1600, 1600},
		PixelCount: 8,
		Bounds:     region.Bounds{XMin: 2, XMax: 3, YMin: 0, YMax: 3},
	}
	buckets, ok := q.Buckets(record, 4, 4)
	assert.True(t, ok)
	assert.Equal(t, [5]int{12, 12, 12, 0, 0}, buckets)
	assert.Equal(t, BucketKey(((12*16+12)*16+12)*10*10), q.Key(record, 4, 4))

	// Center (1919.5, 1079.5) of a 4K frame.
	record.Bounds = region.Bounds{XMin: 0, XMax: 3839, YMin: 0, YMax: 2159}
	buckets, ok = q.Buckets(record, 3840, 2160)
	assert.True(t, ok)
	assert.Equal(t, [5]int{12, 12, 12, 4, 4}, buckets)
}

func TestQuantizerSpatialBucketsUseRawCoordinates(t *testing.T) {
	q := DefaultQuantizer()

	record := singlePixelRecord(1000, 500, dark)
	small, ok := q.Buckets(record, 1920, 1080)
	require.True(t, ok)
	large, ok := q.Buckets(record, 3840, 2160)
	require.True(t, ok)

	assert.Equal(t, 2, small[3])
	assert.Equal(t, 2, small[4])
	assert.Equal(t, small, large)

	// Centers beyond the reference frame land in the last bucket.
	beyond, ok := q.Buckets(singlePixelRecord(5000, 3000, dark), 6000, 4000)
	require.True(t, ok)
	assert.Equal(t, 9, beyond[3])
	assert.Equal(t, 9, beyond[4])
}

func TestQuantizerUnindexable(t *testing.T) {
	q := DefaultQuantizer()

	assert.Equal(t, Unindexable, q.Key(region.Record{}, 4, 4))
	assert.Equal(t, Unindexable, q.Key(singlePixelRecord(0, 0, dark), 0, 4))
	assert.Equal(t, Unindexable, q.Key(singlePixelRecord(0, 0, dark), 4, -1))
}

func TestQuantizerClampsToLastBucket(t *testing.T) {
	q, err := NewQuantizer(QuantizerColorBuckets(10, 256))
	require.Nil(t, err)

	buckets, ok := q.Buckets(singlePixelRecord(0, 0, region.Color{255, 0, 251}), 4, 4)
	assert.True(t, ok)
	assert.Equal(t, 9, buckets[0])
	assert.Equal(t, 0, buckets[1])
	assert.Equal(t, 9, buckets[2])
}

func TestQuantizerRescaleToReference(t *testing.T) {
	q, err := NewQuantizer(QuantizerRescaleToReference(true))
	require.Nil(t, err)

	small := region.Record{ColorSum: [3]int64{40, 40, 40}, PixelCount: 4, Bounds: region.Bounds{XMin: 0, XMax: 1, YMin: 0, YMax: 1}}
	large := region.Record{ColorSum: [3]int64{160, 160, 160}, PixelCount: 16, Bounds: region.Bounds{XMin: 0, XMax: 3, YMin: 0, YMax: 3}}
	assert.Equal(t, q.Key(small, 4, 4), q.Key(large, 8, 8))

	// Right half of a 4x4 image rescaled onto the reference frame.
	buckets, ok := q.Buckets(region.Record{
		ColorSum:   [3]int64{1600, 1600, 1600},
		PixelCount: 8,
		Bounds:     region.Bounds{XMin: 2, XMax: 3, YMin: 0, YMax: 3},
	}, 4, 4)
	assert.True(t, ok)
	assert.Equal(t, [5]int{12, 12, 12, 6, 3}, buckets)

	assert.NotEqual(t, DefaultQuantizer().Key(large, 8, 8), q.Key(large, 8, 8))
}

func TestQuantizerDeterministicAndInRange(t *testing.T) {
	q := DefaultQuantizer()

	for i := 0; i < 1000; i++ {
		width := 1 + rand.Intn(5000)
		height := 1 + rand.Intn(5000)
		x0, y0 := rand.Intn(width), rand.Intn(height)
		x1, y1 := x0+rand.Intn(width-x0), y0+rand.Intn(height-y0)
		pixels := uint64(1 + rand.Intn(1000))
		record := region.Record{
			ColorSum:   [3]int64{rand.Int63n(256 * int64(pixels)), rand.Int63n(256 * int64(pixels)), rand.Int63n(256 * int64(pixels))},
			PixelCount: pixels,
			Bounds:     region.Bounds{XMin: x0, XMax: x1, YMin: y0, YMax: y1},
		}

		key := q.Key(record, width, height)
		assert.Equal(t, key, q.Key(record, width, height))
		assert.GreaterOrEqual(t, int64(key), int64(0))
		assert.Less(t, int64(key), q.TotalBuckets())
	}
}
