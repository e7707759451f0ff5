package index

import (
	"fmt"
	"runtime"

	"github.com/marekgalovic/spsearch/metrics"

	"github.com/klauspost/cpuid"
)

// Quantizer options
type QuantizerOption interface {
	apply(*quantizerConfig)
}

type quantizerOption struct {
	applyFunc func(*quantizerConfig)
}

func (opt *quantizerOption) apply(config *quantizerConfig) {
	opt.applyFunc(config)
}

// QuantizerColorBuckets splits every color channel of the given range into n buckets.
func QuantizerColorBuckets(n int, channelRange int) QuantizerOption {
	return &quantizerOption{func(config *quantizerConfig) {
		config.colorBuckets = n
		config.colorRange = channelRange
	}}
}

func QuantizerSpatialBuckets(x, y int) QuantizerOption {
	return &quantizerOption{func(config *quantizerConfig) {
		config.xBuckets = x
		config.yBuckets = y
	}}
}

// QuantizerReferenceResolution sets the frame the spatial buckets are laid over.
func QuantizerReferenceResolution(width, height int) QuantizerOption {
	return &quantizerOption{func(config *quantizerConfig) {
		config.referenceWidth = width
		config.referenceHeight = height
	}}
}

// QuantizerRescaleToReference maps region centers from the image's own resolution
// onto the reference frame before bucketing. Keys then no longer depend on image
// size, but differ from the default layout for every image not at the reference
// resolution.
func QuantizerRescaleToReference(value bool) QuantizerOption {
	return &quantizerOption{func(config *quantizerConfig) {
		config.rescale = value
	}}
}

type quantizerConfig struct {
	colorBuckets    int
	colorRange      int
	xBuckets        int
	yBuckets        int
	referenceWidth  int
	referenceHeight int
	rescale         bool
}

func newQuantizerConfig(options []QuantizerOption) *quantizerConfig {
	config := &quantizerConfig{
		colorBuckets:    16,
		colorRange:      256,
		xBuckets:        10,
		yBuckets:        10,
		referenceWidth:  3840,
		referenceHeight: 2160,
	}
	for _, option := range options {
		option.apply(config)
	}

	return config
}

func (this *quantizerConfig) validate() error {
	if this.colorBuckets <= 0 || this.xBuckets <= 0 || this.yBuckets <= 0 {
		return InvalidQuantizerConfigError
	}
	if this.colorRange < this.colorBuckets || this.referenceWidth < this.xBuckets || this.referenceHeight < this.yBuckets {
		return InvalidQuantizerConfigError
	}
	return nil
}

func (this *quantizerConfig) String() string {
	return fmt.Sprintf(
		"colorBuckets: %d, colorRange: %d, xBuckets: %d, yBuckets: %d, reference: %dx%d, rescale: %t",
		this.colorBuckets,
		this.colorRange,
		this.xBuckets,
		this.yBuckets,
		this.referenceWidth,
		this.referenceHeight,
		this.rescale,
	)
}

// Index options
type IndexOption interface {
	apply(*indexConfig)
}

type indexOption struct {
	applyFunc func(*indexConfig)
}

func (opt *indexOption) apply(config *indexConfig) {
	opt.applyFunc(config)
}

func IndexQuantizer(value *Quantizer) IndexOption {
	return &indexOption{func(config *indexConfig) {
		config.quantizer = value
	}}
}

// IndexUniqueImages makes InsertImage reject an image id that was already inserted.
// By default a repeated insertion duplicates the image's records.
func IndexUniqueImages(value bool) IndexOption {
	return &indexOption{func(config *indexConfig) {
		config.uniqueImages = value
	}}
}

func IndexMetrics(value *metrics.Metrics) IndexOption {
	return &indexOption{func(config *indexConfig) {
		config.metrics = value
	}}
}

// IndexBuildWorkers sets the number of concurrent aggregation workers used by Build.
func IndexBuildWorkers(value int) IndexOption {
	return &indexOption{func(config *indexConfig) {
		config.buildWorkers = value
	}}
}

type indexConfig struct {
	quantizer    *Quantizer
	uniqueImages bool
	metrics      *metrics.Metrics
	buildWorkers int
}

func newIndexConfig(options []IndexOption) *indexConfig {
	config := &indexConfig{
		uniqueImages: false,
		buildWorkers: -1,
	}
	for _, option := range options {
		option.apply(config)
	}

	if config.quantizer == nil {
		config.quantizer = DefaultQuantizer()
	}
	if config.buildWorkers <= 0 {
		config.buildWorkers = DefaultWorkers()
	}

	return config
}

func (this *indexConfig) String() string {
	return fmt.Sprintf("uniqueImages: %t, buildWorkers: %d", this.uniqueImages, this.buildWorkers)
}

// DefaultWorkers is the number of logical cores.
func DefaultWorkers() int {
	if cpuid.CPU.LogicalCores > 0 {
		return cpuid.CPU.LogicalCores
	}
	return runtime.NumCPU()
}
