package spsearch

import (
	"fmt"
)

type Config struct {
	// Workers bounds concurrent image preparation and aggregation. Zero picks the
	// number of logical cores.
	Workers int
	// DataDir holds the image catalog. An empty DataDir keeps it in memory.
	DataDir string
	// Segmenter is "slic" or "grid".
	Segmenter   string
	RegionSize  int
	Compactness float64
	// MaxImageSize downscales larger images before segmentation. Zero disables it.
	// Without RescaleToReference downscaling moves regions to other spatial buckets.
	MaxImageSize int
	// RescaleToReference buckets region centers relative to the image size instead
	// of in raw pixels. Catalogs must be indexed with one setting throughout.
	RescaleToReference bool
	// ColorSpace is "rgb" or "lab".
	ColorSpace   string
	UniqueImages bool
	// TopMatches limits the ranked matches returned by a query.
	TopMatches int
}

func NewConfig() *Config {
	return &Config{
		Segmenter:    "slic",
		RegionSize:   400,
		Compactness:  10,
		ColorSpace:   "lab",
		UniqueImages: true,
		TopMatches:   5,
	}
}

func (this *Config) String() string {
	return fmt.Sprintf("Config(workers: %d, dataDir: %q, segmenter: %s, regionSize: %d, compactness: %.1f, maxImageSize: %d, rescaleToReference: %t, colorSpace: %s, uniqueImages: %t)", this.Workers, this.DataDir, this.Segmenter, this.RegionSize, this.Compactness, this.MaxImageSize, this.RescaleToReference, this.ColorSpace, this.UniqueImages)
}
