package index

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/marekgalovic/spsearch/region"

	uuid "github.com/satori/go.uuid"
)

const BUCKETS_SHARD_COUNT int = 16

var (
	ImageAlreadyIndexedError error = errors.New("Image already indexed")
)

type imageEntry struct {
	order   int
	inserts int
	records int
}

// Index maps bucket keys to the region records of every inserted image. Buckets are
// lock-striped over BUCKETS_SHARD_COUNT shards; an append to a bucket happens
// entirely under its shard lock. The index is append-only.
type Index struct {
	config    *indexConfig
	quantizer *Quantizer

	len          uint64
	bucketsCount uint64
	buckets      [BUCKETS_SHARD_COUNT]map[BucketKey][]region.Record
	bucketsMu    [BUCKETS_SHARD_COUNT]*sync.RWMutex

	images   map[uuid.UUID]*imageEntry
	order    []uuid.UUID
	imagesMu *sync.RWMutex
}

func NewIndex(options ...IndexOption) *Index {
	config := newIndexConfig(options)
	index := &Index{
		config:    config,
		quantizer: config.quantizer,
		images:    make(map[uuid.UUID]*imageEntry),
		order:     make([]uuid.UUID, 0),
		imagesMu:  &sync.RWMutex{},
	}

	for i := 0; i < BUCKETS_SHARD_COUNT; i++ {
		index.buckets[i] = make(map[BucketKey][]region.Record)
		index.bucketsMu[i] = &sync.RWMutex{}
	}

	return index
}

func (this *Index) String() string {
	return fmt.Sprintf("Index(images: %d, records: %d, buckets: %d, %s, config={%s})", this.ImagesCount(), this.Len(), this.BucketsCount(), this.quantizer, this.config)
}

func (this *Index) Quantizer() *Quantizer {
	return this.quantizer
}

// Len is the number of records stored across all buckets.
func (this *Index) Len() int {
	return int(atomic.LoadUint64(&this.len))
}

func (this *Index) BucketsCount() int {
	return int(atomic.LoadUint64(&this.bucketsCount))
}

func (this *Index) ImagesCount() int {
	this.imagesMu.RLock()
	defer this.imagesMu.RUnlock()

	return len(this.order)
}

// Images returns image ids in the order they were first inserted.
func (this *Index) Images() []uuid.UUID {
	this.imagesMu.RLock()
	defer this.imagesMu.RUnlock()

	result := make([]uuid.UUID, len(this.order))
	copy(result, this.order)
	return result
}

// ImageRecords returns the number of records indexed for an image.
func (this *Index) ImageRecords(imageId uuid.UUID) int {
	this.imagesMu.RLock()
	defer this.imagesMu.RUnlock()

	if entry, exists := this.images[imageId]; exists {
		return entry.records
	}
	return 0
}

// Contains reports whether records of imageId were inserted at least once.
func (this *Index) Contains(imageId uuid.UUID) bool {
	this.imagesMu.RLock()
	defer this.imagesMu.RUnlock()

	entry, exists := this.images[imageId]
	return exists && entry.inserts > 0
}

// InsertImage quantizes every non-empty record, tags it with imageId and appends
// it to its bucket. Unindexable records are skipped. Returns the number of records
// inserted.
func (this *Index) InsertImage(imageId uuid.UUID, width, height int, records []region.Record) (int, error) {
	type keyedRecord struct {
		key    BucketKey
		record region.Record
	}

	keyed := make([]keyedRecord, 0, len(records))
	for _, record := range records {
		key := this.quantizer.Key(record, width, height)
		if key == Unindexable {
			continue
		}
		record.ImageId = imageId
		keyed = append(keyed, keyedRecord{key, record})
	}

	if err := this.acquireImage(imageId, len(keyed)); err != nil {
		return 0, err
	}

	for _, item := range keyed {
		this.appendToBucket(item.key, item.record)
	}

	this.config.metrics.ObserveInsert(len(keyed), len(records)-len(keyed), this.BucketsCount())
	return len(keyed), nil
}

// Lookup returns a copy of the records stored under key. The result is empty for
// an absent key.
func (this *Index) Lookup(key BucketKey) []region.Record {
	if key == Unindexable {
		return []region.Record{}
	}

	m, mu := this.getBucketsShard(key)
	mu.RLock()
	defer mu.RUnlock()

	bucket := m[key]
	result := make([]region.Record, len(bucket))
	copy(result, bucket)
	return result
}

func (this *Index) forEachInBucket(key BucketKey, fn func(*region.Record)) {
	m, mu := this.getBucketsShard(key)
	mu.RLock()
	defer mu.RUnlock()

	bucket := m[key]
	for i := range bucket {
		fn(&bucket[i])
	}
}

func (this *Index) getBucketsShard(key BucketKey) (map[BucketKey][]region.Record, *sync.RWMutex) {
	shardIdx := uint64(key) % uint64(BUCKETS_SHARD_COUNT)
	return this.buckets[shardIdx], this.bucketsMu[shardIdx]
}

func (this *Index) appendToBucket(key BucketKey, record region.Record) {
	m, mu := this.getBucketsShard(key)
	defer mu.Unlock()
	mu.Lock()

	bucket, exists := m[key]
	if !exists {
		atomic.AddUint64(&this.bucketsCount, 1)
	}
	m[key] = append(bucket, record)
	atomic.AddUint64(&this.len, 1)
}

// reserveImage fixes the tie-break position of an image without inserting records.
// Returns true when the image was unknown.
func (this *Index) reserveImage(imageId uuid.UUID) bool {
	this.imagesMu.Lock()
	defer this.imagesMu.Unlock()

	_, exists := this.images[imageId]
	this.getOrCreateImageEntry(imageId)
	return !exists
}

// releaseImages forgets reserved images that were never inserted and renumbers the
// positions of the remaining ones.
func (this *Index) releaseImages(imageIds []uuid.UUID) {
	this.imagesMu.Lock()
	defer this.imagesMu.Unlock()

	released := 0
	for _, imageId := range imageIds {
		if entry, exists := this.images[imageId]; exists && entry.inserts == 0 {
			delete(this.images, imageId)
			released++
		}
	}
	if released == 0 {
		return
	}

	order := make([]uuid.UUID, 0, len(this.order)-released)
	for _, imageId := range this.order {
		if entry, exists := this.images[imageId]; exists {
			entry.order = len(order)
			order = append(order, imageId)
		}
	}
	this.order = order
}

func (this *Index) acquireImage(imageId uuid.UUID, records int) error {
	this.imagesMu.Lock()
	defer this.imagesMu.Unlock()

	entry := this.getOrCreateImageEntry(imageId)
	if this.config.uniqueImages && entry.inserts > 0 {
		return ImageAlreadyIndexedError
	}
	entry.inserts++
	entry.records += records
	return nil
}

func (this *Index) getOrCreateImageEntry(imageId uuid.UUID) *imageEntry {
	entry, exists := this.images[imageId]
	if !exists {
		entry = &imageEntry{order: len(this.order)}
		this.images[imageId] = entry
		this.order = append(this.order, imageId)
	}
	return entry
}

func (this *Index) imageOrder(imageId uuid.UUID) int {
	this.imagesMu.RLock()
	defer this.imagesMu.RUnlock()

	if entry, exists := this.images[imageId]; exists {
		return entry.order
	}
	return len(this.order)
}
