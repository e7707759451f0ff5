package index

import (
	"sort"

	"github.com/marekgalovic/spsearch/region"

	uuid "github.com/satori/go.uuid"
)

type RetrievalResult struct {
	Candidates Candidates
	// QueryRegions is the number of indexable query records.
	QueryRegions int
	// CollidingRegions is the number of query records whose bucket was non-empty.
	CollidingRegions int
	Votes            uint64
}

// Best returns the image with the most votes. ok is false when no vote was cast.
func (this *RetrievalResult) Best() (uuid.UUID, bool) {
	if len(this.Candidates) == 0 || this.Candidates[0].Votes == 0 {
		return uuid.Nil, false
	}
	return this.Candidates[0].ImageId, true
}

func (this *RetrievalResult) VotesFor(imageId uuid.UUID) uint64 {
	for _, candidate := range this.Candidates {
		if uuid.Equal(candidate.ImageId, imageId) {
			return candidate.Votes
		}
	}
	return 0
}

// Vote quantizes every query record of a width x height image and casts one vote
// for the source image of each indexed record sharing its bucket. The query
// records are never inserted.
func (this *Index) Vote(width, height int, query []region.Record) *RetrievalResult {
	result := &RetrievalResult{}
	tally := make(map[uuid.UUID]uint64)

	for _, record := range query {
		key := this.quantizer.Key(record, width, height)
		if key == Unindexable {
			continue
		}
		result.QueryRegions++

		collided := false
		this.forEachInBucket(key, func(match *region.Record) {
			tally[match.ImageId]++
			collided = true
		})
		if collided {
			result.CollidingRegions++
		}
	}

	result.Candidates = make(Candidates, 0, len(tally))
	for imageId, votes := range tally {
		result.Candidates = append(result.Candidates, Candidate{
			ImageId: imageId,
			Votes:   votes,
			order:   this.imageOrder(imageId),
		})
		result.Votes += votes
	}
	sort.Sort(result.Candidates)

	_, matched := result.Best()
	this.config.metrics.ObserveQuery(result.Votes, matched)

	return result
}

// Retrieve aggregates a query image and votes it against the index.
func Retrieve(index *Index, labels region.LabelGrid, colors region.ColorGrid, regionCount int, pixelCounts []uint64) (*RetrievalResult, error) {
	agg, err := region.Aggregate(uuid.Nil, labels, colors, regionCount, pixelCounts)
	if err != nil {
		return nil, err
	}

	return index.Vote(labels.Cols, labels.Rows, agg.NonEmpty()), nil
}
