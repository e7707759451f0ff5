package index

import (
	"context"
	"errors"
	"testing"

	"github.com/marekgalovic/spsearch/region"

	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveIdenticalImage(t *testing.T) {
	target := halvesImage(uuid.NewV4(), dark, bright)
	other := uniformImage(uuid.NewV4(), 4, 4, gray)

	index, err := Build(context.Background(), []ImageInput{target, other})
	require.Nil(t, err)

	result, err := retrieveInput(index, halvesImage(uuid.Nil, dark, bright))
	require.Nil(t, err)

	best, ok := result.Best()
	assert.True(t, ok)
	assert.True(t, uuid.Equal(target.ImageId, best))
	assert.Equal(t, 2, result.QueryRegions)
	assert.Equal(t, 2, result.CollidingRegions)
	assert.Equal(t, uint64(result.CollidingRegions), result.VotesFor(target.ImageId))
	assert.Greater(t, result.VotesFor(target.ImageId), result.VotesFor(other.ImageId))
	assert.Len(t, result.Candidates, 1)
}

func TestRetrieveNoMatch(t *testing.T) {
	// Dark square in the top-left corner on black, bright square in the
	// bottom-right corner on white.
	darkImage := uniformImage(uuid.NewV4(), 8, 8, region.Color{0, 0, 0})
	darkImage.RegionCount = 2
	darkImage.PixelCounts = []uint64{60, 4}
	brightImage := uniformImage(uuid.NewV4(), 8, 8, region.Color{255, 255, 255})
	brightImage.RegionCount = 2
	brightImage.PixelCounts = []uint64{60, 4}
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			darkImage.Labels.Set(row, col, 1)
			darkImage.Colors.Set(row, col, dark)
			brightImage.Labels.Set(7-row, 7-col, 1)
			brightImage.Colors.Set(7-row, 7-col, bright)
		}
	}

	index, err := Build(context.Background(), []ImageInput{darkImage, brightImage})
	require.Nil(t, err)

	result, err := retrieveInput(index, uniformImage(uuid.Nil, 4, 4, gray))
	require.Nil(t, err)

	best, ok := result.Best()
	assert.False(t, ok)
	assert.True(t, uuid.Equal(uuid.Nil, best))
	assert.Equal(t, uint64(0), result.Votes)
	assert.Equal(t, 1, result.QueryRegions)
	assert.Equal(t, 0, result.CollidingRegions)
	assert.Empty(t, result.Candidates)
}

func TestRetrieveTwiceInsertedImageKeepsWinning(t *testing.T) {
	twice := halvesImage(uuid.NewV4(), dark, bright)
	once := halvesImage(uuid.NewV4(), dark, gray)

	index := NewIndex()
	for _, input := range []ImageInput{twice, once, twice} {
		_, err := insertInput(index, input)
		require.Nil(t, err)
	}

	result, err := retrieveInput(index, halvesImage(uuid.Nil, dark, bright))
	require.Nil(t, err)

	best, ok := result.Best()
	assert.True(t, ok)
	assert.True(t, uuid.Equal(twice.ImageId, best))
	assert.Equal(t, uint64(4), result.VotesFor(twice.ImageId))
	assert.Equal(t, uint64(1), result.VotesFor(once.ImageId))
	assert.Equal(t, uint64(5), result.Votes)
}

func TestRetrieveTieBreaksByInsertionOrder(t *testing.T) {
	first := uuid.NewV4()
	second := uuid.NewV4()

	for i := 0; i < 20; i++ {
		index := NewIndex()
		_, err := insertInput(index, halvesImage(first, dark, bright))
		require.Nil(t, err)
		_, err = insertInput(index, halvesImage(second, dark, bright))
		require.Nil(t, err)

		result, err := retrieveInput(index, halvesImage(uuid.Nil, dark, bright))
		require.Nil(t, err)

		best, _ := result.Best()
		assert.True(t, uuid.Equal(first, best))
		require.Len(t, result.Candidates, 2)
		assert.Equal(t, result.Candidates[0].Votes, result.Candidates[1].Votes)
		assert.True(t, uuid.Equal(second, result.Candidates[1].ImageId))
	}

	index := NewIndex()
	_, err := insertInput(index, halvesImage(second, dark, bright))
	require.Nil(t, err)
	_, err = insertInput(index, halvesImage(first, dark, bright))
	require.Nil(t, err)

	result, err := retrieveInput(index, halvesImage(uuid.Nil, dark, bright))
	require.Nil(t, err)
	best, _ := result.Best()
	assert.True(t, uuid.Equal(second, best))
}

func TestRetrieveCountsOneVotePerCollidingRecord(t *testing.T) {
	id := uuid.NewV4()
	index := NewIndex()

	records := make([]region.Record, 5)
	for i := range records {
		records[i] = singlePixelRecord(0, 0, dark)
	}
	_, err := index.InsertImage(id, 4, 4, records)
	require.Nil(t, err)

	result := index.Vote(4, 4, []region.Record{singlePixelRecord(0, 0, dark)})
	assert.Equal(t, uint64(5), result.VotesFor(id))
	assert.Equal(t, 1, result.CollidingRegions)
}

func TestRetrieveSkipsUnindexableQueryRecords(t *testing.T) {
	index := NewIndex()
	_, err := insertInput(index, halvesImage(uuid.NewV4(), dark, bright))
	require.Nil(t, err)

	result := index.Vote(4, 4, []region.Record{{}, {}})
	assert.Equal(t, 0, result.QueryRegions)
	_, ok := result.Best()
	assert.False(t, ok)
}

func TestRetrieveRejectsInvalidQuery(t *testing.T) {
	index := NewIndex()
	_, err := insertInput(index, halvesImage(uuid.NewV4(), dark, bright))
	require.Nil(t, err)

	query := halvesImage(uuid.Nil, dark, bright)
	query.Labels.Set(3, 3, 7)
	result, err := retrieveInput(index, query)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, region.InvalidLabelValueError))
	assert.Equal(t, 2, index.Len())
}

func TestRetrieveDoesNotInsertQuery(t *testing.T) {
	index := NewIndex()
	_, err := insertInput(index, halvesImage(uuid.NewV4(), dark, bright))
	require.Nil(t, err)

	for i := 0; i < 3; i++ {
		_, err := retrieveInput(index, halvesImage(uuid.Nil, dark, bright))
		require.Nil(t, err)
	}
	assert.Equal(t, 2, index.Len())
	assert.Equal(t, 1, index.ImagesCount())
}
