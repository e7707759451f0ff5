package index

import (
	uuid "github.com/satori/go.uuid"
)

// Candidates are ranked by votes, highest first. Equal votes are ordered by the
// position at which the image was first inserted into the index.
type Candidates []Candidate

type Candidate struct {
	ImageId uuid.UUID
	Votes   uint64
	order   int
}

func (this Candidates) Len() int {
	return len(this)
}

func (this Candidates) Swap(i, j int) {
	this[i], this[j] = this[j], this[i]
}

func (this Candidates) Less(i, j int) bool {
	if this[i].Votes != this[j].Votes {
		return this[i].Votes > this[j].Votes
	}
	return this[i].order < this[j].order
}
