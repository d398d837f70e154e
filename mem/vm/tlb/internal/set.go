// Package internal provides the definition required for defining TLB.
package internal

import (
	"github.com/sarchlab/vmsim/mem/vm"
)

// A Set holds a certain number of translations. The slots are filled in
// insertion order and the oldest slot is overwritten once the set is full.
type Set interface {
	Lookup(page vm.PageNumber) (wayID int, frame vm.FrameNumber, found bool)
	Insert(page vm.PageNumber, frame vm.FrameNumber) (wayID int)
	Invalidate(wayID int)
	Blocks() []Block
}

// A Block is one slot of the set.
type Block struct {
	WayID int
	Page  vm.PageNumber
	Frame vm.FrameNumber
	Valid bool
}

// NewSet creates a new TLB set with numWays slots. All the slots start
// invalid.
func NewSet(numWays int) Set {
	if numWays <= 0 {
		panic("a TLB set must have at least one way")
	}

	s := &ringSet{}
	s.blocks = make([]Block, numWays)

	for i := range s.blocks {
		s.blocks[i].WayID = i
	}

	return s
}

// ringSet replaces its slots strictly in insertion order. The insertion
// counter never resets; the next slot is insertCount modulo the number of
// ways.
type ringSet struct {
	blocks      []Block
	insertCount uint64
}

// Lookup returns the first valid slot that holds the page. Duplicate slots
// for the same page are allowed; the lowest way wins.
func (s *ringSet) Lookup(page vm.PageNumber) (
	wayID int,
	frame vm.FrameNumber,
	found bool,
) {
	for _, b := range s.blocks {
		if b.Valid && b.Page == page {
			return b.WayID, b.Frame, true
		}
	}

	return 0, 0, false
}

// Insert writes the translation into the next slot without checking whether
// the page is already present.
func (s *ringSet) Insert(page vm.PageNumber, frame vm.FrameNumber) int {
	wayID := int(s.insertCount % uint64(len(s.blocks)))
	s.insertCount++

	b := &s.blocks[wayID]
	b.Page = page
	b.Frame = frame
	b.Valid = true

	return wayID
}

func (s *ringSet) Invalidate(wayID int) {
	s.blocks[wayID].Valid = false
}

func (s *ringSet) Blocks() []Block {
	blocks := make([]Block, len(s.blocks))
	copy(blocks, s.blocks)

	return blocks
}
