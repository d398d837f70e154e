package mmu

import (
	"fmt"
	"strings"

	"github.com/sarchlab/vmsim/mem/vm"
)

// Policy selects how the MMU picks the page to evict once every frame is in
// use.
type Policy int

// The supported replacement policies.
const (
	FIFO Policy = iota
	LRU
)

func (p Policy) String() string {
	switch p {
	case FIFO:
		return "fifo"
	case LRU:
		return "lru"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a policy selector into a Policy. It accepts the policy
// names and the numeric selectors "0" (FIFO) and "1" (LRU). Any other value is
// rejected.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo", "0":
		return FIFO, nil
	case "lru", "1":
		return LRU, nil
	default:
		return 0, fmt.Errorf(
			"unknown replacement policy %q, want fifo (0) or lru (1)", s)
	}
}

// A VictimFinder decides which page should be evicted.
type VictimFinder interface {
	// Touch records that the page was accessed at the page-table level while
	// translating the address with the given ordinal.
	Touch(page vm.PageNumber, ordinal uint64)

	// FindVictim returns the page to evict and the frame it occupies.
	// numAllocated is the number of frames the MMU has allocated so far,
	// counting reuses.
	FindVictim(
		pageTable vm.PageTable,
		numAllocated uint64,
	) (vm.PageNumber, vm.FrameNumber)
}

// NewVictimFinder creates the VictimFinder that implements the policy.
func NewVictimFinder(p Policy) VictimFinder {
	switch p {
	case FIFO:
		return NewFIFOVictimFinder()
	case LRU:
		return NewLRUVictimFinder()
	default:
		panic(fmt.Sprintf("unsupported policy %s", p))
	}
}

// FIFOVictimFinder evicts frames in the order they were first allocated,
// cycling through all the frames.
type FIFOVictimFinder struct{}

// NewFIFOVictimFinder returns a newly constructed FIFO victim finder.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// Touch does nothing. The FIFO order does not depend on accesses.
func (e *FIFOVictimFinder) Touch(vm.PageNumber, uint64) {}

// FindVictim evicts the frame at numAllocated modulo the number of frames.
// The owner of the frame is found with a reverse lookup.
func (e *FIFOVictimFinder) FindVictim(
	pageTable vm.PageTable,
	numAllocated uint64,
) (vm.PageNumber, vm.FrameNumber) {
	frame := vm.FrameNumber(numAllocated % vm.NumFrames)

	page, found := pageTable.ReverseLookup(frame)
	if !found {
		panic(fmt.Sprintf("frame %d has no owner", frame))
	}

	return page, frame
}

// LRUVictimFinder evicts the mapped page whose last page-table level access
// is the oldest.
type LRUVictimFinder struct {
	lastAccess [vm.NumPages]uint64
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// Touch records the ordinal as the last access of the page.
func (e *LRUVictimFinder) Touch(page vm.PageNumber, ordinal uint64) {
	e.lastAccess[page] = ordinal
}

// LastAccess returns the ordinal of the last page-table level access of the
// page, or 0 if the page was never accessed.
func (e *LRUVictimFinder) LastAccess(page vm.PageNumber) uint64 {
	return e.lastAccess[page]
}

// FindVictim scans all the pages in order. Among the mapped pages, the one
// with the smallest last access wins; ties go to the lowest page number.
func (e *LRUVictimFinder) FindVictim(
	pageTable vm.PageTable,
	_ uint64,
) (vm.PageNumber, vm.FrameNumber) {
	var (
		victim      vm.PageNumber
		victimFrame vm.FrameNumber
		found       bool
	)

	for i := 0; i < vm.NumPages; i++ {
		page := vm.PageNumber(i)

		frame, mapped := pageTable.Lookup(page)
		if !mapped {
			continue
		}

		if !found || e.lastAccess[page] < e.lastAccess[victim] {
			victim = page
			victimFrame = frame
			found = true
		}
	}

	if !found {
		panic("no mapped page to evict")
	}

	return victim, victimFrame
}
