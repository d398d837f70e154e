package vm

import "fmt"

// A PageTable is the authoritative mapping from every logical page to the
// frame that holds it.
type PageTable interface {
	// Lookup returns the frame that holds the page. The bool return value
	// indicates if the page is mapped.
	Lookup(page PageNumber) (FrameNumber, bool)

	// ReverseLookup returns the page that currently owns the frame.
	ReverseLookup(frame FrameNumber) (PageNumber, bool)

	// Bind maps the page to the frame. The page must be unmapped and the frame
	// must not be owned by any other page.
	Bind(page PageNumber, frame FrameNumber)

	// Unbind marks the page as unmapped.
	Unbind(page PageNumber)

	// MappedPages returns the number of pages that are currently mapped.
	MappedPages() int
}

const unmapped = -1

// NewPageTable creates a new PageTable with every page unmapped.
func NewPageTable() PageTable {
	pt := &pageTableImpl{}
	for i := range pt.entries {
		pt.entries[i] = unmapped
	}

	return pt
}

// pageTableImpl is the default implementation of a Page Table. It is a flat
// array indexed by page number.
type pageTableImpl struct {
	entries [NumPages]int
	mapped  int
}

func (pt *pageTableImpl) Lookup(page PageNumber) (FrameNumber, bool) {
	entry := pt.entries[page]
	if entry == unmapped {
		return 0, false
	}

	return FrameNumber(entry), true
}

// ReverseLookup scans the whole table.
func (pt *pageTableImpl) ReverseLookup(frame FrameNumber) (PageNumber, bool) {
	for i, entry := range pt.entries {
		if entry == int(frame) {
			return PageNumber(i), true
		}
	}

	return 0, false
}

func (pt *pageTableImpl) Bind(page PageNumber, frame FrameNumber) {
	pt.pageMustNotBeMapped(page)
	pt.frameMustBeFree(frame)

	pt.entries[page] = int(frame)
	pt.mapped++
}

func (pt *pageTableImpl) Unbind(page PageNumber) {
	pt.pageMustBeMapped(page)

	pt.entries[page] = unmapped
	pt.mapped--
}

func (pt *pageTableImpl) MappedPages() int {
	return pt.mapped
}

func (pt *pageTableImpl) pageMustBeMapped(page PageNumber) {
	if pt.entries[page] == unmapped {
		panic(fmt.Sprintf("page %d is not mapped", page))
	}
}

func (pt *pageTableImpl) pageMustNotBeMapped(page PageNumber) {
	if pt.entries[page] != unmapped {
		panic(fmt.Sprintf("page %d is already mapped", page))
	}
}

func (pt *pageTableImpl) frameMustBeFree(frame FrameNumber) {
	if frame >= NumFrames {
		panic(fmt.Sprintf("frame %d is out of range", frame))
	}

	if owner, found := pt.ReverseLookup(frame); found {
		panic(fmt.Sprintf("frame %d is owned by page %d", frame, owner))
	}
}
