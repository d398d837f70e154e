package tlb

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
	"github.com/sarchlab/vmsim/sim"
)

// HookPosTLBAccess marks a TLB lookup, insertion or invalidation. The hook
// item is one of the "hit", "miss", "insert" and "invalidate" strings and the
// detail is the Entry involved.
var HookPosTLBAccess = &sim.HookPos{Name: "TLBAccess"}

// An Entry is a snapshot of one TLB slot.
type Entry struct {
	WayID int
	Page  vm.PageNumber
	Frame vm.FrameNumber
	Valid bool
}

// Comp is a fully associative TLB with first-in-first-out replacement. The
// replacement order depends only on the insertion order, never on lookups.
type Comp struct {
	*sim.HookableBase

	name    string
	numWays int

	Set internal.Set
}

// Name returns the name of the TLB.
func (c *Comp) Name() string {
	return c.name
}

// NumWays returns the number of entries of the TLB.
func (c *Comp) NumWays() int {
	return c.numWays
}

// Reset sets all the entries in the TLB to be invalid.
func (c *Comp) Reset() {
	c.Set = internal.NewSet(c.numWays)
}

// Lookup searches the TLB for the page.
func (c *Comp) Lookup(page vm.PageNumber) (vm.FrameNumber, bool) {
	wayID, frame, found := c.Set.Lookup(page)
	if !found {
		c.invoke("miss", Entry{Page: page})
		return 0, false
	}

	c.invoke("hit", Entry{WayID: wayID, Page: page, Frame: frame, Valid: true})

	return frame, true
}

// Insert adds the translation to the TLB, overwriting the oldest entry. The
// TLB does not check if the page is already present.
func (c *Comp) Insert(page vm.PageNumber, frame vm.FrameNumber) {
	wayID := c.Set.Insert(page, frame)

	c.invoke("insert",
		Entry{WayID: wayID, Page: page, Frame: frame, Valid: true})
}

// Invalidate removes every entry that holds the page. It returns the number
// of entries removed.
func (c *Comp) Invalidate(page vm.PageNumber) int {
	removed := 0

	for {
		wayID, frame, found := c.Set.Lookup(page)
		if !found {
			return removed
		}

		c.Set.Invalidate(wayID)
		removed++

		c.invoke("invalidate",
			Entry{WayID: wayID, Page: page, Frame: frame, Valid: false})
	}
}

// Entries returns a snapshot of all the slots, ordered by way.
func (c *Comp) Entries() []Entry {
	blocks := c.Set.Blocks()
	entries := make([]Entry, 0, len(blocks))

	for _, b := range blocks {
		entries = append(entries, Entry{
			WayID: b.WayID,
			Page:  b.Page,
			Frame: b.Frame,
			Valid: b.Valid,
		})
	}

	return entries
}

func (c *Comp) invoke(what string, entry Entry) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosTLBAccess,
		Item:   what,
		Detail: entry,
	})
}
