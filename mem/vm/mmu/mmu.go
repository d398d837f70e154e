package mmu

import (
	"fmt"

	"github.com/sarchlab/vmsim/mem/mem"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/sim"
)

// Hook positions of the MMU.
var (
	// HookPosPageFault is invoked after a faulting page is loaded. The item is
	// a Fault.
	HookPosPageFault = &sim.HookPos{Name: "PageFault"}

	// HookPosEviction is invoked after a victim page is unmapped. The item is
	// an Eviction.
	HookPosEviction = &sim.HookPos{Name: "Eviction"}

	// HookPosTranslated is invoked once per address. The item is a
	// Translation.
	HookPosTranslated = &sim.HookPos{Name: "Translated"}
)

// Outcome tells which level resolved a translation.
type Outcome int

// The possible outcomes of a translation.
const (
	TLBHit Outcome = iota
	PageTableHit
	PageFault
)

func (o Outcome) String() string {
	switch o {
	case TLBHit:
		return "tlb-hit"
	case PageTableHit:
		return "page-table-hit"
	case PageFault:
		return "page-fault"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// A Translation is the result of translating one virtual address.
type Translation struct {
	Ordinal uint64
	VAddr   int32
	PAddr   uint32
	Value   int8
	Page    vm.PageNumber
	Offset  uint32
	Frame   vm.FrameNumber
	Outcome Outcome

	// StaleTLBHit is set when the TLB returned a frame that the page table no
	// longer assigns to the page.
	StaleTLBHit bool
}

// A Fault describes a page that was loaded from the backing store.
type Fault struct {
	Ordinal uint64
	Page    vm.PageNumber
	Frame   vm.FrameNumber
	Evicted bool
}

// An Eviction describes a page that lost its frame.
type Eviction struct {
	Ordinal  uint64
	Victim   vm.PageNumber
	Incoming vm.PageNumber
	Frame    vm.FrameNumber

	// TLBEntriesInvalidated counts the TLB entries of the victim that were
	// removed. It is always 0 when TLB shootdown is disabled.
	TLBEntriesInvalidated int
}

// Stats holds the counters of an MMU.
type Stats struct {
	Translations  uint64
	TLBHits       uint64
	PageTableHits uint64
	PageFaults    uint64
	Evictions     uint64
	StaleTLBHits  uint64
}

// FaultRate returns PageFaults / Translations, or 0 with no translations.
func (s Stats) FaultRate() float64 {
	return ratio(s.PageFaults, s.Translations)
}

// TLBHitRate returns TLBHits / Translations, or 0 with no translations.
func (s Stats) TLBHitRate() float64 {
	return ratio(s.TLBHits, s.Translations)
}

func ratio(a, b uint64) float64 {
	if b == 0 {
		return 0
	}

	return float64(a) / float64(b)
}

// Comp is the MMU. It owns the TLB, the page table, the physical memory and
// the replacement state, and translates one address at a time.
type Comp struct {
	*sim.HookableBase

	name string

	policy       Policy
	tlbShootdown bool

	TLB          *tlb.Comp
	PageTable    vm.PageTable
	VictimFinder VictimFinder
	Memory       *mem.Storage
	backingStore BackingStore

	numAllocated uint64
	ordinal      uint64
	stats        Stats
}

// Name returns the name of the MMU.
func (c *Comp) Name() string {
	return c.name
}

// Policy returns the replacement policy of the MMU.
func (c *Comp) Policy() Policy {
	return c.policy
}

// TLBShootdown tells if the TLB entries of evicted pages are invalidated.
func (c *Comp) TLBShootdown() bool {
	return c.tlbShootdown
}

// Ordinal returns the 1-based index of the latest address given to
// Translate, or 0 before the first one.
func (c *Comp) Ordinal() uint64 {
	return c.ordinal
}

// NumAllocated returns the number of frame allocations so far, counting the
// reuse of evicted frames.
func (c *Comp) NumAllocated() uint64 {
	return c.numAllocated
}

// Stats returns a copy of the counters.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Translate translates a virtual address and reads the byte it points to. A
// failed translation does not consume an ordinal.
func (c *Comp) Translate(vAddr int32) (t Translation, err error) {
	c.ordinal++
	defer func() {
		if err != nil {
			c.ordinal--
		}
	}()

	page, offset := vm.Decompose(vAddr)
	t = Translation{
		Ordinal: c.ordinal,
		VAddr:   vAddr,
		Page:    page,
		Offset:  offset,
	}

	frame, found := c.TLB.Lookup(page)
	if found {
		t.Outcome = TLBHit
		t.StaleTLBHit = c.isStale(page, frame)
	} else {
		frame, t.Outcome, err = c.walkPageTable(page)
		if err != nil {
			return Translation{}, err
		}

		c.TLB.Insert(page, frame)
	}

	t.Frame = frame
	t.PAddr = vm.Compose(frame, offset)

	data, err := c.Memory.Read(uint64(t.PAddr), 1)
	if err != nil {
		return Translation{}, fmt.Errorf("read physical memory: %w", err)
	}

	t.Value = int8(data[0])

	c.count(t)
	c.invoke(HookPosTranslated, t)

	return t, nil
}

func (c *Comp) isStale(page vm.PageNumber, frame vm.FrameNumber) bool {
	current, mapped := c.PageTable.Lookup(page)
	return !mapped || current != frame
}

func (c *Comp) count(t Translation) {
	c.stats.Translations++

	switch t.Outcome {
	case TLBHit:
		c.stats.TLBHits++
	case PageTableHit:
		c.stats.PageTableHits++
	case PageFault:
		c.stats.PageFaults++
	}

	if t.StaleTLBHit {
		c.stats.StaleTLBHits++
	}
}

func (c *Comp) walkPageTable(
	page vm.PageNumber,
) (vm.FrameNumber, Outcome, error) {
	frame, mapped := c.PageTable.Lookup(page)
	if mapped {
		c.VictimFinder.Touch(page, c.ordinal)
		return frame, PageTableHit, nil
	}

	frame, err := c.handleFault(page)
	if err != nil {
		return 0, PageFault, err
	}

	return frame, PageFault, nil
}

func (c *Comp) handleFault(page vm.PageNumber) (vm.FrameNumber, error) {
	data, err := c.backingStore.Read(vm.PageBase(page), vm.PageSize)
	if err != nil {
		return 0, fmt.Errorf("load page %d: %w", page, err)
	}

	if len(data) != vm.PageSize {
		return 0, fmt.Errorf("load page %d: got %d bytes, want %d",
			page, len(data), vm.PageSize)
	}

	frame, evicted := c.allocateFrame(page)

	err = c.Memory.WriteUnit(uint64(frame), data)
	if err != nil {
		return 0, fmt.Errorf("fill frame %d: %w", frame, err)
	}

	c.PageTable.Bind(page, frame)
	c.VictimFinder.Touch(page, c.ordinal)

	c.invoke(HookPosPageFault, Fault{
		Ordinal: c.ordinal,
		Page:    page,
		Frame:   frame,
		Evicted: evicted,
	})

	return frame, nil
}

// allocateFrame hands out never-used frames first. Once all the frames are
// used, it evicts the victim chosen by the victim finder and reuses its frame.
func (c *Comp) allocateFrame(incoming vm.PageNumber) (vm.FrameNumber, bool) {
	if c.numAllocated < vm.NumFrames {
		frame := vm.FrameNumber(c.numAllocated)
		c.numAllocated++

		return frame, false
	}

	victim, frame := c.VictimFinder.FindVictim(c.PageTable, c.numAllocated)
	c.numAllocated++

	c.PageTable.Unbind(victim)

	invalidated := 0
	if c.tlbShootdown {
		invalidated = c.TLB.Invalidate(victim)
	}

	c.stats.Evictions++

	c.invoke(HookPosEviction, Eviction{
		Ordinal:               c.ordinal,
		Victim:                victim,
		Incoming:              incoming,
		Frame:                 frame,
		TLBEntriesInvalidated: invalidated,
	})

	return frame, true
}

func (c *Comp) invoke(pos *sim.HookPos, item interface{}) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
	})
}
