package mmu

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
)

// Mapping is one mapped page of the page table. LastAccess is the ordinal of
// the last page-table access to the page, kept only under LRU.
type Mapping struct {
	Page       vm.PageNumber
	Frame      vm.FrameNumber
	LastAccess uint64
}

// State is a copy of the parts of the MMU that are worth inspecting after a
// run.
type State struct {
	Name         string
	Policy       string
	TLBShootdown bool
	NumAllocated uint64
	Ordinal      uint64
	Stats        Stats
	TLB          []tlb.Entry
	Mappings     []Mapping
}

// State returns a copy of the current state. Mappings are ordered by page.
func (c *Comp) State() State {
	s := State{
		Name:         c.name,
		Policy:       c.policy.String(),
		TLBShootdown: c.tlbShootdown,
		NumAllocated: c.numAllocated,
		Ordinal:      c.ordinal,
		Stats:        c.stats,
		TLB:          c.TLB.Entries(),
	}

	lru, isLRU := c.VictimFinder.(*LRUVictimFinder)

	for page := 0; page < vm.NumPages; page++ {
		frame, mapped := c.PageTable.Lookup(vm.PageNumber(page))
		if !mapped {
			continue
		}

		m := Mapping{Page: vm.PageNumber(page), Frame: frame}
		if isLRU {
			m.LastAccess = lru.LastAccess(m.Page)
		}

		s.Mappings = append(s.Mappings, m)
	}

	return s
}

// Snapshot returns State as the value that monitors serialize.
func (c *Comp) Snapshot() any {
	return c.State()
}
