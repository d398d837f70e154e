package mmu

import (
	"github.com/sarchlab/vmsim/mem/mem"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build MMU component
type Builder struct {
	policy       Policy
	backingStore BackingStore
	pageTable    vm.PageTable
	victimFinder VictimFinder
	tlbNumWays   int
	tlbShootdown bool
}

// MakeBuilder creates a new builder
func MakeBuilder() Builder {
	return Builder{
		policy:     FIFO,
		tlbNumWays: 16,
	}
}

// WithPolicy sets the replacement policy used once all frames are in use.
func (b Builder) WithPolicy(p Policy) Builder {
	b.policy = p
	return b
}

// WithBackingStore sets the store that pages are loaded from on faults.
func (b Builder) WithBackingStore(s BackingStore) Builder {
	b.backingStore = s
	return b
}

// WithPageTable sets the page table that the MMU uses. By default, the MMU
// creates an empty one.
func (b Builder) WithPageTable(pageTable vm.PageTable) Builder {
	b.pageTable = pageTable
	return b
}

// WithVictimFinder replaces the victim finder derived from the policy.
func (b Builder) WithVictimFinder(f VictimFinder) Builder {
	b.victimFinder = f
	return b
}

// WithTLBNumWays sets the number of TLB entries.
func (b Builder) WithTLBNumWays(n int) Builder {
	b.tlbNumWays = n
	return b
}

// WithTLBShootdown sets whether the TLB entries of an evicted page are
// invalidated. When disabled, stale entries stay in the TLB until they are
// overwritten by later insertions.
func (b Builder) WithTLBShootdown(enabled bool) Builder {
	b.tlbShootdown = enabled
	return b
}

// Build returns a newly created MMU component.
func (b Builder) Build(name string) *Comp {
	if b.backingStore == nil {
		panic("MMU requires a backing store")
	}

	c := &Comp{}
	c.HookableBase = sim.NewHookableBase()
	c.name = name
	c.policy = b.policy
	c.tlbShootdown = b.tlbShootdown
	c.backingStore = b.backingStore

	c.TLB = tlb.MakeBuilder().
		WithNumWays(b.tlbNumWays).
		Build(name + ".TLB")

	c.PageTable = b.pageTable
	if c.PageTable == nil {
		c.PageTable = vm.NewPageTable()
	}

	c.VictimFinder = b.victimFinder
	if c.VictimFinder == nil {
		c.VictimFinder = NewVictimFinder(b.policy)
	}

	c.Memory = mem.NewStorage(vm.PhysicalMemorySize, vm.PageSize)

	return c
}
