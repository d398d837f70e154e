package tlb

import (
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build TLBs
type Builder struct {
	numWays int
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{
		numWays: 16,
	}
}

// WithNumWays sets the number of entries in the TLB.
func (b Builder) WithNumWays(n int) Builder {
	b.numWays = n
	return b
}

// Build creates a new TLB
func (b Builder) Build(name string) *Comp {
	if b.numWays <= 0 {
		panic("TLB must have at least one entry")
	}

	tlb := &Comp{}
	tlb.HookableBase = sim.NewHookableBase()
	tlb.name = name
	tlb.numWays = b.numWays

	tlb.Reset()

	return tlb
}
