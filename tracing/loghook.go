package tracing

import (
	"log"

	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/sim"
)

// LogHook writes page faults and evictions to a logger.
type LogHook struct {
	sim.LogHookBase
}

// NewLogHook returns a LogHook that writes to the logger.
func NewLogHook(logger *log.Logger) *LogHook {
	h := new(LogHook)
	h.Logger = logger

	return h
}

// Func logs faults and evictions and ignores everything else.
func (h *LogHook) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case mmu.Fault:
		h.Printf("#%d %s: page fault, page %d loaded into frame %d",
			item.Ordinal, ctx.Domain.Name(), item.Page, item.Frame)
	case mmu.Eviction:
		h.Printf("#%d %s: evicted page %d from frame %d for page %d",
			item.Ordinal, ctx.Domain.Name(),
			item.Victim, item.Frame, item.Incoming)
	}
}
