package tracing

import (
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/sim"
)

// Table names used by the DBTracer.
const (
	TranslationTable = "translation"
	PageFaultTable   = "page_fault"
	EvictionTable    = "eviction"
	SummaryTable     = "summary"
)

type translationEntry struct {
	Ordinal         uint64
	VirtualAddress  int32
	Page            uint16
	PageOffset      uint32
	Frame           uint16
	PhysicalAddress uint32
	Value           int8
	Outcome         string
	StaleTLBHit     bool
}

type pageFaultEntry struct {
	Ordinal uint64
	Page    uint16
	Frame   uint16
	Evicted bool
}

type evictionEntry struct {
	Ordinal               uint64
	Victim                uint16
	Incoming              uint16
	Frame                 uint16
	TLBEntriesInvalidated int
}

type summaryEntry struct {
	Translations  uint64
	TLBHits       uint64
	PageTableHits uint64
	PageFaults    uint64
	Evictions     uint64
	StaleTLBHits  uint64
	FaultRate     float64
	TLBHitRate    float64
}

// DBTracer is a hook that stores translations, page faults and evictions
// into a database through a DataRecorder.
type DBTracer struct {
	backend datarecording.DataRecorder
}

// NewDBTracer creates the tables in the backend and returns the tracer.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	backend.CreateTable(TranslationTable, translationEntry{})
	backend.CreateTable(PageFaultTable, pageFaultEntry{})
	backend.CreateTable(EvictionTable, evictionEntry{})
	backend.CreateTable(SummaryTable, summaryEntry{})

	return &DBTracer{backend: backend}
}

// Func records the item of the hook.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case mmu.Translation:
		t.backend.InsertData(TranslationTable, translationEntry{
			Ordinal:         item.Ordinal,
			VirtualAddress:  item.VAddr,
			Page:            uint16(item.Page),
			PageOffset:      item.Offset,
			Frame:           uint16(item.Frame),
			PhysicalAddress: item.PAddr,
			Value:           item.Value,
			Outcome:         item.Outcome.String(),
			StaleTLBHit:     item.StaleTLBHit,
		})
	case mmu.Fault:
		t.backend.InsertData(PageFaultTable, pageFaultEntry{
			Ordinal: item.Ordinal,
			Page:    uint16(item.Page),
			Frame:   uint16(item.Frame),
			Evicted: item.Evicted,
		})
	case mmu.Eviction:
		t.backend.InsertData(EvictionTable, evictionEntry{
			Ordinal:               item.Ordinal,
			Victim:                uint16(item.Victim),
			Incoming:              uint16(item.Incoming),
			Frame:                 uint16(item.Frame),
			TLBEntriesInvalidated: item.TLBEntriesInvalidated,
		})
	}
}

// RecordSummary stores the final counters of a run and flushes the backend.
func (t *DBTracer) RecordSummary(stats mmu.Stats) {
	t.backend.InsertData(SummaryTable, summaryEntry{
		Translations:  stats.Translations,
		TLBHits:       stats.TLBHits,
		PageTableHits: stats.PageTableHits,
		PageFaults:    stats.PageFaults,
		Evictions:     stats.Evictions,
		StaleTLBHits:  stats.StaleTLBHits,
		FaultRate:     stats.FaultRate(),
		TLBHitRate:    stats.TLBHitRate(),
	})

	t.backend.Flush()
}
