package simulation

import (
	"fmt"
	"io"

	"github.com/sarchlab/vmsim/mem/vm/mmu"
)

// WriteTranslation writes the result line of one address.
func WriteTranslation(w io.Writer, t mmu.Translation) error {
	_, err := fmt.Fprintf(w,
		"Virtual address: %d Physical address: %d Value: %d\n",
		t.VAddr, t.PAddr, t.Value)

	return err
}

// WriteSummary writes the counters of a finished run. Rates are 0 when no
// address was translated.
func WriteSummary(w io.Writer, stats mmu.Stats) error {
	_, err := fmt.Fprintf(w,
		"Number of Translated Addresses = %d\n"+
			"Page Faults = %d\n"+
			"Page Fault Rate = %.3f\n"+
			"TLB Hits = %d\n"+
			"TLB Hit Rate = %.3f\n",
		stats.Translations,
		stats.PageFaults,
		stats.FaultRate(),
		stats.TLBHits,
		stats.TLBHitRate(),
	)

	return err
}
