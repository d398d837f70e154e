// Package tracing provides hooks that record what the MMU does.
package tracing

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/sim"
	"github.com/tebeka/atexit"
)

// CSVTraceWriter is a hook that stores every translation into a CSV file.
type CSVTraceWriter struct {
	path string
	file *os.File
	w    *bufio.Writer

	translations []mmu.Translation
	bufferSize   int
}

// NewCSVTraceWriter creates a new CSVTraceWriter. The file is path + ".csv";
// an empty path gets a unique generated name.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Path returns the name of the CSV file, available after Init.
func (t *CSVTraceWriter) Path() string {
	return t.path + ".csv"
}

// Init creates the trace file. It fails if the file already exists.
func (t *CSVTraceWriter) Init() error {
	if t.path == "" {
		t.path = "vmsim_trace_" + xid.New().String()
	}

	filename := t.Path()

	_, err := os.Stat(filename)
	if err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}

	t.file = file
	t.w = bufio.NewWriter(file)

	fmt.Fprintf(t.w, "Ordinal, VirtualAddress, Page, Offset, Frame, "+
		"PhysicalAddress, Value, Outcome, StaleTLBHit\n")

	atexit.Register(func() {
		if err := t.Close(); err != nil {
			panic(err)
		}
	})

	return nil
}

// Func records the translations reported by the MMU.
func (t *CSVTraceWriter) Func(ctx sim.HookCtx) {
	if ctx.Pos != mmu.HookPosTranslated {
		return
	}

	translation, ok := ctx.Item.(mmu.Translation)
	if !ok {
		return
	}

	t.translations = append(t.translations, translation)
	if len(t.translations) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered translations to the file.
func (t *CSVTraceWriter) Flush() {
	if t.w == nil {
		return
	}

	for _, tr := range t.translations {
		fmt.Fprintf(t.w, "%d, %d, %d, %d, %d, %d, %d, %s, %t\n",
			tr.Ordinal,
			tr.VAddr,
			tr.Page,
			tr.Offset,
			tr.Frame,
			tr.PAddr,
			tr.Value,
			tr.Outcome,
			tr.StaleTLBHit,
		)
	}

	t.translations = nil
}

// Close flushes the translations and closes the file. Closing twice is a
// no-op.
func (t *CSVTraceWriter) Close() error {
	if t.file == nil {
		return nil
	}

	t.Flush()

	err := t.w.Flush()
	if closeErr := t.file.Close(); err == nil {
		err = closeErr
	}

	t.file = nil
	t.w = nil

	return err
}
