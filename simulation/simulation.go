// Package simulation puts together a simulator run: it opens the backing
// store and the trace, builds the MMU, attaches the tracers and reports the
// results.
package simulation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/mem"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/tracefile"
	"github.com/sarchlab/vmsim/tracing"
)

// A Simulation owns everything one run needs.
type Simulation struct {
	id     string
	config Config
	logger *log.Logger
	output io.Writer

	backingStore *mem.BackingStore
	traceFile    *os.File
	mmu          *mmu.Comp
	monitor      *monitoring.Monitor

	csvTracer    *tracing.CSVTraceWriter
	dataRecorder datarecording.DataRecorder
	dbTracer     *tracing.DBTracer
	execRecorder *datarecording.ExecRecorder
	tlbTraceFile *os.File
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// MMU returns the simulated MMU.
func (s *Simulation) MMU() *mmu.Comp {
	return s.mmu
}

// Monitor returns the monitor of the simulation.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Run translates every address of the trace, writing one result line per
// address followed by the summary. The whole trace is parsed before the
// first address is translated, so a malformed trace produces no output.
func (s *Simulation) Run() (mmu.Stats, error) {
	addrs, err := tracefile.NewReader(s.traceFile, s.config.Lenient).ReadAll()
	if err != nil {
		return mmu.Stats{}, fmt.Errorf("read trace %s: %w",
			s.config.TracePath, err)
	}

	var profiler *monitoring.CPUProfiler
	if s.config.CPUProfile != "" {
		profiler, err = monitoring.StartCPUProfile(s.config.CPUProfile)
		if err != nil {
			return mmu.Stats{}, err
		}
	}

	w := bufio.NewWriter(s.output)

	err = s.translateAll(w, addrs)
	if err == nil {
		err = WriteSummary(w, s.mmu.Stats())
	}

	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}

	if profiler != nil {
		summary, profErr := profiler.Stop(10)
		if profErr != nil {
			s.logger.Printf("cpu profile: %v", profErr)
		} else {
			summary.Log(s.logger)
		}
	}

	if err != nil {
		return s.mmu.Stats(), err
	}

	return s.mmu.Stats(), s.finish()
}

// progressSteps is the number of times the progress of a run is logged.
const progressSteps = 10

// dumpDepth expands the MMU state down to the fields of the page mappings and
// TLB entries.
const dumpDepth = 4

func (s *Simulation) translateAll(w io.Writer, addrs []int32) error {
	bar := s.monitor.CreateProgressBar("Translate", uint64(len(addrs)))

	interval := len(addrs) / progressSteps
	if interval == 0 {
		interval = 1
	}

	for i, addr := range addrs {
		t, err := s.mmu.Translate(addr)
		if err != nil {
			return err
		}

		err = WriteTranslation(w, t)
		if err != nil {
			return fmt.Errorf("write result: %w", err)
		}

		bar.IncrementFinished(1)

		if (i+1)%interval == 0 {
			s.monitor.LogProgress(bar)
		}
	}

	s.monitor.CompleteProgressBar(bar)

	return nil
}

func (s *Simulation) finish() error {
	stats := s.mmu.Stats()

	if stats.StaleTLBHits > 0 {
		s.logger.Printf("%d TLB hits used a mapping that was evicted",
			stats.StaleTLBHits)
	}

	if s.dbTracer != nil {
		s.dbTracer.RecordSummary(stats)
	}

	if s.config.Verbose {
		s.monitor.LogResourceUsage()
	}

	if s.config.DumpState != "" {
		return s.monitor.DumpStateToFile(s.config.DumpState, dumpDepth)
	}

	return nil
}

// Terminate closes every file that the simulation opened. It can be called
// more than once.
func (s *Simulation) Terminate() error {
	var errs []error

	if s.csvTracer != nil {
		errs = append(errs, s.csvTracer.Close())
		s.csvTracer = nil
	}

	if s.execRecorder != nil {
		s.execRecorder.End()
		s.execRecorder = nil
	}

	if s.dataRecorder != nil {
		errs = append(errs, s.dataRecorder.Close())
		s.dataRecorder = nil
	}

	if s.tlbTraceFile != nil {
		errs = append(errs, s.tlbTraceFile.Close())
		s.tlbTraceFile = nil
	}

	if s.traceFile != nil {
		errs = append(errs, s.traceFile.Close())
		s.traceFile = nil
	}

	if s.backingStore != nil {
		errs = append(errs, s.backingStore.Close())
	}

	return errors.Join(errs...)
}

// Run builds a simulation from the config, runs it and releases its
// resources.
func Run(config Config, output io.Writer, logger *log.Logger) (mmu.Stats, error) {
	s, err := MakeBuilder().
		WithConfig(config).
		WithOutput(output).
		WithLogger(logger).
		Build()
	if err != nil {
		return mmu.Stats{}, err
	}

	stats, err := s.Run()

	if termErr := s.Terminate(); err == nil {
		err = termErr
	}

	return stats, err
}
