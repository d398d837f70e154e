package simulation

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/mem"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	config Config
	logger *log.Logger
	output io.Writer
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		logger: log.New(io.Discard, "", 0),
		output: io.Discard,
	}
}

// WithConfig sets what the simulation runs.
func (b Builder) WithConfig(config Config) Builder {
	b.config = config
	return b
}

// WithLogger sets where diagnostics go.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithOutput sets where the per-address results and the summary go.
func (b Builder) WithOutput(w io.Writer) Builder {
	b.output = w
	return b
}

// Build opens the inputs and the outputs named by the config and builds the
// MMU. Everything opened so far is released when an error is returned.
func (b Builder) Build() (s *Simulation, err error) {
	err = b.config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s = &Simulation{
		id:      xid.New().String(),
		config:  b.config,
		logger:  b.logger,
		output:  b.output,
		monitor: monitoring.NewMonitor(b.monitorLogger()),
	}

	defer func() {
		if err != nil {
			s.Terminate()
			s = nil
		}
	}()

	s.backingStore, err = mem.OpenBackingStore(
		b.config.BackingStorePath, vm.VirtualMemorySize, b.logger)
	if err != nil {
		return s, err
	}

	s.traceFile, err = os.Open(b.config.TracePath)
	if err != nil {
		return s, fmt.Errorf("open trace: %w", err)
	}

	s.mmu = mmu.MakeBuilder().
		WithPolicy(b.config.Policy).
		WithTLBShootdown(b.config.TLBShootdown).
		WithBackingStore(s.backingStore).
		Build("MMU")
	s.monitor.RegisterComponent(s.mmu)

	err = b.attachTracers(s)

	return s, err
}

func (b Builder) monitorLogger() *log.Logger {
	if b.config.Verbose {
		return b.logger
	}

	return log.New(io.Discard, "", 0)
}

func (b Builder) attachTracers(s *Simulation) error {
	if b.config.Verbose {
		s.mmu.AcceptHook(tracing.NewLogHook(b.logger))
	}

	if b.config.CSVTrace != "" {
		s.csvTracer = tracing.NewCSVTraceWriter(b.config.CSVTrace)

		err := s.csvTracer.Init()
		if err != nil {
			s.csvTracer = nil
			return err
		}

		s.mmu.AcceptHook(s.csvTracer)
	}

	if b.config.RecordDB != "" {
		recorder, err := datarecording.Open(b.config.RecordDB, b.logger)
		if err != nil {
			return err
		}

		s.dataRecorder = recorder
		s.dbTracer = tracing.NewDBTracer(recorder)
		s.mmu.AcceptHook(s.dbTracer)

		s.execRecorder = datarecording.NewExecRecorder(recorder)
		s.execRecorder.Start()
		s.execRecorder.Set("Simulation ID", s.id)
		s.execRecorder.Set("Backing Store", b.config.BackingStorePath)
		s.execRecorder.Set("Trace", b.config.TracePath)
		s.execRecorder.Set("Policy", b.config.Policy.String())
		s.execRecorder.Set("TLB Shootdown",
			strconv.FormatBool(b.config.TLBShootdown))
	}

	if b.config.TLBTrace != "" {
		f, err := os.Create(b.config.TLBTrace)
		if err != nil {
			return fmt.Errorf("create tlb trace: %w", err)
		}

		s.tlbTraceFile = f
		s.mmu.TLB.AcceptHook(vm.NewTLBTracer(f, s.mmu))
	}

	return nil
}
