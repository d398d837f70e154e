// Package monitoring observes a running simulation: the resources the
// process uses, progress, and the state of the registered components.
package monitoring

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/rs/xid"
	"github.com/sarchlab/vmsim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor keeps track of the components and the progress of a simulation.
type Monitor struct {
	logger     *log.Logger
	components []sim.Named
}

// A Snapshotter can provide a copy of its state that is more useful to dump
// than the component itself.
type Snapshotter interface {
	Snapshot() any
}

// NewMonitor creates a new Monitor that reports to the logger.
func NewMonitor(logger *log.Logger) *Monitor {
	return &Monitor{logger: logger}
}

// RegisterComponent registers a component with the monitor.
func (m *Monitor) RegisterComponent(c sim.Named) {
	m.components = append(m.components, c)
}

// CreateProgressBar creates a new progress bar. A total of 0 means the total
// is not known in advance.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	return &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}
}

// LogProgress logs how far the bar has advanced.
func (m *Monitor) LogProgress(pb *ProgressBar) {
	if pb.Total == 0 {
		m.logger.Printf("%s: %d", pb.Name, pb.Finished)
		return
	}

	m.logger.Printf("%s: %d/%d (%.1f%%)",
		pb.Name, pb.Finished, pb.Total, 100*pb.Fraction())
}

// CompleteProgressBar logs how long the work of the bar took.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.logger.Printf("%s: %d finished in %s",
		pb.Name, pb.Finished, time.Since(pb.StartTime).Round(time.Microsecond))
}

// ResourceUsage is the amount of host resources that the process uses.
type ResourceUsage struct {
	CPUPercent float64
	MemorySize uint64
}

// ResourceUsage queries the operating system for the usage of the current
// process.
func (m *Monitor) ResourceUsage() (ResourceUsage, error) {
	pid := os.Getpid()

	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ResourceUsage{}, fmt.Errorf("inspect process %d: %w", pid, err)
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return ResourceUsage{}, fmt.Errorf("query cpu usage: %w", err)
	}

	memInfo, err := p.MemoryInfo()
	if err != nil {
		return ResourceUsage{}, fmt.Errorf("query memory usage: %w", err)
	}

	return ResourceUsage{
		CPUPercent: cpuPercent,
		MemorySize: memInfo.RSS,
	}, nil
}

// LogResourceUsage writes the resource usage to the logger. Failing to query
// the usage is logged rather than returned.
func (m *Monitor) LogResourceUsage() {
	usage, err := m.ResourceUsage()
	if err != nil {
		m.logger.Printf("resource usage unavailable: %v", err)
		return
	}

	m.logger.Printf("cpu %.1f%%, rss %.1f MiB",
		usage.CPUPercent, float64(usage.MemorySize)/(1<<20))
}

// DumpState serializes every registered component into w as a JSON object
// keyed by component name. A component that is a Snapshotter is replaced by
// its snapshot. Fields nested deeper than maxDepth are not expanded.
func (m *Monitor) DumpState(w io.Writer, maxDepth int) error {
	fmt.Fprint(w, "{")

	for i, c := range m.components {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "%q:", c.Name())

		var root any = c
		if s, ok := c.(Snapshotter); ok {
			root = s.Snapshot()
		}

		serializer := goseth.NewSerializer()
		serializer.SetRoot(root)
		serializer.SetMaxDepth(maxDepth)

		err := serializer.Serialize(w)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", c.Name(), err)
		}
	}

	fmt.Fprint(w, "}\n")

	return nil
}

// DumpStateToFile writes the state dump into a new file at path.
func (m *Monitor) DumpStateToFile(path string, maxDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state dump: %w", err)
	}

	err = m.DumpState(f, maxDepth)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return err
	}

	m.logger.Printf("state dumped to %s", path)

	return nil
}
