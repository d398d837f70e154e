package simulation

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm/mmu"
)

// Config describes one run of the simulator.
type Config struct {
	// BackingStorePath is the image that holds the whole virtual address
	// space.
	BackingStorePath string

	// TracePath is the file with one virtual address per line.
	TracePath string

	Policy       mmu.Policy
	TLBShootdown bool

	// Lenient parses malformed trace lines as 0 instead of failing.
	Lenient bool

	// CSVTrace, RecordDB and TLBTrace name optional trace outputs. Empty
	// strings disable them.
	CSVTrace string
	RecordDB string
	TLBTrace string

	DumpState  string
	CPUProfile string
	Verbose    bool
}

// Validate checks that the config describes a run that can start.
func (c Config) Validate() error {
	if c.BackingStorePath == "" {
		return errors.New("backing store path is empty")
	}

	if c.TracePath == "" {
		return errors.New("trace path is empty")
	}

	switch c.Policy {
	case mmu.FIFO, mmu.LRU:
	default:
		return fmt.Errorf("unsupported replacement policy %s", c.Policy)
	}

	return nil
}
