package vm

import (
	"fmt"
	"io"

	"github.com/sarchlab/vmsim/sim"
)

// An OrdinalTeller tells the 1-based index of the address being translated.
type OrdinalTeller interface {
	Ordinal() uint64
}

// A TLBTracer write logs for what happened in a TLB
type TLBTracer struct {
	ordinalTeller OrdinalTeller
	writer        io.Writer
}

// NewTLBTracer produce a new TLBTracer, injecting the dependency of a writer.
func NewTLBTracer(w io.Writer, ordinalTeller OrdinalTeller) *TLBTracer {
	t := new(TLBTracer)
	t.writer = w
	t.ordinalTeller = ordinalTeller

	return t
}

// Func prints the tlb trace information.
func (t *TLBTracer) Func(ctx sim.HookCtx) {
	what, ok := ctx.Item.(string)
	if !ok {
		return
	}

	_, err := fmt.Fprintf(t.writer,
		"%d,%s,%s,%+v\n",
		t.ordinalTeller.Ordinal(),
		ctx.Domain.Name(),
		what,
		ctx.Detail)
	if err != nil {
		panic(err)
	}
}
