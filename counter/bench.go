// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package counter

import (
	"github.com/db47h/ttcounter/core"
	"github.com/db47h/ttcounter/hwlib"
	"github.com/db47h/ttcounter/hwsim"
	"github.com/pkg/errors"
)

// DefaultSPC is the default number of simulation steps per clock cycle for a
// Bench.
//
const DefaultSPC = 64

// settleSteps is the number of steps run by Settle. It covers the deepest
// path from an input to an output of Gates.
const settleSteps = 8

// A Bench runs a counter part in a circuit and implements tb.DUT.
//
// Inputs are fed to the part through Input parts and outputs read back
// through Output probes. Between calls, the circuit sits in the second half
// of a clock cycle, so that inputs applied by the caller are stable when the
// next rising edge comes.
//
type Bench struct {
	c   *hwsim.Circuit
	in  core.Inputs
	out core.Outputs
}

// NewBench returns a new Bench for the given counter part. newPart is usually
// Counter, Spec(mode).NewPart or the result of Gates(mode).
//
// spc is the number of steps per clock cycle. If 0, DefaultSPC is used.
// It must be large enough for the part's outputs to settle within half a
// cycle.
//
func NewBench(newPart hwsim.NewPartFn, spc uint) (*Bench, error) {
	if spc == 0 {
		spc = DefaultSPC
	}
	if spc < 4*settleSteps {
		return nil, errors.Errorf("%d steps per cycle is too short, need at least %d", spc, 4*settleSteps)
	}
	b := new(Bench)
	c, err := hwsim.NewCircuit(0, spc,
		hwlib.Input(func() bool { return !b.in.Reset })("out=rst_n"),
		hwlib.Input(func() bool { return b.in.Ena })("out=ena"),
		hwlib.InputN(8, func() uint64 { return uint64(b.in.Data) })("out[0..7]=ui_in[0..7]"),
		hwlib.InputN(8, func() uint64 { return uint64(b.in.Ctrl) })("out[0..7]=uio_in[0..7]"),
		newPart("rst_n=rst_n, ena=ena, ui_in[0..7]=ui_in[0..7], uio_in[0..7]=uio_in[0..7], "+
			"uo_out[0..7]=uo_out[0..7], uio_out[0..7]=uio_out[0..7], uio_oe[0..7]=uio_oe[0..7]"),
		hwlib.OutputN(8, func(v uint64) { b.out.Out = uint8(v) })("in[0..7]=uo_out[0..7]"),
		hwlib.OutputN(8, func(v uint64) { b.out.Bus = uint8(v) })("in[0..7]=uio_out[0..7]"),
		hwlib.OutputN(8, func(v uint64) { b.out.BusOE = uint8(v) })("in[0..7]=uio_oe[0..7]"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "bench")
	}
	b.c = c
	// move to the falling edge
	c.Tick()
	return b, nil
}

// Circuit returns the underlying circuit.
func (b *Bench) Circuit() *hwsim.Circuit { return b.c }

// Apply implements tb.DUT.
func (b *Bench) Apply(in core.Inputs) { b.in = in }

// Settle runs the circuit with its clock stopped, long enough for new inputs
// to reach the outputs. The counter register keeps its value and the position
// in the clock cycle does not change, so Settle can be called any number of
// times between two calls to Clock.
//
func (b *Bench) Settle() {
	b.c.Settle(settleSteps)
}

// Clock implements tb.DUT. Each cycle runs up to the rising edge, then for
// half a cycle.
//
func (b *Bench) Clock(n int) {
	for i := 0; i < n; i++ {
		b.c.Tock()
		b.c.Tick()
	}
}

// Sample implements tb.DUT.
func (b *Bench) Sample() core.Outputs { return b.out }

// Close disposes of the circuit.
//
func (b *Bench) Close() error {
	b.c.Dispose()
	return nil
}
