// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package counter packages the counter core as hwsim parts with a
// TinyTapeout style pinout:
//
//	Inputs: rst_n, ena, ui_in[8], uio_in[8]
//	Outputs: uo_out[8], uio_out[8], uio_oe[8]
//
// rst_n is the active low asynchronous reset. uio_in bits 0 to 2 are the
// LOAD, COUNT_EN and OE control bits; the other bits are ignored.
//
package counter

import (
	"github.com/db47h/ttcounter/core"
	"github.com/db47h/ttcounter/hwlib"
	"github.com/db47h/ttcounter/hwsim"
)

// Pin names.
//
const (
	PinRstN   = "rst_n"
	PinEna    = "ena"
	PinUIIn   = "ui_in"
	PinUIOIn  = "uio_in"
	PinUOOut  = "uo_out"
	PinUIOOut = "uio_out"
	PinUIOOE  = "uio_oe"
)

const (
	inputs  = "rst_n, ena, ui_in[8], uio_in[8]"
	outputs = "uo_out[8], uio_out[8], uio_oe[8]"
)

// part is the built-in counter. Pin numbers are set by hwsim.MakePart.
type part struct {
	RstN   int    `hw:"in,rst_n"`
	Ena    int    `hw:"in"`
	UIIn   [8]int `hw:"in,ui_in"`
	UIOIn  [8]int `hw:"in,uio_in"`
	UOOut  [8]int `hw:"out,uo_out"`
	UIOOut [8]int `hw:"out,uio_out"`
	UIOOE  [8]int `hw:"out,uio_oe"`

	mode core.Mode
	c    *core.Core
}

func (p *part) Update(c *hwsim.Circuit) {
	if p.c == nil {
		p.c = core.New(p.mode)
	}
	in := core.Inputs{
		Reset: !c.Get(p.RstN),
		Ena:   c.Get(p.Ena),
		Data:  uint8(hwlib.Uint64(c, p.UIIn[:])),
		Ctrl:  core.Control(hwlib.Uint64(c, p.UIOIn[:])),
	}
	var out core.Outputs
	if c.AtTick() {
		out = p.c.Step(in)
	} else {
		out = p.c.Settle(in)
	}
	hwlib.SetUint64(c, p.UOOut[:], uint64(out.Out))
	hwlib.SetUint64(c, p.UIOOut[:], uint64(out.Bus))
	hwlib.SetUint64(c, p.UIOOE[:], uint64(out.BusOE))
}

// Spec returns the PartSpec of a counter built around a core.Core in the
// given mode.
//
// The reset is level sensitive: while rst_n is low, the counter is cleared on
// every simulation step. Otherwise the register only updates on the rising
// edge of the clock. Outputs are updated on every step.
//
func Spec(mode core.Mode) *hwsim.PartSpec {
	ps := hwsim.MakePart(&part{mode: mode})
	ps.Name = "Counter"
	return ps
}

var counter = Spec(core.MaskOutputs)

// Counter returns a counter part in MaskOutputs mode.
//
//	Inputs: rst_n, ena, ui_in[8], uio_in[8]
//	Outputs: uo_out[8], uio_out[8], uio_oe[8]
//
func Counter(w string) hwsim.Part { return counter.NewPart(w) }

// Gates returns a gate level implementation of the counter built from hwlib
// parts. It behaves like Spec(mode) but takes a few more simulation steps for
// its outputs to settle.
//
func Gates(mode core.Mode) (hwsim.NewPartFn, error) {
	d := "next"
	parts := hwsim.Parts{
		hwlib.Not("in=rst_n, out=rst"),
		hwlib.IncN(8)("in[0..7]=q[0..7], out[0..7]=inc[0..7]"),
		hwlib.Mux8("a[0..7]=q[0..7], b[0..7]=inc[0..7], sel=uio_in[1], out[0..7]=cnt[0..7]"),
		hwlib.Mux8("a[0..7]=cnt[0..7], b[0..7]=ui_in[0..7], sel=uio_in[0], out[0..7]=next[0..7]"),
	}
	if mode == core.GateClock {
		// hold q while disabled
		d = "d"
		parts = append(parts, hwlib.Mux8("a[0..7]=q[0..7], b[0..7]=next[0..7], sel=ena, out[0..7]=d[0..7]"))
	}
	parts = append(parts,
		hwlib.DFFR8("in[0..7]="+d+"[0..7], rst=rst, out[0..7]=q[0..7]"),
		hwlib.And("a=ena, b=uio_in[2], out=drive"),
		hwlib.And8("a[0..7]=q[0..7], b[0..7]=ena, out[0..7]=uo_out[0..7]"),
		hwlib.And8("a[0..7]=q[0..7], b[0..7]=drive, out[0..7]=uio_out[0..7]"),
		hwlib.And8("a[0..7]=true, b[0..7]=drive, out[0..7]=uio_oe[0..7]"),
	)
	return hwsim.Chip("CounterGates", inputs, outputs, parts...)
}
