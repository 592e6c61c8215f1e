// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package core implements the behavioral model of an 8 bits counter
// peripheral: a register with synchronous load and increment, an
// asynchronous reset, a global enable that masks all outputs and a
// tri-stateable bus output.
//
// The model is cycle stepped: one call to Step is one rising clock edge. It
// is not safe for concurrent use; the caller sequences the clock.
//
package core

// Control is the 3 bits control word sampled on each cycle. Bits above bit 2
// are ignored.
//
type Control uint8

// Control word bits.
//
const (
	Load    Control = 1 << iota // capture the data input
	CountEn                     // increment the counter
	OE                          // drive the bus output
)

// MakeControl builds a control word from its flags.
//
func MakeControl(load, countEn, oe bool) Control {
	var c Control
	if load {
		c |= Load
	}
	if countEn {
		c |= CountEn
	}
	if oe {
		c |= OE
	}
	return c
}

// Load returns true if the LOAD bit is set.
func (c Control) Load() bool { return c&Load != 0 }

// CountEn returns true if the COUNT_EN bit is set.
func (c Control) CountEn() bool { return c&CountEn != 0 }

// OE returns true if the OE bit is set.
func (c Control) OE() bool { return c&OE != 0 }

// Inputs is the input signal vector for one clock cycle.
//
type Inputs struct {
	Reset bool    // reset asserted (active level, whatever the pin polarity)
	Ena   bool    // global enable
	Data  uint8   // value captured on Load
	Ctrl  Control // control word
}

// Outputs is the output signal vector.
//
// The bus is modeled as a value and an output enable mask: a 1 bit in BusOE
// means that the corresponding bit of Bus is driven.
//
type Outputs struct {
	Out   uint8 // primary output
	Bus   uint8 // bus output value
	BusOE uint8 // bus output enable mask
}

// Mode selects how the global enable affects the register.
//
type Mode int

const (
	// MaskOutputs only masks the outputs while ena is low. The register keeps
	// updating on clock edges.
	MaskOutputs Mode = iota
	// GateClock masks the outputs and also ignores clock edges while ena is
	// low, so the register holds its value.
	GateClock
)

func (m Mode) String() string {
	switch m {
	case MaskOutputs:
		return "mask-outputs"
	case GateClock:
		return "gate-clock"
	}
	return "unknown"
}

// Eval computes the outputs for the given register value, global enable and
// control word.
//
func Eval(value uint8, ena bool, ctrl Control) Outputs {
	switch {
	case !ena:
		return Outputs{}
	case !ctrl.OE():
		return Outputs{Out: value}
	default:
		return Outputs{Out: value, Bus: value, BusOE: 0xFF}
	}
}

// Core is the counter state machine.
//
type Core struct {
	value uint8
	mode  Mode
}

// New returns a new Core in reset state.
//
func New(mode Mode) *Core {
	return &Core{mode: mode}
}

// Mode returns the core's mode.
func (c *Core) Mode() Mode { return c.mode }

// Value returns the current value of the counter register.
func (c *Core) Value() uint8 { return c.value }

// Reset clears the counter register.
//
func (c *Core) Reset() { c.value = 0 }

// Clock applies a rising clock edge to the register. Reset is not looked at:
// callers must handle it first (see Step).
//
// Load has priority over CountEn. Increments wrap around modulo 256.
//
func (c *Core) Clock(in Inputs) {
	if c.mode == GateClock && !in.Ena {
		return
	}
	switch {
	case in.Ctrl.Load():
		c.value = in.Data
	case in.Ctrl.CountEn():
		c.value++
	}
}

// Settle evaluates the core without a clock edge: the level sensitive reset is
// applied if asserted and the current outputs are returned.
//
func (c *Core) Settle(in Inputs) Outputs {
	if in.Reset {
		c.Reset()
	}
	return Eval(c.value, in.Ena, in.Ctrl)
}

// Step advances the core by one clock cycle and returns the outputs after the
// rising edge.
//
// If in.Reset is set, the register is cleared and the edge has no other effect.
//
func (c *Core) Step(in Inputs) Outputs {
	if in.Reset {
		c.Reset()
	} else {
		c.Clock(in)
	}
	return Eval(c.value, in.Ena, in.Ctrl)
}
