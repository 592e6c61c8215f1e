// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tb

import (
	"github.com/db47h/ttcounter/core"
)

// A DUT is a device under test: something that can be driven one clock cycle
// at a time with core.Inputs and sampled for core.Outputs.
//
// Outputs are only guaranteed to reflect the current inputs after a call to
// Settle or Clock.
//
type DUT interface {
	// Apply sets the input signals. They stay in effect until the next call
	// to Apply.
	Apply(in core.Inputs)
	// Settle lets combinational logic and the asynchronous reset propagate
	// without a clock edge.
	Settle()
	// Clock runs n clock cycles. Outputs are sampled after the last rising
	// edge.
	Clock(n int)
	// Sample returns the current outputs.
	Sample() core.Outputs
	// Close releases any resources held by the DUT.
	Close() error
}

// Model is a DUT backed directly by a core.Core.
//
type Model struct {
	c   *core.Core
	in  core.Inputs
	out core.Outputs
}

// NewModel returns a new Model running a core in the given mode.
//
func NewModel(mode core.Mode) *Model {
	return &Model{c: core.New(mode)}
}

// Core returns the underlying core.
func (m *Model) Core() *core.Core { return m.c }

// Apply implements DUT.
func (m *Model) Apply(in core.Inputs) { m.in = in }

// Settle implements DUT.
func (m *Model) Settle() { m.out = m.c.Settle(m.in) }

// Clock implements DUT.
func (m *Model) Clock(n int) {
	for i := 0; i < n; i++ {
		m.out = m.c.Step(m.in)
	}
}

// Sample implements DUT.
func (m *Model) Sample() core.Outputs { return m.out }

// Close implements DUT.
func (m *Model) Close() error { return nil }
