// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"math/bits"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// A Component is the update function of a mounted part. It is called once
// per simulation step, reads its inputs with Get and must Set every one of
// its outputs, changed or not.
//
type Component func(c *Circuit)

// A MountFn mounts a part into socket s: it looks up the wire numbers of the
// part's pins and returns the components that update them. A Not gate:
//
//	not := &PartSpec{
//		Name: "Not",
//		Inputs: IO("in"),
//		Outputs: IO("out"),
//		Mount: func (s *Socket) []Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []Component{
//				func (c *Circuit) { c.Set(out, !c.Get(in)) }
//			}
//		}}
//
type MountFn func(s *Socket) []Component

// A PartSpec describes a part type: its name, pins and how to mount it. Its
// NewPart method is the NewPartFn used to place instances in a chip:
//
//	var notGate = notSpec.NewPart
//
//	c, _ := Chip("dummy", "a, b", "c, d",
//		notGate("in=a, out=c"),
//		notGate("in=b, out=d"),
//	)
//
type PartSpec struct {
	Name string
	// Distinct pin names, as returned by IO("a, b, bus[2]").
	Inputs  []string
	Outputs []string
	Mount   MountFn
}

// NewPart is a NewPartFn that wraps p with the given connections into a Part.
// It panics if the connection string cannot be parsed or references pins
// that p does not have.
//
func (p *PartSpec) NewPart(connections string) Part {
	conns, err := ParseConnections(connections)
	if err != nil {
		panic(errors.Wrap(err, p.Name))
	}
	for _, c := range conns {
		if !p.hasPin(c.PP) {
			panic(errors.Errorf("%s: invalid pin name %q", p.Name, c.PP))
		}
	}
	return Part{p, conns}
}

func (p *PartSpec) hasPin(name string) bool {
	return p.isInput(name) || p.isOutput(name)
}

func (p *PartSpec) isInput(name string) bool {
	for _, n := range p.Inputs {
		if n == name {
			return true
		}
	}
	return false
}

func (p *PartSpec) isOutput(name string) bool {
	for _, n := range p.Outputs {
		if n == name {
			return true
		}
	}
	return false
}

// A NewPartFn returns a Part wired as described by a connection string like
// "a=x, b=true, out[0..7]=bus[0..7]" (see ParseConnections).
//
type NewPartFn func(c string) Part

// A Part is a PartSpec placed in a chip, with its connections.
//
type Part struct {
	*PartSpec
	Conns []Connection
}

// Parts is a list of parts.
//
type Parts []Part

// Circuit runs a set of mounted components in lockstep. Each step, every
// component reads the wire states of the previous step and writes the next
// ones. The clk wire is high for the first half of each cycle of SPC steps.
//
type Circuit struct {
	s0    []bool // wire states frame #0
	s1    []bool // wire states frame #1
	cs    []Component
	count int  // wire count
	tpc   uint // ticks per clock cycle
	tick  uint
	hold  bool // clock stopped, see Settle

	wc []chan struct{}
	wg sync.WaitGroup
}

// NewCircuit mounts parts into a new circuit. Components are split evenly
// between workers goroutines, GOMAXPROCS if workers <= 0.
//
// stepsPerCycle, rounded up to a power of two with a minimum of 2, must leave
// enough steps in each half cycle for signals to cross the longest path
// between two registers; every hwlib part adds one step.
//
// The circuit starts on a rising edge. Dispose stops the workers.
//
func NewCircuit(workers int, stepsPerCycle uint, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}

	spc := uint(2)
	if stepsPerCycle > 2 {
		spc = 1 << bits.Len(stepsPerCycle-1)
	}

	cc := &Circuit{count: cstCount, tpc: spc}
	wrap, err := Chip("CIRCUIT", "", "", parts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chip wrapper")
	}
	ups := wrap("").Mount(newSocket(cc))
	ups = append(ups, updClock)
	cc.cs = ups
	cc.s0 = make([]bool, cc.count)
	cc.s1 = make([]bool, cc.count)
	// init constant pins
	cc.s0[cstClk] = true
	cc.s0[cstTrue] = true
	cc.s1[cstTrue] = true

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers <= 0 {
		workers = 1
	}
	size := len(ups) / workers
	if size*workers < len(ups) {
		size++
	}
	for len(ups) > 0 {
		if size > len(ups) {
			size = len(ups)
		}
		wc := make(chan struct{}, 1)
		cc.wc = append(cc.wc, wc)
		go worker(cc, ups[:size], wc)
		ups = ups[size:]
	}

	return cc, nil
}

func updClock(c *Circuit) {
	if c.s0[cstFalse] || !c.s0[cstTrue] {
		panic("true or false constants have been overwritten")
	}

	// update clock signal
	tick := c.tick + 1
	if c.hold {
		c.s1[cstClk] = c.s0[cstClk]
	} else if tick&(c.tpc-1) == 0 {
		c.s1[cstClk] = true
	} else if tick&(c.tpc/2-1) == 0 {
		c.s1[cstClk] = false
	} else {
		c.s1[cstClk] = c.s0[cstClk]
	}
}

// Dispose stops the worker goroutines. The circuit cannot be run afterwards.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
}

func worker(c *Circuit, cs []Component, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
}

func (c *Circuit) allocPin() int {
	c.count++
	return c.count - 1
}

// Steps returns the number of clocked steps run so far. Steps run by Settle
// are not counted.
//
func (c *Circuit) Steps() uint {
	return c.tick
}

// SPC returns the number of steps per clock cycle, after rounding.
//
func (c *Circuit) SPC() uint {
	return c.tpc
}

// AtTick reports whether components are running on a rising edge of clk.
// It is always false while the clock is stopped by Settle.
//
func (c *Circuit) AtTick() bool {
	return !c.hold && c.Steps()&(c.SPC()-1) == 0
}

// AtTock reports whether components are running on a falling edge of clk.
//
func (c *Circuit) AtTock() bool {
	return !c.hold && (c.Steps()+c.SPC()/2)&(c.SPC()-1) == 0
}

// Get returns the state of wire n as of the previous step. Wire numbers come
// from the Socket passed to a MountFn.
//
func (c *Circuit) Get(n int) bool {
	return c.s0[n]
}

// Set sets the state of wire n for the next step.
//
func (c *Circuit) Set(n int, s bool) {
	c.s1[n] = s
}

func (c *Circuit) update() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- struct{}{}
	}
	c.wg.Wait()
	c.s0, c.s1 = c.s1, c.s0
}

// Step runs all components once and advances the step counter, and with it
// the clock.
//
func (c *Circuit) Step() {
	c.update()
	c.tick++
}

// Settle runs all components n times with the clock stopped: clk keeps its
// level, Steps does not move and clocked parts see no edge. Combinational
// logic and asynchronous inputs still propagate, one part per step.
//
func (c *Circuit) Settle(n int) {
	c.hold = true
	for i := 0; i < n; i++ {
		c.update()
	}
	c.hold = false
}

// Tick steps while clk is high. Called at the start of a cycle, its first
// step is the one where clocked parts see the rising edge, and it returns
// mid-cycle, once clk has gone low.
//
func (c *Circuit) Tick() {
	for c.Get(cstClk) {
		c.Step()
	}
}

// Tock steps while clk is low. It returns as soon as clk is high again, at the
// start of the next cycle. Clocked parts see that edge on the next Step, so
// a full cycle from mid-cycle is Tock followed by Tick.
//
func (c *Circuit) Tock() {
	for !c.Get(cstClk) {
		c.Step()
	}
}

// TickTock runs Tick then Tock: a full cycle when starting on a rising edge.
//
func (c *Circuit) TickTock() {
	c.Tick()
	c.Tock()
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }
