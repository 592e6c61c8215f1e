// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/db47h/ttcounter/core"
	"github.com/pkg/errors"
)

// A Mismatch is returned by Run when a sampled output differs from the
// expected value.
//
type Mismatch struct {
	Scenario string
	Line     int
	Cycle    int
	Signal   string
	Want     uint8
	Got      uint8
	Msg      string
}

func (m *Mismatch) Error() string {
	s := fmt.Sprintf("%s:%d: cycle %d: %s = 0x%02x, expected 0x%02x", m.Scenario, m.Line, m.Cycle, m.Signal, m.Got, m.Want)
	if m.Msg != "" {
		s += ": " + m.Msg
	}
	return s
}

// Failures is returned by Run when Options.KeepGoing is set and one or more
// expectations failed.
//
type Failures []*Mismatch

func (f Failures) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d mismatch(es)", len(f))
	for _, m := range f {
		b.WriteString("\n\t")
		b.WriteString(m.Error())
	}
	return b.String()
}

// Options configures Run.
//
type Options struct {
	// Logger receives the per-cycle trace at debug level and failures at
	// error level. Defaults to slog.Default().
	Logger *slog.Logger
	// KeepGoing makes Run carry on after a failed expectation. All failures
	// are then returned as Failures.
	KeepGoing bool
}

// Pins holds the state of the input pins as set by a scenario.
//
type Pins struct {
	RstN  bool
	Ena   bool
	UIIn  uint8
	UIOIn uint8
}

func (p *Pins) set(a Assign) {
	switch a.Signal {
	case RstN:
		p.RstN = a.Value != 0
	case Ena:
		p.Ena = a.Value != 0
	case UIIn:
		p.UIIn = a.Value
	case UIOIn:
		p.UIOIn = a.Value
	}
}

// Inputs converts pin states to core inputs.
//
func (p Pins) Inputs() core.Inputs {
	return core.Inputs{
		Reset: !p.RstN,
		Ena:   p.Ena,
		Data:  p.UIIn,
		Ctrl:  core.Control(p.UIOIn),
	}
}

// Signal returns the value of the named output signal.
//
func Signal(out core.Outputs, name string) uint8 {
	switch name {
	case UOOut:
		return out.Out
	case UIOOut:
		return out.Bus
	case UIOOE:
		return out.BusOE
	}
	panic("invalid output signal " + name)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Run executes scenario sc against dut.
//
// All input pins start low, so the reset is asserted until the scenario
// releases it. Cancellation of ctx is checked between commands and between
// clock cycles.
//
func Run(ctx context.Context, dut DUT, sc *Scenario, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("scenario", sc.Name)

	var (
		pins  Pins
		cycle int
		fails Failures
	)
	dut.Apply(pins.Inputs())

	for i := range sc.Commands {
		cmd := &sc.Commands[i]
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "%s:%d", sc.Name, cmd.Line)
		}
		switch cmd.Op {
		case OpSet:
			for _, a := range cmd.Sigs {
				pins.set(a)
			}
			dut.Apply(pins.Inputs())
		case OpSettle:
			dut.Settle()
		case OpClock:
			for n := 0; n < cmd.N; n++ {
				if err := ctx.Err(); err != nil {
					return errors.Wrapf(err, "%s:%d", sc.Name, cmd.Line)
				}
				dut.Clock(1)
				cycle++
				if log.Enabled(ctx, slog.LevelDebug) {
					out := dut.Sample()
					log.DebugContext(ctx, "cycle",
						"n", cycle,
						RstN, b2i(pins.RstN),
						Ena, b2i(pins.Ena),
						UIIn, fmt.Sprintf("0x%02x", pins.UIIn),
						UIOIn, fmt.Sprintf("0b%03b", pins.UIOIn&7),
						UOOut, fmt.Sprintf("0x%02x", out.Out),
						UIOOut, fmt.Sprintf("0x%02x", out.Bus),
						UIOOE, fmt.Sprintf("0x%02x", out.BusOE))
				}
			}
		case OpExpect:
			out := dut.Sample()
			for _, a := range cmd.Sigs {
				got := Signal(out, a.Signal)
				if got == a.Value {
					continue
				}
				m := &Mismatch{
					Scenario: sc.Name,
					Line:     cmd.Line,
					Cycle:    cycle,
					Signal:   a.Signal,
					Want:     a.Value,
					Got:      got,
					Msg:      cmd.Msg,
				}
				log.ErrorContext(ctx, "mismatch", "line", m.Line, "cycle", m.Cycle, "signal", m.Signal,
					"want", fmt.Sprintf("0x%02x", m.Want), "got", fmt.Sprintf("0x%02x", m.Got), "msg", m.Msg)
				if !opts.KeepGoing {
					return m
				}
				fails = append(fails, m)
			}
		}
	}
	if len(fails) > 0 {
		return fails
	}
	log.InfoContext(ctx, "pass", "cycles", cycle)
	return nil
}
