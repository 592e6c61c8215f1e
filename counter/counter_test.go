package counter_test

import (
	"context"
	"testing"

	"github.com/db47h/ttcounter/core"
	"github.com/db47h/ttcounter/counter"
	"github.com/db47h/ttcounter/hwsim"
	"github.com/db47h/ttcounter/hwtest"
	"github.com/db47h/ttcounter/tb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ tb.DUT = (*counter.Bench)(nil)

var modes = []core.Mode{core.MaskOutputs, core.GateClock}

func TestGates(t *testing.T) {
	for _, m := range modes {
		t.Run(m.String(), func(t *testing.T) {
			gates, err := counter.Gates(m)
			require.NoError(t, err)
			hwtest.ComparePart(t, 16, counter.Spec(m).NewPart, gates)
		})
	}
}

func TestSpec_pins(t *testing.T) {
	p := counter.Counter("")
	assert.Equal(t, "Counter", p.Name)
	assert.Equal(t, hwsim.IO("rst_n, ena, ui_in[8], uio_in[8]"), p.Inputs)
	assert.Equal(t, hwsim.IO("uo_out[8], uio_out[8], uio_oe[8]"), p.Outputs)
	assert.Equal(t, counter.PinRstN, p.Inputs[0])
	assert.Equal(t, hwsim.BusPinName(counter.PinUIOOE, 7), p.Outputs[23])
}

type model struct {
	name string
	new  func(m core.Mode) (tb.DUT, error)
}

var models = []model{
	{"core", func(m core.Mode) (tb.DUT, error) { return tb.NewModel(m), nil }},
	{"part", func(m core.Mode) (tb.DUT, error) { return counter.NewBench(counter.Spec(m).NewPart, 0) }},
	{"gates", func(m core.Mode) (tb.DUT, error) {
		g, err := counter.Gates(m)
		if err != nil {
			return nil, err
		}
		return counter.NewBench(g, 0)
	}},
}

func TestBench_scenarios(t *testing.T) {
	for _, mdl := range models {
		for _, m := range modes {
			for _, n := range tb.Builtin() {
				t.Run(mdl.name+"/"+m.String()+"/"+n, func(t *testing.T) {
					sc, err := tb.Load(n)
					require.NoError(t, err)
					dut, err := mdl.new(m)
					require.NoError(t, err)
					defer dut.Close()

					err = tb.Run(context.Background(), dut, sc, tb.Options{KeepGoing: true})
					if n == "cocotb" && m == core.MaskOutputs {
						var fs tb.Failures
						require.True(t, errors.As(err, &fs), "expected failures, got %v", err)
						require.Len(t, fs, 1)
						assert.Equal(t, uint8(0x66), fs[0].Got)
						return
					}
					assert.NoError(t, err)
				})
			}
		}
	}
}

// Inputs change several times within the same clock cycle. Every model must
// follow them without a clock edge.
const settleScript = `
set rst_n=0 ena=1 ui_in=0 uio_in=0
settle
set rst_n=1 ui_in=0x42 uio_in=0b001
clock
expect uo_out=0x42 uio_out=0 uio_oe=0
set ena=0 uio_in=0
settle
expect uo_out=0 uio_out=0 uio_oe=0 ; masked
set ena=1 uio_in=0b100
settle
expect uo_out=0x42 uio_out=0x42 uio_oe=0xff ; driving the bus
set uio_in=0b110
settle
expect uo_out=0x42 uio_out=0x42 uio_oe=0xff ; no count without a clock
set uio_in=0
settle
expect uo_out=0x42 uio_out=0 uio_oe=0 ; bus released
set rst_n=0
settle
expect uo_out=0 uio_out=0 uio_oe=0 ; reset
set rst_n=1 uio_in=0b100
settle
expect uo_out=0 uio_out=0 uio_oe=0xff
set uio_in=0b010
clock 2
expect uo_out=2 uio_out=0 uio_oe=0
`

func TestModels_settle(t *testing.T) {
	sc, err := tb.ParseString("settle", settleScript)
	require.NoError(t, err)
	for _, mdl := range models {
		for _, m := range modes {
			t.Run(mdl.name+"/"+m.String(), func(t *testing.T) {
				dut, err := mdl.new(m)
				require.NoError(t, err)
				defer dut.Close()
				assert.NoError(t, tb.Run(context.Background(), dut, sc, tb.Options{KeepGoing: true}))
			})
		}
	}
}

func TestBench_settle(t *testing.T) {
	b, err := counter.NewBench(counter.Counter, 32)
	require.NoError(t, err)
	defer b.Close()

	b.Apply(core.Inputs{Ena: true, Data: 0x42, Ctrl: core.Load})
	b.Clock(1)
	assert.Equal(t, core.Outputs{Out: 0x42}, b.Sample())

	// settling leaves the clock where it is
	steps := b.Circuit().Steps()
	for i := 0; i < 10; i++ {
		b.Apply(core.Inputs{Ena: true, Ctrl: core.OE | core.CountEn})
		b.Settle()
		assert.Equal(t, core.Outputs{Out: 0x42, Bus: 0x42, BusOE: 0xff}, b.Sample())
		b.Apply(core.Inputs{Ena: true})
		b.Settle()
		assert.Equal(t, core.Outputs{Out: 0x42}, b.Sample())
	}
	assert.Equal(t, steps, b.Circuit().Steps())

	b.Apply(core.Inputs{Reset: true, Ena: true, Ctrl: core.OE})
	b.Settle()
	assert.Equal(t, core.Outputs{BusOE: 0xff}, b.Sample())

	b.Apply(core.Inputs{Ena: true, Ctrl: core.CountEn})
	b.Clock(3)
	assert.Equal(t, core.Outputs{Out: 3}, b.Sample())
	assert.Equal(t, steps+3*b.Circuit().SPC(), b.Circuit().Steps())
}

func TestNewBench_errors(t *testing.T) {
	_, err := counter.NewBench(counter.Counter, 16)
	assert.EqualError(t, err, "16 steps per cycle is too short, need at least 32")
}
