package core_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/ttcounter/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var modes = []core.Mode{core.MaskOutputs, core.GateClock}

// loaded returns a core holding v.
func loaded(mode core.Mode, v uint8) *core.Core {
	c := core.New(mode)
	c.Step(core.Inputs{Ena: true, Data: v, Ctrl: core.Load})
	return c
}

func TestControl(t *testing.T) {
	tests := []struct {
		name            string
		c               core.Control
		load, count, oe bool
	}{
		{"none", 0, false, false, false},
		{"load", 0b001, true, false, false},
		{"count", 0b010, false, true, false},
		{"oe", 0b100, false, false, true},
		{"all", 0b111, true, true, true},
		{"upper bits ignored", 0b11111000, false, false, false},
		{"upper bits with load", 0b10000001, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.load, tt.c.Load(), "Load")
			assert.Equal(t, tt.count, tt.c.CountEn(), "CountEn")
			assert.Equal(t, tt.oe, tt.c.OE(), "OE")
			assert.Equal(t, tt.c&0b111, core.MakeControl(tt.load, tt.count, tt.oe))
		})
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name  string
		value uint8
		ena   bool
		ctrl  core.Control
		want  core.Outputs
	}{
		{"disabled", 0x42, false, 0, core.Outputs{}},
		{"disabled with oe", 0x42, false, core.OE, core.Outputs{}},
		{"enabled tri-stated", 0x42, true, 0, core.Outputs{Out: 0x42}},
		{"enabled load only", 0x42, true, core.Load | core.CountEn, core.Outputs{Out: 0x42}},
		{"enabled driving", 0x42, true, core.OE, core.Outputs{Out: 0x42, Bus: 0x42, BusOE: 0xFF}},
		{"driving zero", 0, true, core.OE, core.Outputs{BusOE: 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.Eval(tt.value, tt.ena, tt.ctrl))
		})
	}
}

func TestNew(t *testing.T) {
	for _, m := range modes {
		c := core.New(m)
		assert.Equal(t, uint8(0), c.Value())
		assert.Equal(t, m, c.Mode())
	}
}

func TestReset_dominance(t *testing.T) {
	for _, m := range modes {
		f := func(start, data uint8, ena bool, ctrl core.Control) bool {
			c := loaded(m, start)
			c.Step(core.Inputs{Reset: true, Ena: ena, Data: data, Ctrl: ctrl})
			return c.Value() == 0
		}
		require.NoError(t, quick.Check(f, nil), m.String())
	}
}

func TestSettle_async_reset(t *testing.T) {
	c := loaded(core.MaskOutputs, 0x99)
	out := c.Settle(core.Inputs{Ena: true})
	assert.Equal(t, core.Outputs{Out: 0x99}, out, "settle without reset must not change the value")

	out = c.Settle(core.Inputs{Reset: true, Ena: true, Data: 0x12, Ctrl: core.Load | core.OE})
	assert.Equal(t, uint8(0), c.Value())
	assert.Equal(t, core.Outputs{BusOE: 0xFF}, out)
}

func TestLoad_over_count(t *testing.T) {
	for _, m := range modes {
		f := func(start, data uint8) bool {
			c := loaded(m, start)
			c.Step(core.Inputs{Ena: true, Data: data, Ctrl: core.Load | core.CountEn})
			return c.Value() == data
		}
		require.NoError(t, quick.Check(f, nil), m.String())
	}
}

func TestCount(t *testing.T) {
	for _, m := range modes {
		f := func(start uint8, n uint8) bool {
			c := loaded(m, start)
			for i := 0; i < int(n); i++ {
				c.Step(core.Inputs{Ena: true, Ctrl: core.CountEn})
			}
			return c.Value() == start+n
		}
		require.NoError(t, quick.Check(f, nil), m.String())
	}
}

func TestHold(t *testing.T) {
	c := loaded(core.MaskOutputs, 0x10)
	for i := 0; i < 10; i++ {
		out := c.Step(core.Inputs{Ena: true, Data: 0xEE})
		require.Equal(t, core.Outputs{Out: 0x10}, out)
	}
}

func TestWraparound(t *testing.T) {
	c := loaded(core.MaskOutputs, 0xFF)
	out := c.Step(core.Inputs{Ena: true, Ctrl: core.CountEn})
	assert.Equal(t, uint8(0), c.Value())
	assert.Equal(t, uint8(0), out.Out)
	c.Step(core.Inputs{Ena: true, Ctrl: core.CountEn})
	assert.Equal(t, uint8(1), c.Value())
}

func TestOutput_masking(t *testing.T) {
	for _, m := range modes {
		f := func(start uint8, ctrls []core.Control, data uint8) bool {
			c := loaded(m, start)
			for _, ctrl := range ctrls {
				if c.Step(core.Inputs{Data: data, Ctrl: ctrl}) != (core.Outputs{}) {
					return false
				}
			}
			return true
		}
		require.NoError(t, quick.Check(f, nil), m.String())
	}
}

func TestBus_mirror(t *testing.T) {
	for _, m := range modes {
		f := func(start, data uint8, ctrl core.Control) bool {
			c := loaded(m, start)
			out := c.Step(core.Inputs{Ena: true, Data: data, Ctrl: ctrl | core.OE})
			return out.Bus == out.Out && out.Out == c.Value() && out.BusOE == 0xFF
		}
		require.NoError(t, quick.Check(f, nil), m.String())
	}
}

func TestEna_does_not_reset(t *testing.T) {
	for _, m := range modes {
		c := loaded(m, 0x33)
		// toggling ena alone never changes the value
		for i := 0; i < 4; i++ {
			c.Step(core.Inputs{Ena: i&1 == 0})
			require.Equal(t, uint8(0x33), c.Value(), m.String())
		}
	}
}

func TestEna_modes(t *testing.T) {
	in := core.Inputs{Ena: false, Ctrl: core.CountEn}

	c := loaded(core.MaskOutputs, 0x61)
	for i := 0; i < 3; i++ {
		assert.Equal(t, core.Outputs{}, c.Step(in))
	}
	assert.Equal(t, uint8(0x64), c.Value(), "register must keep counting while outputs are masked")

	c = loaded(core.GateClock, 0x61)
	for i := 0; i < 3; i++ {
		assert.Equal(t, core.Outputs{}, c.Step(in))
	}
	assert.Equal(t, uint8(0x61), c.Value(), "register must hold while the clock is gated")
}

func TestScenario(t *testing.T) {
	for _, m := range modes {
		t.Run(m.String(), func(t *testing.T) {
			c := core.New(m)
			out := c.Step(core.Inputs{Reset: true, Ena: true})
			assert.Equal(t, core.Outputs{}, out)
			c.Step(core.Inputs{Ena: true})
			c.Step(core.Inputs{Ena: true})

			out = c.Step(core.Inputs{Ena: true, Data: 0x5A, Ctrl: core.Load})
			assert.Equal(t, uint8(0x5A), out.Out)

			for i := 0; i < 7; i++ {
				out = c.Step(core.Inputs{Ena: true, Data: 0x5A, Ctrl: core.CountEn})
			}
			assert.Equal(t, core.Outputs{Out: 0x61}, out)

			out = c.Step(core.Inputs{Ena: true, Data: 0x5A, Ctrl: core.OE})
			assert.Equal(t, core.Outputs{Out: 0x61, Bus: 0x61, BusOE: 0xFF}, out)

			for i := 0; i < 3; i++ {
				out = c.Step(core.Inputs{Data: 0x5A})
				assert.Equal(t, core.Outputs{}, out)
			}

			for i := 0; i < 2; i++ {
				out = c.Step(core.Inputs{Ena: true, Data: 0x5A, Ctrl: core.CountEn})
			}
			assert.Equal(t, uint8(0x63), out.Out)
		})
	}
}
