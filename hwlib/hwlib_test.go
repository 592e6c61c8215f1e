package hwlib_test

import (
	"strings"
	"testing"
	"testing/quick"

	hl "github.com/db47h/ttcounter/hwlib"
	hw "github.com/db47h/ttcounter/hwsim"
)

const testTPC = 8

func testGate(t *testing.T, name string, gate hw.NewPartFn, result [][]bool) {
	t.Helper()
	part := gate("").PartSpec // build dummy gate just to get to the partspec
	inputs := make([]bool, len(part.Inputs))
	outputs := make([]bool, len(part.Outputs))
	var w strings.Builder
	parts := make(hw.Parts, 0, len(part.Inputs)+len(part.Outputs)+1)
	for i, n := range part.Inputs {
		w.WriteByte(',')
		w.WriteString(n)
		w.WriteByte('=')
		w.WriteString(n)
		in := &inputs[i]
		parts = append(parts, hl.Input(func() bool { return *in })("out="+n))
	}
	for i, n := range part.Outputs {
		w.WriteByte(',')
		w.WriteString(n)
		w.WriteByte('=')
		w.WriteString(n)
		out := &outputs[i]
		parts = append(parts, hl.Output(func(v bool) { *out = v })("in="+n))
	}
	wr := w.String()
	// trim first ','
	if len(wr) > 0 {
		wr = wr[1:]
	}
	parts = append(parts, gate(wr))
	c, err := hw.NewCircuit(0, testTPC, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	tot := 1 << uint(len(part.Inputs))
	for i := 0; i < tot; i++ {
		for bit := range inputs {
			inputs[len(inputs)-bit-1] = (i & (1 << uint(bit))) != 0
		}
		c.TickTock()
		for o, out := range outputs {
			exp := result[o][i]
			if exp != out {
				t.Errorf("%s %v = %v, got %v", part.Name, inputs, exp, out)
			}
		}
	}
}

func Test_gate_builtin(t *testing.T) {
	tr, err := hw.Chip("TRUE", "a", "out",
		hl.And("a=true, b=true, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	fa, err := hw.Chip("FALSE", "a", "out",
		hl.Or("a=false, b=false, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	td := []struct {
		name   string
		gate   hw.NewPartFn
		result [][]bool // a=0 && b=0, a=0 && b=1, a=1 && b=0, a=1 && b=1
	}{
		{"NOT", hl.Not, [][]bool{{true, false}}},
		{"AND", hl.And, [][]bool{{false, false, false, true}}},
		{"NAND", hl.Nand, [][]bool{{true, true, true, false}}},
		{"OR", hl.Or, [][]bool{{false, true, true, true}}},
		{"NOR", hl.Nor, [][]bool{{true, false, false, false}}},
		{"XOR", hl.Xor, [][]bool{{false, true, true, false}}},
		{"XNOR", hl.Xnor, [][]bool{{true, false, false, true}}},
		{"TRUE", tr, [][]bool{{true, true}}},
		{"FALSE", fa, [][]bool{{false, false}}},
		{"MUX", hl.Mux, [][]bool{{false, false, false, true, true, false, true, true}}},
		{"HalfAdder", hl.HalfAdder, [][]bool{{false, true, true, false}, {false, false, false, true}}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			testGate(t, d.name, d.gate, d.result)
		})
	}
}

func TestInput8(t *testing.T) {
	in := uint64(0)
	out := uint64(0)
	c, err := hw.NewCircuit(0, testTPC,
		hl.InputN(8, func() uint64 { return in })("out[0..7]= t[0..7]"),
		hl.OutputN(8, func(n uint64) { out = n })("in[0..7] = t[0..7]"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	in = 0xa2
	c.TickTock()
	if out != in {
		t.Fatalf("Expected %x, got %x", in, out)
	}
	// bits above the bus width are dropped
	in = 0x1ff
	c.TickTock()
	if out != 0xff {
		t.Fatalf("Expected ff, got %x", out)
	}
}

func Test_gateN_builtin(t *testing.T) {
	twoIn := "a[0..7]=a[0..7], b[0..7]=b[0..7], out[0..7]=out[0..7]"
	td := []struct {
		gate hw.Part
		ctrl func(a, b uint8) uint8
	}{
		{hl.And8(twoIn), func(a, b uint8) uint8 { return a & b }},
		{hl.Or8(twoIn), func(a, b uint8) uint8 { return a | b }},
		{hl.GateN("XOR", 8, func(a, b bool) bool { return a != b })(twoIn), func(a, b uint8) uint8 { return a ^ b }},
		{hl.Mux8("a[0..7]=a[0..7], b[0..7]=b[0..7], sel=true, out[0..7]=out[0..7]"), func(a, b uint8) uint8 { return b }},
		{hl.Mux8("a[0..7]=a[0..7], b[0..7]=b[0..7], sel=false, out[0..7]=out[0..7]"), func(a, b uint8) uint8 { return a }},
	}

	for _, d := range td {
		t.Run(d.gate.Name, func(t *testing.T) {
			var a, b, out uint64

			c, err := hw.NewCircuit(0, testTPC,
				hl.InputN(8, func() uint64 { return a })("out[0..7]=a[0..7]"),
				hl.InputN(8, func() uint64 { return b })("out[0..7]=b[0..7]"),
				d.gate,
				hl.OutputN(8, func(v uint64) { out = v })("in[0..7]=out[0..7]"),
			)
			if err != nil {
				t.Fatal(err)
			}
			defer c.Dispose()

			f := func(x, y uint8) bool {
				a, b = uint64(x), uint64(y)
				c.TickTock()
				return out == uint64(d.ctrl(x, y))
			}
			if err = quick.Check(f, nil); err != nil {
				t.Fatal(err)
			}
		})
	}
}
