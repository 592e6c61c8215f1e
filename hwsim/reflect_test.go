package hwsim_test

import (
	"testing"

	hl "github.com/db47h/ttcounter/hwlib"
	hw "github.com/db47h/ttcounter/hwsim"
	"github.com/db47h/ttcounter/hwtest"
)

type testPart struct {
	A   [4]int `hw:"in"`
	B   [4]int `hw:"in"`
	Sel int    `hw:"in"`
	Out [4]int `hw:"out"`
}

func (t *testPart) Update(c *hw.Circuit) {
	src := t.A
	if c.Get(t.Sel) {
		src = t.B
	}
	for i, o := range t.Out {
		c.Set(o, c.Get(src[i]))
	}
}

func Test_MakePart(t *testing.T) {
	m, err := hw.Chip("myMux4", "a[4], b[4], sel", "out[4]",
		hl.Mux("a=a[0], b=b[0], sel=sel, out=out[0]"),
		hl.Mux("a=a[1], b=b[1], sel=sel, out=out[1]"),
		hl.Mux("a=a[2], b=b[2], sel=sel, out=out[2]"),
		hl.Mux("a=a[3], b=b[3], sel=sel, out=out[3]"),
	)
	if err != nil {
		t.Fatal(err)
	}

	p := hw.MakePart((*testPart)(nil))
	if p.Name != "testPart" {
		t.Fatalf("bad part name %q", p.Name)
	}
	hwtest.ComparePart(t, 8, m, p.NewPart)
}

// xorN xors its input with a configurable mask.
type xorN struct {
	In   [2]int `hw:"in"`
	Out  [2]int `hw:"out,result"`
	mask uint64
}

func (x *xorN) Update(c *hw.Circuit) {
	hl.SetUint64(c, x.Out[:], hl.Uint64(c, x.In[:])^x.mask)
}

func Test_MakePart_config(t *testing.T) {
	p := hw.MakePart(&xorN{mask: 2})
	if got, want := p.Outputs, hw.IO("result[2]"); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("bad outputs %v", got)
	}
	var out uint64
	c, err := hw.NewCircuit(1, 2,
		hl.InputN(2, func() uint64 { return 1 })("out[0..1]=x[0..1]"),
		p.NewPart("in[0..1]=x[0..1], result[0..1]=y[0..1]"),
		hl.OutputN(2, func(v uint64) { out = v })("in[0..1]=y[0..1]"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()
	for i := 0; i < 3; i++ {
		c.Step()
	}
	if out != 3 {
		t.Fatalf("expected 3, got %d", out)
	}
}

type badTag struct {
	A int `hw:"inout"`
}

func (*badTag) Update(*hw.Circuit) {}

type badType struct {
	A bool `hw:"in"`
}

func (*badType) Update(*hw.Circuit) {}

type unexported struct {
	a int `hw:"in"`
}

func (*unexported) Update(*hw.Circuit) {}

type notStruct int

func (notStruct) Update(*hw.Circuit) {}

func Test_MakePart_panics(t *testing.T) {
	data := []struct {
		name string
		u    hw.Updater
		err  string
	}{
		{"tag", (*badTag)(nil), `unsupported tag "inout" for field "A" in "badTag"`},
		{"type", (*badType)(nil), `unsupported type "bool" for field "A" in "badType"`},
		{"unexported", (*unexported)(nil), `unexported pin field "a" in "unexported"`},
		{"not a struct", notStruct(0), `unsupported type "hwsim_test.notStruct"`},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok {
					t.Fatalf("expected error panic, got %v", r)
				}
				if err.Error() != d.err {
					t.Fatalf("expected %q, got %q", d.err, err.Error())
				}
			}()
			hw.MakePart(d.u)
		})
	}
}
