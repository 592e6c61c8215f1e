// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/ttcounter/hwsim"
)

var hAdder = &hwsim.PartSpec{
	Name:    "HalfAdder",
	Inputs:  []string{pA, pB},
	Outputs: []string{"s", "c"},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		a, b := s.Pin(pA), s.Pin(pB)
		sum, cout := s.Pin("s"), s.Pin("c")
		return []hwsim.Component{
			func(c *hwsim.Circuit) {
				va, vb := c.Get(a), c.Get(b)
				c.Set(sum, va != vb)
				c.Set(cout, va && vb)
			}}
	}}

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder(w string) hwsim.Part {
	return hAdder.NewPart(w)
}

// IncN returns a N-bits incrementer. The result wraps around to 0 and c is
// set when in is all ones.
//
//	Inputs: in[bits]
//	Outputs: out[bits], c
//	Function: out = (in + 1) mod 2^bits
//	          c = in == 2^bits-1
//
func IncN(bits int) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "Inc" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: append(bus(bits, pOut), "c"),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			in, out, cout := s.Bus(pIn, bits), s.Bus(pOut, bits), s.Pin("c")
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					carry := true
					for i, o := range out {
						v := c.Get(in[i])
						c.Set(o, v != carry)
						carry = v && carry
					}
					c.Set(cout, carry)
				}}
		}}).NewPart
}
