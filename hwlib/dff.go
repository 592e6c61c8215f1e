// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/ttcounter/hwsim"
)

// DFF returns a clocked data flip flop.
//
//	Inputs: in
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
func DFF(w string) hwsim.Part {
	return (&hwsim.PartSpec{
		Name:    "DFF",
		Inputs:  []string{pIn},
		Outputs: []string{pOut},
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			in, out := s.Pin(pIn), s.Pin(pOut)
			var curOut bool
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					// raising edge?
					if c.AtTick() {
						curOut = c.Get(in)
					}
					c.Set(out, curOut)
				}}
		}}).NewPart(w)
}

// SpecDFFRN returns the PartSpec of a N-bits data flip flop with asynchronous
// reset.
//
// The reset is level sensitive: while rst is high, out is forced to 0 on every
// simulation step regardless of the clock.
//
//	Inputs: in[bits], rst
//	Outputs: out[bits]
//	Function: if rst { out = 0 } else { out(t) = in(t-1) }
//
func SpecDFFRN(bits int) *hwsim.PartSpec {
	return &hwsim.PartSpec{
		Name:    "DFFR" + strconv.Itoa(bits),
		Inputs:  append(bus(bits, pIn), pRst),
		Outputs: bus(bits, pOut),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			in, rst, out := s.Bus(pIn, bits), s.Pin(pRst), s.Bus(pOut, bits)
			cur := make([]bool, bits)
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					switch {
					case c.Get(rst):
						for i := range cur {
							cur[i] = false
						}
					case c.AtTick():
						for i := range cur {
							cur[i] = c.Get(in[i])
						}
					}
					for i := range out {
						c.Set(out[i], cur[i])
					}
				}}
		}}
}

var dffr = hwsim.PartSpec{
	Name:    "DFFR",
	Inputs:  []string{pIn, pRst},
	Outputs: []string{pOut},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		in, rst, out := s.Pin(pIn), s.Pin(pRst), s.Pin(pOut)
		var curOut bool
		return []hwsim.Component{
			func(c *hwsim.Circuit) {
				if c.Get(rst) {
					curOut = false
				} else if c.AtTick() {
					curOut = c.Get(in)
				}
				c.Set(out, curOut)
			}}
	},
}

var dffr8 = SpecDFFRN(8)

// DFFR returns a clocked data flip flop with asynchronous reset.
//
//	Inputs: in, rst
//	Outputs: out
//	Function: if rst { out = 0 } else { out(t) = in(t-1) }
//
func DFFR(w string) hwsim.Part { return dffr.NewPart(w) }

// DFFR8 returns a 8 bits data flip flop with asynchronous reset.
//
//	Inputs: in[8], rst
//	Outputs: out[8]
//	Function: if rst { out = 0 } else { out(t) = in(t-1) }
//
func DFFR8(w string) hwsim.Part { return dffr8.NewPart(w) }
