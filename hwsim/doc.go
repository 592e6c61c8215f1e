// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package hwsim provides a naive hardware simulator and an API to compose basic
components (logic gates, muxers, flip flops, etc.) into more complex ones.

The API is designed to mimic a real hardware description language. Parts are
described by a PartSpec, wired into chips with connection strings and finally
mounted into a Circuit which runs the simulation step by step:

	c, err := hwsim.NewCircuit(0, 16,
		hwlib.InputN(8, func() uint64 { return in })("out[0..7]=data[0..7]"),
		myChip("in[0..7]=data[0..7], out[0..7]=result[0..7]"),
		hwlib.OutputN(8, func(v uint64) { out = v })("in[0..7]=result[0..7]"),
	)

Every component reads the wire states of the previous step and writes the
states of the next one, so each built-in part adds one step of propagation
delay. The circuit clock (the "clk" wire) has a fixed number of steps per
cycle. Clocked parts update their state on the rising edge (see
Circuit.AtTick).
*/
package hwsim
