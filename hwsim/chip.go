// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"github.com/pkg/errors"
)

type chip struct {
	PartSpec
	parts []Part
}

func (c *chip) mount(s *Socket) []Component {
	var updaters []Component
	for _, p := range c.parts {
		updaters = append(updaters, s.mount(p)...)
	}
	return updaters
}

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// An Xor gate could be created like this:
//
//	xor, err := Chip("XOR", "a, b", "out",
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips:
//
//	xnor, err := Chip("XNOR", "a, b", "out",
//		xor("a=a, b=b, out=xorAB"),
//		hwlib.Not("in=xorAB, out=out"),
//	)
//
// Chip checks the wiring and returns an error if a part pin name is invalid,
// if an input is connected to a wire that nothing drives, if a wire has more
// than one driver or if a chip output is not driven.
//
func Chip(name string, inputs string, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := ParseIOSpec(inputs)
	if err != nil {
		return nil, errors.Wrap(err, name+": bad input specification")
	}
	outs, err := ParseIOSpec(outputs)
	if err != nil {
		return nil, errors.Wrap(err, name+": bad output specification")
	}

	// drivers maps wire names to a description of what drives them.
	drivers := make(map[string]string, len(ins)+len(outs))
	for _, n := range append(ins, outs...) {
		if isConstant(n) {
			return nil, errors.Errorf("%s: pin name %q is reserved", name, n)
		}
		if _, ok := drivers[n]; ok {
			return nil, errors.Errorf("%s: duplicate pin name %q", name, n)
		}
		drivers[n] = ""
	}
	for _, n := range ins {
		drivers[n] = "input " + n
	}

	for _, p := range parts {
		if p.PartSpec == nil {
			return nil, errors.Errorf("%s: nil part", name)
		}
		for _, c := range p.Conns {
			if !p.hasPin(c.PP) {
				return nil, errors.Errorf("%s: invalid pin name %s for part %s", name, c.PP, p.Name)
			}
			if !p.isOutput(c.PP) {
				continue
			}
			drv := p.Name + "." + c.PP
			switch d := drivers[c.CP]; {
			case isConstant(c.CP):
				return nil, errors.Errorf("%s: output pin %s connected to constant %q", name, drv, c.CP)
			case d == "":
				drivers[c.CP] = drv
			default:
				return nil, errors.Errorf("%s: %s: wire %s already driven by %s", name, drv, c.CP, d)
			}
		}
	}

	for _, p := range parts {
		for _, c := range p.Conns {
			if !p.isInput(c.PP) || isConstant(c.CP) {
				continue
			}
			if drivers[c.CP] == "" {
				return nil, errors.Errorf("%s: pin %s.%s connected to %s which is not connected to any output", name, p.Name, c.PP, c.CP)
			}
		}
	}

	for _, o := range outs {
		if drivers[o] == "" {
			return nil, errors.Errorf("%s: output pin %s not connected", name, o)
		}
	}

	c := &chip{
		PartSpec{
			Name:    name,
			Inputs:  ins,
			Outputs: outs,
		},
		parts,
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}
