// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/ttcounter/hwlib"
	"github.com/db47h/ttcounter/hwsim"
)

// connString returns a connection string connecting every pin p in pins to
// the wire prefix+p.
func connString(prefix string, pins ...[]string) string {
	var b strings.Builder
	for _, ps := range pins {
		for _, n := range ps {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n)
			b.WriteRune('=')
			b.WriteString(prefix)
			b.WriteString(n)
		}
	}
	return b.String()
}

func joinConns(a, b string) string {
	if a == "" || b == "" {
		return a + b
	}
	return a + ", " + b
}

func sameIO(t testing.TB, what string, a, b []string) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("%s count mismatch: %d != %d", what, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("%s[%d] mismatch: %q != %q", what, i, a[i], b[i])
		}
	}
}

// ComparePart takes two parts and compares their outputs given the same inputs.
// Both parts must have the same Input/Output interface.
//
// The parts are fed all zeroes, all ones, then random inputs for up to 4096
// clock cycles. Inputs are changed in the middle of a clock cycle and
// outputs are compared half a cycle after the rising edge, so tpc must be
// large enough for both parts' outputs to settle within half a clock cycle.
//
func ComparePart(t testing.TB, tpc uint, part1 hwsim.NewPartFn, part2 hwsim.NewPartFn) {
	t.Helper()

	ps1, ps2 := part1("").PartSpec, part2("").PartSpec
	sameIO(t, "input", ps1.Inputs, ps2.Inputs)
	sameIO(t, "output", ps1.Outputs, ps2.Outputs)

	inputs := make([]bool, len(ps1.Inputs))
	outputs := make([][2]bool, len(ps1.Outputs))

	var parts hwsim.Parts
	for i, n := range ps1.Inputs {
		k := i
		parts = append(parts, hwlib.Input(func() bool { return inputs[k] })("out="+n))
	}
	parts = append(parts,
		part1(joinConns(connString("", ps1.Inputs), connString("p1_", ps1.Outputs))),
		part2(joinConns(connString("", ps2.Inputs), connString("p2_", ps2.Outputs))))
	for i, o := range ps1.Outputs {
		n := i
		parts = append(parts,
			hwlib.Output(func(b bool) { outputs[n][0] = b })("in=p1_"+o),
			hwlib.Output(func(b bool) { outputs[n][1] = b })("in=p2_"+o))
	}

	c, err := hwsim.NewCircuit(0, tpc, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	errString := func(oname string, ex, got bool) string {
		var b strings.Builder
		for i, n := range ps1.Inputs {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", n, inputs[i])
		}
		return fmt.Sprintf("%s vs. %s at step %d\nExpected %s => %s=%v\nGot %v", ps1.Name, ps2.Name, c.Steps(), b.String(), oname, ex, got)
	}

	check := func() {
		t.Helper()
		c.Tock()
		c.Tick()
		for o, out := range outputs {
			if out[0] != out[1] {
				t.Fatal(errString(ps1.Outputs[o], out[0], out[1]))
			}
		}
	}

	seed := time.Now().UnixNano()
	rnd := rand.New(rand.NewSource(seed))

	iter := len(ps1.Inputs)
	if iter > 12 {
		iter = 12
	}
	iter = 1 << uint(iter)

	start := time.Now()

	// move to the middle of the first cycle
	c.Tick()

	// try all 0
	check()

	// try all 1
	for in := range inputs {
		inputs[in] = true
	}
	check()

	for i := 0; i < iter; i++ {
		for in := range inputs {
			inputs[in] = rnd.Int63()&(1<<62) != 0
		}
		check()
	}

	elapsed := time.Since(start)
	ticks := c.Steps() / tpc
	t.Logf("seed %d: %d components. %d steps in %v. %d clock ticks => %.2f Hz", seed, c.Size(), c.Steps(), elapsed, ticks, float64(ticks)/elapsed.Seconds())
}
