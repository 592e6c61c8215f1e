// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package tb is a test bench for the counter: it drives a device under test
// one clock cycle at a time from a scenario script and checks its outputs.
//
// A scenario looks like this:
//
//	set rst_n=1 ena=1 ui_in=0x5a uio_in=0b001
//	clock
//	expect uo_out=0x5a ; LOAD copies ui_in into the counter
//
// See Parse for the syntax. The same scenario can be run against the
// behavioral model (NewModel) or against a simulated circuit (see package
// counter).
//
package tb
