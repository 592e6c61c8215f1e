// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tb

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Op is a scenario command opcode.
//
type Op int

// Scenario commands.
//
const (
	OpSet    Op = iota // set input signals
	OpSettle           // propagate without a clock edge
	OpClock            // run clock cycles
	OpExpect           // check output signals
)

var opNames = [...]string{
	OpSet:    "set",
	OpSettle: "settle",
	OpClock:  "clock",
	OpExpect: "expect",
}

func (o Op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// Signal names.
//
const (
	RstN   = "rst_n"
	Ena    = "ena"
	UIIn   = "ui_in"
	UIOIn  = "uio_in"
	UOOut  = "uo_out"
	UIOOut = "uio_out"
	UIOOE  = "uio_oe"
)

// signal widths
var (
	inputs  = map[string]uint{RstN: 1, Ena: 1, UIIn: 8, UIOIn: 8}
	outputs = map[string]uint{UOOut: 8, UIOOut: 8, UIOOE: 8}
)

// An Assign assigns Value to the named signal.
//
type Assign struct {
	Signal string
	Value  uint8
}

// A Command is a single scenario command.
//
type Command struct {
	Line int      // source line number
	Op   Op       //
	Sigs []Assign // OpSet and OpExpect
	N    int      // cycle count for OpClock
	Msg  string   // optional message for OpExpect
}

// A Scenario is a parsed scenario script.
//
type Scenario struct {
	Name     string
	Doc      string // leading comment
	Commands []Command
}

// Cycles returns the total number of clock cycles run by the scenario.
//
func (s *Scenario) Cycles() int {
	n := 0
	for i := range s.Commands {
		if s.Commands[i].Op == OpClock {
			n += s.Commands[i].N
		}
	}
	return n
}

// Parse reads a scenario script from r. The name is used in error messages.
//
// Scripts contain one command per line. Anything after a '#' is a comment,
// except within the message of an expect command, which runs to the end of
// the line.
//
//	set sig=val ...            # rst_n, ena, ui_in, uio_in
//	settle                     # propagate without clock edge
//	clock [n]                  # n rising clock edges, default 1
//	expect sig=val ... [; msg] # uo_out, uio_out, uio_oe
//
// Values are decimal unless prefixed with 0x, 0b or 0o, and must fit in the
// signal's width.
//
// The comment lines at the top of the script, up to the first blank line or
// command, become the scenario's Doc.
//
func Parse(name string, r io.Reader) (*Scenario, error) {
	sc := &Scenario{Name: name}
	s := bufio.NewScanner(r)
	line := 0
	var doc []string
	inDoc := true
	for s.Scan() {
		line++
		if inDoc {
			t := strings.TrimSpace(s.Text())
			switch {
			case strings.HasPrefix(t, "#"):
				doc = append(doc, strings.TrimSpace(t[1:]))
			case t != "" || len(doc) > 0:
				inDoc = false
			}
		}
		cmd, ok, err := parseLine(s.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", name, line)
		}
		if !ok {
			continue
		}
		cmd.Line = line
		sc.Commands = append(sc.Commands, cmd)
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, name)
	}
	sc.Doc = strings.Join(doc, " ")
	return sc, nil
}

// ParseString is like Parse but reads from a string.
//
func ParseString(name, script string) (*Scenario, error) {
	return Parse(name, strings.NewReader(script))
}

func parseLine(l string) (cmd Command, ok bool, err error) {
	var msg string
	hash, semi := strings.IndexByte(l, '#'), strings.IndexByte(l, ';')
	switch {
	case semi >= 0 && (hash < 0 || semi < hash):
		l, msg = l[:semi], strings.TrimSpace(l[semi+1:])
	case hash >= 0:
		l = l[:hash]
	}
	f := strings.Fields(l)
	if len(f) == 0 {
		if msg != "" {
			return cmd, false, errors.New("message without command")
		}
		return cmd, false, nil
	}
	if msg != "" && f[0] != "expect" {
		return cmd, false, errors.Errorf("%s: unexpected message", f[0])
	}

	switch f[0] {
	case "set":
		cmd.Op = OpSet
		cmd.Sigs, err = parseAssigns(f[1:], inputs)
	case "expect":
		cmd.Op = OpExpect
		cmd.Msg = msg
		cmd.Sigs, err = parseAssigns(f[1:], outputs)
	case "settle":
		cmd.Op = OpSettle
		if len(f) > 1 {
			err = errors.New("settle: too many arguments")
		}
	case "clock":
		cmd.Op = OpClock
		cmd.N = 1
		switch len(f) {
		case 1:
		case 2:
			var n uint64
			n, err = strconv.ParseUint(f[1], 10, 31)
			if err != nil || n == 0 {
				err = errors.Errorf("clock: invalid cycle count %q", f[1])
			}
			cmd.N = int(n)
		default:
			err = errors.New("clock: too many arguments")
		}
	default:
		err = errors.Errorf("unknown command %q", f[0])
	}
	return cmd, err == nil, err
}

func parseAssigns(f []string, sigs map[string]uint) ([]Assign, error) {
	if len(f) == 0 {
		return nil, errors.New("missing signal assignment")
	}
	as := make([]Assign, 0, len(f))
	for _, a := range f {
		i := strings.IndexByte(a, '=')
		if i < 0 {
			return nil, errors.Errorf("expected sig=val, got %q", a)
		}
		name, val := a[:i], a[i+1:]
		w, ok := sigs[name]
		if !ok {
			return nil, errors.Errorf("invalid signal name %q", name)
		}
		v, err := strconv.ParseUint(val, 0, 64)
		if err != nil {
			return nil, errors.Errorf("%s: invalid value %q", name, val)
		}
		if v >= 1<<w {
			return nil, errors.Errorf("%s: value %#x does not fit in %d bits", name, v, w)
		}
		as = append(as, Assign{name, uint8(v)})
	}
	return as, nil
}
