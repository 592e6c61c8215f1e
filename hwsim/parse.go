// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// A Connection connects the pin PP of a part to the pin CP of its
// container chip.
//
type Connection struct {
	PP string
	CP string
}

// pinExpr is a pin expression: name, name[index] or name[start..end].
type pinExpr struct {
	name       string
	start, end int
	bus        bool
	pos        int
}

func (p pinExpr) pins() []string {
	if !p.bus {
		return []string{p.name}
	}
	r := make([]string, 0, p.end-p.start+1)
	for i := p.start; i <= p.end; i++ {
		r = append(r, BusPinName(p.name, i))
	}
	return r
}

type scanner struct {
	in  string
	pos int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.in) && unicode.IsSpace(rune(s.in[s.pos])) {
		s.pos++
	}
}

func (s *scanner) eof() bool {
	s.skipSpace()
	return s.pos >= len(s.in)
}

func (s *scanner) peek() byte {
	s.skipSpace()
	if s.pos >= len(s.in) {
		return 0
	}
	return s.in[s.pos]
}

func (s *scanner) accept(b byte) bool {
	if s.peek() == b {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) errorf(format string, args ...interface{}) error {
	return errors.Errorf("in %q at pos %d: %s", s.in, s.pos+1, fmt.Sprintf(format, args...))
}

func (s *scanner) ident() (string, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.in) {
		r := rune(s.in[s.pos])
		if r == '_' || unicode.IsLetter(r) || s.pos > start && unicode.IsDigit(r) {
			s.pos++
			continue
		}
		break
	}
	if s.pos == start {
		return "", s.errorf("expected pin name")
	}
	return s.in[start:s.pos], nil
}

func (s *scanner) int() (int, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.in) && '0' <= s.in[s.pos] && s.in[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start {
		return 0, s.errorf("expected integer")
	}
	return strconv.Atoi(s.in[start:s.pos])
}

// pin parses a pin expression. If ranges is false, only a bus size is
// accepted between brackets.
func (s *scanner) pin(ranges bool) (pinExpr, error) {
	var p pinExpr
	var err error
	s.skipSpace()
	p.pos = s.pos
	if p.name, err = s.ident(); err != nil {
		return p, err
	}
	if !s.accept('[') {
		return p, nil
	}
	p.bus = true
	if p.start, err = s.int(); err != nil {
		return p, err
	}
	p.end = p.start
	if ranges && strings.HasPrefix(s.in[s.pos:], "..") {
		s.pos += 2
		if p.end, err = s.int(); err != nil {
			return p, err
		}
		if p.end < p.start {
			return p, s.errorf("invalid range %d..%d", p.start, p.end)
		}
	}
	if !s.accept(']') {
		return p, s.errorf("missing close bracket")
	}
	return p, nil
}

// ParseConnections parses a connection configuration like "partPin1=chipPinX,
// partPin2=chipPinY, ..." into a []Connection.
//
// Buses can be connected with ranges: "a[0..3]=x[4..7]" connects a[0] to x[4],
// a[1] to x[5], etc. A range can also be connected to a single pin:
// "in[0..7]=false" connects every pin of in to false.
//
func ParseConnections(c string) ([]Connection, error) {
	var conns []Connection
	seen := make(map[string]bool)
	s := &scanner{in: c}

	for !s.eof() {
		lhs, err := s.pin(true)
		if err != nil {
			return nil, err
		}
		if !s.accept('=') {
			return nil, s.errorf("expected '='")
		}
		rhs, err := s.pin(true)
		if err != nil {
			return nil, err
		}
		if !s.eof() && !s.accept(',') {
			return nil, s.errorf("expected comma or end of input")
		}

		pp, cp := lhs.pins(), rhs.pins()
		switch {
		case len(pp) == len(cp):
		case len(cp) == 1:
			// one to many
			for len(cp) < len(pp) {
				cp = append(cp, cp[0])
			}
		default:
			return nil, errors.Errorf("in %q at pos %d: pin count mismatch in pin mapping", c, lhs.pos+1)
		}
		for i := range pp {
			if seen[pp[i]] {
				return nil, errors.Errorf("in %q: pin %s connected twice", c, pp[i])
			}
			seen[pp[i]] = true
			conns = append(conns, Connection{pp[i], cp[i]})
		}
	}
	return conns, nil
}

// ParseIOSpec parses the pin specification string and returns individual pin
// names in a slice, also expanding bus declarations to individual pin names.
// For example:
//
//	ParseIOSpec("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
func ParseIOSpec(names string) ([]string, error) {
	var out []string
	s := &scanner{in: names}
	for !s.eof() {
		p, err := s.pin(false)
		if err != nil {
			return nil, err
		}
		if p.bus {
			if p.start <= 0 {
				return nil, s.errorf("invalid bus size %d", p.start)
			}
			for i := 0; i < p.start; i++ {
				out = append(out, BusPinName(p.name, i))
			}
		} else {
			out = append(out, p.name)
		}
		if !s.eof() && !s.accept(',') {
			return nil, s.errorf("expected comma or end of input")
		}
	}
	return out, nil
}

// IO is like ParseIOSpec but panics on error. Use it to build PartSpec
// Inputs and Outputs.
//
func IO(spec string) []string {
	r, err := ParseIOSpec(spec)
	if err != nil {
		panic(err)
	}
	return r
}
