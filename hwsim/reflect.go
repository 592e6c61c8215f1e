// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Updater is the interface that custom components built using reflection must
// implement. See MakePart.
//
type Updater interface {
	Update(c *Circuit)
}

// a pin or bus field
type pinField struct {
	index int
	name  string
	input bool
	bits  int // 0 for a single pin
}

func pinFields(typ reflect.Type) []pinField {
	var fs []pinField
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		pf := pinField{index: i, name: strings.ToLower(f.Name)}
		tv := strings.Split(tag, ",")
		if len(tv) > 2 {
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if len(tv) == 2 && tv[1] != "" {
			pf.name = tv[1]
		}
		switch tv[0] {
		case "in":
			pf.input = true
		case "out":
		default:
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		switch ft := f.Type; {
		case ft.Kind() == reflect.Int:
		case ft.Kind() == reflect.Array && ft.Elem().Kind() == reflect.Int && ft.Len() > 0:
			pf.bits = ft.Len()
		default:
			panic(errors.Errorf("unsupported type %q for field %q in %q", ft, f.Name, typ.Name()))
		}
		if f.PkgPath != "" {
			panic(errors.Errorf("unexported pin field %q in %q", f.Name, typ.Name()))
		}
		fs = append(fs, pf)
	}
	return fs
}

// MakePart wraps an Updater into a custom component.
// Input/output pins are identified by field tags.
//
// The field tag must be `hw:"in"` or `hw:"out"` to identify input and output
// pins. By default, the pin name is the field name in lowercase. A specific
// pin name can be forced by adding it in the tag: `hw:"in,pin_name"`.
//
// Pins must be of type int and buses arrays of int. When mounted, they hold
// the pin numbers to use with Circuit.Get and Circuit.Set.
//
// t must be a pointer to a struct. Every mounted instance starts as a shallow
// copy of *t, so untagged fields can be used to configure the part. A nil
// pointer is fine if there is nothing to configure:
//
//	var mux4 = hwsim.MakePart((*mux4Impl)(nil))
//
func MakePart(t Updater) *PartSpec {
	typ := reflect.TypeOf(t)
	if typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		panic(errors.Errorf("unsupported type %q", typ))
	}
	typ = typ.Elem()
	fs := pinFields(typ)

	sp := &PartSpec{Name: typ.Name()}
	for _, f := range fs {
		pins := []string{f.name}
		if f.bits > 0 {
			pins = bus(f.name, f.bits)
		}
		if f.input {
			sp.Inputs = append(sp.Inputs, pins...)
		} else {
			sp.Outputs = append(sp.Outputs, pins...)
		}
	}

	proto := reflect.ValueOf(t)
	sp.Mount = func(s *Socket) []Component {
		v := reflect.New(typ)
		e := v.Elem()
		if !proto.IsNil() {
			e.Set(proto.Elem())
		}
		for _, f := range fs {
			fv := e.Field(f.index)
			if f.bits == 0 {
				fv.SetInt(int64(s.Pin(f.name)))
				continue
			}
			for i, n := range s.Bus(f.name, f.bits) {
				fv.Index(i).SetInt(int64(n))
			}
		}
		return []Component{v.Interface().(Updater).Update}
	}
	return sp
}

func bus(name string, bits int) []string {
	r := make([]string, bits)
	for i := range r {
		r[i] = BusPinName(name, i)
	}
	return r
}
