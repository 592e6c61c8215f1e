// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package tb

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

//go:embed scenarios/*.scn
var scenarios embed.FS

const scnExt = ".scn"

// Builtin returns the sorted names of the built-in scenarios.
//
func Builtin() []string {
	ents, err := fs.ReadDir(scenarios, "scenarios")
	if err != nil {
		panic(err)
	}
	var names []string
	for _, e := range ents {
		if n := e.Name(); strings.HasSuffix(n, scnExt) {
			names = append(names, strings.TrimSuffix(n, scnExt))
		}
	}
	sort.Strings(names)
	return names
}

// Load returns the named built-in scenario.
//
func Load(name string) (*Scenario, error) {
	f, err := scenarios.Open(path.Join("scenarios", name+scnExt))
	if err != nil {
		return nil, errors.Errorf("unknown scenario %q", name)
	}
	defer f.Close()
	return Parse(name, f)
}
