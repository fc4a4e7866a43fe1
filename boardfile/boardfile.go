// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package boardfile reads board files: YAML documents holding several board
// layouts, one of which is the main board.
//
//	main: top
//	parts: true        # register the partlib parts first
//	boards:
//	  - name: top
//	    components:
//	      - {label: a, kind: switch}
//	      - {label: n, kind: not}
//	      - {label: out, kind: pin, dir: out}
//	    wires:
//	      - {from: a, to: n.in}
//	      - {from: n.out, to: out}
//
package boardfile

import (
	"io"
	"os"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/partlib"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A File is a decoded board file.
//
type File struct {
	// Main is the name of the main board. Defaults to the last board.
	Main string `yaml:"main,omitempty"`
	// Parts requests the partlib parts to be available to boards.
	Parts  bool              `yaml:"parts,omitempty"`
	Boards []logicsim.Layout `yaml:"boards"`
}

// Decode reads a board file from r.
//
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read board file")
	}
	return Parse(data)
}

// Parse decodes a board file.
//
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decode board file")
	}
	if len(f.Boards) == 0 {
		return nil, errors.New("board file has no boards")
	}
	seen := make(map[string]bool, len(f.Boards))
	for i := range f.Boards {
		n := f.Boards[i].Name
		if n == "" {
			return nil, errors.Errorf("board #%d has no name", i)
		}
		if seen[n] {
			return nil, errors.Errorf("duplicate board %q", n)
		}
		seen[n] = true
	}
	if f.Main == "" {
		f.Main = f.Boards[len(f.Boards)-1].Name
	} else if !seen[f.Main] {
		return nil, errors.Errorf("main board %q not found", f.Main)
	}
	return &f, nil
}

// Load reads the board file with the given name.
//
func Load(name string) (*File, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open board file")
	}
	defer r.Close()
	f, err := Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return f, nil
}

// Build builds all the boards in f in order. Every board other than the main
// one is registered in lib so that following boards can use it as a chip.
// The main board is returned, unregistered.
//
func (f *File) Build(lib *logicsim.Library, opts ...logicsim.Option) (*logicsim.Board, error) {
	if f.Parts {
		if err := partlib.Register(lib, opts...); err != nil {
			return nil, err
		}
	}
	var main *logicsim.Board
	for i := range f.Boards {
		l := &f.Boards[i]
		b, err := logicsim.Build(l, lib, opts...)
		if err != nil {
			return nil, err
		}
		if l.Name == f.Main {
			main = b
			continue
		}
		if _, err = lib.Add(b); err != nil {
			return nil, errors.Wrapf(err, "register %s", l.Name)
		}
	}
	return main, nil
}
