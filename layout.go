// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strings"

	"github.com/db47h/logicsim/internal/hdl"
	"github.com/pkg/errors"
)

// A Layout is a serializable board description: labelled components and wires
// between endpoint references.
//
// Wire endpoints are written label, label.pin, label.pin[bit] or
// label.pin[first..last]. The pin name can be omitted for components with a
// single pin. References starting with '$' name free junctions.
//
type Layout struct {
	Name       string            `yaml:"name"`
	Components []ComponentLayout `yaml:"components"`
	Wires      []WireLayout      `yaml:"wires"`
}

// ComponentLayout describes a component in a Layout.
//
type ComponentLayout struct {
	// Label names the component in wire references. It can declare the bus
	// width of the component: label[width].
	Label string `yaml:"label"`
	Kind  string `yaml:"kind"`
	// Interface name for pins. Defaults to Label.
	Name   string `yaml:"name,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Inputs int    `yaml:"inputs,omitempty"`
	// in, out or inout.
	Dir string `yaml:"dir,omitempty"`
	// Initial value, msb first, as accepted by ParseValue.
	Value string `yaml:"value,omitempty"`
	// rising or falling.
	Edge   string `yaml:"edge,omitempty"`
	Parity bool   `yaml:"parity,omitempty"`
	// Name of the nested board definition for chips.
	Board string `yaml:"board,omitempty"`
}

// WireLayout describes a wire in a Layout.
//
type WireLayout struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

var dirNames = map[string]Direction{
	"":              Input,
	"in":            Input,
	"input":         Input,
	"out":           Output,
	"output":        Output,
	"inout":         Bidirectional,
	"bidirectional": Bidirectional,
}

// name returns the label of cl without its bus width, and the declared width,
// 0 if none.
func (cl *ComponentLayout) name() (string, int, error) {
	name, w, err := hdl.ParseBus(cl.Label)
	if err != nil {
		return "", 0, configError("layout", "invalid label: %v", err)
	}
	if !strings.ContainsRune(cl.Label, '[') {
		w = 0
	}
	return name, w, nil
}

// Part returns the Part described by cl. Board references are resolved in lib.
//
func (cl *ComponentLayout) Part(lib *Library) (Part, error) {
	const op = "layout"
	k, ok := ParseKind(cl.Kind)
	if !ok {
		return Part{}, configError(op, "%s: unknown component kind %q", cl.Label, cl.Kind)
	}
	label, bw, err := cl.name()
	if err != nil {
		return Part{}, err
	}
	p := Part{
		Kind:   k,
		Name:   cl.Name,
		Width:  cl.Width,
		Inputs: cl.Inputs,
		Parity: cl.Parity,
	}
	if p.Name == "" {
		p.Name = label
	}
	if bw > 0 {
		if p.Width != 0 && p.Width != bw {
			return Part{}, configError(op, "%s: width %d conflicts with label width", cl.Label, p.Width)
		}
		p.Width = bw
	}
	if p.Dir, ok = dirNames[strings.ToLower(cl.Dir)]; !ok {
		return Part{}, configError(op, "%s: invalid direction %q", cl.Label, cl.Dir)
	}
	switch strings.ToLower(cl.Edge) {
	case "", "rising":
	case "falling":
		p.Edge = Falling
	default:
		return Part{}, configError(op, "%s: invalid clock edge %q", cl.Label, cl.Edge)
	}
	if cl.Value != "" {
		v, err := ParseValue(cl.Value)
		if err != nil {
			return Part{}, errors.Wrapf(err, "%s: initial value", cl.Label)
		}
		p.Value = v
		if p.Width == 0 {
			p.Width = v.Width()
		}
	}
	if k == Chip {
		if lib == nil {
			return Part{}, configError(op, "%s: no library to resolve board %q", cl.Label, cl.Board)
		}
		d, err := lib.Lookup(cl.Board)
		if err != nil {
			return Part{}, errors.Wrap(err, cl.Label)
		}
		p.Def = d
	}
	return p, nil
}

// Build creates a new board from l. Chips reference definitions in lib by
// name; lib may be nil if l has no chips.
//
func Build(l *Layout, lib *Library, opts ...Option) (*Board, error) {
	b := NewBoard(l.Name, opts...)
	labels := make(map[string]ComponentID, len(l.Components))
	for i := range l.Components {
		cl := &l.Components[i]
		if cl.Label == "" {
			return nil, configError("layout", "component #%d has no label", i)
		}
		label, _, err := cl.name()
		if err != nil {
			return nil, errors.Wrap(err, l.Name)
		}
		if _, dup := labels[label]; dup {
			return nil, configError("layout", "duplicate label %q", label)
		}
		p, err := cl.Part(lib)
		if err != nil {
			return nil, errors.Wrap(err, l.Name)
		}
		id, err := b.AddComponent(p)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", l.Name, cl.Label)
		}
		labels[label] = id
	}

	w := wirer{b: b, labels: labels, free: make(map[string]int)}
	for _, wl := range l.Wires {
		if err := w.connect(wl.From, wl.To); err != nil {
			return nil, errors.Wrapf(err, "%s: wire %s -> %s", l.Name, wl.From, wl.To)
		}
	}
	return b, nil
}

type wirer struct {
	b      *Board
	labels map[string]ComponentID
	free   map[string]int
}

// endpoints returns the endpoints designated by a reference: a single
// endpoint for whole pins and free junctions, one per bit for ranges.
//
func (w *wirer) endpoints(s string) ([]Endpoint, int, error) {
	r, err := hdl.ParseRef(s)
	if err != nil {
		return nil, 0, err
	}
	if r.Free {
		n, ok := w.free[r.Label]
		if !ok {
			n = len(w.free)
			w.free[r.Label] = n
		}
		return []Endpoint{Free(n)}, 0, nil
	}
	id, ok := w.labels[r.Label]
	if !ok {
		return nil, 0, topologyError("layout", "unknown label %q", r.Label)
	}
	pins := w.b.comps[id].pins
	p := 0
	switch {
	case r.Pin != "":
		if p = PinIndex(pins, r.Pin); p < 0 {
			return nil, 0, topologyError("layout", "no pin %q on %s", r.Pin, r.Label)
		}
	case len(pins) != 1:
		return nil, 0, configError("layout", "%s has %d pins, pin name required", r.Label, len(pins))
	}
	if r.Whole() {
		return []Endpoint{At(id, p)}, pins[p].Width, nil
	}
	eps := make([]Endpoint, 0, r.Bits())
	for bit := r.Start; bit <= r.End; bit++ {
		eps = append(eps, BitAt(id, p, bit))
	}
	return eps, pins[p].Width, nil
}

func (w *wirer) connect(from, to string) error {
	a, wa, err := w.endpoints(from)
	if err != nil {
		return err
	}
	b, wb, err := w.endpoints(to)
	if err != nil {
		return err
	}
	// split whole pins wired to bit ranges.
	switch {
	case len(a) == 1 && len(b) > 1 && a[0].Bit == AllBits && wa == len(b):
		a = splitBits(a[0], wa)
	case len(b) == 1 && len(a) > 1 && b[0].Bit == AllBits && wb == len(a):
		b = splitBits(b[0], wb)
	}
	if len(a) != len(b) {
		return configError("layout", "bit count mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if _, err = w.b.AddWire(a[i], b[i]); err != nil {
			return err
		}
	}
	return nil
}

func splitBits(e Endpoint, width int) []Endpoint {
	eps := make([]Endpoint, width)
	for i := range eps {
		eps[i] = BitAt(e.Comp, e.Pin, i)
	}
	return eps
}
