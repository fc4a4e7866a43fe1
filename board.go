// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sort"

	"github.com/google/uuid"
)

// A Board is a circuit: a set of components connected by wires.
//
// All topology edits go through AddComponent, RemoveComponent, AddWire and
// RemoveWire. Nets are rebuilt lazily on the first query or step following an
// edit. Component state (switch values, register contents, nested board
// instances) is kept across edits.
//
// A Board is not safe for concurrent use: edits, drives and steps must be
// serialized by the caller. Distinct boards can be used concurrently.
//
type Board struct {
	id   uuid.UUID
	name string
	opts options

	comps    map[ComponentID]*component
	state    map[ComponentID]*compState
	wires    map[WireID]*wire
	free     map[int]*freeEnd
	pins     map[string]ComponentID // Pin components by name
	nextComp ComponentID
	nextWire WireID

	c *circuit // nil after a topology edit
}

type freeEnd struct {
	width int
	refs  int
}

// NewBoard returns a new empty board.
//
func NewBoard(name string, opts ...Option) *Board {
	b := &Board{
		id:    uuid.New(),
		name:  name,
		opts:  defaultOptions(),
		comps: make(map[ComponentID]*component),
		state: make(map[ComponentID]*compState),
		wires: make(map[WireID]*wire),
		free:  make(map[int]*freeEnd),
		pins:  make(map[string]ComponentID),
	}
	for _, o := range opts {
		o(&b.opts)
	}
	b.opts.log = b.opts.log.With("board", name)
	return b
}

// ID returns the board's unique id.
//
func (b *Board) ID() uuid.UUID { return b.id }

// Name returns the board's name.
//
func (b *Board) Name() string { return b.name }

// MaxPasses returns the oscillation cap of b.
//
func (b *Board) MaxPasses() int { return b.opts.maxPasses }

func (b *Board) invalidate() {
	b.c = nil
}

// AddComponent places a new component described by p.
//
// It fails with a *ConfigurationError if p is not valid and with a
// *CyclicDefinitionError if p is a chip whose definition contains b.
//
func (b *Board) AddComponent(p Part) (ComponentID, error) {
	const op = "add component"
	pins, err := p.normalize(op)
	if err != nil {
		return 0, err
	}
	switch p.Kind {
	case Chip:
		if p.Def.Contains(b.id) {
			return 0, &CyclicDefinitionError{Board: b.id, Def: p.Def.Name()}
		}
	case Pin:
		if p.Name == "" {
			return 0, configError(op, "pin without name")
		}
		if _, ok := b.pins[p.Name]; ok {
			return 0, configError(op, "duplicate pin name %q", p.Name)
		}
	}

	b.nextComp++
	id := b.nextComp
	c := &component{id: id, part: p, pins: pins}
	b.comps[id] = c
	b.state[id] = newState(c)
	switch p.Kind {
	case Chip:
		p.Def.acquire()
	case Pin:
		b.pins[p.Name] = id
	}
	b.invalidate()
	b.opts.log.Debug("component added", "id", int(id), "kind", p.Kind.String(), "name", p.Name)
	return id, nil
}

// RemoveComponent removes a component and all wires attached to it.
//
func (b *Board) RemoveComponent(id ComponentID) error {
	c, ok := b.comps[id]
	if !ok {
		return topologyError("remove component", "no component %d", id)
	}
	for wid, w := range b.wires {
		if w.A.Comp == id || w.B.Comp == id {
			b.dropWire(wid, w)
		}
	}
	switch c.part.Kind {
	case Chip:
		c.part.Def.release()
	case Pin:
		delete(b.pins, c.part.Name)
	}
	delete(b.comps, id)
	delete(b.state, id)
	b.invalidate()
	b.opts.log.Debug("component removed", "id", int(id))
	return nil
}

// width returns the width of endpoint e, 0 for a new free endpoint.
func (b *Board) width(op string, e Endpoint) (int, error) {
	if e.IsFree() {
		if e.Pin < 0 {
			return 0, topologyError(op, "invalid free endpoint %d", e.Pin)
		}
		if e.Bit != AllBits {
			return 0, topologyError(op, "bit of free endpoint %v", e)
		}
		if f, ok := b.free[e.Pin]; ok {
			return f.width, nil
		}
		return 0, nil
	}
	c, ok := b.comps[e.Comp]
	if !ok {
		return 0, topologyError(op, "no component %d", e.Comp)
	}
	if e.Pin < 0 || e.Pin >= len(c.pins) {
		return 0, topologyError(op, "no pin %d on component %d (%s)", e.Pin, e.Comp, c.part.Kind)
	}
	w := c.pins[e.Pin].Width
	if e.Bit == AllBits {
		return w, nil
	}
	if e.Bit < 0 || e.Bit >= w {
		return 0, topologyError(op, "no bit %d on pin %s of component %d", e.Bit, c.pins[e.Pin].Name, e.Comp)
	}
	return 1, nil
}

// AddWire connects two endpoints. Both ends must have the same width: a
// whole pin can only be wired to a pin of the same width, a single bit or a
// 1 bit pin to a single bit or a 1 bit pin. A free endpoint takes the width of
// the first wire attached to it.
//
// It fails with a *TopologyError for nonexistent components, pins or bits and
// with a *ConfigurationError on width mismatch.
//
func (b *Board) AddWire(e1, e2 Endpoint) (WireID, error) {
	const op = "add wire"
	w1, err := b.width(op, e1)
	if err != nil {
		return 0, err
	}
	w2, err := b.width(op, e2)
	if err != nil {
		return 0, err
	}
	switch {
	case w1 == 0 && w2 == 0:
		w1, w2 = 1, 1
	case w1 == 0:
		w1 = w2
	case w2 == 0:
		w2 = w1
	}
	if w1 != w2 {
		return 0, configError(op, "width mismatch between %v (%d bits) and %v (%d bits)", e1, w1, e2, w2)
	}

	for _, e := range [2]Endpoint{e1, e2} {
		if e.IsFree() {
			f := b.free[e.Pin]
			if f == nil {
				f = &freeEnd{width: w1}
				b.free[e.Pin] = f
			}
			f.refs++
		}
	}
	b.nextWire++
	id := b.nextWire
	b.wires[id] = &wire{Wire: Wire{e1, e2}, id: id, width: w1}
	b.invalidate()
	return id, nil
}

// RemoveWire removes a wire.
//
func (b *Board) RemoveWire(id WireID) error {
	w, ok := b.wires[id]
	if !ok {
		return topologyError("remove wire", "no wire %d", id)
	}
	b.dropWire(id, w)
	b.invalidate()
	return nil
}

func (b *Board) dropWire(id WireID, w *wire) {
	for _, e := range [2]Endpoint{w.A, w.B} {
		if !e.IsFree() {
			continue
		}
		if f := b.free[e.Pin]; f != nil {
			if f.refs--; f.refs <= 0 {
				delete(b.free, e.Pin)
			}
		}
	}
	delete(b.wires, id)
}

// Components returns the ids of all components, ascending.
//
func (b *Board) Components() []ComponentID {
	ids := make([]ComponentID, 0, len(b.comps))
	for id := range b.comps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Component returns the part and pins of a component.
//
func (b *Board) Component(id ComponentID) (Part, []PinSpec, error) {
	c, ok := b.comps[id]
	if !ok {
		return Part{}, nil, topologyError("component", "no component %d", id)
	}
	pins := make([]PinSpec, len(c.pins))
	copy(pins, c.pins)
	p := c.part
	p.Value = p.Value.Copy()
	return p, pins, nil
}

// Wires returns the ids of all wires, ascending.
//
func (b *Board) Wires() []WireID {
	ids := make([]WireID, 0, len(b.wires))
	for id := range b.wires {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Wire returns the endpoints of a wire.
//
func (b *Board) Wire(id WireID) (Wire, error) {
	w, ok := b.wires[id]
	if !ok {
		return Wire{}, topologyError("wire", "no wire %d", id)
	}
	return w.Wire, nil
}

// circuit returns the runnable circuit for the current topology, rebuilding
// nets if needed.
//
func (b *Board) circuit() *circuit {
	if b.c != nil {
		return b.c
	}
	comps := make([]*component, 0, len(b.comps))
	for _, id := range b.Components() {
		comps = append(comps, b.comps[id])
	}
	wires := make([]*wire, 0, len(b.wires))
	for _, id := range b.Wires() {
		wires = append(wires, b.wires[id])
	}
	free := make(map[int]int, len(b.free))
	for n, f := range b.free {
		free[n] = f.width
	}
	nl := buildNetlist(comps, wires, free)
	st := make([]*compState, len(comps))
	for i, c := range comps {
		st[i] = b.state[c.id]
	}
	b.c = newCircuit(nl, st)
	b.opts.log.Debug("nets rebuilt", "components", len(comps), "wires", len(wires), "nets", len(nl.nets))
	b.opts.metrics.ObserveRebuild(b.name, len(nl.nets))
	return b.c
}

// Define returns an immutable snapshot of b that can be placed in other boards
// as a Chip component. The chip interface is made of b's Pin components.
//
func (b *Board) Define() (*Definition, error) {
	return newDefinition(b.id, b.name, b.circuit().nl)
}

// Interface returns the external interface of b: its input pins then its
// output pins, each in order of placement. Bidirectional pins are listed last.
//
func (b *Board) Interface() []PinSpec {
	var in, out, io []PinSpec
	for _, id := range b.Components() {
		p := &b.comps[id].part
		if p.Kind != Pin {
			continue
		}
		ps := PinSpec{Name: p.Name, Dir: p.Dir, Width: p.Width}
		switch p.Dir {
		case Input:
			in = append(in, ps)
		case Output:
			out = append(out, ps)
		default:
			io = append(io, ps)
		}
	}
	return append(append(in, out...), io...)
}

// SetInput sets the external value driven by a Switch, an input or
// bidirectional Pin, or sets the level of a Clock. The new value is propagated
// on the next Step.
//
func (b *Board) SetInput(id ComponentID, v Value) error {
	const op = "set input"
	c, ok := b.comps[id]
	if !ok {
		return topologyError(op, "no component %d", id)
	}
	p := &c.part
	switch {
	case p.Kind == Switch, p.Kind == Clock:
	case p.Kind == Pin && p.Dir != Output:
	default:
		return configError(op, "component %d (%s) cannot be driven", id, p.Kind)
	}
	if v.Width() != p.Width {
		return configError(op, "width mismatch: component %d has %d bits, got %d", id, p.Width, v.Width())
	}
	if p.Kind != Pin || p.Dir != Bidirectional {
		for _, s := range v {
			if s == Floating || s == Error {
				return configError(op, "component %d (%s) only accepts defined values", id, p.Kind)
			}
		}
	}
	cc := b.circuit()
	cc.drive(cc.nl.index[id], v)
	return nil
}

// pin returns the id of the Pin component with the given name.
func (b *Board) pin(op, name string) (ComponentID, error) {
	id, ok := b.pins[name]
	if !ok {
		return 0, topologyError(op, "no pin %q on board %s", name, b.name)
	}
	return id, nil
}

// SetExternalInput sets the value of the input pin with the given name.
//
func (b *Board) SetExternalInput(name string, v Value) error {
	id, err := b.pin("set external input", name)
	if err != nil {
		return err
	}
	return b.SetInput(id, v)
}

// ReadExternalOutput returns the value of the output or bidirectional pin
// with the given name.
//
func (b *Board) ReadExternalOutput(name string) (Value, error) {
	id, err := b.pin("read external output", name)
	if err != nil {
		return nil, err
	}
	if b.comps[id].part.Dir == Input {
		return nil, configError("read external output", "pin %q is an input", name)
	}
	return b.Read(At(id, 0))
}

// Read returns the value of a pin, a pin bit or a free endpoint.
//
func (b *Board) Read(e Endpoint) (Value, error) {
	ns, err := b.Net(e)
	if err != nil {
		return nil, err
	}
	vals := b.c.vals
	v := make(Value, len(ns))
	for i, n := range ns {
		v[i] = vals[n]
	}
	return v, nil
}

// Step propagates all pending changes until the board is stable or the pass
// cap is reached.
//
func (b *Board) Step() StepResult {
	return b.run("step")
}

// Tick toggles every clock of the board and of all nested boards, then steps.
//
func (b *Board) Tick() StepResult {
	b.circuit().tick()
	return b.run("tick")
}

func (b *Board) run(op string) StepResult {
	r := b.circuit().step(b.opts.maxPasses)
	b.opts.metrics.ObserveStep(b.name, r.Status.String(), r.Passes, r.Evaluations)
	if r.Status == Oscillating {
		b.opts.log.Warn("circuit oscillating", "op", op, "passes", r.Passes, "nets", len(r.Nets))
	} else {
		b.opts.log.Debug(op, "passes", r.Passes, "evaluations", r.Evaluations, "changed", len(r.Changed))
	}
	return r
}

// Oscillating returns the nets reported as oscillating by the last step, or
// nil if it was stable or the topology changed since.
//
func (b *Board) Oscillating() []NetID {
	if b.c == nil || len(b.c.osc) == 0 {
		return nil
	}
	ns := make([]NetID, len(b.c.osc))
	copy(ns, b.c.osc)
	return ns
}

// NetCount returns the number of nets in the current topology.
//
func (b *Board) NetCount() int {
	return len(b.circuit().nl.nets)
}

// Net returns the nets of the bits designated by e, bit 0 first.
//
func (b *Board) Net(e Endpoint) ([]NetID, error) {
	const op = "net"
	nl := b.circuit().nl
	var bits []NetID
	if e.IsFree() {
		ns, ok := nl.free[e.Pin]
		if !ok || e.Bit != AllBits {
			return nil, topologyError(op, "no free endpoint %v", e)
		}
		bits = ns
	} else {
		if _, err := b.width(op, e); err != nil {
			return nil, err
		}
		bits = nl.pinNet[nl.index[e.Comp]][e.Pin]
		if e.Bit != AllBits {
			bits = bits[e.Bit : e.Bit+1]
		}
	}
	ns := make([]NetID, len(bits))
	copy(ns, bits)
	return ns, nil
}

// NetValue returns the current resolved value of net n.
//
func (b *Board) NetValue(n NetID) (Signal, error) {
	c := b.circuit()
	if n < 0 || int(n) >= len(c.vals) {
		return Error, topologyError("net value", "no net %d", n)
	}
	return c.vals[n], nil
}

// NetEndpoints returns all the pin bits on net n.
//
func (b *Board) NetEndpoints(n NetID) ([]Endpoint, error) {
	nl := b.circuit().nl
	if n < 0 || int(n) >= len(nl.nets) {
		return nil, topologyError("net endpoints", "no net %d", n)
	}
	return nl.endpoints(n), nil
}
