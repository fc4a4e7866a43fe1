// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import "sort"

// DefaultMaxPasses is the default number of propagation passes a step may run
// before the circuit is reported as oscillating.
//
const DefaultMaxPasses = 1000

// Status is the outcome of a simulation step.
//
type Status int

// Step outcomes.
//
const (
	Stable Status = iota
	Oscillating
)

func (s Status) String() string {
	if s == Stable {
		return "stable"
	}
	return "oscillating"
}

// StepResult reports the outcome of a step.
//
type StepResult struct {
	Status Status
	// Passes is the number of propagation passes run.
	Passes int
	// Evaluations is the number of component evaluations (nested boards count
	// as one).
	Evaluations int
	// Changed lists the nets whose value changed during the step, ascending.
	Changed []NetID
	// Nets lists the oscillating nets, ascending. Empty if Status is Stable.
	Nets []NetID
}

// compState is the runtime state of a component instance.
type compState struct {
	drive [][]Signal // driven value per pin bit. nil for input pins
	mem   Value      // external value, latched contents
	clk   Signal     // last clock level seen by a register
	sub   *circuit   // nested board instance
	// the last evaluation of the nested instance did not stabilize.
	unstable bool
}

func newState(c *component) *compState {
	st := &compState{
		drive: make([][]Signal, len(c.pins)),
		clk:   Error, // no edge on first evaluation
	}
	for i := range c.pins {
		if c.pins[i].Dir.drives() {
			st.drive[i] = make([]Signal, c.pins[i].Width)
		}
	}
	p := &c.part
	switch p.Kind {
	case Switch, Constant, Register:
		st.mem = p.Value.Copy()
		if st.mem == nil {
			st.mem = Fill(p.Width, Low)
		}
	case Pin:
		st.mem = p.Value.Copy()
		if st.mem == nil {
			if p.Dir == Bidirectional {
				st.mem = Fill(p.Width, Floating)
			} else {
				st.mem = Fill(p.Width, Low)
			}
		}
	case Clock:
		st.mem = Value{Low}
		if p.Value != nil {
			st.mem = p.Value.Copy()
		}
	case Latch:
		st.mem = Fill(p.Width, Low)
	case Chip:
		st.sub = p.Def.instance()
	}
	return st
}

// A circuit is a runnable instance of a netlist: the current value of every
// net, the state of every component and the dirty set.
//
type circuit struct {
	nl   *netlist
	st   []*compState
	vals []Signal

	dirty   []bool
	queue   []int32
	spare   []int32
	touched []bool
	tnets   []NetID

	// chips with an oscillating nested instance, re-scheduled on the next step.
	pending []int32
	// per net: pass of the last change during the current step, 0 if unchanged.
	lastPass []int
	// oscillating nets reported by the last step.
	osc []NetID
}

// newCircuit returns a circuit where all components are dirty and nets are
// resolved from the current driver values in st.
//
func newCircuit(nl *netlist, st []*compState) *circuit {
	c := &circuit{
		nl:       nl,
		st:       st,
		vals:     make([]Signal, len(nl.nets)),
		dirty:    make([]bool, len(nl.comps)),
		queue:    make([]int32, 0, len(nl.comps)),
		touched:  make([]bool, len(nl.nets)),
		lastPass: make([]int, len(nl.nets)),
	}
	for i := range c.vals {
		c.vals[i] = c.resolve(NetID(i))
	}
	for i := range nl.comps {
		c.markDirty(int32(i))
	}
	return c
}

func (c *circuit) markDirty(ci int32) {
	if !c.dirty[ci] {
		c.dirty[ci] = true
		c.queue = append(c.queue, ci)
	}
}

func (c *circuit) touch(n NetID) {
	if !c.touched[n] {
		c.touched[n] = true
		c.tnets = append(c.tnets, n)
	}
}

func (c *circuit) resolve(n NetID) Signal {
	strong, weak := Floating, Floating
	for _, d := range c.nl.nets[n].drivers {
		s := c.st[d.comp].drive[d.pin][d.bit]
		if d.weak {
			weak = merge(weak, s)
		} else {
			strong = merge(strong, s)
		}
	}
	if strong != Floating {
		return strong
	}
	return weak
}

// get returns the value of bit b of pin p of component ci.
func (c *circuit) get(ci, p, b int) Signal {
	return c.vals[c.nl.pinNet[ci][p][b]]
}

// read returns the value of pin p of component ci.
func (c *circuit) read(ci, p int) Value {
	bits := c.nl.pinNet[ci][p]
	v := make(Value, len(bits))
	for i, n := range bits {
		v[i] = c.vals[n]
	}
	return v
}

// set drives bit b of pin p of component ci.
func (c *circuit) set(ci, p, b int, s Signal) {
	d := c.st[ci].drive[p]
	if d[b] != s {
		d[b] = s
		c.touch(c.nl.pinNet[ci][p][b])
	}
}

func (c *circuit) setAll(ci, p int, v Value) {
	for b, s := range v {
		c.set(ci, p, b, s)
	}
}

func (c *circuit) fill(ci, p int, s Signal) {
	for b := range c.st[ci].drive[p] {
		c.set(ci, p, b, s)
	}
}

// drive sets the external value of an input component.
func (c *circuit) drive(ci int, v Value) {
	st := c.st[ci]
	if !st.mem.Equal(v) {
		copy(st.mem, v)
		c.markDirty(int32(ci))
	}
}

// tick toggles every clock, including those of nested instances.
func (c *circuit) tick() {
	for ci, comp := range c.nl.comps {
		st := c.st[ci]
		switch comp.part.Kind {
		case Clock:
			st.mem[0] = st.mem[0].not()
			c.markDirty(int32(ci))
		case Chip:
			st.sub.tick()
			if len(st.sub.queue) > 0 {
				c.markDirty(int32(ci))
			}
		}
	}
}

// step runs propagation passes until no component is dirty or maxPasses
// passes have run.
//
// Each pass first resolves the nets whose drivers changed and marks their
// readers dirty, then evaluates all dirty components. Evaluation only reads
// net values and only writes driver values, so the order in which components
// of the same pass are evaluated does not matter.
//
func (c *circuit) step(maxPasses int) StepResult {
	var r StepResult
	var changed, osc []NetID
	var unstable []int32

	for _, ci := range c.pending {
		c.markDirty(ci)
	}
	c.pending = c.pending[:0]

	for {
		for _, n := range c.tnets {
			c.touched[n] = false
			v := c.resolve(n)
			if v == c.vals[n] {
				continue
			}
			c.vals[n] = v
			if c.lastPass[n] == 0 {
				changed = append(changed, n)
			}
			c.lastPass[n] = r.Passes + 1
			for _, ci := range c.nl.nets[n].readers {
				c.markDirty(ci)
			}
		}
		c.tnets = c.tnets[:0]

		if len(c.queue) == 0 {
			break
		}
		if r.Passes >= maxPasses {
			r.Status = Oscillating
			for _, n := range changed {
				if c.lastPass[n] > maxPasses/2 {
					osc = append(osc, n)
				}
			}
			break
		}

		r.Passes++
		queue := c.queue
		c.queue = c.spare[:0]
		for _, ci := range queue {
			c.dirty[ci] = false
		}
		for _, ci := range queue {
			r.Evaluations++
			u := c.eval(int(ci), maxPasses)
			c.st[ci].unstable = u
			if u {
				unstable = append(unstable, ci)
			}
		}
		c.spare = queue[:0]
	}

	// chips whose last evaluation did not stabilize are re-scheduled on the
	// next step. Their outputs are the visible part of the nested oscillation.
	for _, ci := range unstable {
		st := c.st[ci]
		if !st.unstable {
			continue
		}
		st.unstable = false
		c.pending = append(c.pending, ci)
		comp := c.nl.comps[ci]
		for p := range comp.pins {
			if comp.pins[p].Dir.drives() {
				osc = append(osc, c.nl.pinNet[ci][p]...)
			}
		}
	}

	for _, n := range changed {
		c.lastPass[n] = 0
	}
	c.osc = nil
	if len(osc) > 0 {
		r.Status = Oscillating
		r.Nets = uniqueNets(osc)
		c.osc = r.Nets
	}
	if len(changed) > 0 {
		sort.Slice(changed, func(i, j int) bool { return changed[i] < changed[j] })
		r.Changed = changed
	}
	return r
}

func uniqueNets(ns []NetID) []NetID {
	out := make([]NetID, len(ns))
	copy(out, ns)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	j := 0
	for i, n := range out {
		if i == 0 || n != out[j-1] {
			out[j] = n
			j++
		}
	}
	return out[:j]
}
