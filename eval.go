// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

// level returns the logic level read by an input: Floating inputs read as Low.
func level(s Signal) Signal {
	if s == Floating {
		return Low
	}
	return s
}

// eval computes the outputs of component ci from the current net values. It
// returns true if ci is a chip whose nested instance did not stabilize.
//
func (c *circuit) eval(ci, maxPasses int) bool {
	comp, st := c.nl.comps[ci], c.st[ci]
	p := &comp.part

	switch p.Kind {
	case Switch, Constant, Clock:
		c.setAll(ci, 0, st.mem)
	case Pin:
		if p.Dir != Output {
			c.setAll(ci, 0, st.mem)
		}
	case PullUp:
		c.fill(ci, 0, High)
	case PullDown:
		c.fill(ci, 0, Low)
	case And, Or, Nand, Nor, Xor, Xnor:
		c.evalGate(ci, p)
	case Not:
		for b := 0; b < p.Width; b++ {
			c.set(ci, 1, b, c.get(ci, 0, b).not())
		}
	case Buffer:
		switch level(c.get(ci, 1, 0)) {
		case High:
			for b := 0; b < p.Width; b++ {
				c.set(ci, 2, b, level(c.get(ci, 0, b)))
			}
		case Low:
			c.fill(ci, 2, Floating)
		default:
			c.fill(ci, 2, Error)
		}
	case Mux:
		src := 0
		switch level(c.get(ci, 2, 0)) {
		case High:
			src = 1
		case Error:
			c.fill(ci, 3, Error)
			return false
		}
		for b := 0; b < p.Width; b++ {
			c.set(ci, 3, b, level(c.get(ci, src, b)))
		}
	case Adder:
		c.evalAdder(ci, p)
	case Register:
		c.evalRegister(ci, p, st)
	case Latch:
		switch level(c.get(ci, 1, 0)) {
		case High:
			for b := range st.mem {
				st.mem[b] = level(c.get(ci, 0, b))
			}
		case Error:
			c.fill(ci, 2, Error)
			return false
		}
		c.setAll(ci, 2, st.mem)
	case Chip:
		return c.evalChip(ci, p.Def, st.sub, maxPasses)
	}
	return false
}

func (c *circuit) evalGate(ci int, p *Part) {
	n := p.Inputs
	for b := 0; b < p.Width; b++ {
		ones, bad := 0, false
		for i := 0; i < n; i++ {
			switch c.get(ci, i, b) {
			case High:
				ones++
			case Error:
				bad = true
			}
		}
		var s Signal
		switch {
		case bad:
			s = Error
		case p.Kind == And:
			s = Sig(ones == n)
		case p.Kind == Nand:
			s = Sig(ones != n)
		case p.Kind == Or:
			s = Sig(ones > 0)
		case p.Kind == Nor:
			s = Sig(ones == 0)
		case p.Kind == Xor && p.Parity:
			s = Sig(ones%2 == 1)
		case p.Kind == Xor:
			s = Sig(ones == 1)
		case p.Kind == Xnor && p.Parity:
			s = Sig(ones%2 == 0)
		default:
			s = Sig(ones != 1)
		}
		c.set(ci, n, b, s)
	}
}

func (c *circuit) evalAdder(ci int, p *Part) {
	a, okA := c.levels(ci, 0).Uint64()
	b, okB := c.levels(ci, 1).Uint64()
	cin := level(c.get(ci, 2, 0))
	if !okA || !okB || cin == Error {
		c.fill(ci, 3, Error)
		c.fill(ci, 4, Error)
		return
	}
	var carry uint64
	if cin == High {
		carry = 1
	}
	// add bit by bit so that 64 bits adders get their carry out.
	for i := 0; i < p.Width; i++ {
		s := (a>>uint(i))&1 + (b>>uint(i))&1 + carry
		c.set(ci, 3, i, Sig(s&1 != 0))
		carry = s >> 1
	}
	c.set(ci, 4, 0, Sig(carry != 0))
}

func (c *circuit) evalRegister(ci int, p *Part, st *compState) {
	// a floating clock does not count as a level for edge detection.
	raw := c.get(ci, 1, 0)
	rst := level(c.get(ci, 2, 0))
	prev := st.clk
	if raw != Floating {
		st.clk = raw
	}
	if raw == Error || rst == Error {
		c.fill(ci, 3, Error)
		return
	}
	switch {
	case rst == High:
		for b := range st.mem {
			st.mem[b] = Low
		}
	case p.Edge == Rising && prev == Low && raw == High,
		p.Edge == Falling && prev == High && raw == Low:
		for b := range st.mem {
			st.mem[b] = level(c.get(ci, 0, b))
		}
	}
	c.setAll(ci, 3, st.mem)
}

// evalChip feeds the chip inputs to its nested instance, runs it to a fixed
// point and drives the chip outputs from the instance's output pins.
//
func (c *circuit) evalChip(ci int, def *Definition, sub *circuit, maxPasses int) bool {
	for k := range def.pins {
		if def.pins[k].Dir == Input {
			sub.drive(def.ext[k], c.read(ci, k))
		}
	}
	r := sub.step(maxPasses)
	for k := range def.pins {
		if def.pins[k].Dir != Output {
			continue
		}
		for b, n := range sub.nl.pinNet[def.ext[k]][0] {
			c.set(ci, k, b, sub.vals[n])
		}
	}
	return r.Status == Oscillating
}

// levels returns the value of pin p with Floating bits read as Low.
func (c *circuit) levels(ci, p int) Value {
	v := c.read(ci, p)
	for i := range v {
		v[i] = level(v[i])
	}
	return v
}
