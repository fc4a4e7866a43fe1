// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"
	"strings"
)

// A Kind selects the behavior of a component.
//
type Kind int

// Component kinds.
//
const (
	Invalid Kind = iota
	Switch
	Clock
	Constant
	Pin
	And
	Or
	Nand
	Nor
	Xor
	Xnor
	Not
	Buffer
	PullUp
	PullDown
	Mux
	Adder
	Register
	Latch
	Chip // nested board instance
	kindCount
)

var kindNames = [...]string{
	Invalid:  "invalid",
	Switch:   "switch",
	Clock:    "clock",
	Constant: "constant",
	Pin:      "pin",
	And:      "and",
	Or:       "or",
	Nand:     "nand",
	Nor:      "nor",
	Xor:      "xor",
	Xnor:     "xnor",
	Not:      "not",
	Buffer:   "buffer",
	PullUp:   "pullup",
	PullDown: "pulldown",
	Mux:      "mux",
	Adder:    "adder",
	Register: "register",
	Latch:    "latch",
	Chip:     "chip",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the Kind with the given name (case insensitive).
//
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(name)
	if name == "board" {
		return Chip, true
	}
	for k := Switch; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return Invalid, false
}

func (k Kind) isGate() bool { return k >= And && k <= Xnor }

// Direction is the direction of a pin.
//
type Direction int

// Pin directions.
//
const (
	Input Direction = iota
	Output
	Bidirectional
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case Bidirectional:
		return "bidirectional"
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

func (d Direction) drives() bool { return d != Input }
func (d Direction) reads() bool  { return d != Output }

// Edge is the clock transition a Register latches on.
//
type Edge int

// Clock edges.
//
const (
	Rising Edge = iota
	Falling
)

// PinSpec describes a component pin.
//
type PinSpec struct {
	Name  string
	Dir   Direction
	Width int
	// Weak output pins only assert their value on nets with no strong driver.
	Weak bool
	// Changes on Passive input pins do not schedule the component for
	// re-evaluation.
	Passive bool
}

// A Part describes a component to place on a board. Only the fields relevant
// to Kind are used.
//
type Part struct {
	Kind Kind
	// Name is a free label for most kinds. For Pin components, it is the name
	// of the pin in the board's external interface.
	Name string
	// Bus width. Defaults to 1.
	Width int
	// Input count for gates. Defaults to 2.
	Inputs int
	// Pin direction.
	Dir Direction
	// Initial value of Switch, Constant and Register components, initial
	// external value of Pin components, initial level of Clock components.
	Value Value
	// Register clock edge.
	Edge Edge
	// Xor and Xnor compute odd/even parity instead of "exactly one".
	Parity bool
	// Nested definition for Chip components.
	Def *Definition
}

// Common pin names.
//
const (
	PinIn   = "in"
	PinOut  = "out"
	PinA    = "a"
	PinB    = "b"
	PinSel  = "sel"
	PinEn   = "en"
	PinIO   = "io"
	PinD    = "d"
	PinQ    = "q"
	PinClk  = "clk"
	PinRst  = "rst"
	PinCin  = "cin"
	PinCout = "cout"
)

func in(name string, w int) PinSpec  { return PinSpec{Name: name, Dir: Input, Width: w} }
func out(name string, w int) PinSpec { return PinSpec{Name: name, Dir: Output, Width: w} }

// GateInput returns the name of the i-th input of a gate.
//
func GateInput(i int) string { return PinIn + strconv.Itoa(i) }

// normalize checks p and fills in default values. It returns p's pin layout.
func (p *Part) normalize(op string) ([]PinSpec, error) {
	if p.Width == 0 {
		p.Width = 1
		if len(p.Value) > 0 && p.Kind != Clock {
			p.Width = len(p.Value)
		}
	}
	if p.Width < 0 {
		return nil, configError(op, "invalid width %d for %s", p.Width, p.Kind)
	}
	if p.Kind.isGate() {
		if p.Inputs == 0 {
			p.Inputs = 2
		}
		if p.Inputs < 2 {
			return nil, configError(op, "%s gate needs at least 2 inputs, got %d", p.Kind, p.Inputs)
		}
	}
	if p.Value != nil {
		switch p.Kind {
		case Switch, Constant, Register, Pin, Clock:
			if len(p.Value) != p.Width {
				return nil, configError(op, "initial value %s does not match %s width %d", p.Value, p.Kind, p.Width)
			}
			p.Value = p.Value.Copy()
		}
		// same rule as Board.SetInput
		switch {
		case p.Kind == Switch, p.Kind == Clock, p.Kind == Pin && p.Dir != Bidirectional:
			if !p.Value.Defined() {
				return nil, configError(op, "%s only accepts defined values, got %s", p.Kind, p.Value)
			}
		}
	}

	w := p.Width
	switch p.Kind {
	case Switch, Constant:
		return []PinSpec{out(PinOut, w)}, nil
	case Clock:
		if w != 1 {
			return nil, configError(op, "clock width must be 1, got %d", w)
		}
		return []PinSpec{out(PinOut, 1)}, nil
	case Pin:
		switch p.Dir {
		case Input:
			return []PinSpec{out(PinOut, w)}, nil
		case Output:
			return []PinSpec{in(PinIn, w)}, nil
		case Bidirectional:
			return []PinSpec{{Name: PinIO, Dir: Bidirectional, Width: w}}, nil
		}
		return nil, configError(op, "invalid pin direction %v", p.Dir)
	case And, Or, Nand, Nor, Xor, Xnor:
		ps := make([]PinSpec, 0, p.Inputs+1)
		for i := 0; i < p.Inputs; i++ {
			ps = append(ps, in(GateInput(i), w))
		}
		return append(ps, out(PinOut, w)), nil
	case Not:
		return []PinSpec{in(PinIn, w), out(PinOut, w)}, nil
	case Buffer:
		return []PinSpec{in(PinIn, w), in(PinEn, 1), out(PinOut, w)}, nil
	case PullUp, PullDown:
		return []PinSpec{{Name: PinOut, Dir: Output, Width: w, Weak: true}}, nil
	case Mux:
		return []PinSpec{in(PinA, w), in(PinB, w), in(PinSel, 1), out(PinOut, w)}, nil
	case Adder:
		if w > 64 {
			return nil, configError(op, "adder width %d exceeds 64 bits", w)
		}
		return []PinSpec{in(PinA, w), in(PinB, w), in(PinCin, 1), out(PinOut, w), out(PinCout, 1)}, nil
	case Register:
		if p.Edge != Rising && p.Edge != Falling {
			return nil, configError(op, "invalid clock edge %d", p.Edge)
		}
		return []PinSpec{
			{Name: PinD, Dir: Input, Width: w, Passive: true},
			in(PinClk, 1),
			in(PinRst, 1),
			out(PinQ, w),
		}, nil
	case Latch:
		return []PinSpec{in(PinD, w), in(PinEn, 1), out(PinQ, w)}, nil
	case Chip:
		if p.Def == nil {
			return nil, configError(op, "chip component without definition")
		}
		return p.Def.Interface(), nil
	}
	return nil, configError(op, "unknown component kind %v", p.Kind)
}

// PinIndex returns the index of the named pin in pins, or -1.
//
func PinIndex(pins []PinSpec, name string) int {
	for i := range pins {
		if pins[i].Name == name {
			return i
		}
	}
	return -1
}
