// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strings"

	"github.com/pkg/errors"
)

// A Signal is the state of a single bit on a net.
//
type Signal uint8

// Signal values. The zero value is Floating.
//
const (
	Floating Signal = iota // no active driver
	Low
	High
	Error // conflicting drivers or an Error input upstream
)

var signalNames = [...]string{"floating", "low", "high", "error"}

func (s Signal) String() string {
	if int(s) < len(signalNames) {
		return signalNames[s]
	}
	return "invalid"
}

// Rune returns the single character representation of s: 0, 1, Z or X.
//
func (s Signal) Rune() rune {
	switch s {
	case Low:
		return '0'
	case High:
		return '1'
	case Floating:
		return 'Z'
	}
	return 'X'
}

// Defined returns true if s is Low or High.
//
func (s Signal) Defined() bool { return s == Low || s == High }

// Bool returns true if s is High. Floating reads as false.
//
func (s Signal) Bool() bool { return s == High }

// Sig converts a bool to a Signal.
//
func Sig(b bool) Signal {
	if b {
		return High
	}
	return Low
}

func (s Signal) not() Signal {
	switch s {
	case Low, Floating:
		return High
	case High:
		return Low
	}
	return Error
}

// merge combines two driven values on the same net bit.
func merge(acc, s Signal) Signal {
	switch {
	case s == Floating:
		return acc
	case acc == Floating:
		return s
	case acc == s:
		return acc
	}
	return Error
}

// Resolve combines the values asserted by several drivers on the same net bit:
// Floating if no driver asserts a defined value, the asserted value if all
// drivers that assert something agree, Error otherwise.
//
func Resolve(drivers ...Signal) Signal {
	r := Floating
	for _, s := range drivers {
		r = merge(r, s)
	}
	return r
}

// A Value is a fixed width bit vector. Bit 0 is the least significant bit.
//
type Value []Signal

// Fill returns a Value of the given width with all bits set to s.
//
func Fill(width int, s Signal) Value {
	v := make(Value, width)
	if s != Floating {
		for i := range v {
			v[i] = s
		}
	}
	return v
}

// ValueOf returns the width bits wide Value of n.
//
func ValueOf(width int, n uint64) Value {
	v := make(Value, width)
	for i := range v {
		v[i] = Sig(i < 64 && n&(1<<uint(i)) != 0)
	}
	return v
}

// ParseValue parses a bit string, most significant bit first. Valid
// characters are 0, 1, z/Z (Floating), x/X (Error). Underscores are ignored.
//
func ParseValue(s string) (Value, error) {
	s = strings.Replace(s, "_", "", -1)
	if s == "" {
		return nil, errors.New("empty value")
	}
	v := make(Value, len(s))
	for i, r := range s {
		var sig Signal
		switch r {
		case '0':
			sig = Low
		case '1':
			sig = High
		case 'z', 'Z':
			sig = Floating
		case 'x', 'X':
			sig = Error
		default:
			return nil, errors.Errorf("invalid character %q in value %q", r, s)
		}
		v[len(s)-i-1] = sig
	}
	return v, nil
}

// Width returns the bit count of v.
//
func (v Value) Width() int { return len(v) }

// Defined returns true if all bits of v are Low or High.
//
func (v Value) Defined() bool {
	for _, s := range v {
		if !s.Defined() {
			return false
		}
	}
	return true
}

// Uint64 returns the integer value of v. The boolean result is false if any
// bit is undefined.
//
func (v Value) Uint64() (uint64, bool) {
	var n uint64
	for i, s := range v {
		if !s.Defined() {
			return 0, false
		}
		if s == High && i < 64 {
			n |= 1 << uint(i)
		}
	}
	return n, true
}

// Equal returns true if v and w have the same width and bits.
//
func (v Value) Equal(w Value) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

// Copy returns a copy of v. The copy of a nil Value is nil.
//
func (v Value) Copy() Value {
	if v == nil {
		return nil
	}
	w := make(Value, len(v))
	copy(w, v)
	return w
}

func (v Value) String() string {
	var b strings.Builder
	b.Grow(len(v))
	for i := len(v) - 1; i >= 0; i-- {
		b.WriteRune(v[i].Rune())
	}
	return b.String()
}
