// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package partlib provides composite parts built from the builtin components.
//
// Each part is described by a Layout and registered as a board definition in
// a library by Register. Parts depending on other parts must be registered
// after them; Register takes care of this for the whole library.
//
package partlib

import (
	"github.com/db47h/logicsim"
	"github.com/pkg/errors"
)

// Part names.
//
const (
	XorName         = "Xor"
	MuxName         = "Mux"
	HalfAdderName   = "HalfAdder"
	FullAdderName   = "FullAdder"
	SRLatchName     = "SRLatch"
	BitRegisterName = "BitRegister"
)

func input(label string) logicsim.ComponentLayout {
	return logicsim.ComponentLayout{Label: label, Kind: "pin", Dir: "in"}
}

func output(label string) logicsim.ComponentLayout {
	return logicsim.ComponentLayout{Label: label, Kind: "pin", Dir: "out"}
}

func gate(label, kind string) logicsim.ComponentLayout {
	return logicsim.ComponentLayout{Label: label, Kind: kind}
}

func chip(label, board string) logicsim.ComponentLayout {
	return logicsim.ComponentLayout{Label: label, Kind: "chip", Board: board}
}

func wires(pairs ...string) []logicsim.WireLayout {
	ws := make([]logicsim.WireLayout, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		ws = append(ws, logicsim.WireLayout{From: pairs[i], To: pairs[i+1]})
	}
	return ws
}

// Xor returns the layout of a xor gate made of four NAND gates.
//
//	Inputs: in0, in1
//	Outputs: out
//	Function: out = in0 xor in1
//
func Xor() *logicsim.Layout {
	return &logicsim.Layout{
		Name: XorName,
		Components: []logicsim.ComponentLayout{
			input("in0"), input("in1"), output("out"),
			gate("n1", "nand"), gate("n2", "nand"), gate("n3", "nand"), gate("n4", "nand"),
		},
		Wires: wires(
			"in0", "n1.in0",
			"in1", "n1.in1",
			"in0", "n2.in0",
			"n1.out", "n2.in1",
			"in1", "n3.in0",
			"n1.out", "n3.in1",
			"n2.out", "n4.in0",
			"n3.out", "n4.in1",
			"n4.out", "out",
		),
	}
}

// Mux returns the layout of a 2-way multiplexer made of basic gates.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: If sel=0 then out=a else out=b.
//
func Mux() *logicsim.Layout {
	return &logicsim.Layout{
		Name: MuxName,
		Components: []logicsim.ComponentLayout{
			input("a"), input("b"), input("sel"), output("out"),
			gate("ns", "not"), gate("wa", "and"), gate("wb", "and"), gate("o", "or"),
		},
		Wires: wires(
			"sel", "ns.in",
			"a", "wa.in0",
			"ns.out", "wa.in1",
			"b", "wb.in0",
			"sel", "wb.in1",
			"wa.out", "o.in0",
			"wb.out", "o.in1",
			"o.out", "out",
		),
	}
}

// HalfAdder returns the layout of a half adder. It requires Xor.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder() *logicsim.Layout {
	return &logicsim.Layout{
		Name: HalfAdderName,
		Components: []logicsim.ComponentLayout{
			input("a"), input("b"), output("s"), output("c"),
			chip("x", XorName), gate("g", "and"),
		},
		Wires: wires(
			"a", "x.in0",
			"b", "x.in1",
			"x.out", "s",
			"a", "g.in0",
			"b", "g.in1",
			"g.out", "c",
		),
	}
}

// FullAdder returns the layout of a full adder made of two half adders. It
// has the same interface as a 1 bit Adder.
//
//	Inputs: a, b, cin
//	Outputs: out, cout
//	Function: out = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder() *logicsim.Layout {
	return &logicsim.Layout{
		Name: FullAdderName,
		Components: []logicsim.ComponentLayout{
			input("a"), input("b"), input("cin"), output("out"), output("cout"),
			chip("h1", HalfAdderName), chip("h2", HalfAdderName), gate("o", "or"),
		},
		Wires: wires(
			"a", "h1.a",
			"b", "h1.b",
			"h1.s", "h2.a",
			"cin", "h2.b",
			"h2.s", "out",
			"h1.c", "o.in0",
			"h2.c", "o.in1",
			"o.out", "cout",
		),
	}
}

// SRLatch returns the layout of a SR latch made of two cross-coupled NOR
// gates. Like the real thing, it oscillates when powered up with both inputs
// low, until it is either set or reset.
//
//	Inputs: s, r
//	Outputs: q, nq
//
func SRLatch() *logicsim.Layout {
	return &logicsim.Layout{
		Name: SRLatchName,
		Components: []logicsim.ComponentLayout{
			input("s"), input("r"), output("q"), output("nq"),
			gate("n1", "nor"), gate("n2", "nor"),
		},
		Wires: wires(
			"r", "n1.in0",
			"n2.out", "n1.in1",
			"s", "n2.in0",
			"n1.out", "n2.in1",
			"n1.out", "q",
			"n2.out", "nq",
		),
	}
}

// BitRegister returns the layout of a 1 bit register. It requires Mux.
//
//	Inputs: in, load, clk
//	Outputs: out
//	Function: If load=1 then out = in on the next rising edge of clk.
//
func BitRegister() *logicsim.Layout {
	return &logicsim.Layout{
		Name: BitRegisterName,
		Components: []logicsim.ComponentLayout{
			input("in"), input("load"), input("clk"), output("out"),
			chip("m", MuxName), gate("r", "register"),
		},
		Wires: wires(
			"r.q", "m.a",
			"in", "m.b",
			"load", "m.sel",
			"m.out", "r.d",
			"clk", "r.clk",
			"r.q", "out",
		),
	}
}

// Layouts returns the layouts of all parts in dependency order.
//
func Layouts() []*logicsim.Layout {
	return []*logicsim.Layout{Xor(), Mux(), HalfAdder(), FullAdder(), SRLatch(), BitRegister()}
}

// Register builds all parts and registers them in lib.
//
func Register(lib *logicsim.Library, opts ...logicsim.Option) error {
	for _, l := range Layouts() {
		if _, err := Define(lib, l, opts...); err != nil {
			return err
		}
	}
	return nil
}

// Define builds the board described by l and registers its definition in lib.
//
func Define(lib *logicsim.Library, l *logicsim.Layout, opts ...logicsim.Option) (*logicsim.Definition, error) {
	b, err := logicsim.Build(l, lib, opts...)
	if err != nil {
		return nil, err
	}
	d, err := lib.Add(b)
	if err != nil {
		return nil, errors.Wrapf(err, "register %s", l.Name)
	}
	return d, nil
}
