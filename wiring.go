// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sort"
	"strconv"
)

// A ComponentID identifies a component within its board. IDs start at 1 and
// are never reused.
//
type ComponentID int

// A WireID identifies a wire within its board.
//
type WireID int

// A NetID identifies a net in the current topology of a board. NetIDs are
// dense and deterministic for a given topology but are renumbered after every
// topology edit.
//
type NetID int

// AllBits is the Endpoint.Bit value designating a whole pin.
//
const AllBits = -1

// An Endpoint is one end of a wire: a whole pin, a single bit of a pin, or a
// free endpoint (a junction not attached to any component).
//
type Endpoint struct {
	Comp ComponentID // 0 for free endpoints
	Pin  int         // pin index, or free endpoint number if Comp is 0
	Bit  int         // bit index or AllBits
}

// At returns an Endpoint for a whole pin.
//
func At(c ComponentID, pin int) Endpoint { return Endpoint{c, pin, AllBits} }

// BitAt returns an Endpoint for a single bit of a pin.
//
func BitAt(c ComponentID, pin, bit int) Endpoint { return Endpoint{c, pin, bit} }

// Free returns the free endpoint number n.
//
func Free(n int) Endpoint { return Endpoint{0, n, AllBits} }

// IsFree returns true if e is a free endpoint.
//
func (e Endpoint) IsFree() bool { return e.Comp == 0 }

func (e Endpoint) String() string {
	var s string
	if e.IsFree() {
		s = "free:" + strconv.Itoa(e.Pin)
	} else {
		s = strconv.Itoa(int(e.Comp)) + "." + strconv.Itoa(e.Pin)
	}
	if e.Bit != AllBits {
		s += "[" + strconv.Itoa(e.Bit) + "]"
	}
	return s
}

// A Wire links two endpoints.
//
type Wire struct {
	A, B Endpoint
}

type wire struct {
	Wire
	id    WireID
	width int
}

type component struct {
	id   ComponentID
	part Part
	pins []PinSpec
}

// a driver is a driving pin bit on a net.
type driver struct {
	comp, pin, bit int32
	weak           bool
}

type net struct {
	drivers []driver
	// dense indices of components reading this net, ascending, without
	// passive readers.
	readers []int32
}

// netlist is the immutable result of resolving a board topology into nets.
// It can be shared by any number of circuits.
//
type netlist struct {
	comps  []*component
	index  map[ComponentID]int
	pinNet [][][]NetID // [comp][pin][bit]
	free   map[int][]NetID
	nets   []net
}

type unionFind []int

func newUnionFind(n int) unionFind {
	u := make(unionFind, n)
	for i := range u {
		u[i] = i
	}
	return u
}

func (u unionFind) find(i int) int {
	for u[i] != i {
		u[i] = u[u[i]]
		i = u[i]
	}
	return i
}

// union always keeps the lowest index as the root.
func (u unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	switch {
	case ra < rb:
		u[rb] = ra
	case rb < ra:
		u[ra] = rb
	}
}

// buildNetlist groups pin bits connected by wires into nets. comps and wires
// must be sorted by id; free maps free endpoint numbers to their width. Nets
// are numbered in order of their first pin bit.
//
func buildNetlist(comps []*component, wires []*wire, free map[int]int) *netlist {
	nl := &netlist{
		comps:  comps,
		index:  make(map[ComponentID]int, len(comps)),
		pinNet: make([][][]NetID, len(comps)),
		free:   make(map[int][]NetID, len(free)),
	}

	// assign a slot number to every pin bit.
	n := 0
	base := make([][]int, len(comps))
	for i, c := range comps {
		nl.index[c.id] = i
		base[i] = make([]int, len(c.pins))
		for p := range c.pins {
			base[i][p] = n
			n += c.pins[p].Width
		}
	}
	fids := make([]int, 0, len(free))
	for f := range free {
		fids = append(fids, f)
	}
	sort.Ints(fids)
	fbase := make(map[int]int, len(free))
	for _, f := range fids {
		fbase[f] = n
		n += free[f]
	}

	slot := func(e Endpoint, i int) int {
		if e.IsFree() {
			return fbase[e.Pin] + i
		}
		b := base[nl.index[e.Comp]][e.Pin]
		if e.Bit == AllBits {
			return b + i
		}
		return b + e.Bit
	}

	uf := newUnionFind(n)
	for _, w := range wires {
		for i := 0; i < w.width; i++ {
			uf.union(slot(w.A, i), slot(w.B, i))
		}
	}

	netOf := make([]NetID, n)
	roots := make(map[int]NetID)
	for s := 0; s < n; s++ {
		r := uf.find(s)
		id, ok := roots[r]
		if !ok {
			id = NetID(len(nl.nets))
			roots[r] = id
			nl.nets = append(nl.nets, net{})
		}
		netOf[s] = id
	}

	for ci, c := range comps {
		nl.pinNet[ci] = make([][]NetID, len(c.pins))
		for p := range c.pins {
			ps := &c.pins[p]
			bits := netOf[base[ci][p] : base[ci][p]+ps.Width : base[ci][p]+ps.Width]
			nl.pinNet[ci][p] = bits
			for b, id := range bits {
				nt := &nl.nets[id]
				if ps.Dir.drives() {
					nt.drivers = append(nt.drivers, driver{int32(ci), int32(p), int32(b), ps.Weak})
				}
				if ps.Dir.reads() && !ps.Passive {
					if l := len(nt.readers); l == 0 || nt.readers[l-1] != int32(ci) {
						nt.readers = append(nt.readers, int32(ci))
					}
				}
			}
		}
	}
	for _, f := range fids {
		nl.free[f] = netOf[fbase[f] : fbase[f]+free[f] : fbase[f]+free[f]]
	}
	return nl
}

// endpoints returns the pin bits on net n.
func (nl *netlist) endpoints(n NetID) []Endpoint {
	var eps []Endpoint
	for ci, pins := range nl.pinNet {
		for p, bits := range pins {
			for b, id := range bits {
				if id == n {
					eps = append(eps, BitAt(nl.comps[ci].id, p, b))
				}
			}
		}
	}
	return eps
}
