// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim_test

import (
	"testing"

	ls "github.com/db47h/logicsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func add(t *testing.T, b *ls.Board, p ls.Part) ls.ComponentID {
	t.Helper()
	id, err := b.AddComponent(p)
	require.NoError(t, err)
	return id
}

func wire(t *testing.T, b *ls.Board, e1, e2 ls.Endpoint) ls.WireID {
	t.Helper()
	id, err := b.AddWire(e1, e2)
	require.NoError(t, err)
	return id
}

func read(t *testing.T, b *ls.Board, e ls.Endpoint) string {
	t.Helper()
	v, err := b.Read(e)
	require.NoError(t, err)
	return v.String()
}

func output(t *testing.T, b *ls.Board, name string) string {
	t.Helper()
	v, err := b.ReadExternalOutput(name)
	require.NoError(t, err)
	return v.String()
}

func set(t *testing.T, b *ls.Board, id ls.ComponentID, v string) {
	t.Helper()
	val, err := ls.ParseValue(v)
	require.NoError(t, err)
	require.NoError(t, b.SetInput(id, val))
}

func TestBoard_AddComponent(t *testing.T) {
	b := ls.NewBoard("test")
	data := []struct {
		name string
		part ls.Part
	}{
		{"unknown kind", ls.Part{Kind: ls.Kind(100)}},
		{"invalid kind", ls.Part{}},
		{"negative width", ls.Part{Kind: ls.And, Width: -1}},
		{"one input gate", ls.Part{Kind: ls.Or, Inputs: 1}},
		{"value width", ls.Part{Kind: ls.Switch, Width: 2, Value: ls.ValueOf(3, 0)}},
		{"wide clock", ls.Part{Kind: ls.Clock, Width: 2}},
		{"wide adder", ls.Part{Kind: ls.Adder, Width: 65}},
		{"nil chip", ls.Part{Kind: ls.Chip}},
		{"unnamed pin", ls.Part{Kind: ls.Pin}},
		{"bad direction", ls.Part{Kind: ls.Pin, Name: "p", Dir: ls.Direction(7)}},
		{"undefined switch", ls.Part{Kind: ls.Switch, Value: ls.Value{ls.Error}}},
		{"floating switch bit", ls.Part{Kind: ls.Switch, Value: ls.Value{ls.Low, ls.Floating}}},
		{"undefined clock", ls.Part{Kind: ls.Clock, Value: ls.Value{ls.Floating}}},
		{"wide clock value", ls.Part{Kind: ls.Clock, Value: ls.ValueOf(2, 1)}},
		{"undefined input pin", ls.Part{Kind: ls.Pin, Name: "p", Value: ls.Value{ls.Error}}},
	}
	for _, d := range data {
		_, err := b.AddComponent(d.part)
		assert.True(t, ls.IsConfiguration(err), "%s: %v", d.name, err)
	}
	assert.Empty(t, b.Components())

	id := add(t, b, ls.Part{Kind: ls.Pin, Name: "a"})
	_, err := b.AddComponent(ls.Part{Kind: ls.Pin, Name: "a", Dir: ls.Output})
	assert.True(t, ls.IsConfiguration(err))

	g := add(t, b, ls.Part{Kind: ls.Xor, Inputs: 3, Width: 4})
	assert.Equal(t, []ls.ComponentID{id, g}, b.Components())
	p, pins, err := b.Component(g)
	require.NoError(t, err)
	assert.Equal(t, ls.Xor, p.Kind)
	assert.Equal(t, []string{"in0", "in1", "in2", "out"}, pinNames(pins))
	assert.Equal(t, 4, pins[3].Width)
	assert.Equal(t, ls.Output, pins[3].Dir)

	_, _, err = b.Component(42)
	assert.True(t, ls.IsTopology(err))
}

func pinNames(pins []ls.PinSpec) []string {
	var ns []string
	for _, p := range pins {
		ns = append(ns, p.Name)
	}
	return ns
}

func TestBoard_AddWire(t *testing.T) {
	b := ls.NewBoard("test")
	sw := add(t, b, ls.Part{Kind: ls.Switch, Width: 2})
	not := add(t, b, ls.Part{Kind: ls.Not})
	and := add(t, b, ls.Part{Kind: ls.And, Width: 2})

	// 2 bits to 1 bit
	_, err := b.AddWire(ls.At(sw, 0), ls.At(not, 0))
	require.Error(t, err)
	assert.True(t, ls.IsConfiguration(err), "%v", err)

	for _, e := range []ls.Endpoint{
		ls.At(42, 0),
		ls.At(not, 2),
		ls.At(not, -1),
		ls.BitAt(sw, 0, 2),
		ls.BitAt(sw, 0, -2),
		{Comp: 0, Pin: -1, Bit: ls.AllBits},
		{Comp: 0, Pin: 1, Bit: 0},
	} {
		_, err = b.AddWire(ls.At(not, 0), e)
		assert.True(t, ls.IsTopology(err), "%v: %v", e, err)
	}
	assert.Empty(t, b.Wires())

	// single bits
	wire(t, b, ls.BitAt(sw, 0, 1), ls.At(not, 0))
	wire(t, b, ls.At(not, 1), ls.BitAt(and, 0, 0))
	// whole pins
	w := wire(t, b, ls.At(sw, 0), ls.At(and, 1))
	ww, err := b.Wire(w)
	require.NoError(t, err)
	assert.Equal(t, ls.Wire{A: ls.At(sw, 0), B: ls.At(and, 1)}, ww)

	// free endpoints take the width of their first wire.
	wire(t, b, ls.At(and, 2), ls.Free(0))
	_, err = b.AddWire(ls.Free(0), ls.At(not, 1))
	assert.True(t, ls.IsConfiguration(err))
	wire(t, b, ls.Free(1), ls.Free(2))
	_, err = b.AddWire(ls.Free(2), ls.At(sw, 0))
	assert.True(t, ls.IsConfiguration(err))
	assert.Len(t, b.Wires(), 5)
}

func TestBoard_RemoveComponent(t *testing.T) {
	b := ls.NewBoard("test")
	sw := add(t, b, ls.Part{Kind: ls.Switch})
	not := add(t, b, ls.Part{Kind: ls.Not})
	out := add(t, b, ls.Part{Kind: ls.Pin, Name: "out", Dir: ls.Output})
	wire(t, b, ls.At(sw, 0), ls.At(not, 0))
	w := wire(t, b, ls.At(not, 1), ls.At(out, 0))
	b.Step()
	assert.Equal(t, "1", output(t, b, "out"))
	assert.Equal(t, 2, b.NetCount())

	require.NoError(t, b.RemoveComponent(sw))
	assert.Equal(t, []ls.WireID{w}, b.Wires())
	// not.in alone, not.out + out.in
	assert.Equal(t, 2, b.NetCount())
	assert.True(t, ls.IsTopology(b.RemoveComponent(sw)))

	require.NoError(t, b.RemoveWire(w))
	assert.Empty(t, b.Wires())
	assert.True(t, ls.IsTopology(b.RemoveWire(w)))
	b.Step()
	assert.Equal(t, "Z", output(t, b, "out"))

	// ids are not reused
	id := add(t, b, ls.Part{Kind: ls.Switch})
	assert.Equal(t, ls.ComponentID(4), id)

	// pin names are released
	require.NoError(t, b.RemoveComponent(out))
	add(t, b, ls.Part{Kind: ls.Pin, Name: "out", Dir: ls.Output})
}

func TestBoard_nets(t *testing.T) {
	b := ls.NewBoard("test")
	sw := add(t, b, ls.Part{Kind: ls.Switch, Width: 2, Value: ls.ValueOf(2, 2)})
	n1 := add(t, b, ls.Part{Kind: ls.Not})
	n2 := add(t, b, ls.Part{Kind: ls.Not})
	wire(t, b, ls.BitAt(sw, 0, 1), ls.Free(7))
	wire(t, b, ls.Free(7), ls.At(n1, 0))
	wire(t, b, ls.Free(7), ls.At(n2, 0))

	// sw bit 0, sw bit 1 + junction + n1.in + n2.in, n1.out, n2.out
	assert.Equal(t, 4, b.NetCount())
	ns, err := b.Net(ls.At(sw, 0))
	require.NoError(t, err)
	assert.Equal(t, []ls.NetID{0, 1}, ns)
	for _, e := range []ls.Endpoint{ls.Free(7), ls.At(n1, 0), ls.At(n2, 0)} {
		ns, err = b.Net(e)
		require.NoError(t, err)
		assert.Equal(t, []ls.NetID{1}, ns)
	}
	eps, err := b.NetEndpoints(1)
	require.NoError(t, err)
	assert.Equal(t, []ls.Endpoint{ls.BitAt(sw, 0, 1), ls.BitAt(n1, 0, 0), ls.BitAt(n2, 0, 0)}, eps)

	r := b.Step()
	assert.Equal(t, ls.Stable, r.Status)
	// all pins on a net observe the same value
	assert.Equal(t, "1", read(t, b, ls.Free(7)))
	assert.Equal(t, "1", read(t, b, ls.At(n2, 0)))
	assert.Equal(t, "0", read(t, b, ls.At(n1, 1)))
	s, err := b.NetValue(1)
	require.NoError(t, err)
	assert.Equal(t, ls.High, s)

	_, err = b.NetValue(4)
	assert.True(t, ls.IsTopology(err))
	_, err = b.NetEndpoints(-1)
	assert.True(t, ls.IsTopology(err))
	_, err = b.Net(ls.Free(3))
	assert.True(t, ls.IsTopology(err))
}

func TestBoard_SetInput(t *testing.T) {
	b := ls.NewBoard("test")
	sw := add(t, b, ls.Part{Kind: ls.Switch, Width: 2})
	not := add(t, b, ls.Part{Kind: ls.Not})
	in := add(t, b, ls.Part{Kind: ls.Pin, Name: "in"})
	out := add(t, b, ls.Part{Kind: ls.Pin, Name: "out", Dir: ls.Output})
	io := add(t, b, ls.Part{Kind: ls.Pin, Name: "io", Dir: ls.Bidirectional})
	wire(t, b, ls.At(in, 0), ls.At(not, 0))
	wire(t, b, ls.At(not, 1), ls.At(out, 0))

	assert.True(t, ls.IsConfiguration(b.SetInput(not, ls.ValueOf(1, 0))))
	assert.True(t, ls.IsConfiguration(b.SetInput(out, ls.ValueOf(1, 0))))
	assert.True(t, ls.IsConfiguration(b.SetInput(sw, ls.ValueOf(1, 0))))
	assert.True(t, ls.IsConfiguration(b.SetInput(sw, ls.Fill(2, ls.Error))))
	assert.True(t, ls.IsTopology(b.SetInput(99, ls.ValueOf(1, 0))))
	assert.NoError(t, b.SetInput(io, ls.Value{ls.Floating}))

	require.NoError(t, b.SetExternalInput("in", ls.ValueOf(1, 1)))
	b.Step()
	assert.Equal(t, "0", output(t, b, "out"))
	assert.Equal(t, "Z", output(t, b, "io"))
	assert.True(t, ls.IsTopology(b.SetExternalInput("nope", ls.ValueOf(1, 1))))
	_, err := b.ReadExternalOutput("in")
	assert.True(t, ls.IsConfiguration(err))
	_, err = b.ReadExternalOutput("nope")
	assert.True(t, ls.IsTopology(err))

	assert.Equal(t, []ls.PinSpec{
		{Name: "in", Dir: ls.Input, Width: 1},
		{Name: "out", Dir: ls.Output, Width: 1},
		{Name: "io", Dir: ls.Bidirectional, Width: 1},
	}, b.Interface())
	_, err = b.Define()
	assert.True(t, ls.IsConfiguration(err), "bidirectional pins cannot be exported")
}

func TestBoard_initialValues(t *testing.T) {
	b := ls.NewBoard("test")
	io := add(t, b, ls.Part{Kind: ls.Pin, Name: "io", Dir: ls.Bidirectional, Value: ls.Value{ls.Floating}})
	clk := add(t, b, ls.Part{Kind: ls.Clock, Value: ls.Value{ls.High}})
	k := add(t, b, ls.Part{Kind: ls.Constant, Value: ls.Value{ls.Error}})
	b.Step()
	assert.Equal(t, "Z", read(t, b, ls.At(io, 0)))
	assert.Equal(t, "1", read(t, b, ls.At(clk, 0)))
	assert.Equal(t, "X", read(t, b, ls.At(k, 0)))
	b.Tick()
	assert.Equal(t, "0", read(t, b, ls.At(clk, 0)))
}
