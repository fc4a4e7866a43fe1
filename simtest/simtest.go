// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package simtest provides utility functions for testing circuits.
//
package simtest

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/db47h/logicsim"
	"github.com/stretchr/testify/require"
)

// maxExhaustive is the maximum number of input bits tested exhaustively by
// Compare. Wider interfaces are tested with random inputs.
const maxExhaustive = 12

// Wrap returns a definition for a single builtin part, with one interface pin
// per part pin, named after it.
//
func Wrap(name string, p logicsim.Part) (*logicsim.Definition, error) {
	b := logicsim.NewBoard(name)
	id, err := b.AddComponent(p)
	if err != nil {
		return nil, err
	}
	_, pins, err := b.Component(id)
	if err != nil {
		return nil, err
	}
	for i, ps := range pins {
		pid, err := b.AddComponent(logicsim.Part{Kind: logicsim.Pin, Name: ps.Name, Width: ps.Width, Dir: ps.Dir})
		if err != nil {
			return nil, err
		}
		if _, err = b.AddWire(logicsim.At(pid, 0), logicsim.At(id, i)); err != nil {
			return nil, err
		}
	}
	return b.Define()
}

// Compare checks that two definitions compute the same outputs given the same
// inputs. Both must have the same interface, up to pin names.
//
// Interfaces with up to 12 input bits are tested exhaustively, wider ones with
// 4096 random input vectors.
//
func Compare(t testing.TB, d1, d2 *logicsim.Definition) {
	t.Helper()

	ps1, ps2 := d1.Interface(), d2.Interface()
	require.Equal(t, len(ps1), len(ps2), "interface size")
	for i := range ps1 {
		require.Equal(t, ps1[i].Dir, ps2[i].Dir, "direction of pin %d (%s/%s)", i, ps1[i].Name, ps2[i].Name)
		require.Equal(t, ps1[i].Width, ps2[i].Width, "width of pin %d (%s/%s)", i, ps1[i].Name, ps2[i].Name)
	}

	b := logicsim.NewBoard("compare")
	c1, err := b.AddComponent(logicsim.Part{Kind: logicsim.Chip, Def: d1})
	require.NoError(t, err)
	c2, err := b.AddComponent(logicsim.Part{Kind: logicsim.Chip, Def: d2})
	require.NoError(t, err)

	var ins []logicsim.ComponentID
	var outs []int
	bits := 0
	for i, ps := range ps1 {
		if ps.Dir != logicsim.Input {
			outs = append(outs, i)
			continue
		}
		sw, err := b.AddComponent(logicsim.Part{Kind: logicsim.Switch, Width: ps.Width})
		require.NoError(t, err)
		_, err = b.AddWire(logicsim.At(sw, 0), logicsim.At(c1, i))
		require.NoError(t, err)
		_, err = b.AddWire(logicsim.At(sw, 0), logicsim.At(c2, i))
		require.NoError(t, err)
		ins = append(ins, sw)
		bits += ps.Width
	}

	check := func(vec uint64) {
		v := vec
		desc := make([]string, len(ins))
		for k, sw := range ins {
			w := ps1[k].Width
			in := logicsim.ValueOf(w, v)
			v >>= uint(w)
			require.NoError(t, b.SetInput(sw, in))
			desc[k] = ps1[k].Name + "=" + in.String()
		}
		r := b.Step()
		require.Equal(t, logicsim.Stable, r.Status, "inputs %s", strings.Join(desc, ", "))
		for _, o := range outs {
			v1, err := b.Read(logicsim.At(c1, o))
			require.NoError(t, err)
			v2, err := b.Read(logicsim.At(c2, o))
			require.NoError(t, err)
			if !v1.Equal(v2) {
				t.Fatalf("%s vs %s: inputs %s: %s=%v, %s=%v", d1.Name(), d2.Name(),
					strings.Join(desc, ", "), ps1[o].Name, v1, ps2[o].Name, v2)
			}
		}
	}

	if bits <= maxExhaustive {
		for vec := uint64(0); vec < 1<<uint(bits); vec++ {
			check(vec)
		}
		return
	}
	rnd := rand.New(rand.NewSource(1))
	check(0)
	check(^uint64(0))
	for i := 0; i < 1<<maxExhaustive; i++ {
		check(rnd.Uint64())
	}
}

// A Case is a row in a truth table: the values of the input pins and the
// expected values of the output pins, in the format accepted by
// logicsim.ParseValue.
//
type Case struct {
	In  map[string]string
	Out map[string]string
}

// TruthTable sets the inputs of board b for each case in order, steps b and
// checks its outputs. Cases are run in sequence on the same board, so that
// sequential circuits can be tested too.
//
func TruthTable(t testing.TB, b *logicsim.Board, cases []Case) {
	t.Helper()
	for i, c := range cases {
		for _, name := range sortedKeys(c.In) {
			v, err := logicsim.ParseValue(c.In[name])
			require.NoError(t, err, "case %d: input %s", i, name)
			require.NoError(t, b.SetExternalInput(name, v), "case %d", i)
		}
		r := b.Step()
		require.Equal(t, logicsim.Stable, r.Status, "case %d: %v", i, c.In)
		for _, name := range sortedKeys(c.Out) {
			v, err := b.ReadExternalOutput(name)
			require.NoError(t, err, "case %d", i)
			require.Equal(t, c.Out[name], v.String(), "case %d: %s", i, describe(c))
		}
	}
}

// Tick ticks board b n times and returns the last result.
//
func Tick(t testing.TB, b *logicsim.Board, n int) logicsim.StepResult {
	t.Helper()
	var r logicsim.StepResult
	for i := 0; i < n; i++ {
		r = b.Tick()
		require.Equal(t, logicsim.Stable, r.Status, "tick %d", i)
	}
	return r
}

func describe(c Case) string {
	var sb strings.Builder
	for _, name := range sortedKeys(c.In) {
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%s", name, c.In[name])
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
