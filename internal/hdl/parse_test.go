// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl_test

import (
	"testing"

	"github.com/db47h/logicsim/internal/hdl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	data := []struct {
		in  string
		ref hdl.Ref
		err string
	}{
		{"sw1", hdl.Ref{Label: "sw1", Start: -1, End: -1}, ""},
		{"sw1.out", hdl.Ref{Label: "sw1", Pin: "out", Start: -1, End: -1}, ""},
		{"g.in1[3]", hdl.Ref{Label: "g", Pin: "in1", Start: 3, End: 3}, ""},
		{" reg.q[0..7] ", hdl.Ref{Label: "reg", Pin: "q", Start: 0, End: 7}, ""},
		{"bus[2]", hdl.Ref{Label: "bus", Start: 2, End: 2}, ""},
		{"$j_0", hdl.Ref{Label: "j_0", Free: true, Start: -1, End: -1}, ""},
		{"$j.out", hdl.Ref{}, `in "$j.out" at pos 3: free junctions have no pins`},
		{"$j[1]", hdl.Ref{}, `in "$j[1]" at pos 3: free junctions cannot be indexed`},
		{"a.", hdl.Ref{}, `in "a." at pos 3: expected pin name after '.'`},
		{"a[", hdl.Ref{}, `in "a[" at pos 3: integer value expected`},
		{"a[1", hdl.Ref{}, `in "a[1" at pos 4: closing ']' expected after index or range`},
		{"a[3..1]", hdl.Ref{}, `in "a[3..1]": invalid range 3..1`},
		{"a b", hdl.Ref{}, `in "a b" at pos 3: unexpected identifier "b"`},
		{"a#", hdl.Ref{}, `in "a#" at pos 2: unexpected "#"`},
		{"", hdl.Ref{}, `in "" at pos 1: expected label`},
	}
	for _, d := range data {
		t.Run(d.in, func(t *testing.T) {
			r, err := hdl.ParseRef(d.in)
			if d.err != "" {
				require.EqualError(t, err, d.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, d.ref, r)
		})
	}
}

func TestRef_String(t *testing.T) {
	for _, s := range []string{"a", "a.out", "a.out[1]", "a[0..3]", "$j"} {
		r, err := hdl.ParseRef(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}
	r, _ := hdl.ParseRef("a.q[2..5]")
	assert.Equal(t, 4, r.Bits())
	assert.False(t, r.Whole())
}

func TestParseBus(t *testing.T) {
	data := []struct {
		in    string
		name  string
		width int
		err   string
	}{
		{"a", "a", 1, ""},
		{"data[16]", "data", 16, ""},
		{"data[0]", "", 0, `in "data[0]": invalid bus width 0`},
		{"data[4", "", 0, `in "data[4" at pos 7: missing close bracket`},
		{"4", "", 0, `in "4" at pos 1: expected bus name`},
	}
	for _, d := range data {
		name, w, err := hdl.ParseBus(d.in)
		if d.err != "" {
			assert.EqualError(t, err, d.err, d.in)
			continue
		}
		require.NoError(t, err, d.in)
		assert.Equal(t, d.name, name)
		assert.Equal(t, d.width, w)
	}
}
