// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim_test

import (
	"testing"

	ls "github.com/db47h/logicsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	const (
		Z = ls.Floating
		L = ls.Low
		H = ls.High
		X = ls.Error
	)
	data := []struct {
		in  []ls.Signal
		out ls.Signal
	}{
		{nil, Z},
		{[]ls.Signal{Z, Z}, Z},
		{[]ls.Signal{L}, L},
		{[]ls.Signal{Z, H, Z}, H},
		{[]ls.Signal{H, H}, H},
		{[]ls.Signal{L, H}, X},
		{[]ls.Signal{Z, X}, X},
		{[]ls.Signal{L, L, X}, X},
	}
	for _, d := range data {
		assert.Equal(t, d.out, ls.Resolve(d.in...), "Resolve(%v)", d.in)
	}
}

func TestParseValue(t *testing.T) {
	v, err := ls.ParseValue("10zX")
	require.NoError(t, err)
	assert.Equal(t, ls.Value{ls.Error, ls.Floating, ls.Low, ls.High}, v)
	assert.Equal(t, "10ZX", v.String())
	assert.False(t, v.Defined())
	_, ok := v.Uint64()
	assert.False(t, ok)

	v, err = ls.ParseValue("1010_0001")
	require.NoError(t, err)
	assert.Equal(t, 8, v.Width())
	n, ok := v.Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(0xa1), n)
	assert.True(t, v.Equal(ls.ValueOf(8, 0xa1)))

	_, err = ls.ParseValue("")
	assert.Error(t, err)
	_, err = ls.ParseValue("012")
	assert.EqualError(t, err, `invalid character '2' in value "012"`)
}

func TestValue(t *testing.T) {
	assert.Equal(t, "0000", ls.Fill(4, ls.Low).String())
	assert.Equal(t, "ZZ", ls.Fill(2, ls.Floating).String())
	assert.Equal(t, "0110", ls.ValueOf(4, 0xf6).String())
	assert.False(t, ls.ValueOf(3, 1).Equal(ls.ValueOf(4, 1)))

	v := ls.ValueOf(2, 3)
	w := v.Copy()
	w[0] = ls.Low
	assert.Equal(t, "11", v.String())
	assert.Nil(t, ls.Value(nil).Copy())

	assert.True(t, ls.High.Bool())
	assert.False(t, ls.Floating.Bool())
	assert.Equal(t, ls.High, ls.Sig(true))
	assert.Equal(t, 'X', ls.Error.Rune())
	assert.Equal(t, "floating", ls.Floating.String())
}
