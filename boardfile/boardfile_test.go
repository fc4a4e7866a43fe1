// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package boardfile_test

import (
	"strings"
	"testing"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/boardfile"
	"github.com/db47h/logicsim/partlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	f, err := boardfile.Load("testdata/counter.yaml")
	require.NoError(t, err)
	assert.Equal(t, "counter", f.Main)
	assert.True(t, f.Parts)
	require.Len(t, f.Boards, 2)
	assert.Equal(t, "toggle", f.Boards[0].Name)
	assert.Equal(t, logicsim.ComponentLayout{Label: "r", Kind: "chip", Board: "BitRegister"}, f.Boards[0].Components[3])
	assert.Equal(t, logicsim.WireLayout{From: "t0.out", To: "q[0]"}, f.Boards[1].Wires[3])

	lib := logicsim.NewLibrary()
	b, err := f.Build(lib)
	require.NoError(t, err)
	assert.Equal(t, "counter", b.Name())
	_, ok := lib.Get("toggle")
	assert.True(t, ok)
	_, ok = lib.Get("counter")
	assert.False(t, ok, "main board is not registered")
	_, ok = lib.Get(partlib.BitRegisterName)
	assert.True(t, ok)

	require.Equal(t, logicsim.Stable, b.Step().Status)
	var seq []string
	for i := 0; i < 8; i++ {
		r := b.Tick()
		require.Equal(t, logicsim.Stable, r.Status)
		if i%2 == 0 {
			v, err := b.ReadExternalOutput("q")
			require.NoError(t, err)
			seq = append(seq, v.String())
		}
	}
	assert.Equal(t, []string{"01", "10", "11", "00"}, seq)

	_, err = boardfile.Load("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	f, err := boardfile.Decode(strings.NewReader(`
main: a
boards:
  - name: a
  - name: b
`))
	require.NoError(t, err)
	assert.Equal(t, "a", f.Main)
	assert.False(t, f.Parts)

	for _, data := range []string{
		"boards: [",
		"main: x",
		"boards: []",
		"boards: [{components: []}]",
		"boards: [{name: a}, {name: a}]",
		"main: c\nboards: [{name: a}, {name: b}]",
	} {
		_, err = boardfile.Parse([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestBuild_errors(t *testing.T) {
	f, err := boardfile.Parse([]byte(`
boards:
  - name: top
    components:
      - {label: c, kind: chip, board: Xor}
`))
	require.NoError(t, err)
	// parts not requested
	_, err = f.Build(logicsim.NewLibrary())
	assert.True(t, logicsim.IsConfiguration(err), "%v", err)

	f.Parts = true
	b, err := f.Build(logicsim.NewLibrary())
	require.NoError(t, err)
	assert.Len(t, b.Components(), 1)

	f, err = boardfile.Parse([]byte(`
boards:
  - name: a
    components: [{label: x, kind: not}, {label: x, kind: not}]
  - name: b
`))
	require.NoError(t, err)
	_, err = f.Build(logicsim.NewLibrary())
	assert.True(t, logicsim.IsConfiguration(err), "%v", err)
}
