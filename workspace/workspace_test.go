// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package workspace_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/workspace"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blinker returns a board with a clock wired to an output pin "out".
func blinker(t *testing.T, name string) *logicsim.Board {
	t.Helper()
	b := logicsim.NewBoard(name)
	clk, err := b.AddComponent(logicsim.Part{Kind: logicsim.Clock})
	require.NoError(t, err)
	out, err := b.AddComponent(logicsim.Part{Kind: logicsim.Pin, Name: "out", Dir: logicsim.Output})
	require.NoError(t, err)
	_, err = b.AddWire(logicsim.At(clk, 0), logicsim.At(out, 0))
	require.NoError(t, err)
	return b
}

func readOut(t *testing.T, w *workspace.Workspace, id uuid.UUID) string {
	t.Helper()
	var s string
	require.NoError(t, w.Do(id, func(b *logicsim.Board) error {
		v, err := b.ReadExternalOutput("out")
		s = v.String()
		return err
	}))
	return s
}

func TestWorkspace(t *testing.T) {
	w := workspace.New(2, nil)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		ids = append(ids, w.Open(blinker(t, "b"+strconv.Itoa(i))))
	}
	assert.Len(t, w.Tabs(), 5)

	res, err := w.StepAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, res, 5)
	for _, id := range ids {
		assert.Equal(t, logicsim.Stable, res[id].Status)
		assert.Equal(t, "0", readOut(t, w, id))
	}

	res, err = w.TickAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, res, 5)
	for _, id := range ids {
		assert.Equal(t, "1", readOut(t, w, id))
	}

	require.NoError(t, w.Close(ids[0]))
	assert.Len(t, w.Tabs(), 4)
	err = w.Close(ids[0])
	assert.Equal(t, workspace.ErrNotFound, errors.Cause(err))
	err = w.Do(ids[0], func(*logicsim.Board) error { return nil })
	assert.Equal(t, workspace.ErrNotFound, errors.Cause(err))

	res, err = w.StepAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, res, 4)
	_, ok := res[ids[0]]
	assert.False(t, ok)
}

func TestWorkspace_Do(t *testing.T) {
	w := workspace.New(0, nil)
	id := w.Open(blinker(t, "b"))
	e := errors.New("boom")
	assert.Equal(t, e, w.Do(id, func(*logicsim.Board) error { return e }))
	require.NoError(t, w.Do(id, func(b *logicsim.Board) error {
		_, err := b.AddComponent(logicsim.Part{Kind: logicsim.Not})
		return err
	}))
	require.NoError(t, w.Do(id, func(b *logicsim.Board) error {
		assert.Len(t, b.Components(), 3)
		return nil
	}))
}

func TestWorkspace_cancel(t *testing.T) {
	w := workspace.New(1, nil)
	for i := 0; i < 3; i++ {
		w.Open(blinker(t, "b"+strconv.Itoa(i)))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := w.TickAll(ctx)
	assert.Equal(t, context.Canceled, err)
	assert.Empty(t, res)
}
