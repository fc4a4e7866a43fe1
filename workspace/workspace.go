// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package workspace manages several independent boards, such as the tabs of
// an editor, serializing access to each board and stepping boards in
// parallel.
//
package workspace

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/db47h/logicsim"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned for unknown tab ids.
//
var ErrNotFound = errors.New("tab not found")

type tab struct {
	mu sync.Mutex
	b  *logicsim.Board
}

// A Workspace is a set of boards. It is safe for concurrent use.
//
type Workspace struct {
	workers int
	log     *slog.Logger

	mu   sync.RWMutex
	tabs map[uuid.UUID]*tab
}

// New returns a new workspace stepping at most workers boards concurrently. A
// value less than 1 means no limit.
//
func New(workers int, log *slog.Logger) *Workspace {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Workspace{
		workers: workers,
		log:     log,
		tabs:    make(map[uuid.UUID]*tab),
	}
}

// Open adds b to the workspace and returns its tab id.
//
func (w *Workspace) Open(b *logicsim.Board) uuid.UUID {
	id := uuid.New()
	w.mu.Lock()
	w.tabs[id] = &tab{b: b}
	w.mu.Unlock()
	w.log.Debug("tab opened", "tab", id, "board", b.Name())
	return id
}

// Close removes a tab from the workspace. It waits for any pending operation
// on the tab to complete.
//
func (w *Workspace) Close(id uuid.UUID) error {
	w.mu.Lock()
	t, ok := w.tabs[id]
	delete(w.tabs, id)
	w.mu.Unlock()
	if !ok {
		return errors.Wrap(ErrNotFound, id.String())
	}
	t.mu.Lock()
	t.b = nil
	t.mu.Unlock()
	w.log.Debug("tab closed", "tab", id)
	return nil
}

// Tabs returns the ids of all open tabs, sorted.
//
func (w *Workspace) Tabs() []uuid.UUID {
	w.mu.RLock()
	ids := make([]uuid.UUID, 0, len(w.tabs))
	for id := range w.tabs {
		ids = append(ids, id)
	}
	w.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (w *Workspace) tab(id uuid.UUID) (*tab, error) {
	w.mu.RLock()
	t, ok := w.tabs[id]
	w.mu.RUnlock()
	if !ok {
		return nil, errors.Wrap(ErrNotFound, id.String())
	}
	return t, nil
}

// Do calls f with the board of the given tab. Calls to Do and steps on the
// same tab are serialized.
//
func (w *Workspace) Do(id uuid.UUID, f func(*logicsim.Board) error) error {
	t, err := w.tab(id)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.b == nil {
		return errors.Wrap(ErrNotFound, id.String())
	}
	return f(t.b)
}

// StepAll steps all boards in parallel. Once ctx is done, no further step is
// started and ctx's error is returned with the results of the completed steps.
//
func (w *Workspace) StepAll(ctx context.Context) (map[uuid.UUID]logicsim.StepResult, error) {
	return w.runAll(ctx, (*logicsim.Board).Step)
}

// TickAll ticks all boards in parallel, like StepAll.
//
func (w *Workspace) TickAll(ctx context.Context) (map[uuid.UUID]logicsim.StepResult, error) {
	return w.runAll(ctx, (*logicsim.Board).Tick)
}

func (w *Workspace) runAll(ctx context.Context, run func(*logicsim.Board) logicsim.StepResult) (map[uuid.UUID]logicsim.StepResult, error) {
	var mu sync.Mutex
	res := make(map[uuid.UUID]logicsim.StepResult)

	g, gctx := errgroup.WithContext(ctx)
	if w.workers > 0 {
		g.SetLimit(w.workers)
	}
	for _, id := range w.Tabs() {
		if gctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := w.Do(id, func(b *logicsim.Board) error {
				r := run(b)
				mu.Lock()
				res[id] = r
				mu.Unlock()
				if r.Status == logicsim.Oscillating {
					w.log.Warn("board oscillating", "tab", id, "board", b.Name(), "nets", len(r.Nets))
				}
				return nil
			})
			if errors.Cause(err) == ErrNotFound {
				// closed meanwhile
				return nil
			}
			return err
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return res, err
}
