// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// A Definition is an immutable snapshot of a board, used to place that board
// as a component (a Chip) in other boards. A Definition is shared by all the
// chips that reference it: each chip gets its own runtime state, but they all
// share the same topology.
//
type Definition struct {
	id   uuid.UUID
	name string
	nl   *netlist
	pins []PinSpec // external interface
	ext  []int     // dense index of the Pin component behind each interface pin
	// boards this definition is built from, including its own source board.
	deps map[uuid.UUID]struct{}
	refs int32
}

// Name returns the name of the board d was created from.
//
func (d *Definition) Name() string { return d.name }

// ID returns the id of the board d was created from.
//
func (d *Definition) ID() uuid.UUID { return d.id }

// Interface returns the pins of chips built from d, in order: input pins then
// output pins, each in order of placement of their Pin component.
//
func (d *Definition) Interface() []PinSpec {
	ps := make([]PinSpec, len(d.pins))
	copy(ps, d.pins)
	return ps
}

// Contains returns true if the board with the given id is d's source board or
// is nested, directly or not, in d.
//
func (d *Definition) Contains(id uuid.UUID) bool {
	_, ok := d.deps[id]
	return ok
}

// Refs returns the number of references to d: chips currently placed on a
// board and chips inside other definitions. Definitions are immutable, so a
// definition nested in another one stays referenced for the lifetime of the
// process.
//
func (d *Definition) Refs() int { return int(atomic.LoadInt32(&d.refs)) }

func (d *Definition) acquire() { atomic.AddInt32(&d.refs, 1) }
func (d *Definition) release() { atomic.AddInt32(&d.refs, -1) }

// Size returns the number of components in d.
//
func (d *Definition) Size() int { return len(d.nl.comps) }

// instance returns a new runtime instance of d.
func (d *Definition) instance() *circuit {
	st := make([]*compState, len(d.nl.comps))
	for i, c := range d.nl.comps {
		st[i] = newState(c)
	}
	return newCircuit(d.nl, st)
}

// newDefinition builds a definition from the current topology of a board.
func newDefinition(id uuid.UUID, name string, nl *netlist) (*Definition, error) {
	d := &Definition{
		id:   id,
		name: name,
		nl:   nl,
		deps: map[uuid.UUID]struct{}{id: {}},
	}
	var outs []int
	var nested []*Definition
	for i, c := range nl.comps {
		p := &c.part
		switch p.Kind {
		case Chip:
			for k := range p.Def.deps {
				d.deps[k] = struct{}{}
			}
			nested = append(nested, p.Def)
		case Pin:
			switch p.Dir {
			case Input:
				d.ext = append(d.ext, i)
			case Output:
				outs = append(outs, i)
			default:
				return nil, configError("define "+name, "bidirectional pin %q cannot be exported", p.Name)
			}
		}
	}
	d.ext = append(d.ext, outs...)
	d.pins = make([]PinSpec, len(d.ext))
	for k, i := range d.ext {
		p := &nl.comps[i].part
		dir := Input
		if p.Dir == Output {
			dir = Output
		}
		d.pins[k] = PinSpec{Name: p.Name, Dir: dir, Width: p.Width}
	}
	// the snapshot keeps its chips alive even if the source board drops them.
	for _, n := range nested {
		n.acquire()
	}
	return d, nil
}

// A Library is an arena of named definitions. It is safe for concurrent use.
//
type Library struct {
	mu     sync.RWMutex
	defs   []*Definition
	byName map[string]int
}

// NewLibrary returns a new empty library.
//
func NewLibrary() *Library {
	return &Library{byName: make(map[string]int)}
}

// Add defines b and registers the resulting definition under b's name.
//
func (l *Library) Add(b *Board) (*Definition, error) {
	d, err := b.Define()
	if err != nil {
		return nil, err
	}
	if err = l.Register(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Register adds d to the library. It fails if a definition with the same name
// is already registered and still referenced; an unreferenced one is replaced.
//
func (l *Library) Register(d *Definition) error {
	if d.name == "" {
		return configError("register definition", "empty definition name")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if i, ok := l.byName[d.name]; ok {
		if l.defs[i].Refs() > 0 {
			return configError("register definition", "definition %q already registered and in use", d.name)
		}
		l.defs[i] = d
		return nil
	}
	l.byName[d.name] = len(l.defs)
	l.defs = append(l.defs, d)
	return nil
}

// Get returns the definition registered under name.
//
func (l *Library) Get(name string) (*Definition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byName[name]
	if !ok {
		return nil, false
	}
	return l.defs[i], true
}

// Lookup is like Get but returns a ConfigurationError for unknown names.
//
func (l *Library) Lookup(name string) (*Definition, error) {
	d, ok := l.Get(name)
	if !ok {
		return nil, configError("lookup definition", "unknown board %q", name)
	}
	return d, nil
}

// Names returns the names of all registered definitions, sorted.
//
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.defs))
	for _, d := range l.defs {
		names = append(names, d.name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered definitions.
//
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.defs)
}

// Prune removes all definitions not referenced by any placed chip or other
// definition and returns how many were removed.
//
func (l *Library) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var keep []*Definition
	for _, d := range l.defs {
		if d.Refs() > 0 {
			keep = append(keep, d)
		}
	}
	n := len(l.defs) - len(keep)
	l.defs = keep
	l.byName = make(map[string]int, len(keep))
	for i, d := range keep {
		l.byName[d.name] = i
	}
	return n
}
