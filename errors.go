// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// A ConfigurationError is returned when a component or wire cannot be placed
// as described: pin width mismatch, unknown component kind, malformed board
// reference.
//
type ConfigurationError struct {
	Op  string // failed operation
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Op + ": " + e.Msg
}

// A CyclicDefinitionError is returned when placing a board component would
// make a board definition contain itself.
//
type CyclicDefinitionError struct {
	Board uuid.UUID // enclosing board
	Def   string    // name of the rejected definition
}

func (e *CyclicDefinitionError) Error() string {
	return fmt.Sprintf("definition %q contains board %s", e.Def, e.Board)
}

// A TopologyError is returned by edit and query calls referencing a
// nonexistent component, pin, bit, wire or external pin.
//
type TopologyError struct {
	Op  string
	Msg string
}

func (e *TopologyError) Error() string {
	return e.Op + ": " + e.Msg
}

func configError(op, format string, args ...interface{}) error {
	return errors.WithStack(&ConfigurationError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

func topologyError(op, format string, args ...interface{}) error {
	return errors.WithStack(&TopologyError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// IsConfiguration returns true if err or any error it wraps is a
// *ConfigurationError.
//
func IsConfiguration(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsCyclic returns true if err or any error it wraps is a
// *CyclicDefinitionError.
//
func IsCyclic(err error) bool {
	var e *CyclicDefinitionError
	return errors.As(err, &e)
}

// IsTopology returns true if err or any error it wraps is a *TopologyError.
//
func IsTopology(err error) bool {
	var e *TopologyError
	return errors.As(err, &e)
}
