package gpt

import (
	"errors"
	"fmt"
	"strings"
)

// Source describes a raster product that can feed a read step. Implemented
// by internal/product; kept minimal so callers can substitute their own
// product access.
type Source interface {
	// Name returns a short human-readable product name.
	Name() string

	// Path returns the on-disk location handed to the engine.
	Path() string

	// Size returns the scene raster size in pixels.
	Size() (height, width int)
}

// Operator describes one named processing step and its parameters. It is
// immutable after construction; build concrete steps through NewOperator or
// the typed constructors (NewRead, NewWrite, the radar catalog).
type Operator struct {
	name   string
	params *Params
}

// NewOperator validates and builds a step descriptor. The name must be the
// non-empty step kind the engine registers (e.g. "Read", "Apply-Orbit-File").
// Parameters are deep-copied, so the caller's Params can be reused. A nil
// params is an empty set.
func NewOperator(name string, params *Params) (Operator, error) {
	if strings.TrimSpace(name) == "" {
		return Operator{}, errors.New("operator name must not be empty")
	}
	if err := params.validate(); err != nil {
		return Operator{}, fmt.Errorf("operator %s: %w", name, err)
	}
	return Operator{name: name, params: params.Clone()}, nil
}

// Name returns the step kind.
func (op Operator) Name() string { return op.name }

// Params returns a copy of the parameter set.
func (op Operator) Params() *Params { return op.params.Clone() }

// zero reports whether the descriptor was never constructed. Zero-value
// operators are rejected where they would otherwise reach the engine.
func (op Operator) zero() bool { return op.name == "" }
