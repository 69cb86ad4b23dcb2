package gpt

import (
	"fmt"
)

// valueKind discriminates the closed set of parameter value shapes: a
// literal string, a nested block of parameters, or an unset placeholder
// that is omitted from serialization so the engine default applies.
type valueKind int

const (
	kindString valueKind = iota
	kindBlock
	kindUnset
)

type paramEntry struct {
	key   string
	kind  valueKind
	str   string
	block *Params
}

// Params is an ordered collection of operator parameters. Insertion order is
// preserved through serialization because the engine's parameter schema is
// positional in places. Setting an existing key replaces its value in place.
//
// The zero value is usable; setters return the receiver for chaining.
type Params struct {
	entries []paramEntry
}

// NewParams returns an empty parameter collection.
func NewParams() *Params {
	return &Params{}
}

func (p *Params) put(e paramEntry) *Params {
	for i := range p.entries {
		if p.entries[i].key == e.key {
			p.entries[i] = e
			return p
		}
	}
	p.entries = append(p.entries, e)
	return p
}

// Set stores a literal string value for key.
func (p *Params) Set(key, value string) *Params {
	return p.put(paramEntry{key: key, kind: kindString, str: value})
}

// SetBlock stores a nested parameter block for key. A nil block is treated
// as an empty one.
func (p *Params) SetBlock(key string, block *Params) *Params {
	if block == nil {
		block = NewParams()
	}
	return p.put(paramEntry{key: key, kind: kindBlock, block: block})
}

// SetUnset records key with no value. Unset keys document which engine
// defaults a descriptor leaves untouched; they never appear in the
// serialized graph.
func (p *Params) SetUnset(key string) *Params {
	return p.put(paramEntry{key: key, kind: kindUnset})
}

// Get returns the literal string value for key. The second result is false
// when the key is missing, unset, or holds a nested block.
func (p *Params) Get(key string) (string, bool) {
	for _, e := range p.entries {
		if e.key == key && e.kind == kindString {
			return e.str, true
		}
	}
	return "", false
}

// Block returns the nested block for key, or false when the key is missing
// or not a block.
func (p *Params) Block(key string) (*Params, bool) {
	for _, e := range p.entries {
		if e.key == key && e.kind == kindBlock {
			return e.block, true
		}
	}
	return nil, false
}

// Has reports whether key is present, including unset keys.
func (p *Params) Has(key string) bool {
	for _, e := range p.entries {
		if e.key == key {
			return true
		}
	}
	return false
}

// Keys returns all keys in insertion order, including unset ones.
func (p *Params) Keys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of keys, including unset ones.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Clone returns a deep copy.
func (p *Params) Clone() *Params {
	if p == nil {
		return NewParams()
	}
	out := &Params{entries: make([]paramEntry, len(p.entries))}
	copy(out.entries, p.entries)
	for i, e := range out.entries {
		if e.kind == kindBlock {
			out.entries[i].block = e.block.Clone()
		}
	}
	return out
}

// WithoutUnset returns a copy with every unset key removed, recursively.
// This is the view serialization operates on.
func (p *Params) WithoutUnset() *Params {
	out := NewParams()
	if p == nil {
		return out
	}
	for _, e := range p.entries {
		switch e.kind {
		case kindString:
			out.Set(e.key, e.str)
		case kindBlock:
			out.SetBlock(e.key, e.block.WithoutUnset())
		}
	}
	return out
}

// Equal reports whether two collections hold the same keys, in the same
// order, with the same values. Unset keys participate in the comparison.
func (p *Params) Equal(other *Params) bool {
	if p.Len() != other.Len() {
		return false
	}
	if p == nil || other == nil {
		return true
	}
	for i, a := range p.entries {
		b := other.entries[i]
		if a.key != b.key || a.kind != b.kind {
			return false
		}
		switch a.kind {
		case kindString:
			if a.str != b.str {
				return false
			}
		case kindBlock:
			if !a.block.Equal(b.block) {
				return false
			}
		}
	}
	return true
}

// validate checks that every key, including those in nested blocks, can be
// used as an XML element name. Called from NewOperator so malformed
// descriptors are rejected at construction rather than at serialization.
func (p *Params) validate() error {
	if p == nil {
		return nil
	}
	for _, e := range p.entries {
		if !validElementName(e.key) {
			return fmt.Errorf("parameter key %q is not a valid element name", e.key)
		}
		if e.kind == kindBlock {
			if err := e.block.validate(); err != nil {
				return fmt.Errorf("block %s: %w", e.key, err)
			}
		}
	}
	return nil
}

func validElementName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
