package gpt

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Graph document framing. The engine identifies documents by the fixed root
// id and the schema version marker; both are load-bearing on the wire.
const (
	graphID      = "Graph"
	graphVersion = "1.0"

	// parametersClass is the engine-side binding class for node parameters.
	parametersClass = "com.bc.ceres.binding.dom.XppDomElement"
)

// ErrDuplicateNode is returned by AddNode when the id is already taken.
var ErrDuplicateNode = errors.New("duplicate node id")

// Node is one processing step in a graph document: the operator descriptor
// plus the ordered ids of the nodes whose products feed it.
type Node struct {
	ID           string
	Operator     Operator
	Predecessors []string
}

// Document accumulates processing nodes and serializes them to the graph XML
// the engine executes. Building is pure: no filesystem or process access.
//
// Predecessor ids are taken on trust; referencing a node that is never added
// is a caller error the engine will reject, not something AddNode validates.
type Document struct {
	nodes []Node
	ids   map[string]struct{}
}

// NewDocument returns an empty graph document at schema version 1.0.
func NewDocument() *Document {
	return &Document{ids: make(map[string]struct{})}
}

// AddNode appends a node. Predecessors may be empty for head nodes (reads);
// multiple predecessors fan in to the node in the given order. Duplicate ids
// are rejected.
func (d *Document) AddNode(id string, op Operator, predecessors ...string) error {
	if id == "" {
		return errors.New("node id must not be empty")
	}
	if op.zero() {
		return fmt.Errorf("node %s: operator is not constructed", id)
	}
	if _, taken := d.ids[id]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, id)
	}
	for _, p := range predecessors {
		if p == "" {
			return fmt.Errorf("node %s: empty predecessor id", id)
		}
	}
	d.ids[id] = struct{}{}
	d.nodes = append(d.nodes, Node{
		ID:           id,
		Operator:     op,
		Predecessors: slices.Clone(predecessors),
	})
	return nil
}

// Len returns the number of nodes added so far.
func (d *Document) Len() int { return len(d.nodes) }

// Nodes returns the nodes in insertion order. The slice is a copy; the
// contained operators are immutable anyway.
func (d *Document) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	for i := range out {
		out[i].Predecessors = slices.Clone(out[i].Predecessors)
	}
	return out
}

// Node returns the node with the given id.
func (d *Document) Node(id string) (Node, bool) {
	for _, n := range d.nodes {
		if n.ID == id {
			n.Predecessors = slices.Clone(n.Predecessors)
			return n, true
		}
	}
	return Node{}, false
}

// Encode writes the document as graph XML. The first predecessor reference
// is named sourceProduct with no suffix; later ones are sourceProduct.1,
// sourceProduct.2 and so on. Unset parameters are omitted entirely.
func (d *Document) Encode(w io.Writer) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	graph := xml.StartElement{
		Name: xml.Name{Local: "graph"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: graphID}},
	}
	if err := enc.EncodeToken(graph); err != nil {
		return err
	}
	if err := encodeTextElement(enc, "version", graphVersion); err != nil {
		return err
	}
	for _, n := range d.nodes {
		if err := encodeNode(enc, n); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	if err := enc.EncodeToken(graph.End()); err != nil {
		return err
	}
	return enc.Flush()
}

// Bytes serializes the document and returns the XML.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeNode(enc *xml.Encoder, n Node) error {
	node := xml.StartElement{
		Name: xml.Name{Local: "node"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "id"}, Value: n.ID}},
	}
	if err := enc.EncodeToken(node); err != nil {
		return err
	}
	if err := encodeTextElement(enc, "operator", n.Operator.Name()); err != nil {
		return err
	}

	sources := xml.StartElement{Name: xml.Name{Local: "sources"}}
	if err := enc.EncodeToken(sources); err != nil {
		return err
	}
	for i, ref := range n.Predecessors {
		name := "sourceProduct"
		if i > 0 {
			name = fmt.Sprintf("sourceProduct.%d", i)
		}
		src := xml.StartElement{
			Name: xml.Name{Local: name},
			Attr: []xml.Attr{{Name: xml.Name{Local: "refid"}, Value: ref}},
		}
		if err := enc.EncodeToken(src); err != nil {
			return err
		}
		if err := enc.EncodeToken(src.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(sources.End()); err != nil {
		return err
	}

	parameters := xml.StartElement{
		Name: xml.Name{Local: "parameters"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "class"}, Value: parametersClass}},
	}
	if err := enc.EncodeToken(parameters); err != nil {
		return err
	}
	if err := encodeParams(enc, n.Operator.params); err != nil {
		return err
	}
	if err := enc.EncodeToken(parameters.End()); err != nil {
		return err
	}
	return enc.EncodeToken(node.End())
}

func encodeParams(enc *xml.Encoder, p *Params) error {
	if p == nil {
		return nil
	}
	for _, e := range p.entries {
		switch e.kind {
		case kindUnset:
			continue
		case kindString:
			if err := encodeTextElement(enc, e.key, e.str); err != nil {
				return err
			}
		case kindBlock:
			start := xml.StartElement{Name: xml.Name{Local: e.key}}
			if err := enc.EncodeToken(start); err != nil {
				return err
			}
			if err := encodeParams(enc, e.block); err != nil {
				return err
			}
			if err := enc.EncodeToken(start.End()); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeTextElement(enc *xml.Encoder, name, text string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}
