package gpt

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ParseDocument reads graph XML in the shape Encode emits and rebuilds the
// document. Values survive a round trip except unset parameter keys, which
// are omitted on encode and therefore absent after a parse.
func ParseDocument(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStart(dec)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	if root.Name.Local != "graph" {
		return nil, fmt.Errorf("unexpected root element %q, want graph", root.Name.Local)
	}

	doc := NewDocument()
	version := ""
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("graph: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "version":
				version, err = collectText(dec)
				if err != nil {
					return nil, fmt.Errorf("version: %w", err)
				}
			case "node":
				if err := parseNode(dec, t, doc); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("unexpected element %q in graph", t.Name.Local)
			}
		case xml.EndElement:
			if strings.TrimSpace(version) != graphVersion {
				return nil, fmt.Errorf("unsupported graph version %q", strings.TrimSpace(version))
			}
			return doc, nil
		}
	}
}

func parseNode(dec *xml.Decoder, start xml.StartElement, doc *Document) error {
	id := attrValue(start, "id")
	if id == "" {
		return fmt.Errorf("node is missing its id attribute")
	}

	var (
		opName string
		refs   []string
		params = NewParams()
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("node %s: %w", id, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "operator":
				opName, err = collectText(dec)
				if err != nil {
					return fmt.Errorf("node %s: operator: %w", id, err)
				}
				opName = strings.TrimSpace(opName)
			case "sources":
				refs, err = parseSources(dec, id)
				if err != nil {
					return err
				}
			case "parameters":
				v, err := parseValue(dec)
				if err != nil {
					return fmt.Errorf("node %s: parameters: %w", id, err)
				}
				if v.block != nil {
					params = v.block
				}
			default:
				return fmt.Errorf("node %s: unexpected element %q", id, t.Name.Local)
			}
		case xml.EndElement:
			if opName == "" {
				return fmt.Errorf("node %s: missing operator", id)
			}
			op, err := NewOperator(opName, params)
			if err != nil {
				return fmt.Errorf("node %s: %w", id, err)
			}
			return doc.AddNode(id, op, refs...)
		}
	}
}

// parseSources collects predecessor refids in document order. Element names
// (sourceProduct, sourceProduct.1, ...) encode the same order, so the names
// themselves are not interpreted.
func parseSources(dec *xml.Decoder, nodeID string) ([]string, error) {
	var refs []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("node %s: sources: %w", nodeID, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			ref := attrValue(t, "refid")
			if ref == "" {
				return nil, fmt.Errorf("node %s: source %q has no refid", nodeID, t.Name.Local)
			}
			refs = append(refs, ref)
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("node %s: sources: %w", nodeID, err)
			}
		case xml.EndElement:
			return refs, nil
		}
	}
}

// parsedValue is the decoded content of one element: either character data
// or a block of child elements. Mixed content is rejected.
type parsedValue struct {
	text  string
	block *Params
}

// parseValue consumes tokens up to and including the end of the element
// whose start token has already been read.
func parseValue(dec *xml.Decoder) (parsedValue, error) {
	var text strings.Builder
	var block *Params
	for {
		tok, err := dec.Token()
		if err != nil {
			return parsedValue{}, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			if block == nil {
				block = NewParams()
			}
			inner, err := parseValue(dec)
			if err != nil {
				return parsedValue{}, fmt.Errorf("%s: %w", t.Name.Local, err)
			}
			if inner.block != nil {
				block.SetBlock(t.Name.Local, inner.block)
			} else {
				block.Set(t.Name.Local, inner.text)
			}
		case xml.EndElement:
			if block != nil {
				if strings.TrimSpace(text.String()) != "" {
					return parsedValue{}, fmt.Errorf("mixed text and elements")
				}
				return parsedValue{block: block}, nil
			}
			return parsedValue{text: text.String()}, nil
		}
	}
}

func collectText(dec *xml.Decoder) (string, error) {
	v, err := parseValue(dec)
	if err != nil {
		return "", err
	}
	if v.block != nil {
		return "", fmt.Errorf("expected text content, found child elements")
	}
	return v.text, nil
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func attrValue(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
