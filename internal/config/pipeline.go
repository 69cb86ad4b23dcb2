// Package config loads pipeline description files for the CLI.
//
// A pipeline file is JSON: an optional engine executable and working
// directory plus the ordered operator chain. Parameter order inside a step
// is contractual (it survives into the graph XML), so step parameters are
// decoded at token level instead of through a map.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/snapgraph/internal/gpt"
)

// Extension is the required pipeline file suffix.
const Extension = ".json"

// maxFileSize caps how large a pipeline file Load accepts (1MB).
const maxFileSize = 1 << 20

// Step is one operator invocation in a pipeline file. Operator names are
// not validated against a catalog here: unknown step kinds pass through to
// the engine, which checks them against its own operator registry.
type Step struct {
	Operator   string
	Parameters *gpt.Params
}

// Pipeline is a parsed pipeline description.
type Pipeline struct {
	// GPTPath optionally overrides the engine executable.
	GPTPath string

	// WorkingDir optionally selects where transient graph files go.
	WorkingDir string

	// Steps is the operator chain in execution order. May be empty, in
	// which case a run reduces to a read-write conversion.
	Steps []Step
}

// Load reads and parses the pipeline file at path. The file must carry the
// .json extension and stay under the size cap.
func Load(path string) (*Pipeline, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != Extension {
		return nil, fmt.Errorf("pipeline file must have %s extension, got %q", Extension, ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat pipeline file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("pipeline file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read pipeline file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", cleanPath, err)
	}
	return p, nil
}

// Parse decodes a pipeline description from JSON.
//
// The expected shape is
//
//	{
//	  "gpt_path": "/opt/snap/bin/gpt",
//	  "working_dir": "/tmp",
//	  "pipeline": [
//	    {"operator": "Apply-Orbit-File", "parameters": {"polyDegree": "3"}},
//	    {"operator": "Terrain-Correction", "parameters": {"demName": "SRTM 3Sec"}}
//	  ]
//	}
//
// where a parameter value is a string, a nested object, or null. Null marks
// the key unset so the engine default applies. Unknown top-level keys are
// ignored; unknown keys inside a step are rejected, since a misspelled
// "parameters" would otherwise silently drop the whole parameter set.
func Parse(data []byte) (*Pipeline, error) {
	var file struct {
		GPTPath    string            `json:"gpt_path"`
		WorkingDir string            `json:"working_dir"`
		Pipeline   []json.RawMessage `json:"pipeline"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	p := &Pipeline{GPTPath: file.GPTPath, WorkingDir: file.WorkingDir}
	for i, raw := range file.Pipeline {
		step, err := parseStep(raw)
		if err != nil {
			return nil, fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
		p.Steps = append(p.Steps, step)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the description without constructing operators.
func (p *Pipeline) Validate() error {
	for i, s := range p.Steps {
		if strings.TrimSpace(s.Operator) == "" {
			return fmt.Errorf("pipeline step %d has no operator name", i+1)
		}
	}
	return nil
}

// Operators builds the descriptor chain in step order.
func (p *Pipeline) Operators() ([]gpt.Operator, error) {
	ops := make([]gpt.Operator, 0, len(p.Steps))
	for i, s := range p.Steps {
		op, err := gpt.NewOperator(s.Operator, s.Parameters)
		if err != nil {
			return nil, fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseStep(raw json.RawMessage) (Step, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return Step{}, err
	}
	if tok != json.Delim('{') {
		return Step{}, errors.New("step must be an object")
	}

	var step Step
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Step{}, err
		}
		key := keyTok.(string)
		switch key {
		case "operator":
			tok, err := dec.Token()
			if err != nil {
				return Step{}, err
			}
			name, ok := tok.(string)
			if !ok {
				return Step{}, fmt.Errorf("operator name must be a string, got %v", tok)
			}
			step.Operator = name
		case "parameters":
			tok, err := dec.Token()
			if err != nil {
				return Step{}, err
			}
			if tok != json.Delim('{') {
				return Step{}, errors.New("parameters must be an object")
			}
			params, err := parseParams(dec)
			if err != nil {
				return Step{}, err
			}
			step.Parameters = params
		default:
			return Step{}, fmt.Errorf("unknown key %q in step (want operator, parameters)", key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return Step{}, err
	}
	if strings.TrimSpace(step.Operator) == "" {
		return Step{}, errors.New("step is missing its operator name")
	}
	return step, nil
}

// parseParams decodes one object's entries in file order. The opening brace
// has already been consumed. Numbers and booleans are rejected rather than
// stringified: the graph XML is all text, and quoting in the file keeps the
// value exactly as the engine will see it.
func parseParams(dec *json.Decoder) (*gpt.Params, error) {
	params := gpt.NewParams()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)

		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case string:
			params.Set(key, v)
		case nil:
			params.SetUnset(key)
		case json.Delim:
			if v != '{' {
				return nil, fmt.Errorf("parameter %q: arrays are not supported, join values with commas", key)
			}
			block, err := parseParams(dec)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", key, err)
			}
			params.SetBlock(key, block)
		default:
			return nil, fmt.Errorf("parameter %q: value must be a string, object or null, got %v (quote it)", key, tok)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return params, nil
}
