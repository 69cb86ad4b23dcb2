package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/banshee-data/snapgraph/internal/gpt"
)

// ErrNoInput is returned when a run is started without any input product.
var ErrNoInput = errors.New("pipeline needs at least one input product")

// Input identifies the product or products feeding a run's read stage. The
// variant set is closed: construct with One for a single product or Many
// for an ordered fan-in. Anything else is unrepresentable.
type Input interface {
	sources() []gpt.Source
}

type singleInput struct {
	src gpt.Source
}

func (s singleInput) sources() []gpt.Source { return []gpt.Source{s.src} }

type multiInput struct {
	srcs []gpt.Source
}

func (m multiInput) sources() []gpt.Source { return slices.Clone(m.srcs) }

// One feeds a single product into the pipeline.
func One(src gpt.Source) Input {
	return singleInput{src: src}
}

// Many feeds an ordered collection of products into the pipeline. Order
// determines read-node naming and fan-in positions.
func Many(srcs ...gpt.Source) Input {
	return multiInput{srcs: slices.Clone(srcs)}
}

// resolveSources unwraps an Input and validates it: nil inputs, empty
// collections, and nil entries are rejected here so every later stage can
// rely on a non-empty list of usable sources.
func resolveSources(in Input) ([]gpt.Source, error) {
	if in == nil {
		return nil, ErrNoInput
	}
	srcs := in.sources()
	if len(srcs) == 0 {
		return nil, ErrNoInput
	}
	for i, s := range srcs {
		if s == nil {
			return nil, fmt.Errorf("input product %d of %d is nil", i+1, len(srcs))
		}
	}
	return srcs, nil
}
