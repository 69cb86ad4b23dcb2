// Package gpt models processing graphs for the ESA SNAP Graph Processing
// Tool. Operator descriptors pair a step kind with ordered parameters, a
// Document assembles descriptors into nodes with fan-in references, and the
// result serializes to the graph XML the gpt executable consumes.
//
// Everything here is pure construction and serialization. Running graphs,
// capturing engine output, and cleaning up transient files belong to
// internal/pipeline.
package gpt
