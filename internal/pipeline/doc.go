// Package pipeline executes operator graphs through the external engine.
//
// Tool owns one engine invocation: it serializes a gpt.Document to a
// uniquely named transient file, spawns the engine on it, and removes the
// file again whether or not the run succeeded. Sequential composes the
// common linear case on top of Tool: read every input product, run a fixed
// operator chain, write the result. Runs can be recorded through the
// Recorder interface; internal/runs provides a SQLite-backed implementation.
//
// Engine invocations run in one of two modes. Streamed mode forwards engine
// output to the configured writers and propagates failures as errors.
// Captured mode buffers the output into a two-section log artifact and
// absorbs failures into it, so batch callers can inspect logs after the
// fact without handling errors per run.
package pipeline
