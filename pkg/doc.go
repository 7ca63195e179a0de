// Package pkg provides the core libraries for ladderview's layout and
// editing of ladder logic routines.
//
// # Overview
//
// A routine is a list of rungs; each rung's text compiles into a sequence of
// instructions and branch markers. The pkg directory splits the work into:
//
//  1. [ladder] - The routine model: rung text, instruction parsing, the
//     compiled element sequence, and structural mutations.
//  2. [layout] - Geometry: branch tracking, nesting, and the engine that
//     assigns every element a box on the canvas.
//  3. [resolve] - Hit testing from canvas coordinates back to rung slots.
//  4. [edit] - The structural editor tying mutations to incremental
//     re-layout, with rejection reasons for invalid edits.
//  5. [render] - The painter, SVG and PNG sinks, and DOT branch diagrams.
//  6. [cache] - Content-addressed caching of rendered artifacts.
//
// # Architecture
//
// The typical data flow:
//
//	Routine file (TOML)
//	         ↓
//	ladder.Routine ── edit.Editor mutations
//	         ↓
//	layout.Engine (rung geometries)
//	         ↓
//	render.Painter → SVG / PNG sinks
//
// [errors] carries coded errors with user-facing messages, and
// [observability] holds the hook points the CLI and tests attach to.
package pkg
