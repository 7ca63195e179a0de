// Package render turns committed rung geometry into drawing primitives and
// feeds them to output sinks.
//
// # Pipeline
//
// The [Painter] walks a rung's geometry and emits tagged primitives — lines,
// rectangles, ovals, text — to a [Sink]. Every primitive carries the number
// of the rung it belongs to, and a repaint of rung N starts with
// [Sink.ClearRung], so retained sinks replace exactly that rung's items and
// nothing else. Painters never read the sequence model; geometry is the only
// input.
//
// # Sinks
//
// Three sinks ship with the package:
//
//   - [SVGSink] retains primitives per rung and assembles an SVG document,
//     used by the preview server and the render command.
//   - [PNG] rasterizes through fogleman/gg for bitmap export.
//   - [ToDOT] and [DOTSVG]/[DOTPNG] draw the branch structure tree rather
//     than the ladder itself, for inspecting how a rung nests.
package render
