// Package layout converts rung element sequences into 2-D geometry.
//
// # Overview
//
// The [Engine] walks a rung's compiled sequence once, left to right, and
// produces a [RungGeometry]: a positioned [Element] per sequence entry, the
// rung's total height, and its effective right-rail extent. Two helpers do
// the structural bookkeeping during the walk:
//
//   - [Tracker] keeps the explicit stack of open brackets and enforces the
//     branch-balance invariant.
//   - [Store] is the arena of [Branch] geometry records, keyed by branch id
//     with children referenced as id lists.
//
// # Placement
//
// Horizontal flow within a context: the first element sits one wire length
// from its anchor rail (the left power rail on the main rung, the bracket's
// vertical rail on a leg); each following element sits one element spacing
// plus one wire length past the previous element's right edge.
//
// Vertical placement: main-context elements are centered on the rung's wire
// line, which sits half the base rung height below the comment block. A
// bracket's first leg stays on the wire of the element that anchors it, and
// each sibling leg stacks strictly downward, one branch spacing below the leg
// above (plus one extra spacing per level of nesting inside the first leg).
//
// # Atomicity
//
// [Engine.LayoutRung] builds geometry off to the side and commits nothing; a
// structural failure mid-walk leaves the rung's previously committed
// geometry untouched. [Engine.LayoutRoutine] and [Engine.RelayoutRung] swap
// fully built passes into the committed tables only on success.
//
// # Cascade
//
// The engine owns the rung top-Y table. When an edit changes a rung's
// height, [Engine.RelayoutRung] shifts every subsequent rung down (or up) by
// the delta; rungs above the edit are never touched. Heights do not depend
// on the top anchor, so repositioned rungs translate in place instead of
// rebuilding.
//
// # Constants
//
// All measurements come from [Constants]. [DefaultConstants] provides the
// stock values; [LoadConstantsFile] overrides individual fields from TOML.
package layout
