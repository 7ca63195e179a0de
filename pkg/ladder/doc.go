// Package ladder implements the instruction sequence model for ladder-logic
// rungs.
//
// # Overview
//
// A rung's logic is stored as flat text in the vendor's neutral form, e.g.:
//
//	XIC(Start)[XIC(Run),XIC(Jog)]OTE(Motor)
//
// The text tokenizes into instruction tokens ("XIC(Start)") and the three
// branch markers: "[" opens a parallel branch, "," starts the next leg, and
// "]" closes the branch. Token indices are the canonical element positions:
// they are contiguous, zero-based, and re-indexed after every mutation so no
// gaps ever exist.
//
// # Sequence
//
// [Rung.Sequence] compiles the token list into an ordered [RungElement] slice
// annotated with branch ids and nesting levels. Branch ids are unique within
// one rung: brackets are numbered in discovery order ("b0", "b1", ...), and
// each leg after the first gets a sibling id derived from its bracket
// ("b0:1", "b0:2", ...).
//
// # Mutations
//
// All structural edits operate on the token list and rebuild the sequence:
//
//   - [Rung.AddInstruction] / [Rung.RemoveInstructions] insert and delete
//     instruction tokens, shifting subsequent positions.
//   - [Rung.InsertBranch] wraps a position range in a new single-leg
//     bracket and returns the new branch id; [Rung.AddLeg] appends an
//     empty parallel leg to an existing bracket.
//   - [Rung.RemoveBranch] deletes a bracket's markers and the elements it
//     contained.
//   - [Rung.MoveInstruction] relocates a single instruction token.
//
// # Routines
//
// A [Routine] is an ordered list of rungs with optional multi-line comments.
// Routines load from and save to a small TOML format, see [ReadRoutineFile].
package ladder
