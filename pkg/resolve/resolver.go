// Package resolve maps pointer coordinates to insertion targets and back.
//
// The forward mapping ([Resolver.Resolve]) answers "where would a drop at
// this point land": the rung whose vertical span contains the Y, the deepest
// branch leg whose hit region contains the point (or the main rung), and the
// sequence position the new element would take. The inverse mapping
// ([Resolver.InsertionPoint]) answers "where would an element inserted at
// this target be drawn"; the editor uses it to preview insertions before
// committing them. The two mappings round-trip: resolving an inverse-mapped
// coordinate yields the original target.
//
// The resolver only reads committed geometry; it never mutates engine state.
package resolve

import (
	"math"

	"github.com/iroxusux/ladderview/pkg/errors"
	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
)

// Target identifies one insertion slot: a rung, a branch context ("" for the
// main rung), and the sequence position an inserted element would take.
type Target struct {
	Rung        int
	BranchID    string
	BranchLevel int
	Position    int
}

// OnMainRung reports whether the target is outside any branch.
func (t Target) OnMainRung() bool { return t.BranchID == "" }

// Resolver hit-tests pointer coordinates against the engine's committed
// geometry.
type Resolver struct {
	engine *layout.Engine
}

// New creates a resolver reading from the given engine.
func New(engine *layout.Engine) *Resolver {
	return &Resolver{engine: engine}
}

// Resolve maps a pointer coordinate to an insertion target. Coordinates
// outside every rung, or left of the left power rail, fail with an invalid
// coordinate error.
func (r *Resolver) Resolve(x, y float64) (Target, error) {
	g, err := r.engine.RungAt(y)
	if err != nil {
		return Target{}, err
	}
	cons := r.engine.Constants()
	if x < cons.RailXLeft {
		return Target{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"x=%.1f is left of the power rail", x)
	}

	ctx := deepestBranchAt(g, x, y)
	t := Target{Rung: g.RungNumber}
	if ctx != nil {
		t.BranchID = ctx.ID
		t.BranchLevel = ctx.ContextLevel()
	}
	t.Position = insertionIndex(contextElements(g, ctx), t.BranchID, x)
	return t, nil
}

// InsertionPoint maps a target to the coordinate where an element inserted
// there would be drawn.
func (r *Resolver) InsertionPoint(t Target) (x, y float64, err error) {
	g, err := r.engine.Geometry(t.Rung)
	if err != nil {
		return 0, 0, err
	}
	if t.Position < 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidPosition,
			"insertion position %d is negative", t.Position)
	}
	cons := r.engine.Constants()

	wireY := g.CenterY
	anchorX := cons.RailXLeft
	var ctx *layout.Branch
	if t.BranchID != "" {
		b, err := g.Branches.Get(t.BranchID)
		if err != nil {
			return 0, 0, errors.Wrap(errors.ErrCodeBranchNotFound, err,
				"insertion target in rung %d", t.Rung)
		}
		ctx = b
		wireY = b.BranchY + cons.ConnectorRadius
		anchorX = b.StartX
	}

	els := contextElements(g, ctx)
	if len(els) == 0 {
		return anchorX + cons.MinWireLength, wireY, nil
	}

	// Neighbors of the slot within this context.
	var prev, next *layout.Element
	for i := range els {
		el := &els[i]
		if el.Position < t.Position {
			prev = el
		} else if next == nil {
			next = el
		}
	}
	switch {
	case prev == nil:
		// Before the first element: halfway from the anchor rail.
		x = (anchorX + next.CenterX()) / 2
	case next == nil:
		// Past the last element, staying inside the context's hit region so
		// the forward mapping resolves back to the same context.
		x = prev.Right() + cons.ElementSpacing
		if ctx != nil && x > ctx.EndX {
			x = ctx.EndX
		}
	default:
		x = (prev.CenterX() + next.CenterX()) / 2
	}

	level := 0
	if ctx != nil {
		level = ctx.ContextLevel()
	}
	return escapeDeeperBrackets(g, level, t.Position, x, wireY), wireY, nil
}

// escapeDeeperBrackets moves x out of the hit region of any bracket nested
// deeper than the target's context. A leg inherits its bracket's full
// horizontal span, so a slot on the leg's remaining wire can fall inside a
// nested bracket's region; resolving there would pick the nested context
// instead of the target's. The slot sits before or after the whole nested
// bracket in sequence order, so x is nudged just past the matching edge.
func escapeDeeperBrackets(g *layout.RungGeometry, level, pos int, x, y float64) float64 {
	for moved := true; moved; {
		moved = false
		for _, b := range g.Branches.All() {
			if !b.IsBracket() || b.ContextLevel() <= level || !b.Contains(x, y) {
				continue
			}
			if pos <= b.StartPosition {
				x = b.StartX - 1
			} else {
				x = b.EndX + 1
			}
			moved = true
		}
	}
	return x
}

// deepestBranchAt returns the innermost branch leg whose hit region contains
// the point, or nil for the main rung.
func deepestBranchAt(g *layout.RungGeometry, x, y float64) *layout.Branch {
	var best *layout.Branch
	for _, b := range g.Branches.All() {
		if !b.Contains(x, y) {
			continue
		}
		if best == nil || b.ContextLevel() >= best.ContextLevel() {
			best = b
		}
	}
	return best
}

// contextElements returns the elements flowing in one context, in sequence
// order: for the main rung, every level-zero element; for a branch leg, the
// elements carrying its id (including the leg's own connectors).
func contextElements(g *layout.RungGeometry, ctx *layout.Branch) []layout.Element {
	var out []layout.Element
	for _, el := range g.Elements {
		if ctx == nil {
			if el.BranchLevel == 0 {
				out = append(out, el)
			}
		} else if el.BranchID == ctx.ID {
			out = append(out, el)
		}
	}
	return out
}

// insertionIndex picks the slot closest to x: after the nearest element when
// the point is right of its center, otherwise after the candidate before it.
// Context positions are not contiguous (a nested bracket's interior sits
// between two of its context's candidates), so "before the closest" is the
// slot after the previous candidate, not closest.Position itself.
//
// A foreign bracket's markers — a bracket opened inside this context, not
// the context's own delimiters — appear back to back here, with the legs'
// interior filtered out. A slot between those two marker centers would land
// inside the bracket while claiming this context, so it snaps to the nearer
// side of the bracket instead. An empty context resolves to position zero.
func insertionIndex(els []layout.Element, ctxID string, x float64) int {
	if len(els) == 0 {
		return 0
	}
	closest := 0
	bestDist := math.Abs(x - els[0].CenterX())
	for i, el := range els[1:] {
		if d := math.Abs(x - el.CenterX()); d < bestDist {
			closest, bestDist = i+1, d
		}
	}
	if x >= els[closest].CenterX() {
		if el := els[closest]; el.Kind == ladder.KindBranchStart && el.BranchID != ctxID &&
			closest+1 < len(els) && els[closest+1].Kind == ladder.KindBranchEnd {
			return els[closest+1].Position + 1
		}
		return els[closest].Position + 1
	}
	if closest == 0 {
		return els[0].Position
	}
	if prev := els[closest-1]; prev.Kind == ladder.KindBranchStart && prev.BranchID != ctxID {
		return prev.Position
	}
	return els[closest-1].Position + 1
}
