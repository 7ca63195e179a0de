package layout

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/iroxusux/ladderview/pkg/errors"
	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/observability"
)

// RungGeometry is the complete committed geometry of one rung: its vertical
// extent, every positioned element, and the branch arena for the pass that
// produced it. A geometry is immutable once committed except for whole-rung
// translation during a cascade.
type RungGeometry struct {
	RungID     uuid.UUID
	RungNumber int
	Comment    string

	TopY          float64
	Height        float64 // comment block + body + padding
	CommentHeight float64
	CenterY       float64 // main-context wire line
	RightRailX    float64

	Elements []Element
	Branches *Store
}

// Bottom returns the rung's bottom edge; the next rung's top.
func (g *RungGeometry) Bottom() float64 { return g.TopY + g.Height }

// Contains reports whether y falls within the rung's vertical span.
func (g *RungGeometry) Contains(y float64) bool {
	return y >= g.TopY && y < g.Bottom()
}

// translate shifts the whole rung vertically. Heights and X positions do not
// depend on the top anchor, so repositioning during a cascade never needs a
// full rebuild.
func (g *RungGeometry) translate(dy float64) {
	g.TopY += dy
	g.CenterY += dy
	for i := range g.Elements {
		g.Elements[i].Y += dy
	}
	for _, b := range g.Branches.All() {
		b.MainY += dy
		b.StartY += dy
		b.BranchY += dy
		b.EndY += dy
	}
}

// Engine lays out rungs and owns the only shared mutable state of the
// system: the committed per-rung geometry and the rung top-Y table.
// Consumers read committed geometry through accessors; only the engine
// mutates it, and only by swapping in a fully built pass.
type Engine struct {
	cons Constants
	log  *log.Logger

	byID  map[uuid.UUID]*RungGeometry
	order []uuid.UUID
}

// Option configures an Engine.
type Option func(*Engine)

// WithConstants overrides the layout measurements.
func WithConstants(c Constants) Option { return func(e *Engine) { e.cons = c } }

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.log = l } }

// NewEngine creates an engine with no committed geometry.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cons: DefaultConstants(),
		log:  log.New(io.Discard),
		byID: make(map[uuid.UUID]*RungGeometry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Constants returns the measurements the engine lays out with.
func (e *Engine) Constants() Constants { return e.cons }

// =============================================================================
// Committed Geometry Accessors
// =============================================================================

// Geometry returns the committed geometry for a rung number.
func (e *Engine) Geometry(number int) (*RungGeometry, error) {
	if number < 0 || number >= len(e.order) {
		return nil, errors.New(errors.ErrCodeRungNotFound,
			"no geometry for rung %d (%d rungs committed)", number, len(e.order))
	}
	return e.byID[e.order[number]], nil
}

// Geometries returns all committed rung geometries in rung order.
func (e *Engine) Geometries() []*RungGeometry {
	out := make([]*RungGeometry, len(e.order))
	for i, id := range e.order {
		out[i] = e.byID[id]
	}
	return out
}

// RungAt resolves the rung whose vertical span contains y.
func (e *Engine) RungAt(y float64) (*RungGeometry, error) {
	for _, id := range e.order {
		if g := e.byID[id]; g.Contains(y) {
			return g, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidCoordinate, "no rung at y=%.1f", y)
}

// TotalHeight returns the bottom edge of the last committed rung.
func (e *Engine) TotalHeight() float64 {
	if len(e.order) == 0 {
		return e.cons.RungStartY
	}
	return e.byID[e.order[len(e.order)-1]].Bottom()
}

// Width returns the drawing width: the widest committed right rail plus a
// trailing wire stub.
func (e *Engine) Width() float64 {
	w := e.cons.RailXRight
	for _, id := range e.order {
		if g := e.byID[id]; g.RightRailX > w {
			w = g.RightRailX
		}
	}
	return w + e.cons.MinWireLength
}

// =============================================================================
// Layout Passes
// =============================================================================

// LayoutRoutine lays out every rung of the routine, stacking each rung's top
// on the previous rung's bottom edge. The committed geometry is replaced
// only if the whole pass succeeds.
func (e *Engine) LayoutRoutine(rt *ladder.Routine) error {
	byID := make(map[uuid.UUID]*RungGeometry, rt.Len())
	order := make([]uuid.UUID, 0, rt.Len())

	y := e.cons.RungStartY
	for _, r := range rt.Rungs() {
		g, err := e.LayoutRung(r, y)
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "layout rung %d", r.Number())
		}
		byID[r.ID()] = g
		order = append(order, r.ID())
		y = g.Bottom()
	}

	e.byID = byID
	e.order = order
	e.log.Debug("routine laid out", "rungs", rt.Len(), "height", e.TotalHeight())
	return nil
}

// RelayoutRung rebuilds one rung at its committed top anchor and cascades
// the resulting height change: every subsequent rung is shifted by the
// height delta. Returns the numbers of all rungs whose geometry changed.
// Rungs above the edited one are never touched.
func (e *Engine) RelayoutRung(rt *ladder.Routine, number int) ([]int, error) {
	old, err := e.Geometry(number)
	if err != nil {
		return nil, err
	}
	r, err := rt.Rung(number)
	if err != nil {
		return nil, err
	}

	g, err := e.LayoutRung(r, old.TopY)
	if err != nil {
		return nil, err
	}
	e.byID[r.ID()] = g
	e.order[number] = r.ID()

	affected := []int{number}
	if dy := g.Height - old.Height; dy != 0 {
		for i := number + 1; i < len(e.order); i++ {
			e.byID[e.order[i]].translate(dy)
			affected = append(affected, i)
		}
	}
	observability.Layout().OnCascade(number, len(affected)-1)
	e.log.Debug("rung relaid", "rung", number, "repositioned", len(affected)-1)
	return affected, nil
}

// LayoutRung builds the geometry for one rung anchored at topY. The build is
// free of side effects: nothing is committed, and on error the engine's
// previously committed geometry for the rung is untouched.
func (e *Engine) LayoutRung(r *ladder.Rung, topY float64) (*RungGeometry, error) {
	start := time.Now()
	g, err := e.buildRung(r, topY)
	observability.Layout().OnRungLayout(r.Number(), r.Len(), time.Since(start), err)
	return g, err
}

// =============================================================================
// Build Pass
// =============================================================================

// cursor tracks horizontal flow within one context (main rung or a leg).
type cursor struct {
	anchorX   float64 // rail the first element spaces off
	wireY     float64 // element centerline for this context
	lastRight float64
	placed    bool // whether any element has been placed yet
}

// nextX returns the left edge for the next element in the context.
func (c cursor) nextX(cons Constants) float64 {
	if !c.placed {
		return c.anchorX + cons.MinWireLength
	}
	return c.lastRight + cons.ElementSpacing + cons.MinWireLength
}

// openFrame is the engine-side state for one open bracket.
type openFrame struct {
	bracket  *Branch
	leg      *Branch // current leg; the bracket itself while on the first leg
	maxRight float64 // rightmost element edge seen anywhere inside the bracket
	saved    cursor  // enclosing context, restored on close
}

func (e *Engine) buildRung(r *ladder.Rung, topY float64) (*RungGeometry, error) {
	if topY < 0 {
		return nil, errors.New(errors.ErrCodeInvalidAnchor, "rung top anchor %.1f is negative", topY)
	}

	seq, err := r.Sequence()
	if err != nil {
		return nil, err
	}

	cons := e.cons
	commentH := cons.CommentHeight(r.Comment())
	centerY := topY + commentH + cons.RungHeight/2
	connSize := 2 * cons.ConnectorRadius

	store := NewStore()
	tracker := NewTracker()
	elements := make([]Element, 0, len(seq))
	cur := cursor{anchorX: cons.RailXLeft, wireY: centerY}
	var frames []*openFrame

	markRight := func(x float64) {
		for _, f := range frames {
			if x > f.maxRight {
				f.maxRight = x
			}
		}
	}

	for _, el := range seq {
		switch el.Kind {
		case ladder.KindInstruction:
			w, h := symbolSize(cons, el.Instr)
			baseH := h
			if el.Instr.Symbol() == ladder.SymbolBlock {
				baseH = cons.BlockHeight
			}
			x := cur.nextX(cons)
			elements = append(elements, Element{
				Kind:         el.Kind,
				Position:     el.Position,
				RungNumber:   r.Number(),
				BranchID:     el.BranchID,
				RootBranchID: el.RootBranchID,
				BranchLevel:  el.BranchLevel,
				X:            x,
				Y:            cur.wireY - baseH/2,
				Width:        w,
				Height:       h,
				LabelExtent:  labelExtent(cons, el.Instr),
				Instr:        el.Instr,
			})
			cur.lastRight = x + w
			cur.placed = true
			markRight(x + w)

		case ladder.KindBranchStart:
			x := cur.nextX(cons)
			y := cur.wireY - cons.ConnectorRadius
			elements = append(elements, Element{
				Kind:         el.Kind,
				Position:     el.Position,
				RungNumber:   r.Number(),
				BranchID:     el.BranchID,
				RootBranchID: el.RootBranchID,
				BranchLevel:  el.BranchLevel,
				X:            x,
				Y:            y,
				Width:        connSize,
				Height:       connSize,
			})
			bracket := &Branch{
				ID:            el.BranchID,
				RootID:        el.BranchID,
				ParentID:      el.RootBranchID,
				Level:         el.BranchLevel,
				RungNumber:    r.Number(),
				StartX:        x,
				EndX:          x + cons.MinWireLength,
				MainY:         centerY,
				StartY:        y - cons.BranchSpacing/2,
				BranchY:       y,
				EndY:          y + connSize + cons.BranchSpacing/2,
				Height:        cons.BranchSpacing,
				StartPosition: el.Position,
				EndPosition:   el.Position,
			}
			if err := store.Create(bracket); err != nil {
				return nil, err
			}
			tracker.Open(el.BranchID, el.Position)
			markRight(x + connSize)
			frames = append(frames, &openFrame{
				bracket:  bracket,
				leg:      bracket,
				maxRight: x + connSize,
				saved:    cur,
			})
			// First-leg elements space off the bracket rail on the same wire.
			cur = cursor{anchorX: x, wireY: cur.wireY}

		case ladder.KindBranchNext:
			if err := tracker.Sibling(el.RootBranchID, el.Position); err != nil {
				return nil, err
			}
			frame := frames[len(frames)-1]
			bracket := frame.bracket

			var y float64
			if len(bracket.ChildIDs) == 0 {
				// The first leg may hold nested brackets reaching downward;
				// space the first sibling past them.
				nesting, err := r.InternalNestingLevel(bracket.StartPosition)
				if err != nil {
					return nil, err
				}
				y = bracket.EndY + cons.BranchSpacing + float64(nesting)*cons.BranchSpacing
			} else {
				prev, err := store.Get(bracket.ChildIDs[len(bracket.ChildIDs)-1])
				if err != nil {
					return nil, err
				}
				prev.EndPosition = el.Position - 1
				y = prev.EndY + cons.BranchSpacing
			}
			leg := &Branch{
				ID:            el.BranchID,
				RootID:        bracket.ID,
				ParentID:      bracket.ID,
				Level:         el.BranchLevel,
				RungNumber:    r.Number(),
				StartX:        bracket.StartX,
				EndX:          bracket.EndX,
				MainY:         centerY,
				StartY:        y - cons.BranchSpacing/2,
				BranchY:       y,
				EndY:          y + connSize + cons.BranchSpacing/2,
				Height:        cons.BranchSpacing,
				StartPosition: el.Position,
				EndPosition:   el.Position,
			}
			if err := store.Create(leg); err != nil {
				return nil, err
			}
			bracket.ChildIDs = append(bracket.ChildIDs, leg.ID)

			elements = append(elements, Element{
				Kind:         el.Kind,
				Position:     el.Position,
				RungNumber:   r.Number(),
				BranchID:     el.BranchID,
				RootBranchID: el.RootBranchID,
				BranchLevel:  el.BranchLevel,
				X:            bracket.StartX,
				Y:            y,
				Width:        connSize,
				Height:       connSize,
			})
			frame.leg = leg
			cur = cursor{anchorX: bracket.StartX, wireY: y + cons.ConnectorRadius}

		case ladder.KindBranchEnd:
			bracketID, _, err := tracker.Close(el.Position)
			if err != nil {
				return nil, err
			}
			frame := frames[len(frames)-1]
			frames = frames[:len(frames)-1]
			bracket := frame.bracket
			if bracket.ID != bracketID {
				return nil, errors.New(errors.ErrCodeBranchMismatch,
					"branch id mismatch at position %d: tracking %s, closing %s",
					el.Position, bracketID, bracket.ID)
			}

			// The closing connector sits past the widest leg, back on the
			// enclosing wire.
			x := frame.maxRight
			elements = append(elements, Element{
				Kind:         el.Kind,
				Position:     el.Position,
				RungNumber:   r.Number(),
				BranchID:     bracket.ID,
				RootBranchID: el.RootBranchID,
				BranchLevel:  el.BranchLevel,
				X:            x,
				Y:            frame.saved.wireY - cons.ConnectorRadius,
				Width:        connSize,
				Height:       connSize,
			})
			bracket.EndX = x + connSize
			bracket.EndPosition = el.Position
			if n := len(bracket.ChildIDs); n > 0 {
				last, err := store.Get(bracket.ChildIDs[n-1])
				if err != nil {
					return nil, err
				}
				last.EndPosition = el.Position - 1
			}
			if err := store.ResolveChildren(bracket.ID, cons.BranchSpacing); err != nil {
				return nil, err
			}

			cur = frame.saved
			cur.lastRight = x + connSize
			cur.placed = true
			markRight(x + connSize)

		default:
			return nil, errors.New(errors.ErrCodeUnknownElement,
				"unknown element kind %d at position %d", int(el.Kind), el.Position)
		}
	}

	if err := tracker.Finish(); err != nil {
		return nil, err
	}
	for i := range elements {
		if id := elements[i].BranchID; id != "" && !store.Has(id) {
			return nil, errors.New(errors.ErrCodeDanglingBranchRef,
				"element at position %d references unknown branch %s", elements[i].Position, id)
		}
	}

	bodyTop := topY + commentH
	maxBottom := bodyTop
	rightRail := cons.RailXRight
	for i := range elements {
		if b := elements[i].Bottom(); b > maxBottom {
			maxBottom = b
		}
		if edge := elements[i].Right(); edge > rightRail {
			rightRail = edge
		}
	}
	body := maxBottom - bodyTop
	if body < cons.RungHeight {
		body = cons.RungHeight
	}

	return &RungGeometry{
		RungID:        r.ID(),
		RungNumber:    r.Number(),
		Comment:       r.Comment(),
		TopY:          topY,
		Height:        commentH + body + cons.RungPadding,
		CommentHeight: commentH,
		CenterY:       centerY,
		RightRailX:    rightRail,
		Elements:      elements,
		Branches:      store,
	}, nil
}
