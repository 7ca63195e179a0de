package resolve

import (
	"testing"

	"github.com/iroxusux/ladderview/pkg/errors"
	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
)

func buildEngine(t *testing.T, texts ...string) (*layout.Engine, *ladder.Routine) {
	t.Helper()
	rt := ladder.NewRoutine("test")
	for _, text := range texts {
		r, err := ladder.NewRung(text)
		if err != nil {
			t.Fatalf("NewRung(%q): %v", text, err)
		}
		rt.AppendRung(r)
	}
	e := layout.NewEngine()
	if err := e.LayoutRoutine(rt); err != nil {
		t.Fatalf("LayoutRoutine: %v", err)
	}
	return e, rt
}

func TestResolveMainRung(t *testing.T) {
	e, _ := buildEngine(t, "XIC(A)XIC(B)OTE(C)")
	r := New(e)
	g, _ := e.Geometry(0)

	tests := []struct {
		name    string
		x       float64
		wantPos int
	}{
		{"LeftOfFirst", g.Elements[0].X - 5, 0},
		{"RightOfFirst", g.Elements[0].Right() + 5, 1},
		{"BetweenSecondAndThird", (g.Elements[1].CenterX() + g.Elements[2].CenterX()) / 2, 2},
		{"PastLast", g.Elements[2].Right() + 40, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt, err := r.Resolve(tt.x, g.CenterY)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !tgt.OnMainRung() {
				t.Errorf("context = %q, want main rung", tgt.BranchID)
			}
			if tgt.Position != tt.wantPos {
				t.Errorf("position = %d, want %d", tgt.Position, tt.wantPos)
			}
			if tgt.Rung != 0 {
				t.Errorf("rung = %d", tgt.Rung)
			}
		})
	}
}

func TestResolveBranchContexts(t *testing.T) {
	e, _ := buildEngine(t, "XIC(A)[XIC(B),XIC(C)]OTE(D)")
	r := New(e)
	g, _ := e.Geometry(0)

	// On the sibling leg's wire, over its element.
	leg, err := g.Branches.Get("b0:1")
	if err != nil {
		t.Fatalf("leg: %v", err)
	}
	legEl := g.Elements[4] // XIC(C)
	tgt, err := r.Resolve(legEl.CenterX()-1, legEl.CenterY())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tgt.BranchID != "b0:1" {
		t.Errorf("context = %q, want b0:1", tgt.BranchID)
	}
	if tgt.BranchLevel != leg.ContextLevel() {
		t.Errorf("level = %d, want %d", tgt.BranchLevel, leg.ContextLevel())
	}
	if tgt.Position != legEl.Position {
		t.Errorf("position = %d, want %d (before the leg element)", tgt.Position, legEl.Position)
	}

	// On the first leg (same wire as the main rung, inside the bracket).
	firstEl := g.Elements[2] // XIC(B)
	tgt, err = r.Resolve(firstEl.CenterX()+1, firstEl.CenterY())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tgt.BranchID != "b0" {
		t.Errorf("context = %q, want b0", tgt.BranchID)
	}
	if tgt.Position != firstEl.Position+1 {
		t.Errorf("position = %d, want %d (after the first-leg element)", tgt.Position, firstEl.Position+1)
	}

	// Left of the bracket on the main wire: main context.
	tgt, err = r.Resolve(g.Elements[0].CenterX()-1, g.CenterY)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !tgt.OnMainRung() || tgt.Position != 0 {
		t.Errorf("target = %+v, want main rung position 0", tgt)
	}
}

func TestResolveSecondRung(t *testing.T) {
	e, _ := buildEngine(t, "XIC(A)OTE(B)", "XIC(C)OTE(D)")
	r := New(e)
	g1, _ := e.Geometry(1)

	tgt, err := r.Resolve(g1.Elements[0].CenterX()+1, g1.CenterY)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tgt.Rung != 1 || tgt.Position != 1 {
		t.Errorf("target = %+v, want rung 1 position 1", tgt)
	}
}

func TestResolveInvalidCoordinates(t *testing.T) {
	e, _ := buildEngine(t, "XIC(A)OTE(B)")
	r := New(e)
	g, _ := e.Geometry(0)

	if _, err := r.Resolve(200, e.TotalHeight()+50); !errors.Is(err, errors.ErrCodeInvalidCoordinate) {
		t.Errorf("below last rung: err = %v", err)
	}
	if _, err := r.Resolve(10, g.CenterY); !errors.Is(err, errors.ErrCodeInvalidCoordinate) {
		t.Errorf("left of power rail: err = %v", err)
	}
}

func TestInsertionPointEmptyRung(t *testing.T) {
	e, _ := buildEngine(t, "")
	r := New(e)
	c := e.Constants()
	g, _ := e.Geometry(0)

	x, y, err := r.InsertionPoint(Target{Rung: 0, Position: 0})
	if err != nil {
		t.Fatalf("InsertionPoint: %v", err)
	}
	if x != c.RailXLeft+c.MinWireLength {
		t.Errorf("x = %v, want %v", x, c.RailXLeft+c.MinWireLength)
	}
	if y != g.CenterY {
		t.Errorf("y = %v, want centerline %v", y, g.CenterY)
	}
}

func TestInsertionPointUnknownTargets(t *testing.T) {
	e, _ := buildEngine(t, "XIC(A)OTE(B)")
	r := New(e)

	if _, _, err := r.InsertionPoint(Target{Rung: 7}); !errors.Is(err, errors.ErrCodeRungNotFound) {
		t.Errorf("unknown rung: err = %v", err)
	}
	if _, _, err := r.InsertionPoint(Target{Rung: 0, BranchID: "b9"}); !errors.Is(err, errors.ErrCodeBranchNotFound) {
		t.Errorf("unknown branch: err = %v", err)
	}
	if _, _, err := r.InsertionPoint(Target{Rung: 0, Position: -1}); !errors.Is(err, errors.ErrCodeInvalidPosition) {
		t.Errorf("negative position: err = %v", err)
	}
}

// A leg slot past the leg's last element sits on wire that a nested bracket
// may span. The inverse mapping must pick a coordinate outside the nested
// bracket's hit region, or resolving it would claim the nested context.
func TestInsertionPointSkirtsNestedBracket(t *testing.T) {
	e, _ := buildEngine(t, "[XIC(A)XIC(B),[XIC(C),XIC(D)]]OTE(E)")
	r := New(e)
	g, _ := e.Geometry(0)

	leg, err := g.Branches.Get("b0:1")
	if err != nil {
		t.Fatalf("leg: %v", err)
	}
	nested, err := g.Branches.Get("b1")
	if err != nil {
		t.Fatalf("nested bracket: %v", err)
	}

	// The slot between the leg separator and the nested bracket's opening.
	tgt := Target{Rung: 0, BranchID: "b0:1", BranchLevel: leg.ContextLevel(), Position: 4}
	x, y, err := r.InsertionPoint(tgt)
	if err != nil {
		t.Fatalf("InsertionPoint: %v", err)
	}
	if x >= nested.StartX {
		t.Errorf("x = %v overlaps nested bracket starting at %v", x, nested.StartX)
	}
	back, err := r.Resolve(x, y)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if back != tgt {
		t.Errorf("round trip %+v -> (%v, %v) -> %+v", tgt, x, y, back)
	}
}

// A point horizontally over a bracket but outside every leg's hit region
// resolves to the main rung; the slot it picks must also lie outside the
// bracket's sequence span rather than between the markers.
func TestResolveOutsideBracketRegionStaysOutsideIt(t *testing.T) {
	e, _ := buildEngine(t, "XIC(A)[XIC(B),XIC(C)]OTE(D)")
	r := New(e)
	g, _ := e.Geometry(0)

	bracket, err := g.Branches.Get("b0")
	if err != nil {
		t.Fatalf("bracket: %v", err)
	}
	// Between the rung's top edge and the bracket's hit region.
	y := bracket.StartY - 1
	if y < g.TopY {
		t.Fatalf("no gap above the bracket: StartY=%v TopY=%v", bracket.StartY, g.TopY)
	}
	opening, closing := g.Elements[1], g.Elements[5]

	tgt, err := r.Resolve(opening.CenterX()+1, y)
	if err != nil {
		t.Fatalf("Resolve right of opening marker: %v", err)
	}
	if !tgt.OnMainRung() || tgt.Position != closing.Position+1 {
		t.Errorf("target = %+v, want main rung position %d", tgt, closing.Position+1)
	}

	tgt, err = r.Resolve(closing.CenterX()-1, y)
	if err != nil {
		t.Fatalf("Resolve left of closing marker: %v", err)
	}
	if !tgt.OnMainRung() || tgt.Position != opening.Position {
		t.Errorf("target = %+v, want main rung position %d", tgt, opening.Position)
	}
}

// Every target the forward mapping can produce must map back to itself
// through the inverse.
func TestRoundTrip(t *testing.T) {
	e, _ := buildEngine(t,
		"XIC(A)XIC(B)OTE(C)",
		"XIC(A)[XIC(B),XIC(C)]OTE(D)",
		"[XIC(A)XIC(B),[XIC(C),XIC(D)]]OTE(E)",
		"[XIC(A)XIC(B),]OTE(C)",
	)
	r := New(e)

	for _, g := range e.Geometries() {
		for _, el := range g.Elements {
			// Try both slots around every element.
			for _, x := range []float64{el.CenterX() - 1, el.CenterX() + 1} {
				tgt, err := r.Resolve(x, el.CenterY())
				if err != nil {
					t.Fatalf("rung %d element %d: Resolve: %v", g.RungNumber, el.Position, err)
				}
				px, py, err := r.InsertionPoint(tgt)
				if err != nil {
					t.Fatalf("rung %d target %+v: InsertionPoint: %v", g.RungNumber, tgt, err)
				}
				back, err := r.Resolve(px, py)
				if err != nil {
					t.Fatalf("rung %d target %+v at (%v, %v): %v", g.RungNumber, tgt, px, py, err)
				}
				if back != tgt {
					t.Errorf("rung %d: round trip %+v -> (%v, %v) -> %+v", g.RungNumber, tgt, px, py, back)
				}
			}
		}
	}
}
