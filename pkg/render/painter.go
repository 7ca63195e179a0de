package render

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
)

// Painter converts rung geometry into primitives. A painter is stateless
// apart from its constants and may be shared across sinks.
type Painter struct {
	cons layout.Constants
}

// NewPainter creates a painter using the given layout constants. The
// constants must match the ones the geometry was laid out with, or wires
// and symbols drift apart.
func NewPainter(cons layout.Constants) *Painter {
	return &Painter{cons: cons}
}

// Routine paints every rung of the engine's committed geometry, then the
// end marker below the last rung.
func (p *Painter) Routine(s Sink, e *layout.Engine) error {
	geoms := e.Geometries()
	for _, g := range geoms {
		if err := p.Rung(s, g); err != nil {
			return err
		}
	}
	endTag := Tag{Rung: len(geoms), Role: RoleNumber}
	s.ClearRung(endTag.Rung)
	s.Text(Text{
		X:    p.cons.RailXLeft + 10,
		Y:    e.TotalHeight() + p.cons.CommentLineHeight,
		Body: "(END)",
		Size: p.cons.CommentLineHeight,
		Tag:  endTag,
	})
	return nil
}

// Rung clears and repaints one rung: rails, comment, number, wires, branch
// verticals, and symbols.
func (p *Painter) Rung(s Sink, g *layout.RungGeometry) error {
	s.ClearRung(g.RungNumber)
	tag := func(role Role) Tag { return Tag{Rung: g.RungNumber, Role: role} }

	// Power rails for this rung's vertical extent.
	s.Line(Line{X1: p.cons.RailXLeft, Y1: g.TopY, X2: p.cons.RailXLeft, Y2: g.Bottom(),
		Width: 2, Tag: tag(RoleRail)})
	s.Line(Line{X1: g.RightRailX, Y1: g.TopY, X2: g.RightRailX, Y2: g.Bottom(),
		Width: 2, Tag: tag(RoleRail)})

	s.Text(Text{
		X: p.cons.RailXLeft - 8, Y: g.CenterY + 5,
		Body: strconv.Itoa(g.RungNumber), Size: p.cons.CommentLineHeight,
		Anchor: AnchorEnd, Tag: tag(RoleNumber),
	})

	if g.Comment != "" {
		for i, line := range strings.Split(g.Comment, "\n") {
			s.Text(Text{
				X: p.cons.RailXLeft + 10, Y: g.TopY + float64(i+1)*p.cons.CommentLineHeight,
				Body: line, Size: p.cons.CommentLineHeight,
				Tag: tag(RoleComment),
			})
		}
	}

	p.wires(s, g, tag(RoleWire))
	if err := p.branchRails(s, g, tag(RoleWire)); err != nil {
		return err
	}
	for _, el := range g.Elements {
		p.symbol(s, g, el)
	}
	return nil
}

// wireLine is one horizontal flow line: the main wire or a sibling leg.
type wireLine struct {
	y, x0, x1 float64
}

// wires draws each flow line with gaps where symbol boxes sit on it. A
// bracket's first leg flows on the wire of the context that opened it, so
// only sibling legs contribute extra lines.
func (p *Painter) wires(s Sink, g *layout.RungGeometry, t Tag) {
	lines := []wireLine{{y: g.CenterY, x0: p.cons.RailXLeft, x1: g.RightRailX}}
	for _, b := range g.Branches.All() {
		if b.IsBracket() {
			continue
		}
		lines = append(lines, wireLine{y: b.BranchY + p.cons.ConnectorRadius, x0: b.StartX, x1: b.EndX})
	}

	for _, wl := range lines {
		var boxes []layout.Element
		for _, el := range g.Elements {
			if math.Abs(p.wireOf(el)-wl.y) < 0.5 && el.X >= wl.x0-0.5 && el.Right() <= wl.x1+0.5 {
				boxes = append(boxes, el)
			}
		}
		sort.Slice(boxes, func(i, j int) bool { return boxes[i].X < boxes[j].X })

		x := wl.x0
		for _, b := range boxes {
			if b.X > x {
				s.Line(Line{X1: x, Y1: wl.y, X2: b.X, Y2: wl.y, Width: 2, Tag: t})
			}
			if r := b.Right(); r > x {
				x = r
			}
		}
		if x < wl.x1 {
			s.Line(Line{X1: x, Y1: wl.y, X2: wl.x1, Y2: wl.y, Width: 2, Tag: t})
		}
	}
}

// branchRails draws the vertical lines joining a bracket's wire to each of
// its sibling legs, on both ends of the bracket.
func (p *Painter) branchRails(s Sink, g *layout.RungGeometry, t Tag) error {
	for _, b := range g.Branches.All() {
		if !b.IsBracket() || len(b.ChildIDs) == 0 {
			continue
		}
		last, err := g.Branches.Get(b.ChildIDs[len(b.ChildIDs)-1])
		if err != nil {
			return err
		}
		top := b.BranchY + p.cons.ConnectorRadius
		bottom := last.BranchY + p.cons.ConnectorRadius
		s.Line(Line{X1: b.StartX + p.cons.ConnectorRadius, Y1: top,
			X2: b.StartX + p.cons.ConnectorRadius, Y2: bottom, Width: 2, Tag: t})
		s.Line(Line{X1: b.EndX - p.cons.ConnectorRadius, Y1: top,
			X2: b.EndX - p.cons.ConnectorRadius, Y2: bottom, Width: 2, Tag: t})
	}
	return nil
}

func (p *Painter) symbol(s Sink, g *layout.RungGeometry, el layout.Element) {
	t := Tag{Rung: g.RungNumber, Role: RoleSymbol}

	if el.Kind != ladder.KindInstruction {
		s.Oval(Oval{X: el.X, Y: el.Y, W: el.Width, H: el.Height, Fill: true, Tag: t})
		return
	}

	switch el.Instr.Symbol() {
	case ladder.SymbolContact:
		s.Line(Line{X1: el.X, Y1: el.Y, X2: el.X, Y2: el.Bottom(), Width: 2, Tag: t})
		s.Line(Line{X1: el.Right(), Y1: el.Y, X2: el.Right(), Y2: el.Bottom(), Width: 2, Tag: t})
		switch el.Instr.Mnemonic {
		case "XIO":
			s.Line(Line{X1: el.CenterX() - 8, Y1: el.Bottom(), X2: el.CenterX() + 8, Y2: el.Y,
				Width: 2, Tag: t})
		case "ONS":
			s.Text(Text{X: el.CenterX(), Y: el.CenterY() + 4, Body: "ONS",
				Size: p.cons.CommentLineHeight - 4, Anchor: AnchorMiddle, Tag: t})
		}
	case ladder.SymbolCoil:
		s.Oval(Oval{X: el.X, Y: el.Y, W: el.Width, H: el.Height, Tag: t})
		switch el.Instr.Mnemonic {
		case "OTL":
			s.Text(Text{X: el.CenterX(), Y: el.CenterY() + 4, Body: "L",
				Size: p.cons.CommentLineHeight - 4, Anchor: AnchorMiddle, Tag: t})
		case "OTU":
			s.Text(Text{X: el.CenterX(), Y: el.CenterY() + 4, Body: "U",
				Size: p.cons.CommentLineHeight - 4, Anchor: AnchorMiddle, Tag: t})
		}
	default:
		s.Rect(Rect{X: el.X, Y: el.Y, W: el.Width, H: el.Height, Fill: true, Tag: t})
		s.Rect(Rect{X: el.X, Y: el.Y, W: el.Width, H: el.Height, Tag: t})
		s.Text(Text{X: el.CenterX(), Y: el.Y + p.cons.BlockHeight/2 + 5,
			Body: el.Instr.Mnemonic, Size: p.cons.CommentLineHeight,
			Anchor: AnchorMiddle, Tag: t})
		for i, op := range el.Instr.Operands {
			s.Text(Text{X: el.X + 6, Y: el.Y + p.cons.BlockHeight + float64(i+1)*p.cons.CommentLineHeight - 4,
				Body: op, Size: p.cons.CommentLineHeight - 4, Tag: t})
		}
	}

	// Contacts and coils show their primary operand above the symbol;
	// blocks carry their operands inside the box.
	if el.Instr.Symbol() != ladder.SymbolBlock && el.Instr.Operand() != "" {
		lt := Tag{Rung: g.RungNumber, Role: RoleLabel}
		s.Text(Text{X: el.CenterX(), Y: el.Y - 4, Body: el.Instr.Operand(),
			Size: p.cons.CommentLineHeight - 2, Anchor: AnchorMiddle, Tag: lt})
		if el.Instr.Alias != "" {
			s.Text(Text{X: el.CenterX(), Y: el.Y - 4 - p.cons.CommentLineHeight,
				Body: el.Instr.Alias, Size: p.cons.CommentLineHeight - 2,
				Anchor: AnchorMiddle, Tag: lt})
		}
	}

	if el.Selected {
		s.Rect(Rect{X: el.X - 3, Y: el.Top() - 3, W: el.Width + 6, H: el.Bottom() - el.Top() + 6,
			Tag: Tag{Rung: g.RungNumber, Role: RoleSelection}})
	}
}

// wireOf returns the flow line an element sits on. Blocks hang below the
// wire, so their line runs through the base box, not the operand rows.
func (p *Painter) wireOf(el layout.Element) float64 {
	if el.Kind == ladder.KindInstruction && el.Instr.Symbol() == ladder.SymbolBlock {
		return el.Y + p.cons.BlockHeight/2
	}
	return el.CenterY()
}

