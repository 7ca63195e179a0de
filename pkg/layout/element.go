package layout

import (
	"github.com/iroxusux/ladderview/pkg/ladder"
)

// Element is one positioned sequence entry: an instruction symbol box or a
// branch connector dot. Elements are rebuilt from scratch on every layout
// pass of their rung; exactly one exists per sequence entry.
type Element struct {
	Kind         ladder.ElementKind
	Position     int
	RungNumber   int
	BranchID     string
	RootBranchID string
	BranchLevel  int

	// Symbol box. Y is the box top; the wire passes through the vertical
	// center of contacts, coils, and connectors. Blocks grow downward by one
	// line per operand past the box's base height.
	X, Y, Width, Height float64

	// LabelExtent is the vertical space the operand and alias labels occupy
	// above the box top.
	LabelExtent float64

	Selected bool

	// Instr is set only for instruction elements.
	Instr *ladder.Instruction
}

// Right returns the box's right edge.
func (e Element) Right() float64 { return e.X + e.Width }

// Bottom returns the box's bottom edge.
func (e Element) Bottom() float64 { return e.Y + e.Height }

// Top returns the upper visual extent, label lines included.
func (e Element) Top() float64 { return e.Y - e.LabelExtent }

// CenterX returns the horizontal center of the box.
func (e Element) CenterX() float64 { return e.X + e.Width/2 }

// CenterY returns the vertical center of the box. For contacts, coils, and
// connectors this is the wire line; blocks with operand rows extend below it.
func (e Element) CenterY() float64 { return e.Y + e.Height/2 }

// symbolSize returns the box size for an instruction. Blocks gain one line
// row per operand for the operand list drawn inside the box.
func symbolSize(c Constants, in *ladder.Instruction) (w, h float64) {
	switch in.Symbol() {
	case ladder.SymbolContact:
		return c.ContactWidth, c.ContactHeight
	case ladder.SymbolCoil:
		return c.CoilWidth, c.CoilHeight
	}
	return c.BlockWidth, c.BlockHeight + float64(len(in.Operands))*c.CommentLineHeight
}

// labelExtent returns the space above the box needed for the operand label,
// plus one more line when an alias is shown above it.
func labelExtent(c Constants, in *ladder.Instruction) float64 {
	if in.Operand() == "" {
		return 0
	}
	extent := c.CommentLineHeight
	if in.Alias != "" {
		extent += c.CommentLineHeight
	}
	return extent
}
