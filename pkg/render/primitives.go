package render

// Role classifies what a primitive draws, so sinks can style or hit-test by
// kind without re-deriving it from geometry.
type Role string

const (
	RoleRail      Role = "rail"      // vertical power rails
	RoleWire      Role = "wire"      // horizontal flow wires and branch verticals
	RoleSymbol    Role = "symbol"    // contact bars, coil ovals, block boxes, connectors
	RoleLabel     Role = "label"     // operand and alias text above symbols
	RoleComment   Role = "comment"   // rung comment lines
	RoleNumber    Role = "number"    // rung number beside the left rail
	RoleSelection Role = "selection" // selection outline around a symbol
)

// Tag identifies which rung a primitive belongs to and what it draws. Rung
// is the rung number; the end marker past the last rung uses the first
// unused number.
type Tag struct {
	Rung int
	Role Role
}

// Anchor positions text relative to its X coordinate.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Line is a stroked segment. Y grows downward, matching layout coordinates.
type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Tag            Tag
}

// Rect is a rectangle outline, optionally filled.
type Rect struct {
	X, Y, W, H float64
	Fill       bool
	Tag        Tag
}

// Oval is an ellipse inscribed in the given box, optionally filled.
type Oval struct {
	X, Y, W, H float64
	Fill       bool
	Tag        Tag
}

// Text is a single line of text; Y is the baseline.
type Text struct {
	X, Y   float64
	Body   string
	Size   float64
	Anchor Anchor
	Tag    Tag
}

// Sink receives primitives from a painter. Implementations may draw
// immediately or retain items per rung.
type Sink interface {
	Line(Line)
	Rect(Rect)
	Oval(Oval)
	Text(Text)

	// ClearRung discards everything previously emitted for the rung. The
	// painter calls it before repainting a rung, so retained sinks never
	// accumulate stale items.
	ClearRung(rung int)
}
