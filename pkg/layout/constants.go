package layout

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Constants holds the fixed measurements the engine lays rungs out with.
// All values are logical-coordinate units. Zero values are invalid; load a
// base set with [DefaultConstants] and override fields from a TOML file with
// [LoadConstantsFile].
type Constants struct {
	// Vertical space reserved for a rung body before elements grow it.
	RungHeight float64 `toml:"rung_height"`

	// Symbol boxes.
	ContactWidth  float64 `toml:"contact_width"`
	ContactHeight float64 `toml:"contact_height"`
	CoilWidth     float64 `toml:"coil_width"`
	CoilHeight    float64 `toml:"coil_height"`
	BlockWidth    float64 `toml:"block_width"`
	BlockHeight   float64 `toml:"block_height"`

	// Spacing between stacked branch legs, and between elements in flow.
	BranchSpacing  float64 `toml:"branch_spacing"`
	ElementSpacing float64 `toml:"element_spacing"`
	MinWireLength  float64 `toml:"min_wire_length"`

	// Rails and the first rung's top edge.
	RailXLeft  float64 `toml:"rail_x_left"`
	RailXRight float64 `toml:"rail_x_right"`
	RungStartY float64 `toml:"rung_start_y"`

	// Comment block cell size and padding.
	CommentCharWidth  float64 `toml:"comment_char_width"`
	CommentLineHeight float64 `toml:"comment_line_height"`
	CommentPadding    float64 `toml:"comment_padding"`

	// Padding added below a rung's lowest element.
	RungPadding float64 `toml:"rung_padding"`

	// Radius of branch connector dots.
	ConnectorRadius float64 `toml:"connector_radius"`
}

// DefaultConstants returns the stock measurements.
func DefaultConstants() Constants {
	return Constants{
		RungHeight:        100,
		ContactWidth:      40,
		ContactHeight:     30,
		CoilWidth:         40,
		CoilHeight:        30,
		BlockWidth:        80,
		BlockHeight:       40,
		BranchSpacing:     80,
		ElementSpacing:    50,
		MinWireLength:     50,
		RailXLeft:         40,
		RailXRight:        1400,
		RungStartY:        50,
		CommentCharWidth:  6,
		CommentLineHeight: 16,
		CommentPadding:    20,
		RungPadding:       20,
		ConnectorRadius:   5,
	}
}

// LoadConstantsFile reads TOML overrides on top of the defaults. Fields the
// file does not mention keep their default values.
func LoadConstantsFile(path string) (Constants, error) {
	c := DefaultConstants()
	data, err := os.ReadFile(path)
	if err != nil {
		return Constants{}, fmt.Errorf("read constants %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return Constants{}, fmt.Errorf("parse constants %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Constants{}, fmt.Errorf("constants %s: %w", path, err)
	}
	return c, nil
}

// Validate rejects non-positive measurements and a right rail left of the
// left rail.
func (c Constants) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"rung_height", c.RungHeight},
		{"contact_width", c.ContactWidth},
		{"contact_height", c.ContactHeight},
		{"coil_width", c.CoilWidth},
		{"coil_height", c.CoilHeight},
		{"block_width", c.BlockWidth},
		{"block_height", c.BlockHeight},
		{"branch_spacing", c.BranchSpacing},
		{"element_spacing", c.ElementSpacing},
		{"min_wire_length", c.MinWireLength},
		{"rail_x_left", c.RailXLeft},
		{"rail_x_right", c.RailXRight},
		{"rung_start_y", c.RungStartY},
		{"comment_char_width", c.CommentCharWidth},
		{"comment_line_height", c.CommentLineHeight},
		{"comment_padding", c.CommentPadding},
		{"rung_padding", c.RungPadding},
		{"connector_radius", c.ConnectorRadius},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", f.name, f.value)
		}
	}
	if c.RailXRight <= c.RailXLeft {
		return fmt.Errorf("rail_x_right (%v) must be right of rail_x_left (%v)", c.RailXRight, c.RailXLeft)
	}
	return nil
}

// CommentHeight returns the vertical space a rung comment occupies: one line
// cell per line plus padding, or zero for no comment.
func (c Constants) CommentHeight(comment string) float64 {
	if comment == "" {
		return 0
	}
	lines := 1
	for _, r := range comment {
		if r == '\n' {
			lines++
		}
	}
	return float64(lines)*c.CommentLineHeight + c.CommentPadding
}
