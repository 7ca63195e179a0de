package render

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Theme holds the colors and font the sinks draw with. Load overrides from a
// TOML file with [LoadThemeFile]; fields the file does not mention keep
// their default values.
type Theme struct {
	// Font is the SVG font-family stack; the raster sink keeps its built-in
	// face regardless.
	Font string `toml:"font"`

	// Background fills the document; empty means transparent (SVG) or
	// white (PNG).
	Background string `toml:"background"`

	// Ink draws rails, wires, symbols, labels, and rung numbers.
	Ink string `toml:"ink"`

	Comment   string `toml:"comment"`
	Selection string `toml:"selection"`
	BlockFill string `toml:"block_fill"`
}

// DefaultTheme returns the stock colors.
func DefaultTheme() Theme {
	return Theme{
		Font:      "ui-monospace, 'Cascadia Mono', 'Courier New', monospace",
		Ink:       "#1a1a1a",
		Comment:   "#2d6a4f",
		Selection: "#c1121f",
		BlockFill: "#ffffff",
	}
}

// LoadThemeFile reads TOML overrides on top of the defaults.
func LoadThemeFile(path string) (Theme, error) {
	t := DefaultTheme()
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("parse theme %s: %w", path, err)
	}
	return t, nil
}

// rgb parses a #rrggbb color into 0..1 channels. Anything unparseable comes
// back as near-black ink.
func rgb(color string) (r, g, b float64) {
	if len(color) != 7 || color[0] != '#' {
		return 0.1, 0.1, 0.1
	}
	n, err := strconv.ParseUint(color[1:], 16, 32)
	if err != nil {
		return 0.1, 0.1, 0.1
	}
	return float64(n>>16&0xff) / 255, float64(n>>8&0xff) / 255, float64(n&0xff) / 255
}
