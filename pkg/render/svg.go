package render

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"time"

	"github.com/iroxusux/ladderview/pkg/layout"
	"github.com/iroxusux/ladderview/pkg/observability"
)

const ladderCSS = `
    text { font-family: %s; }
    .rail, .wire { stroke: %s; fill: none; }
    .symbol { stroke: %s; fill: none; }
    .symbol-fill { stroke: none; fill: %s; }
    .block-fill { stroke: none; fill: %s; }
    .label, .number { fill: %s; }
    .comment { fill: %s; font-style: italic; }
    .selection { stroke: %s; stroke-dasharray: 4 2; fill: none; }`

// SVGOption configures an SVG sink.
type SVGOption func(*SVGSink)

// WithTheme replaces the sink's colors and font.
func WithTheme(t Theme) SVGOption { return func(s *SVGSink) { s.theme = t } }

// WithFontFamily overrides the document font. The default is a monospace
// stack so operand tags align the way they do in the editor.
func WithFontFamily(family string) SVGOption { return func(s *SVGSink) { s.theme.Font = family } }

// WithBackground sets a background fill; the default document is
// transparent.
func WithBackground(color string) SVGOption { return func(s *SVGSink) { s.theme.Background = color } }

// SVGSink retains primitives per rung and assembles them into an SVG
// document. Each rung becomes one <g id="rung-N"> group; repainting a rung
// replaces its group and leaves the others untouched.
type SVGSink struct {
	rungs map[int]*bytes.Buffer
	theme Theme
}

// NewSVG creates an empty SVG sink.
func NewSVG(opts ...SVGOption) *SVGSink {
	s := &SVGSink{
		rungs: make(map[int]*bytes.Buffer),
		theme: DefaultTheme(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SVGSink) buf(rung int) *bytes.Buffer {
	b, ok := s.rungs[rung]
	if !ok {
		b = &bytes.Buffer{}
		s.rungs[rung] = b
	}
	return b
}

// ClearRung drops the rung's group content.
func (s *SVGSink) ClearRung(rung int) {
	if b, ok := s.rungs[rung]; ok {
		b.Reset()
	}
}

func (s *SVGSink) Line(l Line) {
	fmt.Fprintf(s.buf(l.Tag.Rung),
		`    <line class=%q x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke-width="%.1f"/>`+"\n",
		l.Tag.Role, l.X1, l.Y1, l.X2, l.Y2, l.Width)
}

func (s *SVGSink) Rect(r Rect) {
	class := string(r.Tag.Role)
	if r.Fill {
		class = "block-fill"
	}
	fmt.Fprintf(s.buf(r.Tag.Rung),
		`    <rect class=%q x="%.1f" y="%.1f" width="%.1f" height="%.1f" stroke-width="2"/>`+"\n",
		class, r.X, r.Y, r.W, r.H)
}

func (s *SVGSink) Oval(o Oval) {
	class := string(o.Tag.Role)
	if o.Fill {
		class = "symbol-fill"
	}
	fmt.Fprintf(s.buf(o.Tag.Rung),
		`    <ellipse class=%q cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" stroke-width="2"/>`+"\n",
		class, o.X+o.W/2, o.Y+o.H/2, o.W/2, o.H/2)
}

func (s *SVGSink) Text(t Text) {
	anchor := "start"
	switch t.Anchor {
	case AnchorMiddle:
		anchor = "middle"
	case AnchorEnd:
		anchor = "end"
	}
	fmt.Fprintf(s.buf(t.Tag.Rung),
		`    <text class=%q x="%.1f" y="%.1f" font-size="%.0f" text-anchor=%q>%s</text>`+"\n",
		t.Tag.Role, t.X, t.Y, t.Size, anchor, html.EscapeString(t.Body))
}

// Document assembles the retained rungs into a complete SVG of the given
// size, groups ordered by rung number.
func (s *SVGSink) Document(width, height float64) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	t := s.theme
	fmt.Fprintf(&buf, "  <style>"+ladderCSS+"\n  </style>\n",
		t.Font, t.Ink, t.Ink, t.Ink, t.BlockFill, t.Ink, t.Comment, t.Selection)
	if t.Background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill=%q/>`+"\n", t.Background)
	}

	numbers := make([]int, 0, len(s.rungs))
	for n := range s.rungs {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		fmt.Fprintf(&buf, "  <g id=\"rung-%d\">\n", n)
		buf.Write(s.rungs[n].Bytes())
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// SVG paints the engine's committed geometry into a fresh SVG document.
func SVG(e *layout.Engine, opts ...SVGOption) ([]byte, error) {
	start := time.Now()
	sink := NewSVG(opts...)
	cons := e.Constants()

	err := NewPainter(cons).Routine(sink, e)
	rungs := len(e.Geometries())
	observability.Render().OnRender("svg", rungs, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return sink.Document(e.Width(), e.TotalHeight()+2*cons.CommentLineHeight), nil
}
