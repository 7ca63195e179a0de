package render

import (
	"bytes"
	"time"

	"github.com/fogleman/gg"

	"github.com/iroxusux/ladderview/pkg/errors"
	"github.com/iroxusux/ladderview/pkg/layout"
	"github.com/iroxusux/ladderview/pkg/observability"
)

// RasterOption configures PNG rendering.
type RasterOption func(*rasterConfig)

type rasterConfig struct {
	scale float64
	theme Theme
}

// WithScale multiplies the output resolution. 2.0 doubles both dimensions
// for high-DPI displays.
func WithScale(scale float64) RasterOption { return func(c *rasterConfig) { c.scale = scale } }

// WithRasterTheme replaces the default colors.
func WithRasterTheme(t Theme) RasterOption { return func(c *rasterConfig) { c.theme = t } }

// PNG paints the engine's committed geometry to a PNG image on a white
// background.
func PNG(e *layout.Engine, opts ...RasterOption) ([]byte, error) {
	start := time.Now()
	img, err := renderPNG(e, opts...)
	observability.Render().OnRender("png", len(e.Geometries()), time.Since(start), err)
	return img, err
}

func renderPNG(e *layout.Engine, opts ...RasterOption) ([]byte, error) {
	cfg := rasterConfig{scale: 1, theme: DefaultTheme()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidRange, "raster scale %v must be positive", cfg.scale)
	}

	cons := e.Constants()
	width := e.Width()
	height := e.TotalHeight() + 2*cons.CommentLineHeight

	dc := gg.NewContext(int(width*cfg.scale), int(height*cfg.scale))
	dc.Scale(cfg.scale, cfg.scale)
	if cfg.theme.Background != "" {
		dc.SetRGB(rgb(cfg.theme.Background))
	} else {
		dc.SetRGB(1, 1, 1)
	}
	dc.Clear()

	sink := &rasterSink{dc: dc, theme: cfg.theme}
	if err := NewPainter(cons).Routine(sink, e); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// rasterSink draws immediately; ClearRung is a no-op because a raster
// context is rebuilt from scratch on every render.
type rasterSink struct {
	dc    *gg.Context
	theme Theme
}

func (s *rasterSink) ClearRung(int) {}

func (s *rasterSink) setInk(role Role) {
	switch role {
	case RoleComment:
		s.dc.SetRGB(rgb(s.theme.Comment))
	case RoleSelection:
		s.dc.SetRGB(rgb(s.theme.Selection))
	default:
		s.dc.SetRGB(rgb(s.theme.Ink))
	}
}

func (s *rasterSink) Line(l Line) {
	s.setInk(l.Tag.Role)
	s.dc.SetLineWidth(l.Width)
	s.dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
	s.dc.Stroke()
}

func (s *rasterSink) Rect(r Rect) {
	s.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	if r.Fill {
		s.dc.SetRGB(rgb(s.theme.BlockFill))
		s.dc.Fill()
		return
	}
	s.setInk(r.Tag.Role)
	s.dc.SetLineWidth(2)
	s.dc.Stroke()
}

func (s *rasterSink) Oval(o Oval) {
	s.setInk(o.Tag.Role)
	s.dc.DrawEllipse(o.X+o.W/2, o.Y+o.H/2, o.W/2, o.H/2)
	if o.Fill {
		s.dc.Fill()
		return
	}
	s.dc.SetLineWidth(2)
	s.dc.Stroke()
}

func (s *rasterSink) Text(t Text) {
	s.setInk(t.Tag.Role)
	ax := 0.0
	switch t.Anchor {
	case AnchorMiddle:
		ax = 0.5
	case AnchorEnd:
		ax = 1.0
	}
	s.dc.DrawStringAnchored(t.Body, t.X, t.Y, ax, 0)
}
