package render

import (
	"strings"
	"testing"

	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
)

func layoutRoutine(t *testing.T, texts ...string) *layout.Engine {
	t.Helper()
	rt := ladder.NewRoutine("test")
	for _, text := range texts {
		r, err := ladder.NewRung(text)
		if err != nil {
			t.Fatalf("NewRung(%q): %v", text, err)
		}
		rt.AppendRung(r)
	}
	engine := layout.NewEngine()
	if err := engine.LayoutRoutine(rt); err != nil {
		t.Fatalf("LayoutRoutine: %v", err)
	}
	return engine
}

func TestSVGDocument(t *testing.T) {
	engine := layoutRoutine(t, "XIC(A)OTE(B)", "XIC(C)[XIC(D),XIC(E)]OTE(F)")

	doc, err := SVG(engine)
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	svg := string(doc)

	if !strings.HasPrefix(svg, "<svg xmlns=") {
		t.Error("document missing svg root")
	}
	for _, want := range []string{`id="rung-0"`, `id="rung-1"`, "<line", "<ellipse", "(END)"} {
		if !strings.Contains(svg, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.Count(svg, "</svg>") != 1 {
		t.Error("document not closed exactly once")
	}
}

func TestSVGEscapesText(t *testing.T) {
	engine := layoutRoutine(t, "XIC(Tags<3>.A)OTE(B)")

	doc, err := SVG(engine)
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if strings.Contains(string(doc), "Tags<3>") {
		t.Error("operand text not escaped")
	}
	if !strings.Contains(string(doc), "Tags&lt;3&gt;.A") {
		t.Error("escaped operand missing")
	}
}

func TestSVGClearRungReplacesGroup(t *testing.T) {
	engine := layoutRoutine(t, "XIC(A)OTE(B)")
	g, err := engine.Geometry(0)
	if err != nil {
		t.Fatal(err)
	}

	sink := NewSVG()
	p := NewPainter(engine.Constants())
	if err := p.Rung(sink, g); err != nil {
		t.Fatal(err)
	}
	first := string(sink.Document(engine.Width(), engine.TotalHeight()))
	if err := p.Rung(sink, g); err != nil {
		t.Fatal(err)
	}
	second := string(sink.Document(engine.Width(), engine.TotalHeight()))

	if first != second {
		t.Error("repainting the same rung changed the document")
	}
}

func TestSVGBackgroundOption(t *testing.T) {
	engine := layoutRoutine(t, "XIC(A)OTE(B)")

	doc, err := SVG(engine, WithBackground("#ffffff"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(doc), `fill="#ffffff"`) {
		t.Error("background rect missing")
	}
}
