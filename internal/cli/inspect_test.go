package cli

import (
	"strings"
	"testing"

	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
)

func layoutFixture(t *testing.T, texts ...string) *layout.Engine {
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

func TestRungTextOfRoundTrips(t *testing.T) {
	texts := []string{
		"XIC(A)OTE(B)",
		"XIC(A)[XIC(B),XIC(C)]OTE(D)",
	}
	engine := layoutFixture(t, texts...)

	for i, g := range engine.Geometries() {
		if got := rungTextOf(g); got != texts[i] {
			t.Errorf("rungTextOf(rung %d) = %q, want %q", i, got, texts[i])
		}
	}
}

func TestRungTable(t *testing.T) {
	engine := layoutFixture(t, "XIC(Start)[XIC(Seal),XIC(Jog)]OTE(Motor)")

	out := rungTable(engine)
	for _, want := range []string{"RUNG", "ELEMENTS", "BRANCHES", "XIC(Start)"} {
		if !strings.Contains(out, want) {
			t.Errorf("rung table missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short, 10) = %q", got)
	}
	got := truncate("XIC(VeryLongOperandName)OTE(Out)", 10)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated string should end with ellipsis, got %q", got)
	}
	if !strings.HasPrefix(got, "XIC(VeryL") {
		t.Errorf("truncate kept wrong prefix: %q", got)
	}
}
