package render

import (
	"strings"
	"testing"

	"github.com/iroxusux/ladderview/pkg/ladder"
)

func routineOf(t *testing.T, texts ...string) *ladder.Routine {
	t.Helper()
	rt := ladder.NewRoutine("test")
	for _, text := range texts {
		r, err := ladder.NewRung(text)
		if err != nil {
			t.Fatalf("NewRung(%q): %v", text, err)
		}
		rt.AppendRung(r)
	}
	return rt
}

func TestToDOTBasic(t *testing.T) {
	rt := routineOf(t, "XIC(A)[XIC(B),XIC(C)]OTE(D)")

	dot, err := ToDOT(rt, DOTOptions{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	if !strings.Contains(dot, "digraph ladder") {
		t.Error("output missing digraph declaration")
	}
	for _, want := range []string{`"rung0"`, `"r0/b0"`, `"r0/b0:1"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("output missing node %s", want)
		}
	}
	if !strings.Contains(dot, `"rung0" -> "r0/b0"`) {
		t.Error("output missing rung-to-bracket edge")
	}
	if !strings.Contains(dot, `"r0/b0" -> "r0/b0:1"`) {
		t.Error("output missing bracket-to-leg edge")
	}
}

func TestToDOTNestedBracketHangsOffItsLeg(t *testing.T) {
	rt := routineOf(t, "[XIC(A),[XIC(B),XIC(C)]]OTE(D)")

	dot, err := ToDOT(rt, DOTOptions{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	// The inner bracket opens on the outer bracket's sibling leg, not on
	// the bracket itself.
	if !strings.Contains(dot, `"r0/b0:1" -> "r0/b1"`) {
		t.Error("inner bracket not attached to its leg")
	}
	if strings.Contains(dot, `"r0/b0" -> "r0/b1"`) {
		t.Error("inner bracket wrongly attached to the outer bracket")
	}
}

func TestToDOTDetailed(t *testing.T) {
	rt := routineOf(t, "XIC(A)[XIC(B),XIC(C)]OTE(D)")

	dot, err := ToDOT(rt, DOTOptions{Detailed: true})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	if !strings.Contains(dot, "2 instructions") {
		t.Error("detailed output missing main-rung instruction count")
	}
	if !strings.Contains(dot, "positions 1-5") {
		t.Error("detailed output missing bracket position range")
	}
}

func TestToDOTMultipleRungs(t *testing.T) {
	rt := routineOf(t, "XIC(A)OTE(B)", "XIC(C)OTE(D)")

	dot, err := ToDOT(rt, DOTOptions{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	if !strings.Contains(dot, `"rung0"`) || !strings.Contains(dot, `"rung1"`) {
		t.Error("output missing a rung node")
	}
}
