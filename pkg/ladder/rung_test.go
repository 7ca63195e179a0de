package ladder

import (
	"testing"

	"github.com/iroxusux/ladderview/pkg/errors"
)

func mustRung(t *testing.T, text string) *Rung {
	t.Helper()
	r, err := NewRung(text)
	if err != nil {
		t.Fatalf("NewRung(%q): %v", text, err)
	}
	return r
}

func TestRungTextRoundTrip(t *testing.T) {
	texts := []string{
		"XIC(A)OTE(B)",
		"XIC(A)[XIC(B),XIC(C)]OTE(D)",
		"[XIC(A),[XIC(B),XIC(C)]]OTE(D)",
		"TON(Timer1,1000,0)",
	}
	for _, text := range texts {
		r := mustRung(t, text)
		if got := r.Text(); got != text {
			t.Errorf("Text() = %q, want %q", got, text)
		}
	}
}

func TestRungAddInstruction(t *testing.T) {
	r := mustRung(t, "XIC(A)OTE(C)")
	if err := r.AddInstruction(Descriptor{Text: "XIC(B)"}, 1); err != nil {
		t.Fatalf("AddInstruction: %v", err)
	}
	if got := r.Text(); got != "XIC(A)XIC(B)OTE(C)" {
		t.Errorf("Text() = %q", got)
	}

	// Positions past the end append.
	if err := r.AddInstruction(Descriptor{Text: "OTE(D)"}, 99); err != nil {
		t.Fatalf("AddInstruction past end: %v", err)
	}
	if got := r.Text(); got != "XIC(A)XIC(B)OTE(C)OTE(D)" {
		t.Errorf("Text() = %q", got)
	}

	if err := r.AddInstruction(Descriptor{Text: "XIC(E)"}, -1); err == nil {
		t.Error("negative position should be rejected")
	}
	if err := r.AddInstruction(Descriptor{Text: "garbage"}, 0); err == nil {
		t.Error("malformed instruction text should be rejected")
	}
}

func TestRungAddInstructionKeepsAlias(t *testing.T) {
	r := mustRung(t, "OTE(Motor)")
	if err := r.AddInstruction(Descriptor{Text: "XIC(Start)", Alias: "Start PB"}, 0); err != nil {
		t.Fatalf("AddInstruction: %v", err)
	}
	seq, err := r.Sequence()
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if seq[0].Instr.Alias != "Start PB" {
		t.Errorf("alias = %q, want %q", seq[0].Instr.Alias, "Start PB")
	}

	// The alias must travel with its instruction through later edits.
	if err := r.AddInstruction(Descriptor{Text: "XIO(Stop)"}, 0); err != nil {
		t.Fatalf("AddInstruction: %v", err)
	}
	seq, err = r.Sequence()
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if seq[1].Instr.Alias != "Start PB" {
		t.Errorf("alias after shift = %q, want %q", seq[1].Instr.Alias, "Start PB")
	}
}

func TestRungRemoveInstructions(t *testing.T) {
	r := mustRung(t, "XIC(A)XIC(B)XIC(C)OTE(D)")
	if err := r.RemoveInstructions(1, 2); err != nil {
		t.Fatalf("RemoveInstructions: %v", err)
	}
	if got := r.Text(); got != "XIC(A)OTE(D)" {
		t.Errorf("Text() = %q", got)
	}

	// Re-indexing: the surviving elements occupy contiguous positions.
	seq, err := r.Sequence()
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	for i, e := range seq {
		if e.Position != i {
			t.Errorf("element %d position = %d after removal", i, e.Position)
		}
	}
}

func TestRungRemoveInstructionsRejectsMarkers(t *testing.T) {
	r := mustRung(t, "XIC(A)[XIC(B),XIC(C)]OTE(D)")
	err := r.RemoveInstructions(1, 2)
	if !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("removing a range covering a branch marker: err = %v", err)
	}
	err = r.RemoveInstructions(0, 99)
	if !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("out-of-bounds range: err = %v", err)
	}
}

func TestRungMoveInstruction(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		from, to int
		want     string
	}{
		{
			name: "MoveRight",
			text: "XIC(A)XIC(B)XIC(C)",
			from: 0, to: 2,
			want: "XIC(B)XIC(C)XIC(A)",
		},
		{
			name: "MoveLeft",
			text: "XIC(A)XIC(B)XIC(C)",
			from: 2, to: 0,
			want: "XIC(C)XIC(A)XIC(B)",
		},
		{
			name: "MoveIntoBranchLeg",
			text: "XIC(A)[XIC(B),XIC(C)]OTE(D)",
			from: 0, to: 2,
			want: "[XIC(B)XIC(A),XIC(C)]OTE(D)",
		},
		{
			name: "NoOpSamePosition",
			text: "XIC(A)XIC(B)",
			from: 1, to: 1,
			want: "XIC(A)XIC(B)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRung(t, tt.text)
			if err := r.MoveInstruction(tt.from, tt.to); err != nil {
				t.Fatalf("MoveInstruction: %v", err)
			}
			if got := r.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRungMoveInstructionRejectsMarkers(t *testing.T) {
	r := mustRung(t, "XIC(A)[XIC(B),XIC(C)]OTE(D)")
	if err := r.MoveInstruction(1, 0); !errors.Is(err, errors.ErrCodeInvalidPosition) {
		t.Errorf("moving a branch marker: err = %v", err)
	}
}

func TestRungInsertBranch(t *testing.T) {
	r := mustRung(t, "XIC(A)XIC(B)OTE(C)")
	before := r.Len()

	id, err := r.InsertBranch(0, 1)
	if err != nil {
		t.Fatalf("InsertBranch: %v", err)
	}
	if got := r.Text(); got != "[XIC(A)XIC(B)]OTE(C)" {
		t.Errorf("Text() = %q", got)
	}
	// One position each for the start and end marker.
	if r.Len() != before+2 {
		t.Errorf("Len() = %d, want %d", r.Len(), before+2)
	}
	if id != "b0" {
		t.Errorf("branch id = %q, want b0", id)
	}

	// A single-leg branch still compiles.
	seq, err := r.Sequence()
	if err != nil {
		t.Fatalf("Sequence after InsertBranch: %v", err)
	}
	if seq[0].Kind != KindBranchStart || seq[3].Kind != KindBranchEnd {
		t.Errorf("markers not at expected positions: %v, %v", seq[0].Kind, seq[3].Kind)
	}
}

func TestRungInsertBranchRejectsSplit(t *testing.T) {
	r := mustRung(t, "XIC(A)[XIC(B),XIC(C)]OTE(D)")
	text := r.Text()

	// Wrapping [0, 2] would put a "]" between an existing pair of markers.
	if _, err := r.InsertBranch(0, 2); err == nil {
		t.Fatal("expected error wrapping across an existing branch start")
	}
	// The failed insert must not change the rung.
	if got := r.Text(); got != text {
		t.Errorf("rung mutated by rejected insert: %q", got)
	}
}

func TestRungInsertBranchRangeValidation(t *testing.T) {
	r := mustRung(t, "XIC(A)OTE(B)")
	if _, err := r.InsertBranch(1, 0); !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("start past end: err = %v", err)
	}
	if _, err := r.InsertBranch(0, 5); !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("end out of range: err = %v", err)
	}
}

func TestRungAddLeg(t *testing.T) {
	r := mustRung(t, "XIC(A)XIC(B)OTE(C)")
	id, err := r.InsertBranch(0, 1)
	if err != nil {
		t.Fatalf("InsertBranch: %v", err)
	}
	pos, err := r.AddLeg(id)
	if err != nil {
		t.Fatalf("AddLeg: %v", err)
	}
	if got := r.Text(); got != "[XIC(A)XIC(B),]OTE(C)" {
		t.Errorf("Text() = %q", got)
	}
	if r.tokens[pos].text != "," {
		t.Errorf("position %d = %q, want separator", pos, r.tokens[pos].text)
	}

	if _, err := r.AddLeg("nope"); !errors.Is(err, errors.ErrCodeBranchNotFound) {
		t.Errorf("unknown branch id: err = %v", err)
	}
}

func TestRungRemoveBranch(t *testing.T) {
	r := mustRung(t, "XIC(A)[XIC(B),XIC(C)]OTE(D)")
	if err := r.RemoveBranch("b0"); err != nil {
		t.Fatalf("RemoveBranch: %v", err)
	}
	// The branch's markers and contained elements are gone together.
	if got := r.Text(); got != "XIC(A)OTE(D)" {
		t.Errorf("Text() = %q", got)
	}
	seq, err := r.Sequence()
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	for i, e := range seq {
		if e.Position != i {
			t.Errorf("element %d position = %d after branch removal", i, e.Position)
		}
	}
}

func TestRungRemoveNestedBranchKeepsOuter(t *testing.T) {
	r := mustRung(t, "[XIC(A),[XIC(B),XIC(C)]]OTE(D)")
	if err := r.RemoveBranch("b1"); err != nil {
		t.Fatalf("RemoveBranch: %v", err)
	}
	if got := r.Text(); got != "[XIC(A),]OTE(D)" {
		t.Errorf("Text() = %q", got)
	}
	if _, err := r.Sequence(); err != nil {
		t.Fatalf("outer branch no longer compiles: %v", err)
	}
}

func TestRungInternalNestingLevel(t *testing.T) {
	tests := []struct {
		name string
		text string
		pos  int
		want int
	}{
		{
			name: "FlatBranch",
			text: "[XIC(A),XIC(B)]",
			pos:  0,
			want: 0,
		},
		{
			name: "OneNestedSeparator",
			text: "[XIC(A),[XIC(B),XIC(C)]]",
			pos:  0,
			want: 1,
		},
		{
			name: "InnerBracketIsFlat",
			text: "[XIC(A),[XIC(B),XIC(C)]]",
			pos:  3,
			want: 0,
		},
		{
			name: "TwoNestedSeparators",
			text: "[XIC(A),[XIC(B),XIC(C),XIC(D)]]",
			pos:  0,
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRung(t, tt.text)
			got, err := r.InternalNestingLevel(tt.pos)
			if err != nil {
				t.Fatalf("InternalNestingLevel: %v", err)
			}
			if got != tt.want {
				t.Errorf("InternalNestingLevel(%d) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}

	r := mustRung(t, "XIC(A)")
	if _, err := r.InternalNestingLevel(0); !errors.Is(err, errors.ErrCodeInvalidPosition) {
		t.Errorf("non-marker position: err = %v", err)
	}
}

func TestRungSequenceCacheInvalidation(t *testing.T) {
	r := mustRung(t, "XIC(A)")
	seq1, err := r.Sequence()
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if err := r.AddInstruction(Descriptor{Text: "OTE(B)"}, 1); err != nil {
		t.Fatalf("AddInstruction: %v", err)
	}
	seq2, err := r.Sequence()
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(seq2) != len(seq1)+1 {
		t.Errorf("sequence not recompiled after mutation: len %d -> %d", len(seq1), len(seq2))
	}
}
