package layout

import (
	"testing"

	"github.com/iroxusux/ladderview/pkg/errors"
)

func TestStoreCreateAndGet(t *testing.T) {
	s := NewStore()
	if err := s.Create(&Branch{ID: "b0"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(&Branch{ID: "b0"}); !errors.Is(err, errors.ErrCodeBranchMismatch) {
		t.Errorf("duplicate create: err = %v", err)
	}
	if _, err := s.Get("b0"); err != nil {
		t.Errorf("Get: %v", err)
	}
	if _, err := s.Get("b9"); !errors.Is(err, errors.ErrCodeDanglingBranchRef) {
		t.Errorf("missing id: err = %v", err)
	}
}

func TestStoreAllPreservesOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"b0", "b0:1", "b1"} {
		if err := s.Create(&Branch{ID: id}); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}
	all := s.All()
	want := []string{"b0", "b0:1", "b1"}
	for i, b := range all {
		if b.ID != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, b.ID, want[i])
		}
	}
}

func TestStoreResolveChildren(t *testing.T) {
	s := NewStore()
	bracket := &Branch{ID: "b0", StartX: 200, EndX: 500, ChildIDs: []string{"b0:1", "b0:2"}}
	leg1 := &Branch{ID: "b0:1", BranchY: 220, EndY: 275}
	leg2 := &Branch{ID: "b0:2", BranchY: 340, EndY: 395}
	for _, b := range []*Branch{bracket, leg1, leg2} {
		if err := s.Create(b); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := s.ResolveChildren("b0", 80); err != nil {
		t.Fatalf("ResolveChildren: %v", err)
	}

	// All but the last leg pin their bottom halfway to the next leg.
	if leg1.EndY != leg2.BranchY-40 {
		t.Errorf("leg1.EndY = %v, want %v", leg1.EndY, leg2.BranchY-40)
	}
	if leg2.EndY != 395 {
		t.Errorf("last leg EndY = %v, want provisional 395", leg2.EndY)
	}
	for _, leg := range []*Branch{leg1, leg2} {
		if leg.StartX != 200 || leg.EndX != 500 {
			t.Errorf("leg %s bounds {%v, %v}, want {200, 500}", leg.ID, leg.StartX, leg.EndX)
		}
	}
}
