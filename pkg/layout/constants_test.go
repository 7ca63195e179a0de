package layout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConstantsValid(t *testing.T) {
	if err := DefaultConstants().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadConstantsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	if err := os.WriteFile(path, []byte("rung_height = 140\nbranch_spacing = 60\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConstantsFile(path)
	if err != nil {
		t.Fatalf("LoadConstantsFile: %v", err)
	}
	if c.RungHeight != 140 {
		t.Errorf("RungHeight = %v, want 140", c.RungHeight)
	}
	if c.BranchSpacing != 60 {
		t.Errorf("BranchSpacing = %v, want 60", c.BranchSpacing)
	}
	// Unmentioned fields keep their defaults.
	if c.ElementSpacing != DefaultConstants().ElementSpacing {
		t.Errorf("ElementSpacing = %v, want default", c.ElementSpacing)
	}
}

func TestLoadConstantsFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.toml")
	if err := os.WriteFile(path, []byte("rung_height = -5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConstantsFile(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestConstantsValidateRails(t *testing.T) {
	c := DefaultConstants()
	c.RailXRight = c.RailXLeft - 1
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for right rail left of left rail")
	}
}

func TestCommentHeight(t *testing.T) {
	c := DefaultConstants()
	tests := []struct {
		comment string
		want    float64
	}{
		{"", 0},
		{"one line", 1*c.CommentLineHeight + c.CommentPadding},
		{"a\nb\nc", 3*c.CommentLineHeight + c.CommentPadding},
	}
	for _, tt := range tests {
		if got := c.CommentHeight(tt.comment); got != tt.want {
			t.Errorf("CommentHeight(%q) = %v, want %v", tt.comment, got, tt.want)
		}
	}
}
