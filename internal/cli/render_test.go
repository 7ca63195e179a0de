package cli

import (
	"testing"

	"github.com/iroxusux/ladderview/pkg/ladder"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,png,dot", []string{"svg", "png", "dot"}},
		{"spaces trimmed", "svg, png", []string{"svg", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid png", []string{"png"}, false},
		{"valid dot", []string{"dot"}, false},
		{"valid multiple", []string{"svg", "png", "dot"}, false},
		{"invalid format", []string{"pdf"}, true},
		{"mixed valid invalid", []string{"svg", "bmp"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		routine string
		output  string
		format  string
		multi   bool
		want    string
	}{
		{"derived from routine", "motor.toml", "", "svg", false, "motor.svg"},
		{"explicit single format", "motor.toml", "out.svg", "svg", false, "out.svg"},
		{"explicit base for multi", "motor.toml", "out.svg", "png", true, "out.png"},
		{"multi without output", "conveyor.toml", "", "dot", true, "conveyor.dot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(tt.routine, tt.output, tt.format, tt.multi)
			if got != tt.want {
				t.Errorf("outputPath(%q, %q, %q, %v) = %q, want %q",
					tt.routine, tt.output, tt.format, tt.multi, got, tt.want)
			}
		})
	}
}

func TestRasterScale(t *testing.T) {
	if got := rasterScale("png", 2); got != 2 {
		t.Errorf("rasterScale(png, 2) = %v, want 2", got)
	}
	// Vector formats ignore the scale so it must not split the cache key.
	if got := rasterScale("svg", 2); got != 0 {
		t.Errorf("rasterScale(svg, 2) = %v, want 0", got)
	}
}

func TestBranchCount(t *testing.T) {
	rt := ladder.NewRoutine("test")
	for _, text := range []string{
		"XIC(A)OTE(B)",
		"XIC(A)[XIC(B),XIC(C)]OTE(D)",
		"[XIC(A),[XIC(B),XIC(C)]]OTE(D)",
	} {
		r, err := ladder.NewRung(text)
		if err != nil {
			t.Fatalf("NewRung(%q): %v", text, err)
		}
		rt.AppendRung(r)
	}

	if got := branchCount(rt); got != 3 {
		t.Errorf("branchCount = %d, want 3", got)
	}
}
