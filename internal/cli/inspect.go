package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/iroxusux/ladderview/pkg/ladder"
	"github.com/iroxusux/ladderview/pkg/layout"
	"github.com/iroxusux/ladderview/pkg/render"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	constants string // layout constants TOML file
	dot       string // write the branch tree as DOT to this path
	png       string // write the branch tree as PNG to this path
	detailed  bool   // detailed branch labels
}

// newInspectCmd creates the inspect command, which prints per-rung
// structure and geometry, and optionally emits the branch tree as a
// Graphviz diagram.
func newInspectCmd() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [routine.toml]",
		Short: "Print routine structure and geometry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.constants, "constants", "", "layout constants TOML file")
	cmd.Flags().StringVar(&opts.dot, "dot", "", "write the branch tree as DOT to this file")
	cmd.Flags().StringVar(&opts.png, "png", "", "write the branch tree as PNG to this file")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "detailed branch labels")

	return cmd
}

func runInspect(ctx context.Context, path string, opts *inspectOpts) error {
	logger := loggerFromContext(ctx)

	rt, err := ladder.ReadRoutineFile(path)
	if err != nil {
		return fmt.Errorf("read routine: %w", err)
	}
	cons, err := loadConstants(opts.constants)
	if err != nil {
		return err
	}

	engine := layout.NewEngine(layout.WithConstants(cons), layout.WithLogger(logger))
	if err := engine.LayoutRoutine(rt); err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	fmt.Println(StyleTitle.Render(fmt.Sprintf("Routine %s", rt.Name())))
	printDetail("%d rungs, total height %.0f, width %.0f", rt.Len(), engine.TotalHeight(), engine.Width())
	fmt.Println()
	fmt.Println(rungTable(engine))

	if opts.dot != "" || opts.png != "" {
		dot, err := render.ToDOT(rt, render.DOTOptions{Detailed: opts.detailed})
		if err != nil {
			return fmt.Errorf("branch tree: %w", err)
		}
		if opts.dot != "" {
			if err := os.WriteFile(opts.dot, []byte(dot), 0o644); err != nil {
				return err
			}
			printFile(opts.dot)
		}
		if opts.png != "" {
			img, err := render.DOTPNG(dot)
			if err != nil {
				return fmt.Errorf("render branch tree: %w", err)
			}
			if err := os.WriteFile(opts.png, img, 0o644); err != nil {
				return err
			}
			printFile(opts.png)
		}
	}
	return nil
}

// rungTable formats one row per rung: number, element and branch counts,
// vertical extent, and the rung text (truncated).
func rungTable(engine *layout.Engine) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("RUNG", "ELEMENTS", "BRANCHES", "TOP", "HEIGHT", "TEXT")

	for _, g := range engine.Geometries() {
		brackets := 0
		for _, b := range g.Branches.All() {
			if b.IsBracket() {
				brackets++
			}
		}
		t.Row(
			strconv.Itoa(g.RungNumber),
			strconv.Itoa(len(g.Elements)),
			strconv.Itoa(brackets),
			fmt.Sprintf("%.0f", g.TopY),
			fmt.Sprintf("%.0f", g.Height),
			truncate(rungTextOf(g), 48),
		)
	}
	return t.Render()
}

// rungTextOf reconstructs a display text from the geometry's elements.
func rungTextOf(g *layout.RungGeometry) string {
	var b strings.Builder
	for _, el := range g.Elements {
		switch el.Kind {
		case ladder.KindBranchStart:
			b.WriteByte('[')
		case ladder.KindBranchNext:
			b.WriteByte(',')
		case ladder.KindBranchEnd:
			b.WriteByte(']')
		default:
			b.WriteString(el.Instr.Text)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
