package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/iroxusux/ladderview/pkg/ladder"
)

// DOTOptions configures branch-tree rendering.
type DOTOptions struct {
	// Detailed includes position ranges and instruction counts in node
	// labels. When false, only ids are shown.
	Detailed bool
}

// ToDOT converts a routine's branch structure to Graphviz DOT format: one
// node per rung, one per branch leg, edges from each context to the
// branches opened inside it. The resulting string can be rendered with
// [DOTSVG] or [DOTPNG].
func ToDOT(rt *ladder.Routine, opts DOTOptions) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("digraph ladder {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	for _, r := range rt.Rungs() {
		seq, err := r.Sequence()
		if err != nil {
			return "", fmt.Errorf("rung %d: %w", r.Number(), err)
		}
		if err := writeRungDOT(&buf, r, seq, opts); err != nil {
			return "", err
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func writeRungDOT(buf *bytes.Buffer, r *ladder.Rung, seq []ladder.RungElement, opts DOTOptions) error {
	rungNode := fmt.Sprintf("rung%d", r.Number())
	counts := make(map[string]int)
	spans := make(map[string][2]int)
	var order []string

	for _, el := range seq {
		switch el.Kind {
		case ladder.KindInstruction:
			counts[el.BranchID]++
		case ladder.KindBranchStart, ladder.KindBranchNext:
			order = append(order, el.BranchID)
			spans[el.BranchID] = [2]int{el.Position, el.Position}
		case ladder.KindBranchEnd:
			s := spans[el.BranchID]
			s[1] = el.Position
			spans[el.BranchID] = s
		}
	}

	label := fmt.Sprintf("rung %d", r.Number())
	if opts.Detailed {
		label += fmt.Sprintf("\n%d instructions", counts[""])
	}
	fmt.Fprintf(buf, "  %q [label=%q, fillcolor=lightblue];\n", rungNode, label)

	// Walk with an explicit context stack: a nested bracket hangs off the
	// leg it opened on, which the sequence entries alone don't name.
	ctx := []string{""}
	for _, el := range seq {
		var parent string
		switch el.Kind {
		case ladder.KindBranchStart:
			parent = contextNode(rungNode, r.Number(), ctx[len(ctx)-1])
			ctx = append(ctx, el.BranchID)
		case ladder.KindBranchNext:
			parent = nodeID(r.Number(), el.RootBranchID)
			ctx[len(ctx)-1] = el.BranchID
		case ladder.KindBranchEnd:
			ctx = ctx[:len(ctx)-1]
			continue
		default:
			continue
		}

		id := nodeID(r.Number(), el.BranchID)
		attrs := []string{fmt.Sprintf("label=%q", branchLabel(el, counts, spans, opts))}
		if el.Kind == ladder.KindBranchNext {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"")
		}
		fmt.Fprintf(buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
		fmt.Fprintf(buf, "  %q -> %q;\n", parent, id)
	}
	return nil
}

func branchLabel(el ladder.RungElement, counts map[string]int, spans map[string][2]int, opts DOTOptions) string {
	if !opts.Detailed {
		return el.BranchID
	}
	parts := []string{el.BranchID}
	if s, ok := spans[el.BranchID]; ok && s[1] > s[0] {
		parts = append(parts, fmt.Sprintf("positions %d-%d", s[0], s[1]))
	} else {
		parts = append(parts, fmt.Sprintf("position %d", el.Position))
	}
	parts = append(parts, fmt.Sprintf("%d instructions", counts[el.BranchID]))
	return strings.Join(parts, "\n")
}

func nodeID(rung int, branchID string) string {
	return fmt.Sprintf("r%d/%s", rung, branchID)
}

func contextNode(rungNode string, rung int, legID string) string {
	if legID == "" {
		return rungNode
	}
	return nodeID(rung, legID)
}

// DOTSVG renders a DOT graph to SVG using Graphviz.
func DOTSVG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.SVG)
}

// DOTPNG renders a DOT graph to PNG using Graphviz.
func DOTPNG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.PNG)
}

func renderDOT(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer func() { _ = g.Close() }()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
