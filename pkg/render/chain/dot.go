package chain

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mcinstall/pkg/metadata"
)

// Options configures chain diagrams.
type Options struct {
	// Detailed adds the version type, main class and library count to each
	// label.
	Detailed bool
}

// ToDOT converts the chain starting at v to Graphviz DOT. The root version,
// the one actually installed, is drawn with a bold outline.
func ToDOT(v *metadata.Version, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [label=\"inheritsFrom\", fontsize=10];\n")
	buf.WriteString("\n")

	for cur := range v.Chain() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(cur, opts.Detailed))}
		if cur == v {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", cur.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for cur := range v.Chain() {
		if cur.Parent != nil {
			fmt.Fprintf(&buf, "  %q -> %q;\n", cur.ID, cur.Parent.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(v *metadata.Version, detailed bool) string {
	if !detailed || v.Metadata == nil {
		return v.ID
	}

	parts := []string{v.ID}
	if typ, ok := v.Metadata.String("type"); ok {
		parts = append(parts, "type: "+typ)
	}
	if main, ok := v.Metadata.String("mainClass"); ok {
		parts = append(parts, "main: "+main)
	}
	if libs, ok := v.Metadata.List("libraries"); ok {
		parts = append(parts, fmt.Sprintf("libraries: %d", len(libs)))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
