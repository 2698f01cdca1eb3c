// Package chain renders a resolved version inheritance chain as a diagram.
//
// Each [metadata.Version] in the chain becomes a node, with an arrow from a
// version to the parent it inherits from:
//
//	dot := chain.ToDOT(version, chain.Options{Detailed: true})
//	svg, err := chain.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. SVG rendering runs in process through [github.com/goccy/go-graphviz].
//
// [metadata.Version]: github.com/matzehuels/mcinstall/pkg/metadata.Version
package chain
