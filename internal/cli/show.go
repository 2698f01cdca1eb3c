package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/render/chain"
)

type showOptions struct {
	graph    string
	detailed bool
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var opts showOptions

	cmd := &cobra.Command{
		Use:   "show <version>",
		Short: "Show a version and its inheritance chain",
		Long: `Resolve a version's metadata and the versions it inherits from, then
print a summary. The metadata is fetched into the versions directory if it
is missing; nothing else is downloaded.

With --graph the chain is also written as a diagram: a .dot file holds the
Graphviz source, a .svg file the rendered image.`,
		Example: `  mcinstall show release
  mcinstall show fabric-loader-0.14.22-1.20.1 --graph chain.svg`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeVersions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.graph, "graph", "", "write the inheritance chain to a .dot or .svg file")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include type, main class and library count in graph labels")

	return cmd
}

func (c *CLI) runShow(ctx context.Context, version string, opts showOptions) error {
	logger := loggerFromContext(ctx)
	e, err := c.newEnv(ctx, "")
	if err != nil {
		return err
	}
	defer e.Close()

	id, _, err := e.manifest.ResolveAlias(ctx, version)
	if err != nil {
		return err
	}
	repo := &metadata.ManifestRepository{Manifest: e.manifest, Client: e.mojang}
	mt := &metadata.Task{VersionsDir: e.game.VersionsDir(), Default: repo, Logger: logger}
	prog := newProgress(logger)
	v, err := mt.Resolve(ctx, metadata.NewRepositories(repo), id, nil)
	if err != nil {
		return err
	}
	prog.done("Resolved " + id)

	printVersion(v)

	if opts.graph != "" {
		if err := writeGraph(ctx, v, opts.graph, chain.Options{Detailed: opts.detailed}); err != nil {
			return err
		}
		printNewline()
		printSuccess("Wrote inheritance graph")
		printFile(opts.graph)
	}
	return nil
}

// printVersion prints the merged view of a resolved chain.
func printVersion(v *metadata.Version) {
	merged := v.Merge()
	printKeyValue("id", v.ID)
	if typ, ok := merged.String("type"); ok {
		printKeyValue("type", typ)
	}
	if v.Parent != nil {
		printKeyValue("chain", strings.Join(v.IDs(), iconChain))
	}
	if mainClass, ok := merged.String("mainClass"); ok {
		printKeyValue("main class", mainClass)
	}
	if assets, ok := merged.String("assets"); ok {
		printKeyValue("assets", assets)
	}
	if java, ok := merged.Map("javaVersion"); ok {
		component, _ := java.String("component")
		printKeyValue("java", fmt.Sprintf("%s (%v)", component, java["majorVersion"]))
	}
	if libs, ok := merged.List("libraries"); ok {
		printKeyValue("libraries", StyleNumber.Render(fmt.Sprint(len(libs))))
	}
	installed := "no"
	if _, err := os.Stat(v.JarFile()); err == nil {
		installed = StyleSuccess.Render("yes")
	}
	printKeyValue("jar", installed)
}

// writeGraph writes the chain of v to path in the format named by its
// extension.
func writeGraph(ctx context.Context, v *metadata.Version, path string, opts chain.Options) error {
	dot := chain.ToDOT(v, opts)
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		data = []byte(dot)
	case ".svg":
		svg, err := chain.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		data = svg
	default:
		return mcerrors.New(mcerrors.ErrCodeUnsupportedValue, "unsupported graph format %q (want .dot or .svg)", filepath.Ext(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}
