package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/manifest"
)

// versionTypes are the release types listed in the version manifest.
var versionTypes = []string{"release", "snapshot", "old_beta", "old_alpha"}

type searchOptions struct {
	filter      string
	typ         string
	interactive bool
	limit       int
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [filter]",
		Short: "Search versions in the version manifest",
		Long: `List versions from the version manifest, newest first.

The optional filter keeps versions whose identifier contains it. Installed
versions and the latest release and snapshot are marked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.filter = args[0]
			}
			return c.runSearch(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.typ, "type", "t", "", "only list this type: release, snapshot, old_beta or old_alpha")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "pick a version interactively")
	flags.IntVarP(&opts.limit, "limit", "n", 0, "list at most this many versions (0 for all)")
	_ = cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions(versionTypes, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, opts searchOptions) error {
	if opts.typ != "" && !slices.Contains(versionTypes, opts.typ) {
		return mcerrors.New(mcerrors.ErrCodeInvalidInput, "unknown version type %q", opts.typ)
	}

	e, err := c.newEnv(ctx, "")
	if err != nil {
		return err
	}
	defer e.Close()

	rows, err := searchVersions(ctx, e, opts)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		printInfo("No versions match")
		return nil
	}

	if !opts.interactive {
		fmt.Println(versionTable(rows, -1, time.Now()).Render())
		printDetail("%d versions", len(rows))
		return nil
	}

	final, err := tea.NewProgram(newVersionPicker(rows), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	picked := final.(versionPicker).Selected
	if picked == nil {
		return nil
	}
	printSuccess("Selected %s", StyleHighlight.Render(picked.ID))
	printNextStep("Install it with", appName+" install "+picked.ID)
	return nil
}

// searchVersions filters the manifest and marks installed and latest rows.
func searchVersions(ctx context.Context, e *env, opts searchOptions) ([]versionRow, error) {
	all, err := e.manifest.All(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := e.manifest.Latest(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := e.game.InstalledVersions()
	if err != nil {
		return nil, err
	}

	var rows []versionRow
	for entry := range all {
		if opts.typ != "" && entry.Type != opts.typ {
			continue
		}
		if opts.filter != "" && !strings.Contains(entry.ID, opts.filter) {
			continue
		}
		rows = append(rows, versionRow{
			Entry:     entry,
			Installed: slices.Contains(ids, entry.ID),
			Latest:    isLatest(latest, entry),
		})
		if opts.limit > 0 && len(rows) == opts.limit {
			break
		}
	}
	return rows, nil
}

func isLatest(l manifest.Latest, e manifest.Entry) bool {
	return e.ID == l.Release || e.ID == l.Snapshot
}
