package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mcinstall/pkg/cache"
	"github.com/matzehuels/mcinstall/pkg/download"
	"github.com/matzehuels/mcinstall/pkg/game"
	fabricapi "github.com/matzehuels/mcinstall/pkg/integrations/fabric"
	"github.com/matzehuels/mcinstall/pkg/loader/fabric"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// latestLoader is the value of a bare --fabric or --quilt flag.
const latestLoader = "latest"

type installOptions struct {
	fabric  string
	quilt   string
	workDir string
	workers int
	retries int
	output  string
}

// loader returns the requested loader API and version, empty for the
// latest one.
func (o installOptions) loader() (fabricapi.API, string, bool) {
	var (
		api  fabricapi.API
		flag string
	)
	switch {
	case o.fabric != "":
		api, flag = fabricapi.Fabric, o.fabric
	case o.quilt != "":
		api, flag = fabricapi.Quilt, o.quilt
	default:
		return fabricapi.API{}, "", false
	}
	if flag == latestLoader {
		flag = ""
	}
	return api, flag, true
}

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var opts installOptions

	cmd := &cobra.Command{
		Use:   "install <version|release|snapshot>",
		Short: "Install a game version",
		Long: `Install a game version with its libraries, assets and Java runtime.

The version is an identifier from the version manifest, or "release" or
"snapshot" for the latest one. With --fabric or --quilt the loader profile
for that game version is installed on top; the loader version defaults to
the latest.

Files already present with the expected size and SHA-1 are not downloaded
again. When downloads fail the whole installation is retried up to
--retries times.`,
		Example: `  mcinstall install release
  mcinstall install 1.20.1 --fabric
  mcinstall install 1.20.1 --quilt=0.21.0 --output json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeVersions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInstall(cmd.Context(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.fabric, "fabric", "", "install the Fabric loader, optionally at a given loader version")
	flags.Lookup("fabric").NoOptDefVal = latestLoader
	flags.StringVar(&opts.quilt, "quilt", "", "install the Quilt loader, optionally at a given loader version")
	flags.Lookup("quilt").NoOptDefVal = latestLoader
	flags.StringVar(&opts.workDir, "work-dir", "", "directory the game runs in (default: the main directory)")
	flags.IntVar(&opts.workers, "workers", 0, "concurrent downloads (default: config, else 4 per CPU)")
	flags.IntVar(&opts.retries, "retries", -1, "retries after failed downloads (default: config)")
	flags.StringVarP(&opts.output, "output", "o", outputHuman, "output format: human, json or silent")
	cmd.MarkFlagsMutuallyExclusive("fabric", "quilt")
	_ = cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(
		[]string{outputHuman, outputJSON, outputSilent}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runInstall(ctx context.Context, version string, opts installOptions) error {
	logger := loggerFromContext(ctx)
	runID := uuid.NewString()
	w, err := newWatcher(opts.output, os.Stdout, logger, runID)
	if err != nil {
		return err
	}

	e, err := c.newEnv(ctx, opts.workDir)
	if err != nil {
		return err
	}
	defer e.Close()

	retries := opts.retries
	if retries < 0 {
		retries = c.Config.Retries
	}
	workers := opts.workers
	if workers <= 0 {
		workers = c.Config.Workers
	}

	gopts := game.Options{
		Context:  e.game,
		Platform: game.CurrentPlatform(),
		Manifest: e.manifest,
		Mojang:   e.mojang,
		Session:  e.session,
		Workers:  workers,
		Logger:   logger,

		ResourcesURL: c.Config.Endpoints.ResourcesURL,
		LibrariesURL: c.Config.Endpoints.LibrariesURL,
	}

	var (
		stages []task.Stage
		seed   func(*task.State)
	)
	if api, loader, ok := opts.loader(); ok {
		client := fabricapi.NewClient(api, e.session, e.cache, nil, c.Config.Cache.TTL.Duration)
		stages = append(stages, fabric.Stage(&fabric.InitTask{
			Client:   func(fabricapi.API) fabric.Loader { return client },
			Manifest: e.manifest,
			Logger:   logger,
		}))
		root := fabric.NewRoot(api, version, loader)
		seed = func(s *task.State) { fabric.RootKey.Insert(s, root) }
	} else {
		id, alias, err := e.manifest.ResolveAlias(ctx, version)
		if err != nil {
			return err
		}
		if alias {
			logger.Info("resolved alias", "alias", version, "id", id)
		}
		gopts.Version = id
	}

	seq := game.NewSequence(gopts, stages...)
	seq.AddWatcher(w)
	logger.Debug("install", "run", runID, "version", version, "tasks", seq.Names(), "retries", retries)

	backoff := cache.Backoff{Attempts: retries + 1, Delay: cache.DefaultBackoff.Delay}
	err = installWithRetries(ctx, seq, seed, backoff, w)
	id := ""
	if v, ok := metadata.VersionKey.Get(seq.State()); ok {
		id = v.ID
	}
	if werr := w.finish(id, err); err == nil && werr != nil {
		return fmt.Errorf("write output: %w", werr)
	}
	return err
}

// installWithRetries runs seq, and after an aggregate download failure
// resets it and runs it again within the attempts of b. seed re-inserts
// the caller's state after each reset. Verified files are skipped on the
// next attempt, so a retry only fetches what failed.
func installWithRetries(ctx context.Context, seq *task.Sequence, seed func(*task.State), b cache.Backoff, w installWatcher) error {
	if seed != nil {
		seed(seq.State())
	}
	attempt := 0
	var last error
	err := b.Do(ctx, func() error {
		attempt++
		if attempt > 1 {
			w.retry(attempt, last)
			seq.Reset()
			if seed != nil {
				seed(seq.State())
			}
		}
		last = seq.Run(ctx)
		if download.IsError(last) {
			return cache.Retryable(last)
		}
		return last
	})

	var re *cache.RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
