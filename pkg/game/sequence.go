package game

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcinstall/pkg/integrations/mojang"
	"github.com/matzehuels/mcinstall/pkg/manifest"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/session"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// ContextTaskName identifies the task that seeds the installation context.
const ContextTaskName = "context"

// Options configures the standard installation sequence.
type Options struct {
	// Version is the root version id. Variants leave it empty and insert
	// their own root instead.
	Version  string
	Context  Context
	Platform Platform
	// Features enable metadata rules such as is_demo_user.
	Features map[string]bool

	Manifest *manifest.Manifest
	Mojang   *mojang.Client
	Session  *session.Session
	// ResourcesURL and LibrariesURL override the asset and fallback library
	// repositories.
	ResourcesURL string
	LibrariesURL string

	Workers    int
	MaxParents int
	Logger     *log.Logger
}

// NewBuilder returns a builder holding the standard tasks in order:
// context, metadata, libraries, assets, logger, jvm, jar, download and
// assets_finalize. Variants add their stages before calling Build.
func NewBuilder(opts Options) *task.Builder {
	var repo metadata.Repository = metadata.FileRepository{}
	if opts.Manifest != nil && opts.Mojang != nil {
		repo = &metadata.ManifestRepository{Manifest: opts.Manifest, Client: opts.Mojang}
	}
	var (
		assetFetcher  AssetIndexFetcher
		runtimeSource RuntimeSource
	)
	if opts.Mojang != nil {
		assetFetcher, runtimeSource = opts.Mojang, opts.Mojang
	}

	return task.NewBuilder().Add(
		contextTask{ctx: opts.Context, version: opts.Version, features: opts.Features},
		&metadata.Task{
			VersionsDir: opts.Context.VersionsDir(),
			Default:     repo,
			MaxParents:  opts.MaxParents,
			Logger:      opts.Logger,
		},
		&LibrariesTask{Platform: opts.Platform, Repository: opts.LibrariesURL},
		&AssetsTask{Fetcher: assetFetcher, ResourcesURL: opts.ResourcesURL},
		LoggerTask{},
		&JvmTask{Source: runtimeSource, Platform: opts.Platform, Logger: opts.Logger},
		JarTask{},
		&DownloadTask{Session: opts.Session, Workers: opts.Workers, Logger: opts.Logger},
		AssetsFinalizeTask{},
	)
}

// NewSequence builds the standard sequence with extra stages spliced in.
func NewSequence(opts Options, stages ...task.Stage) *task.Sequence {
	return NewBuilder(opts).Stage(stages...).Build()
}

// contextTask only seeds state, so the context survives a sequence reset.
type contextTask struct {
	ctx      Context
	version  string
	features map[string]bool
}

func (contextTask) Name() string { return ContextTaskName }

func (t contextTask) Setup(s *task.State) {
	ContextKey.Insert(s, t.ctx)
	if t.version != "" {
		metadata.RootKey.Insert(s, metadata.Root{ID: t.version})
	}
	if t.features != nil {
		FeaturesKey.Insert(s, t.features)
	}
}

func (contextTask) Execute(context.Context, *task.State, task.Watcher) error { return nil }
