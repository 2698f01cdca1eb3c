// Package fabric installs Fabric and Quilt loader versions.
//
// Both loaders publish launcher profiles that inherit from a vanilla
// version. [InitTask] runs before the metadata task: it resolves the loader
// version, names the synthesized version <prefix>-<game>-<loader> and
// registers a [Repository] for that id, so the generic metadata resolution
// fetches the profile instead of looking the id up in the version manifest.
package fabric

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/integrations"
	fabricapi "github.com/matzehuels/mcinstall/pkg/integrations/fabric"
	"github.com/matzehuels/mcinstall/pkg/manifest"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/session"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// TaskName identifies [InitTask].
const TaskName = "fabric_init"

// Root requests a loader version. An empty LoaderVersion selects the latest
// loader for GameVersion.
type Root struct {
	API           fabricapi.API
	Prefix        string
	GameVersion   string
	LoaderVersion string
}

// NewRoot returns a root prefixed with the API name.
func NewRoot(api fabricapi.API, game, loader string) Root {
	return Root{API: api, Prefix: api.Name, GameVersion: game, LoaderVersion: loader}
}

// ID is the synthesized version id, known once the loader is resolved.
func (r Root) ID() string {
	return r.Prefix + "-" + r.GameVersion + "-" + r.LoaderVersion
}

// RootKey holds the requested [Root]. Without it [InitTask] does nothing.
var RootKey = task.NewKey[Root]("fabric.root")

// Loader is the part of the loader API the variant needs.
// [*fabricapi.Client] implements it.
type Loader interface {
	LatestLoader(ctx context.Context, game string, refresh bool) (string, error)
	Profile(ctx context.Context, game, loader string) ([]byte, error)
}

// InitTask resolves [RootKey] into a metadata root and repository override.
type InitTask struct {
	// Client returns the loader client for an API. Nil creates an uncached
	// client on the default session.
	Client func(api fabricapi.API) Loader
	// Manifest, when set, resolves "release" and "snapshot" game versions.
	Manifest *manifest.Manifest
	Logger   *log.Logger
}

// Stage places t before the metadata task.
func Stage(t *InitTask) task.Stage {
	return task.Before(metadata.TaskName, t)
}

func (t *InitTask) Name() string { return TaskName }

func (t *InitTask) Setup(*task.State) {}

func (t *InitTask) Execute(ctx context.Context, s *task.State, w task.Watcher) error {
	root, ok := RootKey.Get(s)
	if !ok {
		return nil
	}
	if t.Manifest != nil {
		id, alias, err := t.Manifest.ResolveAlias(ctx, root.GameVersion)
		if err != nil {
			return err
		}
		if alias {
			root.GameVersion = id
		}
	}

	client := t.client(root.API)
	if root.LoaderVersion == "" {
		w.OnEvent(event.LoaderResolve{Loader: root.API.Name, GameVersion: root.GameVersion})
		v, err := client.LatestLoader(ctx, root.GameVersion, false)
		if isNotFound(err) {
			return &metadata.VersionNotFoundError{ID: root.Prefix + "-" + root.GameVersion + "-???"}
		}
		if err != nil {
			return err
		}
		root.LoaderVersion = v
		w.OnEvent(event.LoaderResolve{Loader: root.API.Name, GameVersion: root.GameVersion, LoaderVersion: v})
	}

	id := root.ID()
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Debug("resolved loader", "loader", root.API.Name, "game", root.GameVersion, "version", root.LoaderVersion, "id", id)

	metadata.RootKey.Insert(s, metadata.Root{ID: id})
	repos, ok := metadata.RepositoriesKey.Get(s)
	if !ok {
		return &task.MissingStateError{Key: metadata.RepositoriesKey.Name()}
	}
	repos.Insert(id, &Repository{Client: client, GameVersion: root.GameVersion, LoaderVersion: root.LoaderVersion})
	return nil
}

func (t *InitTask) client(api fabricapi.API) Loader {
	if t.Client != nil {
		return t.Client(api)
	}
	return fabricapi.NewClient(api, nil, nil, nil, 0)
}

// Repository serves one synthesized loader version.
type Repository struct {
	Client        Loader
	GameVersion   string
	LoaderVersion string
}

// Load reads a previously written profile.
func (r *Repository) Load(_ context.Context, v *metadata.Version) (bool, error) {
	return v.ReadFile(), nil
}

// Fetch downloads the loader profile, renames it to v.ID and writes it to
// the version directory.
func (r *Repository) Fetch(ctx context.Context, v *metadata.Version) error {
	raw, err := r.Client.Profile(ctx, r.GameVersion, r.LoaderVersion)
	if isNotFound(err) {
		return &metadata.VersionNotFoundError{ID: v.ID}
	}
	if err != nil {
		return err
	}
	doc, err := metadata.Parse(raw)
	if err != nil {
		return err
	}
	doc["id"] = v.ID
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return v.WriteFile(data)
}

// isNotFound also accepts 400, which the loader APIs answer for unknown
// game versions.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, integrations.ErrNotFound) {
		return true
	}
	var se *session.Error
	return errors.As(err, &se) && se.Kind == session.KindStatus && se.Status == http.StatusBadRequest
}
