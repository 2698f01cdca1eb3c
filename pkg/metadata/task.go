package metadata

import (
	"context"

	"github.com/charmbracelet/log"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// TaskName identifies [Task] in a sequence; variants splice before it.
const TaskName = "metadata"

// DefaultMaxParents bounds the parent chain.
const DefaultMaxParents = 10

// Root names the version to resolve.
type Root struct {
	ID string
}

// State keys written or read by [Task].
var (
	RootKey         = task.NewKey[Root]("metadata.root")
	RepositoriesKey = task.NewKey[*Repositories]("metadata.repositories")
	VersionKey      = task.NewKey[*Version]("metadata.version")
	MergedKey       = task.NewKey[Document]("metadata.merged")
)

// Task resolves [RootKey] and its parents, storing the root [Version] and
// the merged document.
type Task struct {
	VersionsDir string
	Default     Repository
	MaxParents  int // zero selects DefaultMaxParents
	Logger      *log.Logger
}

func (t *Task) Name() string { return TaskName }

// Setup installs a fresh repository mapping with the task's default.
func (t *Task) Setup(s *task.State) {
	RepositoriesKey.Insert(s, NewRepositories(t.Default))
}

func (t *Task) Execute(ctx context.Context, s *task.State, w task.Watcher) error {
	root, err := RootKey.Require(s)
	if err != nil {
		return err
	}
	repos, ok := RepositoriesKey.Get(s)
	if !ok {
		repos = NewRepositories(t.Default)
	}
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}

	top, err := t.Resolve(ctx, repos, root.ID, w)
	if err != nil {
		return err
	}
	merged := top.Merge()
	VersionKey.Insert(s, top)
	MergedKey.Insert(s, merged)
	logger.Debug("resolved metadata", "id", top.ID, "chain", top.IDs())
	return nil
}

// Resolve walks the parent chain of id and links the versions together.
// It does not touch the state, so it can be used outside a sequence.
func (t *Task) Resolve(ctx context.Context, repos *Repositories, id string, w task.Watcher) (*Version, error) {
	limit := t.MaxParents
	if limit <= 0 {
		limit = DefaultMaxParents
	}
	if w == nil {
		w = task.NopWatcher{}
	}

	var chain []*Version
	for id != "" {
		if len(chain) > limit {
			ids := make([]string, len(chain))
			for i, v := range chain {
				ids[i] = v.ID
			}
			return nil, &ChainTooDeepError{Chain: ids, Max: limit}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := mcerrors.ValidateVersionID(id); err != nil {
			return nil, err
		}

		w.OnEvent(event.VersionLoading{ID: id})
		v := NewVersion(t.VersionsDir, id)
		repo := repos.Get(id)
		loaded, err := repo.Load(ctx, v)
		if err != nil {
			return nil, err
		}
		if !loaded {
			w.OnEvent(event.VersionFetching{ID: id})
			if err := repo.Fetch(ctx, v); err != nil {
				return nil, err
			}
		}
		w.OnEvent(event.VersionLoaded{ID: id, Depth: len(chain)})

		if n := len(chain); n > 0 {
			chain[n-1].Parent = v
		}
		chain = append(chain, v)

		if id, err = v.Metadata.Parent(); err != nil {
			return nil, err
		}
	}
	if len(chain) == 0 {
		return nil, mcerrors.New(mcerrors.ErrCodeInvalidVersion, "version identifier cannot be empty")
	}
	return chain[0], nil
}
