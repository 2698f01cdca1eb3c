package game

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/mcinstall/pkg/download"
	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/integrations/mojang"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// LibrariesTaskName identifies [LibrariesTask].
const LibrariesTaskName = "libraries"

// Libraries lists the resolved library files, parents first.
type Libraries struct {
	ClassPath []string
	Natives   []string
	Excluded  []LibrarySpecifier
}

// LibraryPredicate decides whether a library is kept. It sees the specifier
// after the native classifier has been applied.
type LibraryPredicate func(LibrarySpecifier) bool

// LibrariesOptions tunes library resolution. Variants and callers may
// replace it before the task runs.
type LibrariesOptions struct {
	Predicates []LibraryPredicate
	// Fixes maps a specifier string to a replacement version. A fixed
	// library is always fetched from the fallback repository.
	Fixes map[string]string
}

// DefaultLibraryFixes replaces library versions known to be broken.
var DefaultLibraryFixes = map[string]string{
	"com.mojang:authlib:2.1.28": "2.2.30",
}

// State keys used by library resolution.
var (
	LibrariesKey        = task.NewKey[Libraries]("game.libraries")
	LibrariesOptionsKey = task.NewKey[*LibrariesOptions]("game.libraries.options")
	FeaturesKey         = task.NewKey[map[string]bool]("game.features")
)

// library is the metadata shape of one "libraries" element.
type library struct {
	Name      string            `json:"name"`
	URL       *string           `json:"url"`
	Rules     []Rule            `json:"rules"`
	Natives   map[string]string `json:"natives"`
	Downloads *struct {
		Artifact    *mojang.Download           `json:"artifact"`
		Classifiers map[string]mojang.Download `json:"classifiers"`
	} `json:"downloads"`
}

// LibrariesTask resolves the class path and native libraries of the merged
// metadata and enqueues the missing files.
type LibrariesTask struct {
	Platform   Platform
	Repository string // fallback repository, mojang.LibrariesURL when empty
}

func (t *LibrariesTask) Name() string { return LibrariesTaskName }

func (t *LibrariesTask) Setup(s *task.State) {
	fixes := make(map[string]string, len(DefaultLibraryFixes))
	for k, v := range DefaultLibraryFixes {
		fixes[k] = v
	}
	LibrariesOptionsKey.Insert(s, &LibrariesOptions{Fixes: fixes})
}

func (t *LibrariesTask) Execute(ctx context.Context, s *task.State, w task.Watcher) error {
	gc, err := ContextKey.Require(s)
	if err != nil {
		return err
	}
	doc, err := metadata.MergedKey.Require(s)
	if err != nil {
		return err
	}
	opts := LibrariesOptionsKey.GetOr(s, &LibrariesOptions{})
	features := FeaturesKey.GetOr(s, nil)

	var libs []library
	if _, err := doc.Decode("libraries", &libs); err != nil {
		return err
	}

	w.OnEvent(event.ResolveBegin{Facet: event.FacetLibraries})
	dl := downloads(s)
	var out Libraries
	for i, lib := range libs {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := t.resolve(i, lib, features, opts, gc.LibrariesDir())
		if err != nil {
			return err
		}
		switch r.kind {
		case libSkipped:
			continue
		case libExcluded:
			out.Excluded = append(out.Excluded, r.spec)
			continue
		case libNative:
			out.Natives = append(out.Natives, r.entry.Dest)
		default:
			out.ClassPath = append(out.ClassPath, r.entry.Dest)
		}
		// An empty URL keeps the path but leaves provisioning to the user.
		if r.entry.URL != "" {
			dl.AddVerified(r.entry)
		}
	}
	LibrariesKey.Insert(s, out)
	w.OnEvent(event.ResolveEnd{Facet: event.FacetLibraries, Count: len(out.ClassPath) + len(out.Natives)})
	return nil
}

type libKind int

const (
	libClass libKind = iota
	libNative
	libSkipped
	libExcluded
)

type resolvedLibrary struct {
	spec  LibrarySpecifier
	entry download.Entry
	kind  libKind
}

func (t *LibrariesTask) resolve(i int, lib library, features map[string]bool, opts *LibrariesOptions, dir string) (resolvedLibrary, error) {
	where := fmt.Sprintf("metadata: /libraries/%d", i)
	spec, err := ParseLibrarySpecifier(lib.Name)
	if err != nil {
		return resolvedLibrary{}, mcerrors.Wrap(mcerrors.ErrCodeInvalidMetadata, err, "%s/name", where)
	}
	if lib.Rules != nil {
		ok, err := t.Platform.Allows(lib.Rules, features)
		if err != nil {
			return resolvedLibrary{}, fmt.Errorf("%s/rules: %w", where, err)
		}
		if !ok {
			return resolvedLibrary{kind: libSkipped}, nil
		}
	}

	kind := libClass
	if lib.Natives != nil {
		classifier, ok := lib.Natives[t.Platform.OS]
		if !ok {
			return resolvedLibrary{kind: libSkipped}, nil
		}
		spec.Classifier = strings.ReplaceAll(classifier, "${arch}", strconv.Itoa(t.Platform.Bits))
		kind = libNative
	}

	for _, keep := range opts.Predicates {
		if !keep(spec) {
			return resolvedLibrary{spec: spec, kind: libExcluded}, nil
		}
	}

	fixed := false
	if v, ok := opts.Fixes[spec.String()]; ok {
		spec.Version = v
		fixed = true
	}

	rel := spec.FilePath()
	entry := download.Entry{Dest: filepath.Join(dir, filepath.FromSlash(rel)), Name: spec.String()}

	var d *mojang.Download
	if lib.Downloads != nil && !fixed {
		if kind == libNative {
			if c, ok := lib.Downloads.Classifiers[spec.Classifier]; ok {
				d = &c
			}
		} else {
			d = lib.Downloads.Artifact
		}
	}
	if d != nil {
		entry.URL, entry.Size, entry.SHA1 = d.URL, d.Size, d.SHA1
	} else {
		repo := t.Repository
		if repo == "" {
			repo = mojang.LibrariesURL
		}
		if lib.URL != nil {
			repo = *lib.URL
		}
		if repo != "" {
			entry.URL = strings.TrimSuffix(repo, "/") + "/" + rel
		}
	}
	return resolvedLibrary{spec: spec, entry: entry, kind: kind}, nil
}
