package game

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/mcinstall/pkg/download"
	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/integrations/mojang"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// Task names of the asset steps.
const (
	AssetsTaskName         = "assets"
	AssetsFinalizeTaskName = "assets_finalize"
)

// Assets describes the resolved asset index.
type Assets struct {
	Index   string
	Objects map[string]string // asset name → object file
	// VirtualDir and ResourcesDir are set for legacy indexes whose objects
	// must also be copied under their names.
	VirtualDir   string
	ResourcesDir string
}

// AssetsKey holds the [Assets] of the installation, absent when the
// metadata declares no asset index.
var AssetsKey = task.NewKey[Assets]("game.assets")

// AssetIndexFetcher downloads asset index documents.
type AssetIndexFetcher interface {
	FetchAssetIndex(ctx context.Context, url string) ([]byte, error)
}

type assetIndex struct {
	MapToResources bool `json:"map_to_resources"`
	Virtual        bool `json:"virtual"`
	Objects        map[string]struct {
		Hash string `json:"hash"`
		Size int64  `json:"size"`
	} `json:"objects"`
}

// AssetsTask resolves the asset index and enqueues missing objects.
type AssetsTask struct {
	Fetcher      AssetIndexFetcher
	ResourcesURL string // mojang.ResourcesURL when empty
}

func (t *AssetsTask) Name() string { return AssetsTaskName }

func (t *AssetsTask) Setup(s *task.State) {
	AssetsKey.Delete(s)
}

func (t *AssetsTask) Execute(ctx context.Context, s *task.State, w task.Watcher) error {
	gc, err := ContextKey.Require(s)
	if err != nil {
		return err
	}
	doc, err := metadata.MergedKey.Require(s)
	if err != nil {
		return err
	}

	// Custom versions may ship their own assets and omit the index.
	info, ok := doc.Map("assetIndex")
	if !ok {
		return nil
	}
	version, ok := doc.String("assets")
	if !ok {
		if version, ok = info.String("id"); !ok {
			return nil
		}
	}

	w.OnEvent(event.ResolveBegin{Facet: event.FacetAssets})
	idx, err := t.loadIndex(ctx, gc, version, info)
	if err != nil {
		return err
	}

	objectsDir := filepath.Join(gc.AssetsDir(), "objects")
	dl := downloads(s)
	out := Assets{Index: version, Objects: make(map[string]string, len(idx.Objects))}
	for name, obj := range idx.Objects {
		if len(obj.Hash) < 2 {
			return mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "assets index: /objects/%s/hash is invalid", name)
		}
		dest := filepath.Join(objectsDir, obj.Hash[:2], obj.Hash)
		out.Objects[name] = dest
		dl.AddVerified(download.Entry{
			URL:  mojang.AssetURL(t.ResourcesURL, obj.Hash),
			Dest: dest,
			Size: obj.Size,
			SHA1: obj.Hash,
			Name: name,
		})
	}
	if idx.Virtual {
		out.VirtualDir = filepath.Join(gc.AssetsDir(), "virtual", version)
	}
	if idx.MapToResources {
		out.ResourcesDir = filepath.Join(gc.WorkDir, "resources")
	}
	AssetsKey.Insert(s, out)
	w.OnEvent(event.ResolveEnd{Facet: event.FacetAssets, Count: len(out.Objects)})
	return nil
}

// loadIndex reads the local index, fetching and storing it when the file is
// missing or unreadable.
func (t *AssetsTask) loadIndex(ctx context.Context, gc Context, version string, info metadata.Document) (*assetIndex, error) {
	file := filepath.Join(gc.AssetsDir(), "indexes", version+".json")
	var idx assetIndex
	if raw, err := os.ReadFile(file); err == nil && json.Unmarshal(raw, &idx) == nil {
		return &idx, nil
	}

	url, ok := info.String("url")
	if !ok {
		return nil, mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "metadata: /assetIndex/url must be a string")
	}
	if t.Fetcher == nil {
		return nil, fmt.Errorf("asset index %s: no fetcher configured", version)
	}
	raw, err := t.Fetcher.FetchAssetIndex(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("asset index %s: %w", version, err)
	}
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidMetadata, err, "assets index %s", version)
	}
	if err := writeFileAtomic(file, raw); err != nil {
		return nil, err
	}
	return &idx, nil
}

// AssetsFinalizeTask copies objects into the legacy virtual and resources
// directories once they are downloaded.
type AssetsFinalizeTask struct{}

func (AssetsFinalizeTask) Name() string { return AssetsFinalizeTaskName }

func (AssetsFinalizeTask) Setup(*task.State) {}

func (AssetsFinalizeTask) Execute(ctx context.Context, s *task.State, _ task.Watcher) error {
	assets, ok := AssetsKey.Get(s)
	if !ok {
		return nil
	}
	for _, dir := range []string{assets.VirtualDir, assets.ResourcesDir} {
		if dir == "" {
			continue
		}
		for name, src := range assets.Objects {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := copyFile(src, filepath.Join(dir, filepath.FromSlash(name))); err != nil {
				return fmt.Errorf("finalize asset %s: %w", name, err)
			}
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
