package metadata

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/matzehuels/mcinstall/pkg/manifest"
)

// Repository loads and fetches version metadata.
type Repository interface {
	// Load fills v from local storage. It reports false when v must be
	// fetched, for example because the file is missing or outdated.
	Load(ctx context.Context, v *Version) (bool, error)
	// Fetch obtains v remotely and persists it.
	Fetch(ctx context.Context, v *Version) error
}

// FileRepository only knows versions already on disk.
type FileRepository struct{}

func (FileRepository) Load(_ context.Context, v *Version) (bool, error) {
	return v.ReadFile(), nil
}

func (FileRepository) Fetch(_ context.Context, v *Version) error {
	return &VersionNotFoundError{ID: v.ID}
}

// Repositories maps identifiers to the repository responsible for them.
// Variants insert overrides for the versions they synthesize.
type Repositories struct {
	Default   Repository
	overrides map[string]Repository
}

// NewRepositories returns a mapping with def as fallback. A nil def
// selects [FileRepository].
func NewRepositories(def Repository) *Repositories {
	if def == nil {
		def = FileRepository{}
	}
	return &Repositories{Default: def, overrides: make(map[string]Repository)}
}

// Get returns the repository for id.
func (r *Repositories) Get(id string) Repository {
	if repo, ok := r.overrides[id]; ok {
		return repo
	}
	return r.Default
}

// Insert routes id to repo.
func (r *Repositories) Insert(id string, repo Repository) {
	if r.overrides == nil {
		r.overrides = make(map[string]Repository)
	}
	r.overrides[id] = repo
}

// VersionFetcher downloads a version document verbatim.
// [*mojang.Client] implements it.
type VersionFetcher interface {
	FetchVersion(ctx context.Context, url string) ([]byte, error)
}

// ManifestRepository resolves versions through the version manifest.
type ManifestRepository struct {
	Manifest *manifest.Manifest
	Client   VersionFetcher
}

// Load reads the local file and checks it against the manifest digest.
// When the manifest cannot be consulted the local file is trusted, so
// installed versions keep working offline.
func (r *ManifestRepository) Load(ctx context.Context, v *Version) (bool, error) {
	if !v.ReadFile() {
		return false, nil
	}
	e, found, err := r.Manifest.Get(ctx, v.ID)
	if err != nil || !found || e.SHA1 == "" {
		return true, nil
	}
	sum := sha1.Sum(v.Raw)
	return hex.EncodeToString(sum[:]) == e.SHA1, nil
}

// Fetch downloads the document listed in the manifest and writes it to the
// version directory byte for byte.
func (r *ManifestRepository) Fetch(ctx context.Context, v *Version) error {
	e, found, err := r.Manifest.Get(ctx, v.ID)
	if err != nil {
		return err
	}
	if !found {
		return &VersionNotFoundError{ID: v.ID}
	}
	raw, err := r.Client.FetchVersion(ctx, e.URL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", v.ID, err)
	}
	return v.WriteFile(raw)
}
