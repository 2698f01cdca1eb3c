package metadata

import (
	"iter"
	"os"
	"path/filepath"
)

// Version is one node of a resolved parent chain.
type Version struct {
	ID       string
	Dir      string // versions/<id>
	Metadata Document
	// Raw holds the bytes Metadata was decoded from, as read or fetched.
	Raw    []byte
	Parent *Version
}

// NewVersion returns an unloaded version rooted under versionsDir.
func NewVersion(versionsDir, id string) *Version {
	return &Version{ID: id, Dir: filepath.Join(versionsDir, id)}
}

// MetadataFile is versions/<id>/<id>.json.
func (v *Version) MetadataFile() string { return filepath.Join(v.Dir, v.ID+".json") }

// JarFile is versions/<id>/<id>.jar.
func (v *Version) JarFile() string { return filepath.Join(v.Dir, v.ID+".jar") }

// ReadFile loads the metadata file. It reports false when the file is
// missing or not a valid document.
func (v *Version) ReadFile() bool {
	raw, err := os.ReadFile(v.MetadataFile())
	if err != nil {
		return false
	}
	doc, err := Parse(raw)
	if err != nil {
		return false
	}
	v.Metadata, v.Raw = doc, raw
	return true
}

// WriteFile stores raw as the metadata file, verbatim, and decodes it into
// Metadata.
func (v *Version) WriteFile(raw []byte) error {
	doc, err := Parse(raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(v.Dir, 0o755); err != nil {
		return err
	}
	tmp := v.MetadataFile() + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, v.MetadataFile()); err != nil {
		return err
	}
	v.Metadata, v.Raw = doc, raw
	return nil
}

// Chain yields v and then each of its parents.
func (v *Version) Chain() iter.Seq[*Version] {
	return func(yield func(*Version) bool) {
		for cur := v; cur != nil; cur = cur.Parent {
			if !yield(cur) {
				return
			}
		}
	}
}

// IDs lists the chain identifiers, child first.
func (v *Version) IDs() []string {
	var ids []string
	for cur := range v.Chain() {
		ids = append(ids, cur.ID)
	}
	return ids
}

// Merge folds the chain from the root-most parent toward v.
func (v *Version) Merge() Document {
	var chain []*Version
	for cur := range v.Chain() {
		chain = append(chain, cur)
	}
	out := Document{}
	for i := len(chain) - 1; i >= 0; i-- {
		out = Merge(out, chain[i].Metadata)
	}
	return out
}
