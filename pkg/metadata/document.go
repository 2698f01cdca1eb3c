package metadata

import (
	"encoding/json"
	"maps"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
)

// ParentKey is the field naming a document's parent.
const ParentKey = "inheritsFrom"

// Document is a decoded version metadata document. Values follow
// encoding/json's generic decoding: maps, []any, string, float64, bool.
type Document map[string]any

// Parse decodes a metadata document. The top level must be an object.
func Parse(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidMetadata, err, "decode metadata")
	}
	if d == nil {
		return nil, mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "metadata must be an object")
	}
	return d, nil
}

// ID returns the "id" field.
func (d Document) ID() string {
	s, _ := d.String("id")
	return s
}

// Parent returns the parent identifier, or "" for a root-most document.
func (d Document) Parent() (string, error) {
	v, ok := d[ParentKey]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "metadata: /%s must be a string", ParentKey)
	}
	return s, nil
}

// String returns a string field.
func (d Document) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// Map returns an object field.
func (d Document) Map(key string) (Document, bool) {
	switch m := d[key].(type) {
	case map[string]any:
		return Document(m), true
	case Document:
		return m, true
	}
	return nil, false
}

// List returns an array field.
func (d Document) List(key string) ([]any, bool) {
	l, ok := d[key].([]any)
	return l, ok
}

// Decode re-decodes field key into v. It reports false when the field is
// absent or null.
func (d Document) Decode(key string, v any) (bool, error) {
	raw, ok := d[key]
	if !ok || raw == nil {
		return false, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, mcerrors.Wrap(mcerrors.ErrCodeInvalidMetadata, err, "metadata: /%s", key)
	}
	return true, nil
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Document:
		return Document(cloneValue(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// Merge layers child over parent and returns a new document:
//
//   - scalars and mismatched types: the child's value wins
//   - lists: parent elements followed by child elements
//   - objects: merged key-wise with the same rules
//
// The child's parent reference is dropped. Neither input is modified.
func Merge(parent, child Document) Document {
	out := parent.Clone()
	if out == nil {
		out = Document{}
	}
	delete(out, ParentKey)
	for k, v := range child {
		if k == ParentKey {
			continue
		}
		out[k] = mergeValue(out[k], cloneValue(v))
	}
	return out
}

func mergeValue(parent, child any) any {
	switch c := child.(type) {
	case Document:
		return mergeValue(parent, map[string]any(c))
	case map[string]any:
		if p, ok := asMap(parent); ok {
			merged := maps.Clone(p)
			for k, v := range c {
				merged[k] = mergeValue(merged[k], v)
			}
			return merged
		}
	case []any:
		if p, ok := parent.([]any); ok {
			return append(append(make([]any, 0, len(p)+len(c)), p...), c...)
		}
	}
	return child
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Document:
		return t, true
	}
	return nil, false
}
