package task

import "fmt"

// State is a typed store shared by the tasks of a sequence.
// It is not safe for concurrent use; a sequence runs one task at a time.
type State struct {
	values map[string]any
}

// NewState returns an empty state.
func NewState() *State {
	return &State{values: make(map[string]any)}
}

// Clear removes every value.
func (s *State) Clear() {
	clear(s.values)
}

// Len returns the number of stored values.
func (s *State) Len() int {
	return len(s.values)
}

// Has reports whether a value is stored under the named key.
func (s *State) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Names returns the names of the keys holding a value, in no particular order.
func (s *State) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	return names
}

// Key identifies one slot of a [State] and the type stored in it.
// Two keys with the same name address the same slot, so names must be unique
// per type across the program; a package-qualified name is the convention.
type Key[T any] struct {
	name string
}

// NewKey declares a key. It is meant for package-level variables.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key's tag.
func (k Key[T]) Name() string {
	return k.name
}

// Get returns the stored value and whether it was present.
// A value of a different type stored under the same name is reported absent.
func (k Key[T]) Get(s *State) (T, bool) {
	v, ok := s.values[k.name].(T)
	return v, ok
}

// Insert stores v, replacing any previous value for the key.
func (k Key[T]) Insert(s *State, v T) {
	s.values[k.name] = v
}

// Delete removes the value for the key, if any.
func (k Key[T]) Delete(s *State) {
	delete(s.values, k.name)
}

// GetOr returns the stored value, or def when absent.
func (k Key[T]) GetOr(s *State, def T) T {
	if v, ok := k.Get(s); ok {
		return v
	}
	return def
}

// Require returns the stored value or a [MissingStateError].
func (k Key[T]) Require(s *State) (T, error) {
	v, ok := k.Get(s)
	if !ok {
		return v, &MissingStateError{Key: k.name}
	}
	return v, nil
}

// MissingStateError reports a required state value that no earlier task or
// setup provided. It indicates a misassembled sequence.
type MissingStateError struct {
	Key string
}

func (e *MissingStateError) Error() string {
	return fmt.Sprintf("missing state %q", e.Key)
}
