package download

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// Entry is one file to download.
type Entry struct {
	URL  string
	Dest string
	// Size is the expected byte size; zero means unknown.
	Size int64
	// SHA1 is the expected lowercase hex digest; empty means unchecked.
	SHA1 string
	// Name is a human-readable label; the URL is used when empty.
	Name string
	// Executable marks files that need the executable bit once in place.
	Executable bool
}

// Label returns the entry's name, or its URL when unnamed.
func (e Entry) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.URL
}

// List accumulates entries for one download run. The zero value is ready
// to use.
type List struct {
	entries []Entry
	seen    map[Entry]struct{}
	size    int64
}

// Add appends e. An entry identical to one already in the list is ignored.
func (l *List) Add(e Entry) {
	if l.seen == nil {
		l.seen = make(map[Entry]struct{})
	}
	if _, dup := l.seen[e]; dup {
		return
	}
	l.seen[e] = struct{}{}
	l.entries = append(l.entries, e)
	l.size += e.Size
}

// AddVerified adds e unless its destination already holds the expected
// content, and reports whether it was added.
func (l *List) AddVerified(e Entry) bool {
	if Verify(e.Dest, e.Size, e.SHA1) {
		return false
	}
	l.Add(e)
	return true
}

// Len returns the number of entries.
func (l *List) Len() int {
	return len(l.entries)
}

// Size returns the sum of the known entry sizes.
func (l *List) Size() int64 {
	return l.size
}

// Entries returns a copy of the entries in insertion order.
func (l *List) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Reset empties the list.
func (l *List) Reset() {
	l.entries = nil
	l.seen = nil
	l.size = 0
}

// Verify reports whether path is a regular file matching size and sha1.
// Zero size and empty sha1 are not checked.
func Verify(path string, size int64, sum string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if size > 0 && info.Size() != size {
		return false
	}
	if sum == "" {
		return true
	}
	got, err := FileSHA1(path)
	return err == nil && strings.EqualFold(got, sum)
}

// FileSHA1 returns the hex SHA-1 of a file.
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
