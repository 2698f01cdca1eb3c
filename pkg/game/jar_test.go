package game

import (
	"errors"
	"reflect"
	"testing"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/metadata"
)

func TestJarTaskDownload(t *testing.T) {
	doc := `{"id":"1.20.1","downloads":{"client":{"sha1":"0c3ec587af28e5a785c0b4a7b8a30f9a8f78f838","size":23028853,"url":"https://piston-data.mojang.com/v1/objects/0c3ec587af28e5a785c0b4a7b8a30f9a8f78f838/client.jar"}}}`
	s, _ := newState(t, "1.20.1", doc)
	rec, err := execute(t, JarTask{}, s)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	v, _ := metadata.VersionKey.Get(s)
	jar, _ := JarKey.Get(s)
	if jar.Path != v.JarFile() {
		t.Errorf("jar = %q, want %q", jar.Path, v.JarFile())
	}
	es := entries(s)
	if len(es) != 1 || es[0].Size != 23028853 || es[0].Dest != jar.Path {
		t.Errorf("entries = %+v", es)
	}
	want := []event.Kind{event.KindResolveBegin, event.KindJarFound, event.KindResolveEnd}
	if got := rec.kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestJarTaskLocal(t *testing.T) {
	s, _ := newState(t, "custom", `{"id":"custom"}`)
	v, _ := metadata.VersionKey.Get(s)
	writeFile(t, v.JarFile(), "jar")

	if _, err := execute(t, JarTask{}, s); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n := len(entries(s)); n != 0 {
		t.Errorf("entries = %d, want 0", n)
	}
}

func TestJarTaskNotFound(t *testing.T) {
	s, _ := newState(t, "custom", `{"id":"custom"}`)
	_, err := execute(t, JarTask{}, s)
	var nf *JarNotFoundError
	if !errors.As(err, &nf) || nf.ID != "custom" {
		t.Fatalf("err = %v, want JarNotFoundError", err)
	}
	if !mcerrors.Is(err, mcerrors.ErrCodeJarNotFound) {
		t.Errorf("code = %s", mcerrors.GetCode(err))
	}
	if _, ok := JarKey.Get(s); ok {
		t.Error("jar stored after failure")
	}
}
