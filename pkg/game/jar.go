package game

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/mcinstall/pkg/download"
	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/integrations/mojang"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// JarTaskName identifies [JarTask].
const JarTaskName = "jar"

// Jar is the client jar of the root version.
type Jar struct {
	Path string
}

// JarKey holds the resolved [Jar].
var JarKey = task.NewKey[Jar]("game.jar")

// JarNotFoundError reports a version with neither a client download nor a
// local jar.
type JarNotFoundError struct {
	ID string
}

func (e *JarNotFoundError) Error() string {
	return fmt.Sprintf("no client jar for version %s", e.ID)
}

func (e *JarNotFoundError) Code() mcerrors.Code { return mcerrors.ErrCodeJarNotFound }

// JarTask locates the client jar, enqueueing it when the metadata carries a
// download descriptor. The jar always lives in the root version directory.
type JarTask struct{}

func (JarTask) Name() string { return JarTaskName }

func (JarTask) Setup(s *task.State) {
	JarKey.Delete(s)
}

func (JarTask) Execute(_ context.Context, s *task.State, w task.Watcher) error {
	v, err := metadata.VersionKey.Require(s)
	if err != nil {
		return err
	}
	doc, err := metadata.MergedKey.Require(s)
	if err != nil {
		return err
	}

	w.OnEvent(event.ResolveBegin{Facet: event.FacetJar})
	jar := Jar{Path: v.JarFile()}
	var client mojang.Download
	found := false
	if dls, ok := doc.Map("downloads"); ok {
		if found, err = dls.Decode("client", &client); err != nil {
			return err
		}
	}
	switch {
	case found:
		downloads(s).AddVerified(download.Entry{
			URL:  client.URL,
			Dest: jar.Path,
			Size: client.Size,
			SHA1: client.SHA1,
			Name: v.ID + ".jar",
		})
	case isFile(jar.Path):
	default:
		return &JarNotFoundError{ID: v.ID}
	}

	JarKey.Insert(s, jar)
	w.OnEvent(event.JarFound{ID: v.ID, Path: jar.Path})
	w.OnEvent(event.ResolveEnd{Facet: event.FacetJar, Count: 1})
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
