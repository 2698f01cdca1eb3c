package game

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// Context is the directory layout of an installation. MainDir holds shared
// content (versions, assets, libraries, runtimes); WorkDir is where the game
// runs and keeps saves.
type Context struct {
	MainDir string
	WorkDir string
}

// ContextKey holds the installation [Context].
var ContextKey = task.NewKey[Context]("game.context")

// DefaultMainDir returns the platform's conventional game directory.
func DefaultMainDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", ".minecraft"), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "minecraft"), nil
	}
	return filepath.Join(home, ".minecraft"), nil
}

// NewContext returns a context. An empty mainDir selects [DefaultMainDir]
// and an empty workDir follows mainDir.
func NewContext(mainDir, workDir string) (Context, error) {
	if mainDir == "" {
		d, err := DefaultMainDir()
		if err != nil {
			return Context{}, err
		}
		mainDir = d
	}
	if workDir == "" {
		workDir = mainDir
	}
	return Context{MainDir: mainDir, WorkDir: workDir}, nil
}

func (c Context) VersionsDir() string  { return filepath.Join(c.MainDir, "versions") }
func (c Context) AssetsDir() string    { return filepath.Join(c.MainDir, "assets") }
func (c Context) LibrariesDir() string { return filepath.Join(c.MainDir, "libraries") }
func (c Context) JvmDir() string       { return filepath.Join(c.MainDir, "jvm") }
func (c Context) BinDir() string       { return filepath.Join(c.WorkDir, "bin") }

// Version returns the unloaded version id of this installation.
func (c Context) Version(id string) *metadata.Version {
	return metadata.NewVersion(c.VersionsDir(), id)
}

// InstalledVersions lists the version directories holding a metadata file.
func (c Context) InstalledVersions() ([]string, error) {
	entries, err := os.ReadDir(c.VersionsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(c.Version(e.Name()).MetadataFile()); err == nil {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}
