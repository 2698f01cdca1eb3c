package game

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mcinstall/pkg/download"
	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/integrations/mojang"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// JvmTaskName identifies [JvmTask].
const JvmTaskName = "jvm"

// DefaultJvmComponent is used when the metadata names no runtime component.
const DefaultJvmComponent = "jre-legacy"

// Reasons carried by [JvmNotFoundError].
const (
	JvmUnsupportedLibc       = "unsupported_libc"
	JvmUnsupportedArch       = "unsupported_arch"
	JvmUnsupportedVersion    = "unsupported_version"
	JvmBuiltinInvalidVersion = "builtin_invalid_version"
)

// Jvm is the Java executable used to run the game. Insert one before the
// sequence runs to skip runtime resolution.
type Jvm struct {
	Executable string
	Version    string
	Component  string // empty for a system JVM
}

// JvmKey holds the resolved [Jvm].
var JvmKey = task.NewKey[Jvm]("game.jvm")

// JvmNotFoundError reports that no runtime could be provided.
type JvmNotFoundError struct {
	Reason string
}

func (e *JvmNotFoundError) Error() string {
	return "no suitable JVM found: " + e.Reason
}

func (e *JvmNotFoundError) Code() mcerrors.Code { return mcerrors.ErrCodeJvmNotFound }

// RuntimeSource provides the Mojang runtime catalogue. *mojang.Client
// implements it.
type RuntimeSource interface {
	FetchRuntimes(ctx context.Context, refresh bool) (mojang.Runtimes, error)
	FetchRuntimeManifest(ctx context.Context, rt mojang.Runtime, refresh bool) (*mojang.RuntimeManifest, error)
}

type javaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// JvmTask resolves the runtime requested by the metadata and enqueues its
// files. When Mojang publishes no runtime for the host it falls back to a
// java executable on PATH of the required major version.
type JvmTask struct {
	Source   RuntimeSource
	Platform Platform
	// LookPath and VersionOutput locate and query a system JVM. Nil selects
	// exec.LookPath and running "java -version".
	LookPath      func(file string) (string, error)
	VersionOutput func(ctx context.Context, exe string) (string, error)
	Logger        *log.Logger
}

func (t *JvmTask) Name() string { return JvmTaskName }

func (t *JvmTask) Setup(*task.State) {}

func (t *JvmTask) Execute(ctx context.Context, s *task.State, w task.Watcher) error {
	if _, ok := JvmKey.Get(s); ok {
		return nil
	}
	gc, err := ContextKey.Require(s)
	if err != nil {
		return err
	}
	doc, err := metadata.MergedKey.Require(s)
	if err != nil {
		return err
	}
	jv := javaVersion{Component: DefaultJvmComponent}
	if _, err := doc.Decode("javaVersion", &jv); err != nil {
		return err
	}
	if jv.Component == "" {
		jv.Component = DefaultJvmComponent
	}
	if filepath.Base(jv.Component) != jv.Component {
		return mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "metadata: /javaVersion/component %q is invalid", jv.Component)
	}

	w.OnEvent(event.ResolveBegin{Facet: event.FacetJvm})
	w.OnEvent(event.JvmLoading{Component: jv.Component})

	var (
		jvm   Jvm
		count int
	)
	if t.Platform.OS == "linux" && t.Platform.Libc != "" && t.Platform.Libc != "glibc" {
		jvm, err = t.builtin(ctx, JvmUnsupportedLibc, jv.MajorVersion)
	} else {
		jvm, count, err = t.runtime(ctx, s, gc, jv)
	}
	if err != nil {
		return err
	}

	t.logger().Debug("resolved jvm", "component", jvm.Component, "version", jvm.Version, "path", jvm.Executable)
	JvmKey.Insert(s, jvm)
	w.OnEvent(event.JvmLoaded{Component: jv.Component, Version: jvm.Version, Path: jvm.Executable})
	w.OnEvent(event.ResolveEnd{Facet: event.FacetJvm, Count: count})
	return nil
}

func (t *JvmTask) logger() *log.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return log.Default()
}

// runtime resolves a Mojang runtime, reusing jvm/<component>.json when it is
// readable.
func (t *JvmTask) runtime(ctx context.Context, s *task.State, gc Context, jv javaVersion) (Jvm, int, error) {
	file := filepath.Join(gc.JvmDir(), jv.Component+".json")
	var m mojang.RuntimeManifest
	raw, err := os.ReadFile(file)
	if err != nil || json.Unmarshal(raw, &m) != nil || m.Files == nil {
		if t.Source == nil {
			return Jvm{}, 0, fmt.Errorf("jvm %s: no runtime source configured", jv.Component)
		}
		runtimes, err := t.Source.FetchRuntimes(ctx, false)
		if err != nil {
			return Jvm{}, 0, fmt.Errorf("jvm runtimes: %w", err)
		}
		key := t.Platform.JvmKey()
		if _, ok := runtimes[key]; key == "" || !ok {
			jvm, err := t.builtin(ctx, JvmUnsupportedArch, jv.MajorVersion)
			return jvm, 0, err
		}
		rt, ok := runtimes.Lookup(key, jv.Component)
		if !ok {
			jvm, err := t.builtin(ctx, JvmUnsupportedVersion, jv.MajorVersion)
			return jvm, 0, err
		}
		fetched, err := t.Source.FetchRuntimeManifest(ctx, rt, false)
		if err != nil {
			return Jvm{}, 0, fmt.Errorf("jvm %s: %w", jv.Component, err)
		}
		m = *fetched
		data, err := json.Marshal(&m)
		if err != nil {
			return Jvm{}, 0, err
		}
		if err := writeFileAtomic(file, data); err != nil {
			return Jvm{}, 0, err
		}
	}

	dir := filepath.Join(gc.JvmDir(), jv.Component)
	dl := downloads(s)
	count := 0
	for name, f := range m.Files {
		if f.Type != "file" {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return Jvm{}, 0, mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "jvm manifest: file %q escapes the runtime directory", name)
		}
		d, ok := f.Downloads["raw"]
		if !ok {
			return Jvm{}, 0, mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "jvm manifest: /files/%s/downloads/raw is missing", name)
		}
		dl.AddVerified(download.Entry{
			URL:        d.URL,
			Dest:       filepath.Join(dir, filepath.FromSlash(name)),
			Size:       d.Size,
			SHA1:       d.SHA1,
			Name:       name,
			Executable: f.Executable,
		})
		count++
	}
	return Jvm{
		Executable: filepath.Join(dir, filepath.FromSlash(javaPath(m, t.Platform.JavaBinary()))),
		Version:    m.Version,
		Component:  jv.Component,
	}, count, nil
}

// javaPath finds the launcher inside a runtime. macOS runtimes nest it in a
// bundle, so the shortest */bin/<binary> path wins over the bin/ default.
func javaPath(m mojang.RuntimeManifest, binary string) string {
	best := path.Join("bin", binary)
	found := false
	for name, f := range m.Files {
		if f.Type != "file" || path.Base(name) != binary || path.Base(path.Dir(name)) != "bin" {
			continue
		}
		if !found || len(name) < len(best) {
			best, found = name, true
		}
	}
	return best
}

// builtin falls back to a system JVM. Without a known major version there
// is nothing to check it against.
func (t *JvmTask) builtin(ctx context.Context, reason string, major int) (Jvm, error) {
	if major <= 0 {
		return Jvm{}, &JvmNotFoundError{Reason: reason}
	}
	lookPath := t.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	exe, err := lookPath(t.Platform.JavaBinary())
	if err != nil {
		return Jvm{}, &JvmNotFoundError{Reason: reason}
	}
	versionOutput := t.VersionOutput
	if versionOutput == nil {
		versionOutput = javaVersionOutput
	}
	out, err := versionOutput(ctx, exe)
	if err != nil {
		return Jvm{}, &JvmNotFoundError{Reason: JvmBuiltinInvalidVersion}
	}
	version, ok := ParseJavaVersion(out, major)
	if !ok {
		return Jvm{}, &JvmNotFoundError{Reason: JvmBuiltinInvalidVersion}
	}
	t.logger().Warn("using system JVM", "reason", reason, "path", exe, "version", version)
	return Jvm{Executable: exe, Version: version}, nil
}

// ParseJavaVersion extracts the version matching major from "java -version"
// output. Java 8 and older report themselves as 1.<major>.
func ParseJavaVersion(out string, major int) (string, bool) {
	prefix := strconv.Itoa(major)
	if major <= 8 {
		prefix = "1." + prefix
	}
	i := strings.Index(out, `"`+prefix)
	if i >= 0 {
		i++
	} else if i = strings.Index(out, prefix); i < 0 {
		return "", false
	}
	end := i
	for end < len(out) && (out[end] == '.' || out[end] == '_' || (out[end] >= '0' && out[end] <= '9')) {
		end++
	}
	return out[i:end], true
}

func javaVersionOutput(ctx context.Context, exe string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, exe, "-version").CombinedOutput()
	return string(out), err
}
