package game

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Platform describes the host in the vocabulary of version metadata rules.
type Platform struct {
	OS      string // linux, windows, osx, freebsd
	Arch    string // x86, x86_64, arm64, arm32
	Bits    int
	Version string // kernel or OS version matched by rule regexes
	Libc    string // glibc or musl on Linux, empty elsewhere
}

var goosNames = map[string]string{
	"linux":   "linux",
	"windows": "windows",
	"darwin":  "osx",
	"freebsd": "freebsd",
}

var goarchNames = map[string]string{
	"386":   "x86",
	"amd64": "x86_64",
	"arm64": "arm64",
	"arm":   "arm32",
}

// CurrentPlatform inspects the running host.
func CurrentPlatform() Platform {
	p := Platform{
		OS:   goosNames[runtime.GOOS],
		Arch: goarchNames[runtime.GOARCH],
		Bits: strconv.IntSize,
	}
	if runtime.GOOS == "linux" {
		if raw, err := os.ReadFile("/proc/sys/kernel/osrelease"); err == nil {
			p.Version = strings.TrimSpace(string(raw))
		}
		p.Libc = "glibc"
		if m, _ := filepath.Glob("/lib/ld-musl-*.so.1"); len(m) > 0 {
			p.Libc = "musl"
		}
	}
	return p
}

// jvmKeys maps (os, arch) to the runtime catalogue's platform key.
var jvmKeys = map[[2]string]string{
	{"osx", "x86_64"}:     "mac-os",
	{"osx", "arm64"}:      "mac-os-arm64",
	{"linux", "x86"}:      "linux-i386",
	{"linux", "x86_64"}:   "linux",
	{"windows", "x86"}:    "windows-x86",
	{"windows", "x86_64"}: "windows-x64",
	{"windows", "arm64"}:  "windows-arm64",
}

// JvmKey returns the runtime catalogue key, or "" when Mojang publishes no
// runtime for this platform.
func (p Platform) JvmKey() string {
	return jvmKeys[[2]string{p.OS, p.Arch}]
}

// JavaBinary is the launcher executable name inside a runtime's bin dir.
func (p Platform) JavaBinary() string {
	if p.OS == "windows" {
		return "javaw.exe"
	}
	return "java"
}
