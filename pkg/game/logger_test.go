package game

import (
	"path/filepath"
	"testing"

	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
)

func TestLoggerTask(t *testing.T) {
	doc := `{"id":"1.20.1","logging":{"client":{"argument":"-Dlog4j.configurationFile=${path}","type":"log4j2-xml","file":{"id":"client-1.12.xml","sha1":"bd65e7d2e3c237be76cfbef4c2405033d7f91521","size":888,"url":"https://piston-data.mojang.com/v1/objects/bd65e7d2e3c237be76cfbef4c2405033d7f91521/client-1.12.xml"}}}}`
	s, gc := newState(t, "1.20.1", doc)
	tk := LoggerTask{}
	tk.Setup(s)

	if _, err := execute(t, tk, s); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	cfg, ok := LoggerConfigKey.Get(s)
	if !ok {
		t.Fatal("logger config not stored")
	}
	if want := filepath.Join(gc.AssetsDir(), "log_configs", "client-1.12.xml"); cfg.Path != want {
		t.Errorf("path = %q, want %q", cfg.Path, want)
	}
	if cfg.Argument != "-Dlog4j.configurationFile=${path}" {
		t.Errorf("argument = %q", cfg.Argument)
	}
	es := entries(s)
	if len(es) != 1 || es[0].Size != 888 || es[0].Dest != cfg.Path {
		t.Errorf("entries = %+v", es)
	}
}

func TestLoggerTaskAbsent(t *testing.T) {
	s, _ := newState(t, "b1.7.3", `{"id":"b1.7.3"}`)
	if _, err := execute(t, LoggerTask{}, s); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := LoggerConfigKey.Get(s); ok {
		t.Error("logger config stored for a version without one")
	}
}

func TestLoggerTaskUnsafeID(t *testing.T) {
	doc := `{"id":"x","logging":{"client":{"argument":"","file":{"id":"../../evil.xml","url":"https://example.com/evil.xml"}}}}`
	s, _ := newState(t, "x", doc)
	if _, err := execute(t, LoggerTask{}, s); !mcerrors.Is(err, mcerrors.ErrCodeInvalidMetadata) {
		t.Errorf("err = %v, want INVALID_METADATA", err)
	}
}
