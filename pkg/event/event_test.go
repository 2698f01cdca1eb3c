package event

import (
	"strings"
	"testing"
)

func TestKindsCoverEveryEvent(t *testing.T) {
	events := []Event{
		VersionLoading{}, VersionFetching{}, VersionLoaded{},
		LoaderResolve{},
		ResolveBegin{}, ResolveEnd{},
		JarFound{},
		JvmLoading{}, JvmLoaded{},
		DownloadStart{}, DownloadProgress{}, DownloadComplete{},
	}
	if len(events) != len(Kinds) {
		t.Fatalf("got %d events, %d kinds", len(events), len(Kinds))
	}
	for i, ev := range events {
		if ev.Kind() != Kinds[i] {
			t.Errorf("event %d kind = %q, want %q", i, ev.Kind(), Kinds[i])
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{VersionFetching{ID: "1.20.1"}, "fetching version 1.20.1"},
		{ResolveEnd{Facet: FacetLibraries, Count: 42}, "resolved 42 libraries"},
		{LoaderResolve{Loader: "fabric", GameVersion: "1.20.1"}, "resolving fabric loader"},
		{LoaderResolve{Loader: "fabric", GameVersion: "1.20.1", LoaderVersion: "0.14.21"}, "loader 0.14.21"},
		{DownloadStart{Entries: 3, Bytes: 10, Workers: 2}, "3 files"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ev.Kind()), func(t *testing.T) {
			if got := Describe(tt.ev); !strings.Contains(got, tt.want) {
				t.Errorf("Describe() = %q, want substring %q", got, tt.want)
			}
		})
	}
}
