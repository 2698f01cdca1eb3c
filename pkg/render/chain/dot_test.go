package chain

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/mcinstall/pkg/metadata"
)

func testChain() *metadata.Version {
	vanilla := &metadata.Version{
		ID: "1.20.1",
		Metadata: metadata.Document{
			"id":        "1.20.1",
			"type":      "release",
			"mainClass": "net.minecraft.client.main.Main",
			"libraries": []any{map[string]any{"name": "a:b:1"}, map[string]any{"name": "c:d:2"}},
		},
	}
	return &metadata.Version{
		ID:       "fabric-loader-0.14.22-1.20.1",
		Metadata: metadata.Document{"id": "fabric-loader-0.14.22-1.20.1", "inheritsFrom": "1.20.1"},
		Parent:   vanilla,
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testChain(), Options{})

	for _, want := range []string{
		"digraph G",
		`"fabric-loader-0.14.22-1.20.1" [label="fabric-loader-0.14.22-1.20.1", penwidth=2];`,
		`"1.20.1" [label="1.20.1"];`,
		`"fabric-loader-0.14.22-1.20.1" -> "1.20.1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	if strings.Count(dot, "->") != 1 {
		t.Errorf("ToDOT() edge count = %d, want 1", strings.Count(dot, "->"))
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testChain(), Options{Detailed: true})

	for _, want := range []string{"type: release", "main: net.minecraft.client.main.Main", "libraries: 2"} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() detailed output missing %q", want)
		}
	}
}

func TestToDOTSingle(t *testing.T) {
	dot := ToDOT(&metadata.Version{ID: "a1.0.4"}, Options{Detailed: true})
	if strings.Contains(dot, "->") {
		t.Error("ToDOT() of a single version has edges")
	}
	if !strings.Contains(dot, `label="a1.0.4"`) {
		t.Error("ToDOT() missing label for version without metadata")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testChain(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "not valid dot {{{"); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
