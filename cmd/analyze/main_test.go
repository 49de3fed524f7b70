package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/progression"
)

func TestLandmarkRouteDetour(t *testing.T) {
	tests := []struct {
		route    LandmarkRoute
		expected int
	}{
		{LandmarkRoute{Distance: 3, PathLength: 3}, 0},
		{LandmarkRoute{Distance: 3, PathLength: 7}, 4},
		{LandmarkRoute{Distance: 3}, 0},
	}

	for _, test := range tests {
		if got := test.route.Detour(); got != test.expected {
			t.Errorf("Detour() of %+v = %d, expected %d", test.route, got, test.expected)
		}
	}
}

func TestFillRatio(t *testing.T) {
	a := Analysis{GridSize: engine.GridSize{Rows: 2, Cols: 4}, Tiles: 6}
	if got := a.FillRatio(); got != 0.75 {
		t.Errorf("FillRatio() = %v, expected 0.75", got)
	}
	if got := (Analysis{}).FillRatio(); got != 0 {
		t.Errorf("FillRatio() of empty grid = %v, expected 0", got)
	}
}

func TestAnalyzeLevel(t *testing.T) {
	a, err := analyzeLevel(progression.FallbackLevel())
	if err != nil {
		t.Fatalf("analyzeLevel failed: %v", err)
	}

	if a.Name != "fallback" || a.Tiles != 4 {
		t.Errorf("unexpected summary %+v", a)
	}
	if a.Rotatable != 2 || a.Unsolved != 2 || a.MinimumRotations != 2 {
		t.Errorf("Expected 2 rotatable, 2 scrambled, 2 rotations; got %d, %d, %d", a.Rotatable, a.Unsolved, a.MinimumRotations)
	}
	if a.Shapes[engine.Straight] != 2 || a.RoadTypes[engine.Landmark] != 1 {
		t.Errorf("unexpected tile mix %v %v", a.Shapes, a.RoadTypes)
	}
	if a.StartConnected != 0 {
		t.Errorf("Expected no landmark connected at start, got %d", a.StartConnected)
	}

	if len(a.Routes) != 1 {
		t.Fatalf("Expected 1 landmark route, got %d", len(a.Routes))
	}
	route := a.Routes[0]
	if route.Distance != 3 || route.PathLength != 3 || route.Detour() != 0 {
		t.Errorf("unexpected route %+v", route)
	}
}

func TestPrintAnalysis(t *testing.T) {
	a, err := analyzeLevel(progression.FallbackLevel())
	if err != nil {
		t.Fatalf("analyzeLevel failed: %v", err)
	}

	var buf bytes.Buffer
	printAnalysis(&buf, a)
	out := buf.String()

	for _, want := range []string{
		"Name: fallback",
		"Grid Size: 1 x 4 (4 tiles, 100% filled)",
		"straight=2",
		"minimum rotations: 2",
		"0/1 landmarks connected",
		"diner at (0,0): 3 from turnpike, route 3 (detour 0)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	data, err := engine.EncodeLevel(progression.FallbackLevel(), ".json")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "starter.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	analyzeFile(&buf, path)
	if !strings.Contains(buf.String(), "Name: fallback") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	analyzeFile(&buf, filepath.Join(dir, "missing.json"))
	if !strings.Contains(buf.String(), "Error loading level") {
		t.Errorf("Expected load error, got:\n%s", buf.String())
	}
}
