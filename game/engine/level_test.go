package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLevel(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *Level)
	}{
		{"missing name", func(l *Level) { l.Name = "" }},
		{"rows too large", func(l *Level) { l.GridSize.Rows = MaxGridSize + 1 }},
		{"cols zero", func(l *Level) { l.GridSize.Cols = 0 }},
		{"tile out of bounds", func(l *Level) { l.Tiles[1].Col = 9 }},
		{"duplicate tile", func(l *Level) { l.Tiles[2].Col = 1 }},
		{"bad rotation", func(l *Level) { l.Tiles[1].Rotation = 45 }},
		{"bad solution rotation", func(l *Level) { l.Tiles[1].SolutionRotation = 360 }},
		{"unknown shape", func(l *Level) { l.Tiles[1].Shape = TileShape(99) }},
		{"no turnpike", func(l *Level) { l.Tiles = l.Tiles[:3]; l.SolutionPaths = nil }},
		{"no landmark", func(l *Level) { l.Tiles = l.Tiles[1:]; l.SolutionPaths = nil }},
		{"rotatable turnpike", func(l *Level) { l.Tiles[3].Rotatable = true }},
		{"fixed tile off its solution", func(l *Level) { l.Tiles[0].Rotation = 90 }},
		{"short solution path", func(l *Level) { l.SolutionPaths[0].Path = l.SolutionPaths[0].Path[:1] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := straightRunLevel()
			tt.mutate(level)
			assert.ErrorIs(t, ValidateLevel(level), ErrInvalidLevel)
		})
	}

	assert.NoError(t, ValidateLevel(straightRunLevel()))
	assert.ErrorIs(t, ValidateLevel(nil), ErrInvalidLevel)
}

func TestLevelEncodeDecode(t *testing.T) {
	seed := uint32(49380)
	level := straightRunLevel()
	level.Seed = &seed
	level.Difficulty = "easy"

	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			data, err := EncodeLevel(level, ext)
			require.NoError(t, err)

			decoded, err := DecodeLevel(data, ext)
			require.NoError(t, err)
			assert.Equal(t, level, decoded)
		})
	}
}

func TestDecodeLevelJSONNames(t *testing.T) {
	data, err := EncodeLevel(straightRunLevel(), ".json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shape": "turnpike"`)
	assert.Contains(t, string(data), `"road_type": "local_road"`)
	assert.Contains(t, string(data), `"solution_rotation": 90`)
}

func TestLoadLevelFile(t *testing.T) {
	dir := t.TempDir()
	data, err := EncodeLevel(twoByOneLevel(), ".yml")
	require.NoError(t, err)
	path := filepath.Join(dir, "two.yml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	level, err := LoadLevelFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two_by_one", level.Name)
	assert.Equal(t, Diner, level.Tiles[0].LandmarkKind)

	require.NoError(t, os.WriteFile(path, []byte("name: [broken"), 0644))
	_, err = LoadLevelFile(path)
	assert.Error(t, err)

	_, err = LoadLevelFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLevelClone(t *testing.T) {
	seed := uint32(7)
	level := straightRunLevel()
	level.Seed = &seed

	c := level.Clone()
	c.Tiles[1].Rotation = 180
	c.SolutionPaths[0].Path[0].Row = 3
	*c.Seed = 8

	assert.Equal(t, Rotation(0), level.Tiles[1].Rotation)
	assert.Equal(t, 0, level.SolutionPaths[0].Path[0].Row)
	assert.Equal(t, uint32(7), *level.Seed)
}
