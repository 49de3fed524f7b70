package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
	"github.com/wricardo/roadlink/game/progression"
	"github.com/wricardo/roadlink/logger"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(context.Background(), append([]string{"levelgen"}, args...))
	return stdout.String(), stderr.String(), err
}

func generateArgs(extra ...string) []string {
	args := []string{"generate", "--rows", "4", "--cols", "4", "--landmarks", "1", "--difficulty", "easy", "--min-path", "2", "--seed", "49380"}
	return append(args, extra...)
}

func TestGenerateToStdout(t *testing.T) {
	stdout, stderr, err := run(t, generateArgs()...)
	require.NoError(t, err)

	level, err := engine.DecodeLevel([]byte(stdout), ".json")
	require.NoError(t, err)
	assert.Equal(t, engine.GridSize{Rows: 4, Cols: 4}, level.GridSize)
	require.NoError(t, generator.Verify(level))
	assert.Contains(t, stderr, "seed=49380")

	again, _, err := run(t, generateArgs()...)
	require.NoError(t, err)
	assert.Equal(t, stdout, again, "same seed must produce the same level")
}

func TestGenerateToYAMLFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "four.yaml")

	_, stderr, err := run(t, generateArgs("--name", "four", "--out", out)...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote "+out)

	level, err := engine.LoadLevelFile(out)
	require.NoError(t, err)
	assert.Equal(t, "four", level.Name)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, _, err := run(t, "generate", "--difficulty", "brutal")
	assert.ErrorIs(t, err, generator.ErrInvalidConfig)

	_, _, err = run(t, "generate", "--landmarks", "0", "--seed", "1")
	assert.ErrorIs(t, err, generator.ErrInvalidConfig)
}

func TestProgression(t *testing.T) {
	out := filepath.Join(t.TempDir(), "level1.json")

	_, stderr, err := run(t, "progression", "--level", "1", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=1 wave=0 difficulty=easy")

	level, err := engine.LoadLevelFile(out)
	require.NoError(t, err)
	assert.NoError(t, generator.Verify(level))

	_, _, err = run(t, "progression", "--level", "0")
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	data, err := engine.EncodeLevel(progression.FallbackLevel(), ".json")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(good, data, 0644))

	broken := progression.FallbackLevel()
	broken.Tiles[1].SolutionRotation = 0
	bad := filepath.Join(dir, "bad.json")
	data, err = engine.EncodeLevel(broken, ".json")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bad, data, 0644))

	stdout, _, err := run(t, "verify", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ok   "+good+" (fallback, 2 rotations to solve)")

	stdout, _, err = run(t, "verify", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 levels failed")
	assert.Contains(t, stdout, "FAIL "+bad)

	_, _, err = run(t, "verify")
	assert.Error(t, err)
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		format, out string
		want        string
		wantErr     bool
	}{
		{"", "", ".json", false},
		{"", "level.yml", ".yml", false},
		{"", "level.YAML", ".yaml", false},
		{"yaml", "level.json", ".yaml", false},
		{"JSON", "level.yaml", ".json", false},
		{"toml", "", "", true},
	}

	for _, tt := range tests {
		got, err := outputFormat(tt.format, tt.out)
		if tt.wantErr {
			assert.Error(t, err, "format %q", tt.format)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "format %q out %q", tt.format, tt.out)
	}
}
