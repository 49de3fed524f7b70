package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectivityTwoByOne(t *testing.T) {
	c := NewConnectivity(mustGrid(twoByOneLevel()))
	require.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, []bool{false}, c.Report().LandmarksConnected)
	assert.False(t, c.Report().IsComplete)

	report, err := c.HandleRotation(RotationEvent{Row: 0, Col: 0})
	require.NoError(t, err)
	assert.False(t, report.IsComplete)
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, Rotation(270), c.Grid().At(Position{Row: 0, Col: 0}).Rotation)

	report, err = c.HandleRotation(RotationEvent{Row: 0, Col: 0})
	require.NoError(t, err)
	assert.True(t, report.IsComplete)
	assert.Equal(t, []bool{true}, report.LandmarksConnected)
	assert.True(t, report.AllTilesReachable)
	assert.Empty(t, report.Unreached)
	assert.Equal(t, PhaseComplete, c.Phase())

	_, err = c.HandleRotation(RotationEvent{Row: 0, Col: 0})
	assert.ErrorIs(t, err, ErrLevelComplete)
	assert.Equal(t, Rotation(0), c.Grid().At(Position{Row: 0, Col: 0}).Rotation)
}

func TestConnectivityRejectedRotationStaysIdle(t *testing.T) {
	level := twoByOneLevel()
	level.GridSize = GridSize{Rows: 2, Cols: 2}
	c := NewConnectivity(mustGrid(level))

	_, err := c.HandleRotation(RotationEvent{Row: 1, Col: 0})
	assert.ErrorIs(t, err, ErrNotRotatable)
	assert.Equal(t, PhaseIdle, c.Phase())

	_, err = c.HandleRotation(RotationEvent{Row: 0, Col: 1})
	assert.ErrorIs(t, err, ErrNoTile)
	assert.Equal(t, PhaseIdle, c.Phase())
}

func TestConnectivityValidateIdempotent(t *testing.T) {
	c := NewConnectivity(mustGrid(straightRunLevel()))
	first := c.Validate()
	second := c.Validate()
	assert.Equal(t, first, second)
	assert.Equal(t, PhaseIdle, c.Phase())

	before := c.Grid().Snapshot()
	c.Validate()
	assert.Equal(t, before, c.Grid().Snapshot())
}

func TestConnectivityAlreadySolvedStartsComplete(t *testing.T) {
	level := straightRunLevel()
	for i := range level.Tiles {
		level.Tiles[i].Rotation = level.Tiles[i].SolutionRotation
	}
	c := NewConnectivity(mustGrid(level))
	assert.Equal(t, PhaseComplete, c.Phase())
	assert.True(t, c.Validate().IsComplete)
}

func TestEvaluateUnreachedTiles(t *testing.T) {
	level := straightRunLevel()
	// connect the landmark path but leave an extra house stranded
	level.GridSize = GridSize{Rows: 2, Cols: 4}
	level.Tiles[1].Rotation = 90
	level.Tiles[2].Rotation = 90
	level.Tiles = append(level.Tiles, Tile{Row: 1, Col: 0, Shape: Straight, RoadType: House})

	report := Evaluate(mustGrid(level), CurrentView)
	assert.Equal(t, []bool{true}, report.LandmarksConnected)
	assert.False(t, report.AllTilesReachable)
	assert.Equal(t, []Position{{Row: 1, Col: 0}}, report.Unreached)
	assert.False(t, report.IsComplete)
}

func TestEvaluateSolvedView(t *testing.T) {
	g := mustGrid(straightRunLevel())
	assert.False(t, Evaluate(g, CurrentView).IsComplete)
	assert.True(t, Evaluate(g, SolvedView).IsComplete)
}

func TestEvaluateCompatibilityBlocksEdge(t *testing.T) {
	level := straightRunLevel()
	for i := range level.Tiles {
		level.Tiles[i].Rotation = level.Tiles[i].SolutionRotation
	}
	// a highway cannot connect into a landmark
	level.Tiles[1].RoadType = Highway

	g := mustGrid(level)
	cg := BuildGraph(g, CurrentView)
	assert.False(t, cg.Connected(Position{Row: 0, Col: 1}, Position{Row: 0, Col: 0}))
	assert.False(t, cg.Connected(Position{Row: 0, Col: 0}, Position{Row: 0, Col: 1}))
	assert.False(t, Evaluate(g, CurrentView).IsComplete)
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{PhaseIdle, PhaseRebuildGraph, PhaseValidate, PhaseComplete} {
		text, err := p.MarshalText()
		require.NoError(t, err)
		var parsed Phase
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, p, parsed)
	}
}
