package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(straightRunLevel())
	require.NoError(t, err)

	state := e.GetState()
	assert.Equal(t, "straight_run", state.LevelName)
	assert.Equal(t, GridSize{Rows: 1, Cols: 4}, state.GridSize)
	assert.Len(t, state.Tiles, 4)
	assert.Equal(t, 1, state.Landmarks)
	assert.Equal(t, 0, state.Connected)
	assert.Equal(t, 2, state.Unresolved)
	assert.False(t, state.Complete)
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.NotEmpty(t, state.Message)
	assert.Empty(t, state.RotationHistory)
}

func TestNewEngineInvalidLevel(t *testing.T) {
	level := straightRunLevel()
	level.Tiles = level.Tiles[:3]
	_, err := NewEngine(level)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestEngineRotateToCompletion(t *testing.T) {
	e, err := NewEngine(straightRunLevel())
	require.NoError(t, err)

	entry, err := e.Rotate(0, 1)
	require.NoError(t, err)
	assert.True(t, entry.Success)
	assert.Equal(t, Rotation(0), entry.FromRotation)
	assert.Equal(t, Rotation(90), entry.ToRotation)
	assert.Equal(t, 1, entry.RotationNumber)
	assert.False(t, e.IsComplete())

	entry, err = e.Rotate(0, 2)
	require.NoError(t, err)
	assert.True(t, entry.Complete)
	assert.True(t, e.IsComplete())
	assert.Equal(t, PhaseComplete, e.Phase())
	assert.Equal(t, 0, e.GetState().Unresolved)
	assert.Contains(t, e.GetState().Message, "Level complete")

	_, err = e.Rotate(0, 1)
	assert.ErrorIs(t, err, ErrLevelComplete)
	assert.Equal(t, 3, e.GetState().TotalRotations)
	assert.False(t, e.GetLastRotation().Success)
}

func TestEngineRotateFixedTile(t *testing.T) {
	e, err := NewEngine(straightRunLevel())
	require.NoError(t, err)

	entry, err := e.Rotate(0, 3)
	assert.ErrorIs(t, err, ErrNotRotatable)
	assert.False(t, entry.Success)
	assert.NotEmpty(t, entry.Error)
	assert.Contains(t, e.GetState().Message, "fixed")
}

func TestEngineBulkRotateStopsOnComplete(t *testing.T) {
	e, err := NewEngine(straightRunLevel())
	require.NoError(t, err)

	results := e.BulkRotate([]RotationEvent{
		{Row: 0, Col: 3},
		{Row: 0, Col: 1},
		{Row: 0, Col: 2},
		{Row: 0, Col: 1},
	})
	require.Len(t, results, 3)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.True(t, e.IsComplete())
}

func TestEngineResetKeepsHistory(t *testing.T) {
	e, err := NewEngine(straightRunLevel())
	require.NoError(t, err)

	_, err = e.Rotate(0, 1)
	require.NoError(t, err)
	_, err = e.Rotate(0, 1)
	require.NoError(t, err)

	state := e.Reset()
	assert.Equal(t, 2, state.TotalRotations)
	assert.Len(t, state.RotationHistory, 2)
	assert.Equal(t, 0, state.CurrentRotationsCount)
	assert.Empty(t, state.CurrentRotations)
	assert.Equal(t, Rotation(0), e.Grid().At(Position{Row: 0, Col: 1}).Rotation)

	_, err = e.Rotate(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, e.GetState().RotationHistory[2].RotationNumber)
	assert.Equal(t, 1, e.GetState().CurrentRotationsCount)
}

func TestEngineHint(t *testing.T) {
	e, err := NewEngine(straightRunLevel())
	require.NoError(t, err)

	hint, ok := e.Hint()
	require.True(t, ok)
	assert.Equal(t, Position{Row: 0, Col: 1}, hint.Position)
	assert.Equal(t, Rotation(90), hint.Target)
	assert.Equal(t, 1, hint.Turns)

	_, err = e.Rotate(0, 1)
	require.NoError(t, err)
	hint, ok = e.Hint()
	require.True(t, ok)
	assert.Equal(t, Position{Row: 0, Col: 2}, hint.Position)

	_, err = e.Rotate(0, 2)
	require.NoError(t, err)
	_, ok = e.Hint()
	assert.False(t, ok)
}

func TestEngineSetState(t *testing.T) {
	e, err := NewEngine(straightRunLevel())
	require.NoError(t, err)
	_, err = e.Rotate(0, 1)
	require.NoError(t, err)
	saved := e.GetState()

	restored, err := NewEngine(straightRunLevel())
	require.NoError(t, err)
	require.NoError(t, restored.SetState(saved))

	assert.Equal(t, saved.Tiles, restored.GetState().Tiles)
	assert.Equal(t, 1, restored.GetState().TotalRotations)
	assert.Equal(t, Rotation(90), restored.Grid().At(Position{Row: 0, Col: 1}).Rotation)

	_, err = restored.Rotate(0, 2)
	require.NoError(t, err)
	assert.True(t, restored.IsComplete())
}

func TestEngineSetStateMismatch(t *testing.T) {
	e, err := NewEngine(straightRunLevel())
	require.NoError(t, err)

	assert.Error(t, e.SetState(nil))

	other, err := NewEngine(twoByOneLevel())
	require.NoError(t, err)
	assert.Error(t, e.SetState(other.GetState()))
}

func TestEngineSetStateRejectsTurnedFixedTiles(t *testing.T) {
	e, err := NewEngine(straightRunLevel())
	require.NoError(t, err)

	for _, pos := range []Position{{Row: 0, Col: 0}, {Row: 0, Col: 3}} {
		state := e.GetState()
		saved := *state
		saved.Tiles = append([]Tile(nil), state.Tiles...)
		for i := range saved.Tiles {
			if saved.Tiles[i].Pos() == pos {
				saved.Tiles[i].Rotation = saved.Tiles[i].Rotation.Next()
			}
		}

		err := e.SetState(&saved)
		require.ErrorIs(t, err, ErrNotRotatable, "fixed tile at %v", pos)
	}

	// the engine keeps its previous state
	tile := e.Grid().At(Position{Row: 0, Col: 0})
	assert.Equal(t, tile.SolutionRotation, tile.Rotation)
	tile = e.Grid().At(Position{Row: 0, Col: 3})
	assert.Equal(t, Rotation(0), tile.Rotation)

	// rotatable tiles restore as before
	saved := *e.GetState()
	saved.Tiles = append([]Tile(nil), e.GetState().Tiles...)
	saved.Tiles[1].Rotation = 90
	require.NoError(t, e.SetState(&saved))
	assert.Equal(t, Rotation(90), e.Grid().At(Position{Row: 0, Col: 1}).Rotation)
}

func TestEngineDoesNotMutateLevel(t *testing.T) {
	level := straightRunLevel()
	e, err := NewEngine(level)
	require.NoError(t, err)
	_, err = e.Rotate(0, 1)
	require.NoError(t, err)
	assert.Equal(t, Rotation(0), level.Tiles[1].Rotation)
	assert.Equal(t, Rotation(0), e.GetLevel().Tiles[1].Rotation)
}

func TestMinimumRotations(t *testing.T) {
	assert.Equal(t, 2, MinimumRotations(straightRunLevel().Tiles))
	assert.Equal(t, 2, MinimumRotations(twoByOneLevel().Tiles))
	assert.Equal(t, 1, ManhattanDistance(Position{Row: 0, Col: 0}, Position{Row: 1, Col: 0}))
	assert.Equal(t, 7, ManhattanDistance(Position{Row: 3, Col: 0}, Position{Row: 0, Col: 4}))
}
