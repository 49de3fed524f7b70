package main

import (
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/roadlink/api"
	"github.com/wricardo/roadlink/game/config"
	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
	"github.com/wricardo/roadlink/game/progression"
	"github.com/wricardo/roadlink/game/service"
	"github.com/wricardo/roadlink/game/session"
	"github.com/wricardo/roadlink/logger"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

// newTestServer serves the real API over an empty levels directory, so new
// sessions get the fallback level.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	levels, err := config.NewManager(t.TempDir())
	require.NoError(t, err)

	svc := service.NewGameService(session.NewManager(), levels)
	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)
	return ts
}

func newSession(t *testing.T, ts *httptest.Server) (*Client, *engine.GameState) {
	t.Helper()
	c := NewClient(ts.URL)
	state, err := c.CreateSession(service.CreateSessionRequest{})
	require.NoError(t, err)
	require.NotNil(t, state)
	require.NotEmpty(t, c.SessionID())
	return c, state
}

func TestPlanRotations(t *testing.T) {
	level := progression.FallbackLevel()
	g, err := engine.NewEngine(level)
	require.NoError(t, err)

	plan := planRotations(g.GetState())
	assert.Equal(t, []engine.RotationEvent{{Row: 0, Col: 1}, {Row: 0, Col: 2}}, plan)
}

func TestStrategiesCompleteFallbackLevel(t *testing.T) {
	ts := newTestServer(t)

	for _, name := range []string{"plan", "hint", "search"} {
		t.Run(name, func(t *testing.T) {
			c, state := newSession(t, ts)
			require.False(t, state.Complete)

			strategy, err := strategyByName(name, 200)
			require.NoError(t, err)
			assert.Equal(t, name, strategy.Name())

			final, rotations, err := strategy.Play(c, state)
			require.NoError(t, err)
			assert.True(t, final.Complete, "strategy %s left %d/%d connected", name, final.Connected, final.Landmarks)
			assert.Positive(t, rotations)

			server, err := c.GetState()
			require.NoError(t, err)
			assert.True(t, server.Complete)
		})
	}
}

func TestPlanIsMinimal(t *testing.T) {
	c, state := newSession(t, newTestServer(t))

	final, rotations, err := planStrategy{}.Play(c, state)
	require.NoError(t, err)
	assert.True(t, final.Complete)
	assert.Equal(t, 2, rotations)
}

func TestStrategyByNameUnknown(t *testing.T) {
	_, err := strategyByName("random", 10)
	assert.Error(t, err)
}

func TestClientReset(t *testing.T) {
	c, _ := newSession(t, newTestServer(t))

	result, err := c.Rotate(0, 1)
	require.NoError(t, err)
	assert.True(t, result.Success)

	state, err := c.Reset()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 0, state.CurrentRotationsCount)
	assert.False(t, state.Complete)
}

func TestClientErrors(t *testing.T) {
	ts := newTestServer(t)

	_, err := NewClient(ts.URL).Resume("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = NewClient("http://127.0.0.1:1").GetState()
	assert.Error(t, err)
}

func TestCreateRequest(t *testing.T) {
	req, err := options{levelID: "starter"}.createRequest()
	require.NoError(t, err)
	assert.Equal(t, "starter", req.LevelID)
	assert.Nil(t, req.Generate)

	req, err = options{rows: 4, cols: 5, landmarks: 2, difficulty: "hard", seed: 7}.createRequest()
	require.NoError(t, err)
	require.NotNil(t, req.Generate)
	assert.Equal(t, engine.GridSize{Rows: 4, Cols: 5}, req.Generate.GridSize)
	assert.Equal(t, 2, req.Generate.LandmarkCount)
	assert.Equal(t, generator.Hard, req.Generate.Difficulty)
	require.NotNil(t, req.Generate.Seed)
	assert.Equal(t, uint32(7), *req.Generate.Seed)

	req, err = options{rows: 4, cols: 4, difficulty: "easy", seed: -1}.createRequest()
	require.NoError(t, err)
	assert.Nil(t, req.Generate.Seed)

	_, err = options{rows: 4, cols: 4, difficulty: "brutal"}.createRequest()
	assert.Error(t, err)
}

func TestRunSavesAndResumesSession(t *testing.T) {
	ts := newTestServer(t)
	t.Chdir(t.TempDir())

	opts := options{serverURL: ts.URL, strategy: "plan", maxRotations: 100, maxAttempts: 2}
	won, err := run(opts)
	require.NoError(t, err)
	assert.True(t, won)

	data, err := os.ReadFile(sessionFile)
	require.NoError(t, err)
	id := string(data)
	require.NotEmpty(t, id)

	// A second run resets and replays the saved session
	won, err = run(opts)
	require.NoError(t, err)
	assert.True(t, won)

	data, err = os.ReadFile(sessionFile)
	require.NoError(t, err)
	assert.Equal(t, id, string(data))

	_, err = run(options{serverURL: ts.URL, strategy: "bogus"})
	assert.Error(t, err)
}
