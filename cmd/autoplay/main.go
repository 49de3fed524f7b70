// Command autoplay plays Roadlink sessions against a running server through
// the REST API. It is a smoke test for the server and a baseline for agents:
// the plan strategy reads the solution off the state, hint follows the hint
// endpoint, and search tries orientations without looking at the solution.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
	"github.com/wricardo/roadlink/game/service"
	"github.com/wricardo/roadlink/logger"
)

const sessionFile = ".session"

type options struct {
	serverURL    string
	levelID      string
	levelNumber  int
	rows, cols   int
	landmarks    int
	difficulty   string
	seed         int64
	resume       string
	strategy     string
	maxRotations int
	maxAttempts  int
}

func main() {
	var opts options
	flag.StringVar(&opts.serverURL, "url", "http://localhost:8080", "Game server URL")
	flag.StringVar(&opts.levelID, "level", "", "Hand-authored level id")
	flag.IntVar(&opts.levelNumber, "n", 0, "Progression level number")
	flag.IntVar(&opts.rows, "rows", 0, "Generate a level with this many rows")
	flag.IntVar(&opts.cols, "cols", 0, "Generate a level with this many columns")
	flag.IntVar(&opts.landmarks, "landmarks", 1, "Landmarks in a generated level")
	flag.StringVar(&opts.difficulty, "difficulty", "easy", "Difficulty of a generated level")
	flag.Int64Var(&opts.seed, "seed", -1, "Seed of a generated level (-1 = random)")
	flag.StringVar(&opts.resume, "continue", "", "Resume playing an existing session by ID")
	flag.StringVar(&opts.strategy, "strategy", "search", "plan, hint or search")
	flag.IntVar(&opts.maxRotations, "max-rotations", 2000, "Maximum rotations per attempt")
	flag.IntVar(&opts.maxAttempts, "max-attempts", 3, "Maximum attempts before giving up")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	cfg := logger.DefaultConfig()
	if *verbose {
		cfg.Level = "DEBUG"
	}
	if err := logger.Initialize(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	won, err := run(opts)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	if !won {
		os.Exit(1)
	}
}

func (o options) createRequest() (service.CreateSessionRequest, error) {
	req := service.CreateSessionRequest{LevelID: o.levelID, LevelNumber: o.levelNumber}
	if o.rows > 0 || o.cols > 0 {
		d, err := generator.ParseDifficulty(o.difficulty)
		if err != nil {
			return req, err
		}
		cfg := generator.Config{
			GridSize:      engine.GridSize{Rows: o.rows, Cols: o.cols},
			LandmarkCount: o.landmarks,
			Difficulty:    d,
		}
		if o.seed >= 0 {
			cfg = cfg.WithSeed(uint32(o.seed))
		}
		req.Generate = &cfg
	}
	return req, nil
}

// run opens or resumes a session and lets the strategy play it from a
// fresh reset on every attempt. It reports whether the level was completed.
func run(opts options) (bool, error) {
	strategy, err := strategyByName(opts.strategy, opts.maxRotations)
	if err != nil {
		return false, err
	}

	logger.Info("Connecting to game server", "url", opts.serverURL)
	client := NewClient(opts.serverURL)

	state, err := openSession(client, opts)
	if err != nil {
		return false, err
	}
	logger.Info("Session ready", "session_id", client.SessionID(), "level", state.LevelName,
		"grid", fmt.Sprintf("%dx%d", state.GridSize.Rows, state.GridSize.Cols), "landmarks", state.Landmarks)

	for attempt := 1; attempt <= opts.maxAttempts; attempt++ {
		state, err = client.Reset()
		if err != nil {
			return false, err
		}

		start := time.Now()
		final, rotations, err := strategy.Play(client, state)
		if err != nil {
			return false, fmt.Errorf("attempt %d: %w", attempt, err)
		}

		logger.Info("Attempt finished", "attempt", attempt, "strategy", strategy.Name(),
			"rotations", rotations, "connected", fmt.Sprintf("%d/%d", final.Connected, final.Landmarks),
			"unreached", len(final.Report.Unreached), "elapsed", time.Since(start).Round(time.Millisecond))

		if final.Complete {
			logger.Info("Level complete", "session_id", client.SessionID(), "attempt", attempt, "rotations", rotations)
			return true, nil
		}
	}

	logger.Warning("Failed to complete the level", "attempts", opts.maxAttempts, "session_id", client.SessionID())
	return false, nil
}

// openSession resumes the requested or saved session, or creates a new one
// and remembers its id for the next run.
func openSession(client *Client, opts options) (*engine.GameState, error) {
	saved := opts.resume
	if saved == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			saved = string(bytes.TrimSpace(data))
		}
	}

	if saved != "" {
		state, err := client.Resume(saved)
		if err == nil {
			logger.Info("Resuming session", "session_id", saved)
			return state, nil
		}
		logger.Warning("Failed to resume session, creating a new one", "session_id", saved, "error", err)
	}

	req, err := opts.createRequest()
	if err != nil {
		return nil, err
	}
	state, err := client.CreateSession(req)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errors.New("server returned a session without state")
	}

	if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
		logger.Warningf("Failed to save session ID: %v", err)
	}
	return state, nil
}
