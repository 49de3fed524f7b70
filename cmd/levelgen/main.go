// Command levelgen generates, inspects and verifies Roadlink levels offline.
//
//	levelgen generate -rows 6 -cols 6 -landmarks 2 -difficulty medium -seed 42 -out levels/six.json
//	levelgen progression -level 7 -format yaml
//	levelgen verify levels/*.json
//
// Generated levels use the same schema as hand-authored files, so the
// output can be dropped into the levels directory as is.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
	"github.com/wricardo/roadlink/game/progression"
	"github.com/wricardo/roadlink/logger"
)

func main() {
	logger.SetOutput(os.Stderr, "text", slog.LevelWarn)

	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "levelgen: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	outputFlags := []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the level to `FILE` instead of stdout"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json or yaml; defaults to the extension of -out, then json"},
	}

	return &cli.Command{
		Name:      "levelgen",
		Usage:     "Generate and verify Roadlink levels",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate one level from explicit parameters",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "level name"},
					&cli.IntFlag{Name: "rows", Value: 6, Usage: "grid rows"},
					&cli.IntFlag{Name: "cols", Value: 6, Usage: "grid columns"},
					&cli.IntFlag{Name: "landmarks", Value: 2, Usage: "number of landmarks"},
					&cli.StringFlag{Name: "difficulty", Value: generator.Easy.String(), Usage: "easy, medium or hard"},
					&cli.IntFlag{Name: "min-path", Usage: "minimum intermediate tiles per route"},
					&cli.Uint32Flag{Name: "seed", Usage: "generator seed; random when unset"},
				}, outputFlags...),
				Action: generateAction,
			},
			{
				Name:  "progression",
				Usage: "Generate the level a level number maps to, with retries and fallback",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "level", Aliases: []string{"n"}, Value: 1, Usage: "1-based level number"},
					&cli.IntFlag{Name: "attempts", Value: progression.DefaultMaxAttempts, Usage: "reseeded attempts before falling back"},
				}, outputFlags...),
				Action: progressionAction,
			},
			{
				Name:      "verify",
				Usage:     "Check that level files are well formed and solvable",
				ArgsUsage: "FILE...",
				Action:    verifyAction,
			},
		},
	}
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	difficulty, err := generator.ParseDifficulty(cmd.String("difficulty"))
	if err != nil {
		return err
	}

	cfg := generator.Config{
		Name:          cmd.String("name"),
		GridSize:      engine.GridSize{Rows: cmd.Int("rows"), Cols: cmd.Int("cols")},
		LandmarkCount: cmd.Int("landmarks"),
		Difficulty:    difficulty,
		MinPathLength: cmd.Int("min-path"),
	}
	if cmd.IsSet("seed") {
		cfg = cfg.WithSeed(cmd.Uint32("seed"))
	}

	level, stats, err := generator.GenerateWithStats(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().ErrWriter, "seed=%d road_tiles=%d upgraded=%d scrambled=%d shortest_route=%d minimum_rotations=%d\n",
		stats.Seed, stats.RoadTiles, stats.Upgraded, stats.Scrambled, stats.ShortestRoute, engine.MinimumRotations(level.Tiles))
	return writeLevel(cmd, level)
}

func progressionAction(ctx context.Context, cmd *cli.Command) error {
	n := cmd.Int("level")
	if n < 1 {
		return fmt.Errorf("level must be at least 1, got %d", n)
	}

	out := progression.Generate(n, cmd.Int("attempts"))

	p := out.Params
	fmt.Fprintf(cmd.Root().ErrWriter, "level=%d wave=%d difficulty=%s grid=%dx%d landmarks=%d attempts=%d relaxed=%t fell_back=%t\n",
		p.Level, p.Wave, p.Config.Difficulty, p.Config.GridSize.Rows, p.Config.GridSize.Cols, p.Config.LandmarkCount, out.Attempts, out.Relaxed, out.FellBack)
	for _, f := range out.Failures {
		fmt.Fprintf(cmd.Root().ErrWriter, "  failed: %s\n", f)
	}

	return writeLevel(cmd, out.Level)
}

func verifyAction(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return errors.New("verify needs at least one level file")
	}

	failed := 0
	for _, file := range files {
		level, err := engine.LoadLevelFile(file)
		if err == nil {
			err = generator.Verify(level)
		}
		if err != nil {
			failed++
			fmt.Fprintf(cmd.Root().Writer, "FAIL %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(cmd.Root().Writer, "ok   %s (%s, %d rotations to solve)\n", file, level.Name, engine.MinimumRotations(level.Tiles))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d levels failed verification", failed, len(files))
	}
	return nil
}

// outputFormat picks the encoding extension from -format, then -out
func outputFormat(format, out string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return ".json", nil
	case "yaml", "yml":
		return ".yaml", nil
	case "":
		if ext := strings.ToLower(filepath.Ext(out)); ext == ".yaml" || ext == ".yml" {
			return ext, nil
		}
		return ".json", nil
	}
	return "", fmt.Errorf("unknown format %q (use json or yaml)", format)
}

func writeLevel(cmd *cli.Command, level *engine.Level) error {
	out := cmd.String("out")
	ext, err := outputFormat(cmd.String("format"), out)
	if err != nil {
		return err
	}

	data, err := engine.EncodeLevel(level, ext)
	if err != nil {
		return fmt.Errorf("failed to encode level: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	if out == "" {
		_, err = cmd.Root().Writer.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().ErrWriter, "wrote %s\n", out)
	return nil
}
