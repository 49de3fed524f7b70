// Command validate checks hand-authored level files before they are served.
// For every .json, .yaml and .yml file in the levels directory it checks:
//   - the file parses and the level record is well formed
//   - the solution rotations leave no dangling openings
//   - every landmark and road tile reaches the turnpike when solved
//   - solution paths are contiguous and run from a landmark to the turnpike
//   - the scrambled start is not already complete
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
)

// ValidationResult captures the outcome of validating a single file.
// Info lists the checks that passed; Errors make the file invalid and
// Warnings do not.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) pass(format string, args ...any) {
	r.Info = append(r.Info, "✓ "+fmt.Sprintf(format, args...))
}

// validateLevelFile loads one level file and runs every check on it
func validateLevelFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	level, err := engine.LoadLevelFile(filePath)
	if err != nil {
		result.fail("Failed to load level: %v", err)
		return result
	}
	result.pass("Level %q parsed (%dx%d, %d tiles)", level.Name, level.GridSize.Rows, level.GridSize.Cols, len(level.Tiles))

	validateLevel(level, &result)
	return result
}

func validateLevel(level *engine.Level, result *ValidationResult) {
	if err := generator.Verify(level); err != nil {
		result.fail("Not solvable: %v", err)
	} else {
		result.pass("Solution rotations connect every landmark and road tile")
	}

	validateSolutionPaths(level, result)

	eng, err := engine.NewEngine(level)
	if err != nil {
		result.fail("Engine rejected level: %v", err)
		return
	}
	if eng.IsComplete() {
		result.warn("Level is already complete before any rotation")
	}

	rotatable := engine.CountRotatable(level.Tiles)
	if rotatable == 0 {
		result.warn("Level has no rotatable tiles")
	}
	result.pass("Minimum rotations to solve: %d (%d rotatable tiles)", engine.MinimumRotations(level.Tiles), rotatable)
}

func validateSolutionPaths(level *engine.Level, result *ValidationResult) {
	g, err := engine.GridFromLevel(level)
	if err != nil {
		result.fail("Grid could not be built: %v", err)
		return
	}

	landmarks := engine.CountRoadType(level.Tiles, engine.Landmark)
	if len(level.SolutionPaths) == 0 {
		result.warn("No solution paths recorded")
		return
	}
	if len(level.SolutionPaths) != landmarks {
		result.warn("%d solution paths for %d landmarks", len(level.SolutionPaths), landmarks)
	}

	broken := 0
	for _, sp := range level.SolutionPaths {
		if msg := checkPath(g, sp); msg != "" {
			result.fail("Solution path %q: %s", sp.LandmarkID, msg)
			broken++
		}
	}
	if broken == 0 {
		result.pass("All %d solution paths run from a landmark to the turnpike", len(level.SolutionPaths))
	}
}

// checkPath returns a description of the first problem with sp, or ""
func checkPath(g *engine.Grid, sp engine.SolutionPath) string {
	if len(sp.Path) < 2 {
		return "fewer than two cells"
	}

	first, last := g.At(sp.Path[0]), g.At(sp.Path[len(sp.Path)-1])
	if first == nil || first.RoadType != engine.Landmark {
		return fmt.Sprintf("starts at %v, which is not a landmark", sp.Path[0])
	}
	if last == nil || last.RoadType != engine.Turnpike {
		return fmt.Sprintf("ends at %v, which is not the turnpike", sp.Path[len(sp.Path)-1])
	}

	for i := 1; i < len(sp.Path); i++ {
		if engine.ManhattanDistance(sp.Path[i-1], sp.Path[i]) != 1 {
			return fmt.Sprintf("jumps from %v to %v", sp.Path[i-1], sp.Path[i])
		}
	}
	return ""
}

// levelFiles lists the level files in dir in name order
func levelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// main validates every level file in the directory given as the first
// argument (default ../levels), printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	levelDir := "../levels"
	if len(os.Args) > 1 {
		levelDir = os.Args[1]
	}

	files, err := levelFiles(levelDir)
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No level files in %s\n", levelDir)
		return
	}

	allValid := true
	for _, file := range files {
		result := validateLevelFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Println("  ❌ " + e)
			}
		}
		for _, w := range result.Warnings {
			fmt.Println("  ⚠️  " + w)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
