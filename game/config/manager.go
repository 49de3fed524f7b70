package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
	"github.com/wricardo/roadlink/game/progression"
	"github.com/wricardo/roadlink/game/service"
	"github.com/wricardo/roadlink/logger"
)

var (
	ErrLevelNotFound = service.ErrLevelNotFound
	ErrInvalidLevel  = engine.ErrInvalidLevel
)

// DefaultLevelName is loaded as the default level when present
const DefaultLevelName = "starter"

// levelExtensions are tried in order when a name has no extension
var levelExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles level file loading and caching
type Manager struct {
	levelsDir    string
	defaultLevel *engine.Level
	levels       map[string]*engine.Level
	mu           sync.RWMutex
}

// NewManager creates a new level manager over levelsDir
func NewManager(levelsDir string) (*Manager, error) {
	// Ensure levels directory exists
	if _, err := os.Stat(levelsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("levels directory does not exist: %s", levelsDir)
	}

	m := &Manager{
		levelsDir: levelsDir,
		levels:    make(map[string]*engine.Level),
	}

	if err := m.loadDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// LoadLevel loads a level by name. The name may carry an extension; without
// one .json, .yaml and .yml are tried in that order.
func (m *Manager) LoadLevel(name string) (*engine.Level, error) {
	key := levelID(name)

	m.mu.RLock()
	// Check cache first
	if level, exists := m.levels[key]; exists {
		m.mu.RUnlock()
		return level, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if level, exists := m.levels[key]; exists {
		return level, nil
	}

	path, err := m.findLevelFile(name)
	if err != nil {
		return nil, err
	}

	level, err := engine.LoadLevelFile(path)
	if err != nil {
		if errors.Is(err, ErrInvalidLevel) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}

	// Hand-authored levels must be solvable before anyone plays them
	if err := generator.Verify(level); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidLevel, filepath.Base(path), err)
	}

	if level.ID == "" {
		level.ID = key
	}

	m.levels[key] = level
	logger.Debug("level loaded", "name", key, "path", path)
	return level, nil
}

// ListLevels returns information about all valid level files
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	var levels []*service.LevelInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}

		id := levelID(entry.Name())
		if seen[id] {
			continue
		}

		level, err := m.LoadLevel(entry.Name())
		if err != nil {
			// Skip invalid levels
			logger.Warning("skipping invalid level file", "file", entry.Name(), "error", err)
			continue
		}
		seen[id] = true

		levels = append(levels, service.NewLevelInfo(entry.Name(), id, level))
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].LevelID < levels[j].LevelID })
	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.Level {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	level, err := m.LoadLevel(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = level
	return nil
}

// RefreshCache drops every cached level and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.levels = make(map[string]*engine.Level)
	m.mu.Unlock()

	return m.loadDefaultLevel()
}

// loadDefaultLevel prefers the starter level, then the first valid file,
// then the built-in fallback level
func (m *Manager) loadDefaultLevel() error {
	level, err := m.LoadLevel(DefaultLevelName)
	if err != nil {
		levels, listErr := m.ListLevels()
		if listErr != nil || len(levels) == 0 {
			level = progression.FallbackLevel()
		} else if level, err = m.LoadLevel(levels[0].Filename); err != nil {
			level = progression.FallbackLevel()
		}
	}

	m.mu.Lock()
	m.defaultLevel = level
	m.mu.Unlock()
	return nil
}

// SaveLevel writes a level to disk. The extension of name selects the
// format; names without one are saved as JSON.
func (m *Manager) SaveLevel(name string, level *engine.Level) error {
	if err := engine.ValidateLevel(level); err != nil {
		return err
	}
	if err := generator.Verify(level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}

	filename := filepath.Base(name)
	if !isLevelFile(filename) {
		filename += ".json"
	}
	if levelID(filename) == "" || strings.HasPrefix(filename, ".") {
		return fmt.Errorf("%w: invalid level name %q", ErrInvalidLevel, name)
	}

	data, err := engine.EncodeLevel(level, filepath.Ext(filename))
	if err != nil {
		return fmt.Errorf("failed to encode level: %w", err)
	}

	path := filepath.Join(m.levelsDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[levelID(filename)] = level
	m.mu.Unlock()

	return nil
}

// Count returns the number of cached levels
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.levels)
}

func (m *Manager) findLevelFile(name string) (string, error) {
	if isLevelFile(name) {
		path := filepath.Join(m.levelsDir, filepath.Base(name))
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", ErrLevelNotFound, name)
			}
			return "", fmt.Errorf("failed to stat level file: %w", err)
		}
		return path, nil
	}

	for _, ext := range levelExtensions {
		path := filepath.Join(m.levelsDir, filepath.Base(name)+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLevelNotFound, name)
}

func isLevelFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range levelExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// levelID strips a known extension: "starter.yaml" and "starter" share an ID
func levelID(name string) string {
	base := filepath.Base(name)
	if isLevelFile(base) {
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}
