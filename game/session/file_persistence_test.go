package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession(t, "structure_test")
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	filePath := filepath.Join(tempDir, "structure_test.json")
	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	content := string(data)
	for _, field := range []string{`"id"`, `"level_id"`, `"created_at"`, `"last_accessed_at"`, `"level"`, `"game_state"`, `"solution_rotation"`} {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain %s", field)
		}
	}

	var persisted PersistedSessionData
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("Session file should be valid JSON: %v", err)
	}
	if persisted.LevelID != session.Level.ID {
		t.Errorf("Expected level_id %q, got %q", session.Level.ID, persisted.LevelID)
	}

	if _, err := os.Stat(filePath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should not be left behind")
	}
}

func TestFilePersistenceSkipsForeignFiles(t *testing.T) {
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tempDir, "nested.json"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := persistence.Save(newTestSession(t, "only")); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	ids, err := persistence.ListAll()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(ids) != 1 || ids[0] != "only" {
		t.Errorf("Expected [only], got %v", ids)
	}
}

func TestFilePersistenceCorruptFile(t *testing.T) {
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tempDir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := persistence.Load("broken"); err == nil {
		t.Error("Expected error loading a corrupt session file")
	}

	// A stored state that no longer matches its level is rejected
	session := newTestSession(t, "mismatch")
	data, err := persistedFrom(session)
	if err != nil {
		t.Fatalf("persistedFrom failed: %v", err)
	}
	data.GameState.Tiles[1].Shape = data.GameState.Tiles[1].Shape + 1
	raw, _ := json.Marshal(data)
	if err := os.WriteFile(filepath.Join(tempDir, "mismatch.json"), raw, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := persistence.Load("mismatch"); err == nil {
		t.Error("Expected error for a state that does not match its level")
	}
}
