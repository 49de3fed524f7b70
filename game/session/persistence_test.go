package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/service"
)

func newTestSession(t *testing.T, id string) *service.Session {
	t.Helper()
	level := createTestLevel()
	eng, err := engine.NewEngine(level)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return &service.Session{
		ID:             id,
		Engine:         eng,
		Level:          level,
		CreatedAt:      time.Now().Add(-time.Minute),
		LastAccessedAt: time.Now(),
	}
}

// persistenceStores builds one fresh instance of every store
func persistenceStores(t *testing.T) map[string]SessionPersistence {
	t.Helper()

	files, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	db, err := NewSQLitePersistence(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Failed to create sqlite persistence: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]SessionPersistence{
		"file":   files,
		"sqlite": db,
	}
}

func TestPersistence_Contract(t *testing.T) {
	for name, store := range persistenceStores(t) {
		t.Run(name, func(t *testing.T) {
			session := newTestSession(t, "test1")

			t.Run("save and load", func(t *testing.T) {
				if err := store.Save(session); err != nil {
					t.Fatalf("Failed to save session: %v", err)
				}
				if !store.Exists("test1") {
					t.Fatal("Session should exist after save")
				}

				loaded, err := store.Load("test1")
				if err != nil {
					t.Fatalf("Failed to load session: %v", err)
				}
				if loaded.ID != "test1" {
					t.Errorf("Expected ID test1, got %s", loaded.ID)
				}
				if loaded.Level.Name != session.Level.Name {
					t.Errorf("Expected level %q, got %q", session.Level.Name, loaded.Level.Name)
				}
				if !loaded.CreatedAt.Equal(session.CreatedAt) {
					t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, session.CreatedAt)
				}
			})

			t.Run("rotations and history survive", func(t *testing.T) {
				if _, err := session.Engine.Rotate(0, 1); err != nil {
					t.Fatalf("Rotate failed: %v", err)
				}
				if _, err := session.Engine.Rotate(0, 0); err == nil {
					t.Fatal("Expected the landmark to be fixed")
				}
				if err := store.Save(session); err != nil {
					t.Fatalf("Failed to save session: %v", err)
				}

				loaded, err := store.Load("test1")
				if err != nil {
					t.Fatalf("Failed to load session: %v", err)
				}
				if got := loaded.Engine.Grid().At(engine.Position{Row: 0, Col: 1}).Rotation; got != 90 {
					t.Errorf("Expected rotation 90 after reload, got %d", got)
				}
				state := loaded.Engine.GetState()
				if state.TotalRotations != 2 || len(state.RotationHistory) != 2 {
					t.Errorf("Expected 2 recorded rotations, got %d/%d", state.TotalRotations, len(state.RotationHistory))
				}
				if state.RotationHistory[1].Success {
					t.Error("Rejected rotation should stay rejected after reload")
				}
			})

			t.Run("completion survives", func(t *testing.T) {
				if _, err := session.Engine.Rotate(0, 2); err != nil {
					t.Fatalf("Rotate failed: %v", err)
				}
				if !session.Engine.IsComplete() {
					t.Fatal("Expected level complete")
				}
				if err := store.Save(session); err != nil {
					t.Fatalf("Failed to save session: %v", err)
				}

				loaded, err := store.Load("test1")
				if err != nil {
					t.Fatalf("Failed to load session: %v", err)
				}
				if !loaded.Engine.IsComplete() {
					t.Error("Completed level should reload complete")
				}
				if _, err := loaded.Engine.Rotate(0, 1); !errors.Is(err, engine.ErrLevelComplete) {
					t.Errorf("Expected ErrLevelComplete after reload, got %v", err)
				}
			})

			t.Run("list all", func(t *testing.T) {
				if err := store.Save(newTestSession(t, "test2")); err != nil {
					t.Fatalf("Failed to save session: %v", err)
				}
				ids, err := store.ListAll()
				if err != nil {
					t.Fatalf("Failed to list sessions: %v", err)
				}
				found := map[string]bool{}
				for _, id := range ids {
					found[id] = true
				}
				if !found["test1"] || !found["test2"] || len(ids) != 2 {
					t.Errorf("Expected [test1 test2], got %v", ids)
				}
			})

			t.Run("delete", func(t *testing.T) {
				if err := store.Delete("test2"); err != nil {
					t.Fatalf("Failed to delete session: %v", err)
				}
				if store.Exists("test2") {
					t.Error("Session should not exist after delete")
				}
				if err := store.Delete("test2"); !errors.Is(err, ErrSessionNotFound) {
					t.Errorf("Expected ErrSessionNotFound, got %v", err)
				}
			})

			t.Run("load missing", func(t *testing.T) {
				if _, err := store.Load("nonexistent"); !errors.Is(err, ErrSessionNotFound) {
					t.Errorf("Expected ErrSessionNotFound, got %v", err)
				}
			})

			t.Run("nil session", func(t *testing.T) {
				if err := store.Save(nil); err == nil {
					t.Error("Expected error for nil session")
				}
			})
		})
	}
}
