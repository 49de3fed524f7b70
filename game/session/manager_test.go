package session

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/progression"
)

func createTestLevel() *engine.Level {
	level := progression.FallbackLevel()
	level.Name = "Test Level"
	return level
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", level)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Engine == nil {
			t.Error("Expected engine to be initialized")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", level)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID == "" {
			t.Error("Expected auto-generated session ID")
		}
		if len(session.ID) != sessionIDLength {
			t.Errorf("Expected %d-character session ID, got %d characters", sessionIDLength, len(session.ID))
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", level)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", level)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		invalidLevel := createTestLevel()
		invalidLevel.Name = "" // Make level invalid
		_, err := manager.Create("invalid-test", invalidLevel)
		if err == nil {
			t.Error("Expected error for invalid level")
		}
	})

	t.Run("nil level", func(t *testing.T) {
		if _, err := manager.Create("nil-test", nil); err == nil {
			t.Error("Expected error for nil level")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	// Create test session
	created, _ := manager.Create("get-test", level)

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session.ID != created.ID {
			t.Errorf("Expected session ID '%s', got '%s'", created.ID, session.ID)
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session.ID != created.ID {
			t.Errorf("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	t.Run("create new session", func(t *testing.T) {
		session, err := manager.GetOrCreate("new-session", level)
		if err != nil {
			t.Fatalf("Failed to get or create session: %v", err)
		}
		if session.ID != "new-session" {
			t.Errorf("Expected session ID 'new-session', got '%s'", session.ID)
		}
	})

	t.Run("get existing session", func(t *testing.T) {
		// Should get the same session without creating new one
		session, err := manager.GetOrCreate("new-session", level)
		if err != nil {
			t.Fatalf("Failed to get existing session: %v", err)
		}
		if session.ID != "new-session" {
			t.Errorf("Expected same session ID")
		}
	})
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	// Create test session
	manager.Create("delete-test", level)

	t.Run("delete existing session", func(t *testing.T) {
		err := manager.Delete("delete-test")
		if err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}

		// Verify session is deleted
		_, err = manager.Get("delete-test")
		if err != ErrSessionNotFound {
			t.Error("Expected session to be deleted")
		}
	})

	t.Run("delete non-existent session", func(t *testing.T) {
		err := manager.Delete("non-existent")
		if err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("case-insensitive delete", func(t *testing.T) {
		manager.Create("case-test", level)
		err := manager.Delete("CASE-TEST")
		if err != nil {
			t.Fatalf("Failed to delete with different case: %v", err)
		}
		_, err = manager.Get("case-test")
		if err != ErrSessionNotFound {
			t.Error("Expected session to be deleted regardless of case")
		}
	})
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	// Create multiple sessions
	session1, _ := manager.Create("list-1", level)
	session2, _ := manager.Create("list-2", level)
	session3, _ := manager.Create("list-3", level)

	sessions := manager.List()

	if len(sessions) < 3 {
		t.Errorf("Expected at least 3 sessions, got %d", len(sessions))
	}

	// Verify all created sessions are in the list
	foundSessions := make(map[string]bool)
	for _, s := range sessions {
		foundSessions[s.ID] = true
	}

	if !foundSessions[session1.ID] {
		t.Error("Session 1 not found in list")
	}
	if !foundSessions[session2.ID] {
		t.Error("Session 2 not found in list")
	}
	if !foundSessions[session3.ID] {
		t.Error("Session 3 not found in list")
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	// Create sessions with different last access times
	active, _ := manager.Create("active", level)
	expired, _ := manager.Create("expired", level)

	// Simulate expired session
	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	// Clean up sessions older than 1 hour
	deleted := manager.CleanupExpiredSessions(1 * time.Hour)

	if deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}

	// Verify expired session is deleted
	_, err := manager.Get("expired")
	if err != ErrSessionNotFound {
		t.Error("Expected expired session to be deleted")
	}

	// Verify active session still exists
	_, err = manager.Get("active")
	if err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	session, _ := manager.Create("access-test", level)
	originalTime := session.LastAccessedAt

	// Wait a bit to ensure time difference
	time.Sleep(10 * time.Millisecond)

	err := manager.UpdateLastAccessed("access-test")
	if err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}

	// Get session again to verify update
	updated, _ := manager.Get("access-test")
	if !updated.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}
}

func TestManager_Exists(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	manager.Create("exists-test", level)

	t.Run("existing session", func(t *testing.T) {
		if !manager.sessionExists("exists-test") {
			t.Error("Expected session to exist")
		}
	})

	t.Run("case-insensitive existence check", func(t *testing.T) {
		if !manager.sessionExists("EXISTS-TEST") {
			t.Error("Expected session to exist regardless of case")
		}
	})

	t.Run("non-existent session", func(t *testing.T) {
		if manager.sessionExists("non-existent") {
			t.Error("Expected session not to exist")
		}
	})
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	// Test concurrent session creation
	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sessionID := strings.ToLower(generateRandomID())
			_, err := manager.Create(sessionID, level)
			if err != nil && err != ErrSessionAlreadyExists {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	// Check for unexpected errors
	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	// Verify sessions were created
	sessions := manager.List()
	if len(sessions) == 0 {
		t.Error("Expected sessions to be created")
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	// Create two sessions
	session1, _ := manager.Create("iso-1", level)
	session2, _ := manager.Create("iso-2", level)

	// Modify session 1
	if _, err := session1.Engine.Rotate(0, 1); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	pos := engine.Position{Row: 0, Col: 1}
	if got := session2.Engine.Grid().At(pos).Rotation; got != 0 {
		t.Errorf("Session 2 should not be affected by session 1 rotations, got %d", got)
	}
	if session1.Engine.Grid().At(pos).Rotation == session2.Engine.Grid().At(pos).Rotation {
		t.Error("Sessions should have independent game state")
	}
	if level.Tiles[1].Rotation != 0 {
		t.Error("Rotations must never mutate the shared level")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	generatedIDs := make(map[string]bool)

	// Generate multiple sessions and check for uniqueness
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", level)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		// Verify ID format (lowercase hex)
		if len(session.ID) != sessionIDLength || strings.Trim(session.ID, "0123456789abcdef") != "" {
			t.Errorf("Expected %d lowercase hex characters, got %q", sessionIDLength, session.ID)
		}
	}
}

// Helper function to generate random ID for testing
func generateRandomID() string {
	return "test-" + time.Now().Format("150405.000000")
}

func TestManager_ListOldestFirst(t *testing.T) {
	manager := NewManager()
	level := createTestLevel()

	newer, _ := manager.Create("newer", level)
	older, _ := manager.Create("older", level)
	tieB, _ := manager.Create("tie-b", level)
	tieA, _ := manager.Create("tie-a", level)

	base := time.Now()
	older.CreatedAt = base.Add(-time.Hour)
	tieA.CreatedAt = base.Add(-time.Minute)
	tieB.CreatedAt = base.Add(-time.Minute)
	newer.CreatedAt = base

	var got []string
	for _, s := range manager.List() {
		got = append(got, s.ID)
	}
	want := []string{"older", "tie-a", "tie-b", "newer"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("List order = %v, want %v", got, want)
	}
}
