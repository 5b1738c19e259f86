package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestManagerSetGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	path := writeTempFile(t, dir, "a.js", "require('./b')")
	result := map[string]interface{}{"dependencies": []string{"./b"}}

	if err := m.Set(path, result); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, ok := m.Get(path)
	if !ok {
		t.Fatal("Get: cache miss right after Set")
	}
	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
}

func TestManagerInvalidatesOnContentChange(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	path := writeTempFile(t, dir, "a.js", "require('./b')")
	if err := m.Set(path, map[string]interface{}{"v": 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	writeTempFile(t, dir, "a.js", "require('./c')")
	if _, ok := m.Get(path); ok {
		t.Fatal("Get returned a hit after the file's content changed")
	}
}

func TestManagerInvalidateAndClear(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	path := writeTempFile(t, dir, "a.js", "require('./b')")
	if err := m.Set(path, map[string]interface{}{"v": 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := m.Invalidate(path); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := m.Get(path); ok {
		t.Fatal("Get returned a hit after Invalidate")
	}

	if err := m.Set(path, map[string]interface{}{"v": 2}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := m.Get(path); ok {
		t.Fatal("Get returned a hit after Clear")
	}
}

func TestManagerStats(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	path := writeTempFile(t, dir, "a.js", "require('./b')")
	m.Get(path) // miss
	m.Set(path, map[string]interface{}{"v": 1})
	m.Get(path) // hit

	stats, err := m.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Fatalf("stats = %+v, want 1 hit and 1 miss", stats)
	}
	if stats.ModuleCount != 1 {
		t.Fatalf("ModuleCount = %d, want 1", stats.ModuleCount)
	}
}

func TestManagerVerifyIntegrity(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	path := writeTempFile(t, dir, "a.js", "require('./b')")
	if err := m.Set(path, map[string]interface{}{"v": 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	checked, mismatched, err := m.VerifyIntegrity()
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if checked != 1 || mismatched != 0 {
		t.Fatalf("VerifyIntegrity = (%d, %d), want (1, 0)", checked, mismatched)
	}
}

func TestManagerPruneOlderThan(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	old := writeTempFile(t, dir, "old.js", "1")
	fresh := writeTempFile(t, dir, "fresh.js", "2")
	if err := m.Set(old, map[string]interface{}{"v": 1}); err != nil {
		t.Fatalf("Set old: %v", err)
	}

	cutoff := time.Now()
	time.Sleep(5 * time.Millisecond)

	if err := m.Set(fresh, map[string]interface{}{"v": 2}); err != nil {
		t.Fatalf("Set fresh: %v", err)
	}

	removed, err := m.PruneOlderThan(cutoff)
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if removed != 1 {
		t.Fatalf("PruneOlderThan removed %d entries, want 1", removed)
	}
	if _, ok := m.Get(old); ok {
		t.Error("expected old entry to be pruned")
	}
	if _, ok := m.Get(fresh); !ok {
		t.Error("expected fresh entry to survive prune")
	}
}
