package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestInit verifies database initialization and schema creation.
func TestInit(t *testing.T) {
	s := newTestStorage(t)

	if _, err := os.Stat(s.Path()); os.IsNotExist(err) {
		t.Error("Database file not created")
	}
	if !s.Enabled() {
		t.Error("storage should be enabled after Init")
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("failed to read migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 applied migration, got %d", count)
	}
}

// TestInitTwiceKeepsSchema verifies migrations are not re-applied on reopen.
func TestInitTwiceKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	first := NewStorage(path)
	if err := first.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	first.RecordSearch(SearchRecord{SearchID: "a", Actor: "x", Mode: "knn~none -E", Timestamp: time.Now()})
	first.Close()

	second := NewStorage(path)
	if err := second.Init(); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	records, err := second.GetSearchHistory("", time.Time{})
	if err != nil {
		t.Fatalf("GetSearchHistory failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected record to survive reopen, got %d", len(records))
	}
}

func TestRecordAndQuerySearches(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now()

	records := []SearchRecord{
		{SearchID: "1", Actor: "alice", Mode: "knn~none -E", V: 0.1, A: 0.2, D: 0.3, K: 5, ResultsCount: 5, TopTerm: "calm", Timestamp: now.Add(-2 * time.Hour)},
		{SearchID: "2", Actor: "alice", Mode: "cos~none -E", V: 0.5, K: 3, ResultsCount: 3, TopTerm: "joy", Timestamp: now.Add(-time.Minute)},
		{SearchID: "3", Actor: "bob", Mode: "knn_d~d -S", K: 10, ResultsCount: 0, Timestamp: now},
	}
	for _, r := range records {
		if err := s.RecordSearch(r); err != nil {
			t.Fatalf("RecordSearch failed: %v", err)
		}
	}

	alice, err := s.GetSearchHistory("alice", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("GetSearchHistory failed: %v", err)
	}
	if len(alice) != 2 {
		t.Fatalf("expected 2 alice searches, got %d", len(alice))
	}
	if alice[0].SearchID != "2" || alice[0].TopTerm != "joy" || alice[0].V != 0.5 {
		t.Errorf("expected newest first, got %+v", alice[0])
	}
	if !alice[1].Timestamp.Equal(records[0].Timestamp.UTC()) {
		t.Errorf("timestamp round trip: got %v, want %v", alice[1].Timestamp, records[0].Timestamp)
	}

	recent, _ := s.GetSearchHistory("", now.Add(-time.Hour))
	if len(recent) != 2 {
		t.Errorf("expected 2 searches in the last hour, got %d", len(recent))
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Searches != 3 || stats.Actors != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if !stats.Newest.After(stats.Oldest) {
		t.Errorf("newest %v should be after oldest %v", stats.Newest, stats.Oldest)
	}
}

func TestCleanupAndClear(t *testing.T) {
	s := newTestStorage(t)

	s.RecordSearch(SearchRecord{SearchID: "old", Actor: "a", Mode: "knn~none -E", Timestamp: time.Now().Add(-40 * 24 * time.Hour)})
	s.RecordSearch(SearchRecord{SearchID: "new", Actor: "a", Mode: "knn~none -E", Timestamp: time.Now()})

	if err := s.Cleanup(30 * 24 * time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	records, _ := s.GetSearchHistory("a", time.Time{})
	if len(records) != 1 || records[0].SearchID != "new" {
		t.Errorf("expected only the new record, got %+v", records)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	stats, _ := s.Stats()
	if stats.Searches != 0 {
		t.Errorf("expected empty log, got %d", stats.Searches)
	}
}

// TestDisabledStorage verifies graceful degradation.
func TestDisabledStorage(t *testing.T) {
	s := &SQLiteStorage{enabled: false}

	if err := s.Init(); err != nil {
		t.Errorf("Init on disabled storage should not fail: %v", err)
	}
	if err := s.RecordSearch(SearchRecord{SearchID: "x"}); err != nil {
		t.Errorf("RecordSearch should be a no-op: %v", err)
	}
	records, err := s.GetSearchHistory("", time.Time{})
	if err != nil || len(records) != 0 {
		t.Errorf("expected empty history, got %v, %v", records, err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close should be a no-op: %v", err)
	}
}

func TestInitFailureDisables(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStorage(filepath.Join(blocker, "sub", "history.db"))
	if err := s.Init(); err == nil {
		t.Fatal("expected Init to fail under a regular file")
	}
	if s.Enabled() {
		t.Error("storage should disable itself after a failed Init")
	}
	if err := s.RecordSearch(SearchRecord{SearchID: "x"}); err != nil {
		t.Errorf("RecordSearch after failed Init should be a no-op: %v", err)
	}
}
