package tracking

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/khanglvm/delta-ego/internal/search"
	"github.com/khanglvm/delta-ego/internal/storage"
)

type mockStorage struct {
	mu      sync.Mutex
	records []storage.SearchRecord
	initErr error
}

func (m *mockStorage) Init() error { return m.initErr }

func (m *mockStorage) RecordSearch(r storage.SearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *mockStorage) GetSearchHistory(actor string, since time.Time) ([]storage.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.SearchRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *mockStorage) Stats() (storage.Stats, error)         { return storage.Stats{}, nil }
func (m *mockStorage) Clear() error                          { return nil }
func (m *mockStorage) Cleanup(retention time.Duration) error { return nil }
func (m *mockStorage) Close() error                          { return nil }

func (m *mockStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func TestTrackerFlushesEvents(t *testing.T) {
	store := &mockStorage{}
	tracker := NewTracker(store)

	for i := 0; i < 25; i++ {
		tracker.Track(SearchEvent{SearchID: NewSearchID(), Actor: "a", Timestamp: time.Now()})
	}

	// Stop drains whatever the ticker has not flushed yet.
	tracker.Stop()

	if got := store.count(); got != 25 {
		t.Errorf("expected 25 recorded searches, got %d", got)
	}
}

func TestTrackerPeriodicFlush(t *testing.T) {
	store := &mockStorage{}
	tracker := NewTracker(store)
	defer tracker.Stop()

	tracker.Track(SearchEvent{SearchID: "one", Actor: "a"})

	deadline := time.Now().Add(2 * time.Second)
	for store.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if store.count() != 1 {
		t.Error("expected event to be flushed by the ticker")
	}
}

func TestTrackerDisable(t *testing.T) {
	store := &mockStorage{}
	tracker := NewTracker(store)

	tracker.Disable()
	if tracker.IsEnabled() {
		t.Fatal("expected tracker to be disabled")
	}
	tracker.Track(SearchEvent{SearchID: "ignored"})
	tracker.Stop()

	if store.count() != 0 {
		t.Errorf("disabled tracker recorded %d events", store.count())
	}
}

func TestTrackerInitFailure(t *testing.T) {
	tracker := NewTracker(&mockStorage{initErr: errors.New("boom")})
	defer tracker.Stop()

	if tracker.IsEnabled() {
		t.Error("tracker should disable itself when storage cannot init")
	}

	nilTracker := NewTracker(nil)
	defer nilTracker.Stop()
	nilTracker.Enable()
	if nilTracker.IsEnabled() {
		t.Error("tracker without storage cannot be enabled")
	}
}

func TestNewSearchEvent(t *testing.T) {
	resp := &search.Response{
		Query:   search.QueryPoint{V: 0.1, A: 0.2, D: 0.3, K: 2},
		Mode:    "knn~l2 -S",
		Results: []search.Result{{Term: "calm"}, {Term: "joy"}},
		Count:   2,
	}
	at := time.Now()

	e := NewSearchEvent("alice", resp, at)
	if e.SearchID == "" {
		t.Error("expected a generated search ID")
	}
	if e.TopTerm != "calm" || e.K != 2 || e.ResultsCount != 2 || e.Actor != "alice" {
		t.Errorf("unexpected event: %+v", e)
	}

	resp.SearchID = "fixed"
	resp.Results = nil
	e = NewSearchEvent("alice", resp, at)
	if e.SearchID != "fixed" || e.TopTerm != "" {
		t.Errorf("unexpected event: %+v", e)
	}

	rec := e.ToStorage()
	if rec.SearchID != "fixed" || rec.Mode != "knn~l2 -S" || !rec.Timestamp.Equal(at) {
		t.Errorf("unexpected storage record: %+v", rec)
	}
}
