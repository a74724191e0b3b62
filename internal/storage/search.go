package storage

import (
	"log"
	"time"
)

// RecordSearch appends a search to the log. Write failures are logged and
// swallowed so a broken database never fails a search.
func (s *SQLiteStorage) RecordSearch(search SearchRecord) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO search_history
			(search_id, actor, mode, valence, arousal, dominance, k, results_count, top_term, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		search.SearchID,
		search.Actor,
		search.Mode,
		search.V,
		search.A,
		search.D,
		search.K,
		search.ResultsCount,
		search.TopTerm,
		formatTime(search.Timestamp),
	)

	if err != nil {
		log.Printf("Warning: failed to record search: %v", err)
	}

	return nil
}

// GetSearchHistory returns searches since a given time, newest first.
func (s *SQLiteStorage) GetSearchHistory(actor string, since time.Time) ([]SearchRecord, error) {
	if !s.enabled || s.db == nil {
		return []SearchRecord{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT search_id, actor, mode, valence, arousal, dominance, k, results_count, top_term, timestamp
		FROM search_history
		WHERE (? = '' OR actor = ?) AND timestamp >= ?
		ORDER BY timestamp DESC, id DESC
	`

	rows, err := s.db.Query(query, actor, actor, formatTime(since))
	if err != nil {
		log.Printf("Warning: failed to query search history: %v", err)
		return []SearchRecord{}, nil
	}
	defer rows.Close()

	records := []SearchRecord{}
	for rows.Next() {
		var r SearchRecord
		var timestampStr string

		if err := rows.Scan(
			&r.SearchID,
			&r.Actor,
			&r.Mode,
			&r.V,
			&r.A,
			&r.D,
			&r.K,
			&r.ResultsCount,
			&r.TopTerm,
			&timestampStr,
		); err != nil {
			log.Printf("Warning: failed to scan search record: %v", err)
			continue
		}

		r.Timestamp = parseTime(timestampStr)
		records = append(records, r)
	}

	return records, rows.Err()
}

// Stats summarizes the search log.
func (s *SQLiteStorage) Stats() (Stats, error) {
	if !s.enabled || s.db == nil {
		return Stats{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	var oldest, newest string
	row := s.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT actor), COALESCE(MIN(timestamp), ''), COALESCE(MAX(timestamp), '')
		FROM search_history
	`)
	if err := row.Scan(&stats.Searches, &stats.Actors, &oldest, &newest); err != nil {
		return Stats{}, err
	}

	stats.Oldest = parseTime(oldest)
	stats.Newest = parseTime(newest)
	return stats, nil
}

// Clear deletes every record.
func (s *SQLiteStorage) Clear() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM search_history")
	return err
}

// Cleanup removes records older than the retention period.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := formatTime(time.Now().Add(-retention))

	if _, err := s.db.Exec("DELETE FROM search_history WHERE timestamp < ?", cutoff); err != nil {
		log.Printf("Warning: failed to cleanup search_history: %v", err)
	}

	if _, err := s.db.Exec("VACUUM"); err != nil {
		log.Printf("Warning: failed to vacuum database: %v", err)
	}

	return nil
}
