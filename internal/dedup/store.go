// Package dedup tracks which listings have already been texted so the same
// deal is never sent twice. The seen-set is a map of dedup key to first-seen
// time, persisted as one JSON object through a storage.Backend. Lifecycle is
// load once, mutate in memory, save once at the end of the run; overlapping
// runs are not coordinated and the last save wins.
package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vinwatch/wine-deals-bot/internal/storage"
)

const seenFilename = "seen.json"

// Store is the persisted set of already-notified listing keys
type Store struct {
	backend   storage.Backend
	retention time.Duration
	seen      map[string]time.Time
	now       func() time.Time
}

// NewStore creates a seen-set backed by the given storage. Entries older
// than retentionDays are pruned at Save; flash-sale listings rotate much
// faster than any sane retention, so expiry only bounds storage growth.
func NewStore(backend storage.Backend, retentionDays int) *Store {
	return &Store{
		backend:   backend,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		seen:      make(map[string]time.Time),
		now:       time.Now,
	}
}

// Load reads the persisted seen-set. A missing object is a normal first
// run. Any other failure degrades to an empty set: the cost is a possible
// duplicate text, never a lost one.
func (s *Store) Load() error {
	s.seen = make(map[string]time.Time)

	data, err := s.backend.Retrieve(seenFilename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logrus.Info("No seen-set found, starting empty")
			return nil
		}
		return fmt.Errorf("failed to load seen-set: %w", err)
	}

	if err := json.Unmarshal(data, &s.seen); err != nil {
		s.seen = make(map[string]time.Time)
		return fmt.Errorf("failed to parse seen-set: %w", err)
	}

	logrus.Debugf("Loaded seen-set with %d entries", len(s.seen))
	return nil
}

// IsNew reports whether the key has not been notified before
func (s *Store) IsNew(key string) bool {
	_, found := s.seen[key]
	return !found
}

// MarkSeen records that the key has been notified in this run
func (s *Store) MarkSeen(key string) {
	s.seen[key] = s.now()
}

// Save prunes expired entries and writes the seen-set back. A save failure
// means every future run may re-send notifications, so callers should treat
// it as the most serious error a run can produce.
func (s *Store) Save() error {
	cutoff := s.now().Add(-s.retention)
	for key, firstSeen := range s.seen {
		if firstSeen.Before(cutoff) {
			delete(s.seen, key)
		}
	}

	data, err := json.Marshal(s.seen)
	if err != nil {
		return fmt.Errorf("failed to marshal seen-set: %w", err)
	}

	if err := s.backend.Store(seenFilename, data); err != nil {
		return fmt.Errorf("failed to save seen-set: %w", err)
	}

	logrus.Debugf("Saved seen-set with %d entries", len(s.seen))
	return nil
}

// Len returns the number of tracked keys
func (s *Store) Len() int {
	return len(s.seen)
}
