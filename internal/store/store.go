// Package store holds the accumulator: every record the session has seen,
// deduplicated by identity and kept in first-seen order.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/artpick/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketRecords = []byte("records")

// RecordStore is the session accumulator.
//
// Membership and order always live in memory. Record payloads live in memory
// too unless a spill directory is given, in which case they are written to a
// bbolt file owned by this session and removed on Close.
type RecordStore struct {
	db   *bolt.DB
	path string

	mu    sync.RWMutex
	order []domain.ID
	index map[domain.ID]struct{}
	cache map[domain.ID]domain.Record // nil in spill mode
}

// NewRecordStore creates an empty accumulator. An empty spillDir keeps
// everything in memory.
func NewRecordStore(spillDir, sessionID string) (*RecordStore, error) {
	s := &RecordStore{index: make(map[domain.ID]struct{})}
	if spillDir == "" {
		s.cache = make(map[domain.ID]domain.Record)
		return s, nil
	}

	if err := os.MkdirAll(spillDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spill directory: %w", err)
	}

	name := "session.db"
	if sessionID != "" {
		name = "session-" + sessionID + ".db"
	}
	dbPath := filepath.Join(spillDir, name)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	})
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, err
	}

	s.db = db
	s.path = dbPath
	return s, nil
}

// Spilled reports whether payloads are kept on disk
func (s *RecordStore) Spilled() bool {
	return s.db != nil
}

// Close releases the spill file, if any
func (s *RecordStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// Merge appends the records not seen before and returns them in input order.
// Duplicates inside records are collapsed to their first occurrence.
func (s *RecordStore) Merge(records []domain.Record) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []domain.Record
	seen := make(map[domain.ID]struct{}, len(records))
	for _, r := range records {
		if _, ok := s.index[r.ID]; ok {
			continue
		}
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		added = append(added, r)
	}
	if len(added) == 0 {
		return nil, nil
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketRecords)
			for _, r := range added {
				data, err := json.Marshal(r)
				if err != nil {
					return err
				}
				if err := b.Put([]byte(r.ID), data); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to spill records: %w", err)
		}
	}

	for _, r := range added {
		s.index[r.ID] = struct{}{}
		s.order = append(s.order, r.ID)
		if s.cache != nil {
			s.cache[r.ID] = r
		}
	}
	return added, nil
}

// Contains reports whether id has been accumulated
func (s *RecordStore) Contains(id domain.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Len returns the number of distinct records accumulated
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Records returns every accumulated record in first-seen order
func (s *RecordStore) Records() ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Record, 0, len(s.order))
	if s.db == nil {
		for _, id := range s.order {
			out = append(out, s.cache[id])
		}
		return out, nil
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		for _, id := range s.order {
			v := b.Get([]byte(id))
			if v == nil {
				return fmt.Errorf("record %s missing from spill file", id)
			}
			var r domain.Record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
