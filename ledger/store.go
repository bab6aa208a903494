// Package ledger is the flat-file metadata store cataloging datasets and
// trained models. Each entity kind lives in one CSV file keyed by an
// opaque id column; every mutation rewrites the whole file through a
// temporary file and an atomic rename, so a crash mid-write never leaves
// a torn ledger behind.
package ledger

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/log"
)

// Record is implemented by every entity stored in a ledger.
type Record interface {
	RecordID() string
	RecordCreatedAt() time.Time
}

// Codec translates an entity to and from one CSV row.
type Codec[R Record] struct {
	Header []string
	Encode func(R) ([]string, error)
	Decode func([]string) (R, error)
}

// Store is an id-keyed record store over a single CSV file. The store
// itself enforces no id uniqueness; callers guarantee it by minting a
// fresh random id per created record (see NewID). A mutex serializes
// mutations within the process; cross-process writers still need
// external mutual exclusion.
type Store[R Record] struct {
	path  string
	codec Codec[R]
	log   log.Logger

	mu sync.Mutex
}

// NewStore creates a store over the CSV file at path. The file does not
// need to exist yet; an absent file reads as an empty collection.
func NewStore[R Record](path string, codec Codec[R], logger log.Logger) *Store[R] {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store[R]{path: path, codec: codec, log: logger}
}

// NewID mints a fresh random record id.
func NewID() string {
	return uuid.NewString()
}

// List returns every record, newest first. A missing or unreadable file
// is treated as an empty collection: availability wins over strict error
// surfacing here, and the condition is logged rather than raised.
func (s *Store[R]) List() []R {
	records := s.readAll()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordCreatedAt().After(records[j].RecordCreatedAt())
	})
	return records
}

// Get returns the record with the given id, scanning linearly.
func (s *Store[R]) Get(id string) (R, error) {
	var zero R
	for _, record := range s.readAll() {
		if record.RecordID() == id {
			return record, nil
		}
	}
	return zero, errors.NewNotFoundError(s.entityName(), id)
}

// Create appends a record. The record must already carry a fresh id and
// creation time. If any field fails to serialize, nothing is persisted.
func (s *Store[R]) Create(record R) error {
	if record.RecordID() == "" {
		return errors.NewValidationError("id", "record id must not be empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readAll()
	records = append(records, record)
	return s.writeAll(records)
}

// Update applies mutate to the stored record with the given id and
// rewrites the file. The updated record is returned so the caller can
// replace any in-memory copy instead of holding a stale one.
func (s *Store[R]) Update(id string, mutate func(R) R) (R, error) {
	var zero R

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readAll()
	for i, record := range records {
		if record.RecordID() != id {
			continue
		}
		updated := mutate(record)
		records[i] = updated
		if err := s.writeAll(records); err != nil {
			return zero, err
		}
		return updated, nil
	}
	return zero, errors.NewNotFoundError(s.entityName(), id)
}

// Delete removes the record with the given id. The boolean reports
// whether a row was actually removed, so callers can distinguish
// "already gone" from "just removed" without treating either as fatal.
func (s *Store[R]) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readAll()
	kept := records[:0]
	removed := false
	for _, record := range records {
		if record.RecordID() == id {
			removed = true
			continue
		}
		kept = append(kept, record)
	}
	if !removed {
		return false, nil
	}
	if err := s.writeAll(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Path returns the backing file path.
func (s *Store[R]) Path() string {
	return s.path
}

func (s *Store[R]) entityName() string {
	base := filepath.Base(s.path)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base
}

func (s *Store[R]) readAll() []R {
	file, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("ledger file unreadable, treating as empty", "path", s.path, "error", err)
		}
		return nil
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		s.log.Warn("ledger file corrupt, treating as empty", "path", s.path, "error", err)
		return nil
	}
	if len(rows) <= 1 {
		return nil
	}

	records := make([]R, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record, err := s.codec.Decode(row)
		if err != nil {
			s.log.Warn("skipping undecodable ledger row", "path", s.path, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records
}

// writeAll serializes every record first, then replaces the file in one
// atomic rename. Serialization failures surface before anything touches
// disk, so the previous generation stays intact.
func (s *Store[R]) writeAll(records []R) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, s.codec.Header)
	for _, record := range records {
		row, err := s.codec.Encode(record)
		if err != nil {
			return errors.Wrapf(err, "failed to serialize record %s", record.RecordID())
		}
		rows = append(rows, row)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return errors.NewStorageError("writeAll", s.path, err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStorageError("writeAll", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageError("writeAll", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageError("writeAll", s.path, err)
	}
	return nil
}
