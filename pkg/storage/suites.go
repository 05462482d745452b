package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

var suitesBucket = []byte("suites")

// Record is one persisted suite, keyed by the problem it was generated for.
type Record struct {
	ProblemID string           `json:"problem_id"`
	RunID     string           `json:"run_id"`
	Category  casegen.Category `json:"category"`
	Seed      uint64           `json:"seed"`
	CreatedAt time.Time        `json:"created_at"`
	TestCases casegen.Suite    `json:"test_cases"`
}

// SuiteStore keeps the latest suite per problem on top of a Backend.
type SuiteStore struct {
	backend Backend
	now     func() time.Time
}

// NewSuiteStore wraps backend. The suites bucket is created on first Save,
// so read-only commands leave a fresh database untouched.
func NewSuiteStore(backend Backend) *SuiteStore {
	return &SuiteStore{backend: backend, now: time.Now}
}

func (s *SuiteStore) hasSuites() (bool, error) {
	exists, err := s.backend.BucketExists(suitesBucket)
	if err != nil {
		return false, fmt.Errorf("%w: %w", casegen.ErrPersistence, err)
	}
	return exists, nil
}

// OpenSuiteStore opens a bbolt-backed store at path.
func OpenSuiteStore(path string) (*SuiteStore, error) {
	backend, err := NewBboltBackend(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", casegen.ErrPersistence, err)
	}
	return NewSuiteStore(backend), nil
}

// Save replaces whatever suite was stored for rec.ProblemID. A missing RunID
// or CreatedAt is filled in, and the stored record is returned.
func (s *SuiteStore) Save(rec Record) (Record, error) {
	if rec.ProblemID == "" {
		return Record{}, casegen.ErrMissingProblemID
	}
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	if rec.TestCases == nil {
		rec.TestCases = casegen.Suite{}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("%w: marshal suite: %w", casegen.ErrPersistence, err)
	}
	if err := s.backend.CreateBucket(suitesBucket); err != nil {
		return Record{}, fmt.Errorf("%w: create suites bucket: %w", casegen.ErrPersistence, err)
	}
	if err := PutString(s.backend, suitesBucket, rec.ProblemID, data); err != nil {
		return Record{}, fmt.Errorf("%w: store suite %q: %w", casegen.ErrPersistence, rec.ProblemID, err)
	}
	return rec, nil
}

// Load returns the suite stored for problemID.
func (s *SuiteStore) Load(problemID string) (Record, error) {
	if problemID == "" {
		return Record{}, casegen.ErrMissingProblemID
	}
	if exists, err := s.hasSuites(); err != nil {
		return Record{}, err
	} else if !exists {
		return Record{}, fmt.Errorf("%w: %s", casegen.ErrSuiteNotFound, problemID)
	}
	data, err := GetString(s.backend, suitesBucket, problemID)
	if err != nil {
		return Record{}, fmt.Errorf("%w: load suite %q: %w", casegen.ErrPersistence, problemID, err)
	}
	if data == nil {
		return Record{}, fmt.Errorf("%w: %s", casegen.ErrSuiteNotFound, problemID)
	}
	return decodeRecord(data)
}

// List returns every stored record ordered by problem ID.
func (s *SuiteStore) List() ([]Record, error) {
	if exists, err := s.hasSuites(); err != nil || !exists {
		return nil, err
	}
	var records []Record
	err := s.backend.ForEach(suitesBucket, func(_, v []byte) error {
		rec, err := decodeRecord(v)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list suites: %w", casegen.ErrPersistence, err)
	}
	return records, nil
}

// Delete removes the suite stored for problemID.
func (s *SuiteStore) Delete(problemID string) error {
	if _, err := s.Load(problemID); err != nil {
		return err
	}
	if err := DeleteString(s.backend, suitesBucket, problemID); err != nil {
		return fmt.Errorf("%w: delete suite %q: %w", casegen.ErrPersistence, problemID, err)
	}
	return nil
}

// Purge removes every stored suite and reports how many there were.
func (s *SuiteStore) Purge() (int, error) {
	records, err := s.List()
	if err != nil {
		return 0, err
	}
	if err := s.backend.DeleteBucket(suitesBucket); err != nil {
		return 0, fmt.Errorf("%w: purge suites: %w", casegen.ErrPersistence, err)
	}
	return len(records), nil
}

// Close releases the underlying backend.
func (s *SuiteStore) Close() error {
	return s.backend.Close()
}

func decodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: decode suite: %w", casegen.ErrPersistence, err)
	}
	return rec, nil
}
