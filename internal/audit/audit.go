package audit

import (
	"encoding/json"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/hiveintelligencexyz/hive-mcp/pkg/logger"
)

var bucketName = []byte("invocations")

// InvocationRecord is one audit entry per tool dispatch. Records are
// write-only on the request path; nothing reads them back while serving.
type InvocationRecord struct {
	TraceID    string `json:"trace_id"`
	Tool       string `json:"tool"`
	Outcome    string `json:"outcome"` // "ok" or "error"
	ErrorCode  int    `json:"error_code,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Timestamp  int64  `json:"timestamp"`
}

// Store persists invocation records using BBolt
type Store struct {
	db *bbolt.DB
}

// NewStore opens the audit database at the given path
func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	// Create bucket if not exists
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit store initialized", zap.String("path", path))
	return &Store{db: db}, nil
}

// Record saves one invocation record keyed by its trace ID
func (s *Store) Record(rec *InvocationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put([]byte(rec.TraceID), data)
	})
}

// Get retrieves an invocation record by trace ID
// Returns the record and true if found, nil and false otherwise
func (s *Store) Get(traceID string) (*InvocationRecord, bool) {
	var rec InvocationRecord
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		data := b.Get([]byte(traceID))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &rec)
	})

	if err != nil || !found {
		return nil, false
	}

	return &rec, true
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
