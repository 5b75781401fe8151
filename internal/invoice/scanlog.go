package invoice

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const scanBucketName = "scans"

// Scan outcomes recorded in the log.
const (
	ScanExtracted = "extracted"
	ScanFailed    = "failed"
	ScanPersisted = "persisted"
)

// ScanRecord is one extraction attempt. The raw and sanitized model text
// are kept verbatim so a failed extraction can be diagnosed or manually
// corrected after the fact.
type ScanRecord struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	RawText   string    `json:"raw_text"`
	Sanitized string    `json:"sanitized_text"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ScanLog defines the interface for the extraction audit trail
type ScanLog interface {
	// SaveScan records or updates one extraction attempt
	SaveScan(scan *ScanRecord) error

	// GetScan retrieves a scan by ID
	GetScan(id string) (*ScanRecord, error)

	// ListScans returns all recorded scans
	ListScans() ([]*ScanRecord, error)

	// Close closes the log
	Close() error
}

// BoltScanLog implements the ScanLog interface using BoltDB
type BoltScanLog struct {
	db *bbolt.DB
}

// NewBoltScanLog creates a new BoltScanLog instance
func NewBoltScanLog(path string) (*BoltScanLog, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(scanBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltScanLog{db: db}, nil
}

// SaveScan records or updates one extraction attempt
func (b *BoltScanLog) SaveScan(scan *ScanRecord) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(scanBucketName))
		data, err := json.Marshal(scan)
		if err != nil {
			return fmt.Errorf("marshaling scan: %w", err)
		}
		return bucket.Put([]byte(scan.ID), data)
	})
}

// GetScan retrieves a scan by ID
func (b *BoltScanLog) GetScan(id string) (*ScanRecord, error) {
	var scan *ScanRecord
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(scanBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("scan not found: %s", id)
		}
		return json.Unmarshal(data, &scan)
	})
	if err != nil {
		return nil, err
	}
	return scan, nil
}

// ListScans returns all recorded scans
func (b *BoltScanLog) ListScans() ([]*ScanRecord, error) {
	scans := make([]*ScanRecord, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(scanBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var scan ScanRecord
			if err := json.Unmarshal(v, &scan); err != nil {
				return fmt.Errorf("unmarshaling scan: %w", err)
			}
			scans = append(scans, &scan)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return scans, nil
}

// Close closes the log
func (b *BoltScanLog) Close() error {
	return b.db.Close()
}
