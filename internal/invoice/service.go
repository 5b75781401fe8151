package invoice

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/invoice-scanner/internal/extraction"
)

// ErrNoPending is returned when an operation needs a pending invoice and
// there is none.
var ErrNoPending = errors.New("no pending invoice")

// IDGenerator generates unique IDs for scan records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// PendingInvoice is the single-slot pending-edit buffer: the record
// extracted from the most recent scan, mutable through UpdatePending until
// it is saved or discarded. Once saved, the rows are immutable.
type PendingInvoice struct {
	ScanID  string        `json:"scan_id"`
	Invoice InvoiceRecord `json:"invoice"`
	Items   []ItemRecord  `json:"items"`
}

// Service runs the extraction-to-persistence cycle: scan an uploaded
// invoice, hold the extracted record for user correction, then persist it
// through the coordinator. One cycle runs to completion before another
// begins; the mutex is the coarse lock that serializes persistence against
// the non-atomic full-file rewrites underneath.
type Service struct {
	extractor   extraction.Extractor
	coordinator *Coordinator
	invoices    *InvoiceStore
	items       *ItemStore
	scanLog     ScanLog
	idGenerator IDGenerator
	timeSource  TimeSource

	mu      sync.Mutex
	pending *PendingInvoice
}

// NewService creates a Service with default ID generator and time source
func NewService(extractor extraction.Extractor, invoices *InvoiceStore, items *ItemStore, scanLog ScanLog) *Service {
	return NewServiceWithDeps(extractor, invoices, items, scanLog, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a Service with custom dependencies for testing
func NewServiceWithDeps(extractor extraction.Extractor, invoices *InvoiceStore, items *ItemStore, scanLog ScanLog, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		extractor:   extractor,
		coordinator: NewCoordinator(invoices, items),
		invoices:    invoices,
		items:       items,
		scanLog:     scanLog,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ScanInvoice runs one extraction: model call, sanitize, validate. On
// success the result replaces the pending buffer and is returned. On
// validation failure the pending buffer is left untouched (no partial
// record is ever shown) and the attempt is still written to the scan log
// with its raw and sanitized text.
func (s *Service) ScanInvoice(filename string, data []byte, contentType string) (*PendingInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.extractor.ExtractInvoice(data, contentType)
	if err != nil {
		slog.Error("Failed to extract invoice",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("extracting invoice: %w", err)
	}

	scan := &ScanRecord{
		ID:        s.idGenerator.Generate(),
		Filename:  filename,
		RawText:   raw,
		Sanitized: extraction.Sanitize(raw),
		CreatedAt: s.timeSource.Now(),
	}

	result, err := extraction.Validate(scan.Sanitized)
	if err != nil {
		scan.Status = ScanFailed
		scan.Error = err.Error()
		s.recordScan(scan)
		return nil, fmt.Errorf("validating extraction: %w", err)
	}

	scan.Status = ScanExtracted
	s.recordScan(scan)

	inv := InvoiceRecord{
		InvoiceNo:          result.Invoice.InvoiceNo,
		InvoiceDate:        result.Invoice.InvoiceDate,
		TotalQty:           result.Invoice.TotalQty,
		TotalAmount:        result.Invoice.TotalAmount,
		TotalAmountInWords: result.Invoice.TotalAmountInWords,
	}
	items := make([]ItemRecord, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, ItemRecord{
			InvoiceNo:    inv.InvoiceNo,
			SerialNumber: it.SerialNumber,
			ItemName:     it.ItemName,
			Qty:          it.Qty,
			Rate:         it.Rate,
			Amount:       it.Amount,
		})
	}

	s.pending = &PendingInvoice{
		ScanID:  scan.ID,
		Invoice: inv,
		Items:   items,
	}
	return s.pending, nil
}

// recordScan writes to the scan log. Log failures are not fatal to the
// cycle; the pipeline result matters more than the audit trail.
func (s *Service) recordScan(scan *ScanRecord) {
	if err := s.scanLog.SaveScan(scan); err != nil {
		slog.Warn("Failed to record scan", "scan_id", scan.ID, "error", err)
	}
}

// Pending returns the pending invoice, or ErrNoPending when idle.
func (s *Service) Pending() (*PendingInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil, ErrNoPending
	}
	return s.pending, nil
}

// UpdatePending replaces the pending invoice's contents with the user's
// edits.
func (s *Service) UpdatePending(inv InvoiceRecord, items []ItemRecord) (*PendingInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil, ErrNoPending
	}
	s.pending.Invoice = inv
	s.pending.Items = items
	return s.pending, nil
}

// SavePending persists the pending invoice through the coordinator. On
// success the buffer is cleared and the scan is marked persisted. On
// failure the buffer is kept intact so the save can be retried without
// re-running extraction.
func (s *Service) SavePending() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return ErrNoPending
	}

	if err := s.coordinator.Persist(s.pending.Invoice, s.pending.Items); err != nil {
		slog.Error("Failed to persist invoice",
			"invoice_no", s.pending.Invoice.InvoiceNo,
			"error", err,
		)
		return err
	}

	if scan, err := s.scanLog.GetScan(s.pending.ScanID); err == nil {
		scan.Status = ScanPersisted
		s.recordScan(scan)
	}

	s.pending = nil
	return nil
}

// DiscardPending drops the pending invoice and returns to idle.
func (s *Service) DiscardPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
}

// ListInvoices returns all persisted invoice headers, oldest first.
func (s *Service) ListInvoices() ([]InvoiceRecord, error) {
	invoices, err := s.invoices.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, nil
}

// ListItems returns all persisted line items, oldest first.
func (s *Service) ListItems() ([]ItemRecord, error) {
	items, err := s.items.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// GetScan retrieves one scan log entry.
func (s *Service) GetScan(id string) (*ScanRecord, error) {
	scan, err := s.scanLog.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}
	return scan, nil
}

// ListScans returns the extraction audit trail.
func (s *Service) ListScans() ([]*ScanRecord, error) {
	scans, err := s.scanLog.ListScans()
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return scans, nil
}

// Summary computes the dashboard aggregates over the persisted stores.
func (s *Service) Summary() (*Summary, error) {
	invoices, err := s.invoices.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading invoices: %w", err)
	}
	items, err := s.items.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	return Summarize(invoices, items), nil
}

// Reconcile reports referential damage between the two stores.
func (s *Service) Reconcile() (*ReconcileReport, error) {
	return s.coordinator.Reconcile()
}
