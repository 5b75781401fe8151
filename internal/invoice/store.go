package invoice

import (
	"encoding/csv"
	"fmt"
	"os"
)

// table handles the flat-file mechanics shared by both stores: one CSV
// file with a fixed header row, created with the header and zero rows if
// absent at first use. Append reloads the whole table and rewrites the
// file, so each append costs O(rows). Acceptable for low-frequency invoice
// ingestion; a known ceiling beyond that.
//
// The read-then-rewrite is not atomic with respect to other writers.
// Single active writer assumed.
type table struct {
	path    string
	columns []string
}

func newTable(path string, columns []string) (*table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeRows(path, columns, nil); err != nil {
			return nil, fmt.Errorf("creating store file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking store file: %w", err)
	}
	return &table{path: path, columns: columns}, nil
}

func (t *table) load() ([][]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("opening store file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(t.columns)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptFile, t.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: missing header row", ErrCorruptFile, t.path)
	}
	return rows[1:], nil
}

func (t *table) append(row []string) error {
	rows, err := t.load()
	if err != nil {
		return err
	}
	rows = append(rows, row)
	if err := writeRows(t.path, t.columns, rows); err != nil {
		return fmt.Errorf("rewriting store file: %w", err)
	}
	return nil
}

func writeRows(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// InvoiceStore persists invoice headers, one CSV row per append.
type InvoiceStore struct {
	t *table
}

// NewInvoiceStore opens the store at path, creating the file with its
// header row if it does not exist yet.
func NewInvoiceStore(path string) (*InvoiceStore, error) {
	t, err := newTable(path, invoiceColumns)
	if err != nil {
		return nil, err
	}
	return &InvoiceStore{t: t}, nil
}

// Append adds one header row. Duplicate invoice numbers are not rejected
// at write time; readers take the latest row for a given invoice_no.
func (s *InvoiceStore) Append(rec InvoiceRecord) error {
	return s.t.append([]string{
		rec.InvoiceNo,
		rec.InvoiceDate,
		rec.TotalQty,
		rec.TotalAmount,
		rec.TotalAmountInWords,
	})
}

// ReadAll returns every header row in insertion order, oldest first.
func (s *InvoiceStore) ReadAll() ([]InvoiceRecord, error) {
	rows, err := s.t.load()
	if err != nil {
		return nil, err
	}
	records := make([]InvoiceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, InvoiceRecord{
			InvoiceNo:          row[0],
			InvoiceDate:        row[1],
			TotalQty:           row[2],
			TotalAmount:        row[3],
			TotalAmountInWords: row[4],
		})
	}
	return records, nil
}

// ItemStore persists line items, one CSV row per append. Items are
// grouped implicitly by matching invoice_no; relative order within an
// invoice is preserved as written.
type ItemStore struct {
	t *table
}

// NewItemStore opens the store at path, creating the file with its header
// row if it does not exist yet.
func NewItemStore(path string) (*ItemStore, error) {
	t, err := newTable(path, itemColumns)
	if err != nil {
		return nil, err
	}
	return &ItemStore{t: t}, nil
}

// Append adds one line-item row.
func (s *ItemStore) Append(rec ItemRecord) error {
	return s.t.append([]string{
		rec.InvoiceNo,
		rec.SerialNumber,
		rec.ItemName,
		rec.Qty,
		rec.Rate,
		rec.Amount,
	})
}

// ReadAll returns every line-item row in insertion order, oldest first.
func (s *ItemStore) ReadAll() ([]ItemRecord, error) {
	rows, err := s.t.load()
	if err != nil {
		return nil, err
	}
	records := make([]ItemRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ItemRecord{
			InvoiceNo:    row[0],
			SerialNumber: row[1],
			ItemName:     row[2],
			Qty:          row[3],
			Rate:         row[4],
			Amount:       row[5],
		})
	}
	return records, nil
}
