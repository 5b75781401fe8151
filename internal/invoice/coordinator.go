package invoice

import "fmt"

// Coordinator owns the write order across the two stores: the invoice
// header lands first, then the item rows in sequence, each stamped with
// the header's invoice_no. The two files are independently durable with no
// transaction across them, so an item-side failure leaves a dangling
// header and a partial item set. Callers must treat a *PartialWriteError
// as requiring manual reconciliation, not a retry; retrying a non-atomic
// partial write risks duplicate rows.
type Coordinator struct {
	invoices *InvoiceStore
	items    *ItemStore
}

// NewCoordinator creates a Coordinator over the two stores.
func NewCoordinator(invoices *InvoiceStore, items *ItemStore) *Coordinator {
	return &Coordinator{
		invoices: invoices,
		items:    items,
	}
}

// Persist writes one invoice plus its items as a single logical unit.
// Concurrent calls are unsafe; the caller serializes.
func (c *Coordinator) Persist(inv InvoiceRecord, items []ItemRecord) error {
	if err := c.invoices.Append(inv); err != nil {
		return fmt.Errorf("writing invoice header: %w", err)
	}

	for i, item := range items {
		item.InvoiceNo = inv.InvoiceNo
		if err := c.items.Append(item); err != nil {
			return &PartialWriteError{
				InvoiceNo: inv.InvoiceNo,
				Written:   i,
				Total:     len(items),
				Err:       err,
			}
		}
	}

	return nil
}

// ReconcileReport lists the referential damage a partial write can leave
// behind.
type ReconcileReport struct {
	// OrphanedItems are item rows whose invoice_no has no header row.
	OrphanedItems []ItemRecord `json:"orphaned_items"`
	// EmptyInvoices are invoice numbers with a header but zero item rows.
	EmptyInvoices []string `json:"empty_invoices"`
}

// Clean reports whether the two stores are referentially consistent.
func (r *ReconcileReport) Clean() bool {
	return len(r.OrphanedItems) == 0 && len(r.EmptyInvoices) == 0
}

// Reconcile reads both stores and reports orphaned item rows and headers
// with no items. It only detects damage; repair is a manual operation.
func (c *Coordinator) Reconcile() (*ReconcileReport, error) {
	invoices, err := c.invoices.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading invoices: %w", err)
	}
	items, err := c.items.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}

	headers := make(map[string]bool, len(invoices))
	for _, inv := range invoices {
		headers[inv.InvoiceNo] = true
	}

	report := &ReconcileReport{
		OrphanedItems: make([]ItemRecord, 0),
		EmptyInvoices: make([]string, 0),
	}

	hasItems := make(map[string]bool)
	for _, item := range items {
		if !headers[item.InvoiceNo] {
			report.OrphanedItems = append(report.OrphanedItems, item)
			continue
		}
		hasItems[item.InvoiceNo] = true
	}

	seen := make(map[string]bool)
	for _, inv := range invoices {
		if !hasItems[inv.InvoiceNo] && !seen[inv.InvoiceNo] {
			report.EmptyInvoices = append(report.EmptyInvoices, inv.InvoiceNo)
			seen[inv.InvoiceNo] = true
		}
	}

	return report, nil
}
