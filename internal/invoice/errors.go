package invoice

import (
	"errors"
	"fmt"
)

// ErrCorruptFile indicates a store's backing file could not be parsed as
// CSV. Fatal for the operation; there is no automatic repair.
var ErrCorruptFile = errors.New("corrupt store file")

// PartialWriteError reports a persist call that wrote the invoice header
// but failed before every item row landed. There is no rollback across the
// two files, so the stores are left with a dangling header and a partial
// item set until someone reconciles them (see Coordinator.Reconcile).
type PartialWriteError struct {
	InvoiceNo string
	Written   int // item rows written before the failure
	Total     int
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write for invoice %s: %d of %d item rows written: %v",
		e.InvoiceNo, e.Written, e.Total, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
