package invoice

// Column orders for the two backing files. These are the wire format of
// the stores; external readers depend on them staying fixed.
var (
	invoiceColumns = []string{"invoice_no", "invoice_date", "total_qty", "total_amount", "total_amount_inwords"}
	itemColumns    = []string{"invoice_no", "serial_number", "item_name", "Qty", "Rate", "Amount"}
)

// InvoiceRecord is one invoice header row. Rows are immutable once
// appended; correcting a mistake means appending a new row, so readers
// may see superseded duplicates for the same invoice_no and should take
// the latest.
type InvoiceRecord struct {
	InvoiceNo          string `json:"invoice_no"`
	InvoiceDate        string `json:"invoice_date"`
	TotalQty           string `json:"total_qty"`
	TotalAmount        string `json:"total_amount"`
	TotalAmountInWords string `json:"total_amount_inwords"`
}

// ItemRecord is one line-item row. InvoiceNo is the foreign key to the
// owning header; the coordinator stamps it on every row it writes.
type ItemRecord struct {
	InvoiceNo    string `json:"invoice_no"`
	SerialNumber string `json:"serial_number"`
	ItemName     string `json:"item_name"`
	Qty          string `json:"Qty"`
	Rate         string `json:"Rate"`
	Amount       string `json:"Amount"`
}
