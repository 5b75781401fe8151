package extraction

// InvoiceData contains the header fields extracted from an invoice.
// Every field stays a string: the model mixes numbers and text freely,
// and the stores persist whatever text the model (or the user) supplied.
type InvoiceData struct {
	InvoiceNo          string `json:"invoice_no"`
	InvoiceDate        string `json:"invoice_date"`
	TotalQty           string `json:"total_qty"`
	TotalAmount        string `json:"total_amount"`
	TotalAmountInWords string `json:"total_amount_inwords"`
}

// ItemData contains one extracted line item.
type ItemData struct {
	SerialNumber string `json:"serial_number"`
	ItemName     string `json:"item_name"`
	Qty          string `json:"Qty"`
	Rate         string `json:"Rate"`
	Amount       string `json:"Amount"`
}

// Result is a validated model response: one invoice header plus its line items.
type Result struct {
	Invoice InvoiceData
	Items   []ItemData
}

// Extractor defines the interface for vision extraction backends.
// The returned text is whatever the model produced; it is not guaranteed
// to conform to the requested schema and must go through Sanitize and
// Validate before use.
type Extractor interface {
	// ExtractInvoice analyzes an invoice image/PDF and returns the raw model response
	ExtractInvoice(imageData []byte, contentType string) (string, error)
	// Close closes the extractor and releases resources
	Close() error
}
