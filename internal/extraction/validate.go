package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedJSON indicates the sanitized text did not parse as JSON.
	ErrMalformedJSON = errors.New("malformed json")

	// ErrSchemaMismatch indicates the JSON parsed but the top-level
	// "invoice" object or "items" array was missing or the wrong shape.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// ValidationError wraps a validation failure together with the sanitized
// text that failed, so callers can log it or surface it for a retry.
type ValidationError struct {
	Err  error
	Text string
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate parses sanitized model text into a Result. The top-level
// "invoice" object and "items" array are required; their sub-fields are
// not. Missing sub-fields come back as empty strings rather than errors,
// and numeric values are rendered back to strings as printed, so "100.00"
// stays "100.00". No numeric coercion happens here.
func Validate(text string) (*Result, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var payload struct {
		Invoice map[string]any   `json:"invoice"`
		Items   []map[string]any `json:"items"`
	}
	if err := dec.Decode(&payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{
				Err:  fmt.Errorf("%w: unexpected %s for %q", ErrSchemaMismatch, typeErr.Value, typeErr.Field),
				Text: text,
			}
		}
		return nil, &ValidationError{
			Err:  fmt.Errorf("%w: %v", ErrMalformedJSON, err),
			Text: text,
		}
	}

	if payload.Invoice == nil {
		return nil, &ValidationError{
			Err:  fmt.Errorf("%w: missing invoice object", ErrSchemaMismatch),
			Text: text,
		}
	}
	if payload.Items == nil {
		return nil, &ValidationError{
			Err:  fmt.Errorf("%w: missing items array", ErrSchemaMismatch),
			Text: text,
		}
	}

	result := &Result{
		Invoice: InvoiceData{
			InvoiceNo:          stringValue(payload.Invoice["invoice_no"]),
			InvoiceDate:        stringValue(payload.Invoice["invoice_date"]),
			TotalQty:           stringValue(payload.Invoice["total_qty"]),
			TotalAmount:        stringValue(payload.Invoice["total_amount"]),
			TotalAmountInWords: stringValue(payload.Invoice["total_amount_inwords"]),
		},
		Items: make([]ItemData, 0, len(payload.Items)),
	}

	for _, item := range payload.Items {
		result.Items = append(result.Items, ItemData{
			SerialNumber: stringValue(item["serial_number"]),
			ItemName:     stringValue(item["item_name"]),
			Qty:          stringValue(item["Qty"]),
			Rate:         stringValue(item["Rate"]),
			Amount:       stringValue(item["Amount"]),
		})
	}

	return result, nil
}

// stringValue renders a decoded JSON scalar as a string. Absent and null
// values become empty strings so downstream consumers never see an error
// for a field the model simply left out.
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
