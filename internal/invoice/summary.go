package invoice

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// invoiceDateFormat matches how dates appear on the scanned invoices,
// e.g. "01/Jan/2024".
const invoiceDateFormat = "02/Jan/2006"

// Summary holds the dashboard aggregates.
type Summary struct {
	InvoiceCount  int             `json:"invoice_count"`
	ItemCount     int             `json:"item_count"`
	TotalAmount   float64         `json:"total_amount"`
	AverageAmount float64         `json:"average_amount"`
	Timeline      []TimelinePoint `json:"timeline"`
}

// TimelinePoint is one invoice on the revenue timeline.
type TimelinePoint struct {
	Date      time.Time `json:"date"`
	InvoiceNo string    `json:"invoice_no"`
	Amount    float64   `json:"amount"`
}

// Summarize computes count, revenue sum, and average invoice value over
// the header rows, plus a date-sorted revenue timeline. Rows whose
// total_amount does not parse to a finite number are excluded from both
// the sum and the average's denominator; rows whose invoice_date does not
// parse drop off the timeline but still count toward the totals.
// Superseded duplicate headers are not deduplicated here; each row counts.
func Summarize(invoices []InvoiceRecord, items []ItemRecord) *Summary {
	summary := &Summary{
		InvoiceCount: len(invoices),
		ItemCount:    len(items),
		Timeline:     make([]TimelinePoint, 0, len(invoices)),
	}

	valid := 0
	for _, inv := range invoices {
		amount, err := strconv.ParseFloat(strings.TrimSpace(inv.TotalAmount), 64)
		if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
			continue
		}
		summary.TotalAmount += amount
		valid++

		date, err := time.Parse(invoiceDateFormat, strings.TrimSpace(inv.InvoiceDate))
		if err != nil {
			continue
		}
		summary.Timeline = append(summary.Timeline, TimelinePoint{
			Date:      date,
			InvoiceNo: inv.InvoiceNo,
			Amount:    amount,
		})
	}

	if valid > 0 {
		summary.AverageAmount = summary.TotalAmount / float64(valid)
	}

	sort.SliceStable(summary.Timeline, func(i, j int) bool {
		return summary.Timeline[i].Date.Before(summary.Timeline[j].Date)
	})

	return summary
}
