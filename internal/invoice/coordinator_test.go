package invoice

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Coordinator", func() {
	var (
		invoicePath string
		itemPath    string
		invoices    *InvoiceStore
		items       *ItemStore
		coordinator *Coordinator
	)

	BeforeEach(func() {
		tmpDir := GinkgoT().TempDir()
		invoicePath = filepath.Join(tmpDir, "invoices.csv")
		itemPath = filepath.Join(tmpDir, "invoice_items.csv")

		var err error
		invoices, err = NewInvoiceStore(invoicePath)
		Expect(err).NotTo(HaveOccurred())
		items, err = NewItemStore(itemPath)
		Expect(err).NotTo(HaveOccurred())

		coordinator = NewCoordinator(invoices, items)
	})

	Describe("Persist", func() {
		var (
			inv      InvoiceRecord
			itemRecs []ItemRecord
			err      error
		)

		BeforeEach(func() {
			inv = InvoiceRecord{
				InvoiceNo:   "INV-1",
				InvoiceDate: "01/Jan/2024",
				TotalQty:    "3",
				TotalAmount: "125.00",
			}
			itemRecs = []ItemRecord{
				{SerialNumber: "1", ItemName: "Widget", Qty: "2", Rate: "50", Amount: "100"},
				{SerialNumber: "2", ItemName: "Gadget", Qty: "1", Rate: "25", Amount: "25"},
			}
		})

		JustBeforeEach(func() {
			err = coordinator.Persist(inv, itemRecs)
		})

		When("both stores accept the writes", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("writes exactly one header row", func() {
				records, readErr := invoices.ReadAll()
				Expect(readErr).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(1))
				Expect(records[0].InvoiceNo).To(Equal("INV-1"))
			})

			It("stamps every item row with the header's invoice number", func() {
				records, readErr := items.ReadAll()
				Expect(readErr).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(2))
				for _, rec := range records {
					Expect(rec.InvoiceNo).To(Equal("INV-1"))
				}
			})

			It("keeps item rows one-to-one with the input, by position", func() {
				records, readErr := items.ReadAll()
				Expect(readErr).NotTo(HaveOccurred())
				for i, rec := range records {
					Expect(rec.SerialNumber).To(Equal(itemRecs[i].SerialNumber))
					Expect(rec.ItemName).To(Equal(itemRecs[i].ItemName))
					Expect(rec.Amount).To(Equal(itemRecs[i].Amount))
				}
			})

			It("leaves the stores referentially consistent", func() {
				report, recErr := coordinator.Reconcile()
				Expect(recErr).NotTo(HaveOccurred())
				Expect(report.Clean()).To(BeTrue())
			})
		})

		When("the item store fails after the header write", func() {
			BeforeEach(func() {
				// Corrupt the item file so every item append fails
				Expect(os.WriteFile(itemPath, []byte("broken\n"), 0644)).To(Succeed())
			})

			It("returns a PartialWriteError", func() {
				var pwErr *PartialWriteError
				Expect(errors.As(err, &pwErr)).To(BeTrue())
				Expect(pwErr.InvoiceNo).To(Equal("INV-1"))
				Expect(pwErr.Written).To(Equal(0))
				Expect(pwErr.Total).To(Equal(2))
			})

			It("wraps the underlying store error", func() {
				Expect(err).To(MatchError(ErrCorruptFile))
			})

			It("leaves the dangling header in place", func() {
				records, readErr := invoices.ReadAll()
				Expect(readErr).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(1))
			})
		})

		When("the invoice store fails", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(invoicePath, []byte("broken\n"), 0644)).To(Succeed())
			})

			It("returns a plain store error, not a partial write", func() {
				Expect(err).To(MatchError(ErrCorruptFile))
				var pwErr *PartialWriteError
				Expect(errors.As(err, &pwErr)).To(BeFalse())
			})

			It("writes no item rows", func() {
				records, readErr := items.ReadAll()
				Expect(readErr).NotTo(HaveOccurred())
				Expect(records).To(BeEmpty())
			})
		})
	})

	Describe("Reconcile", func() {
		When("an item row has no matching header", func() {
			BeforeEach(func() {
				Expect(items.Append(ItemRecord{InvoiceNo: "INV-GHOST", ItemName: "Orphan"})).To(Succeed())
			})

			It("reports the orphaned item", func() {
				report, err := coordinator.Reconcile()
				Expect(err).NotTo(HaveOccurred())
				Expect(report.OrphanedItems).To(HaveLen(1))
				Expect(report.OrphanedItems[0].InvoiceNo).To(Equal("INV-GHOST"))
				Expect(report.Clean()).To(BeFalse())
			})
		})

		When("a header has zero item rows", func() {
			BeforeEach(func() {
				Expect(invoices.Append(InvoiceRecord{InvoiceNo: "INV-EMPTY"})).To(Succeed())
			})

			It("reports the empty invoice", func() {
				report, err := coordinator.Reconcile()
				Expect(err).NotTo(HaveOccurred())
				Expect(report.EmptyInvoices).To(Equal([]string{"INV-EMPTY"}))
			})
		})

		When("both stores are empty", func() {
			It("reports a clean state", func() {
				report, err := coordinator.Reconcile()
				Expect(err).NotTo(HaveOccurred())
				Expect(report.Clean()).To(BeTrue())
			})
		})
	})
})
