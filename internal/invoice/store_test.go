package invoice

import (
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InvoiceStore", func() {
	var (
		path  string
		store *InvoiceStore
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "invoices.csv")
		var err error
		store, err = NewInvoiceStore(path)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewInvoiceStore", func() {
		It("creates the file with a header row and zero data rows", func() {
			content, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(Equal("invoice_no,invoice_date,total_qty,total_amount,total_amount_inwords\n"))
		})

		When("the file already exists", func() {
			It("keeps the existing rows", func() {
				Expect(store.Append(InvoiceRecord{InvoiceNo: "INV-1"})).To(Succeed())

				reopened, err := NewInvoiceStore(path)
				Expect(err).NotTo(HaveOccurred())
				records, err := reopened.ReadAll()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(1))
			})
		})
	})

	Describe("Append and ReadAll", func() {
		It("round-trips rows in insertion order", func() {
			for i := 1; i <= 3; i++ {
				rec := InvoiceRecord{
					InvoiceNo:          fmt.Sprintf("INV-%d", i),
					InvoiceDate:        "01/Jan/2024",
					TotalQty:           "2",
					TotalAmount:        "100.00",
					TotalAmountInWords: "One Hundred",
				}
				Expect(store.Append(rec)).To(Succeed())
			}

			records, err := store.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(3))
			for i, rec := range records {
				Expect(rec.InvoiceNo).To(Equal(fmt.Sprintf("INV-%d", i+1)))
				Expect(rec.TotalAmount).To(Equal("100.00"))
				Expect(rec.TotalAmountInWords).To(Equal("One Hundred"))
			}
		})

		It("preserves fields containing commas and quotes", func() {
			rec := InvoiceRecord{
				InvoiceNo:          "INV-1",
				TotalAmountInWords: `One Hundred, "exactly"`,
			}
			Expect(store.Append(rec)).To(Succeed())

			records, err := store.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(records[0].TotalAmountInWords).To(Equal(`One Hundred, "exactly"`))
		})

		It("tolerates duplicate invoice numbers", func() {
			Expect(store.Append(InvoiceRecord{InvoiceNo: "INV-1", TotalAmount: "50"})).To(Succeed())
			Expect(store.Append(InvoiceRecord{InvoiceNo: "INV-1", TotalAmount: "75"})).To(Succeed())

			records, err := store.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			// The latest row wins for downstream readers
			Expect(records[1].TotalAmount).To(Equal("75"))
		})

		It("reads identically when called twice without an intervening append", func() {
			Expect(store.Append(InvoiceRecord{InvoiceNo: "INV-1"})).To(Succeed())

			first, err := store.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			second, err := store.ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	Describe("corrupted files", func() {
		When("a row has the wrong number of columns", func() {
			BeforeEach(func() {
				content := "invoice_no,invoice_date,total_qty,total_amount,total_amount_inwords\nonly,two\n"
				Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
			})

			It("fails ReadAll with ErrCorruptFile", func() {
				_, err := store.ReadAll()
				Expect(err).To(MatchError(ErrCorruptFile))
			})

			It("fails Append with ErrCorruptFile", func() {
				err := store.Append(InvoiceRecord{InvoiceNo: "INV-9"})
				Expect(err).To(MatchError(ErrCorruptFile))
			})
		})

		When("the file is empty", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(path, nil, 0644)).To(Succeed())
			})

			It("fails with ErrCorruptFile", func() {
				_, err := store.ReadAll()
				Expect(err).To(MatchError(ErrCorruptFile))
			})
		})
	})
})

var _ = Describe("ItemStore", func() {
	var (
		path  string
		store *ItemStore
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "invoice_items.csv")
		var err error
		store, err = NewItemStore(path)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the file with the item header row", func() {
		content, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(Equal("invoice_no,serial_number,item_name,Qty,Rate,Amount\n"))
	})

	It("round-trips rows in insertion order", func() {
		first := ItemRecord{InvoiceNo: "INV-1", SerialNumber: "1", ItemName: "Widget", Qty: "2", Rate: "50", Amount: "100"}
		second := ItemRecord{InvoiceNo: "INV-1", SerialNumber: "2", ItemName: "Gadget", Qty: "1", Rate: "25", Amount: "25"}
		Expect(store.Append(first)).To(Succeed())
		Expect(store.Append(second)).To(Succeed())

		records, err := store.ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(Equal([]ItemRecord{first, second}))
	})
})
