package extraction

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Validate", func() {
	var (
		text   string
		result *Result
		err    error
	)

	JustBeforeEach(func() {
		result, err = Validate(text)
	})

	When("validating a complete response", func() {
		BeforeEach(func() {
			text = `{"invoice":{"invoice_no":"INV-1","invoice_date":"01/Jan/2024","total_qty":"2","total_amount":"100.00","total_amount_inwords":"One Hundred"},"items":[{"serial_number":"1","item_name":"Widget","Qty":"2","Rate":"50","Amount":"100"}]}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should extract the invoice header", func() {
			Expect(result.Invoice.InvoiceNo).To(Equal("INV-1"))
			Expect(result.Invoice.InvoiceDate).To(Equal("01/Jan/2024"))
			Expect(result.Invoice.TotalAmount).To(Equal("100.00"))
			Expect(result.Invoice.TotalAmountInWords).To(Equal("One Hundred"))
		})

		It("should extract the line items", func() {
			Expect(result.Items).To(HaveLen(1))
			Expect(result.Items[0].ItemName).To(Equal("Widget"))
			Expect(result.Items[0].Qty).To(Equal("2"))
			Expect(result.Items[0].Amount).To(Equal("100"))
		})
	})

	When("the model supplied numbers instead of strings", func() {
		BeforeEach(func() {
			text = `{"invoice":{"invoice_no":"INV-2","total_amount":100.50},"items":[{"serial_number":1,"Qty":2}]}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep the printed form of each number", func() {
			Expect(result.Invoice.TotalAmount).To(Equal("100.50"))
			Expect(result.Items[0].SerialNumber).To(Equal("1"))
			Expect(result.Items[0].Qty).To(Equal("2"))
		})
	})

	When("sub-fields are missing", func() {
		BeforeEach(func() {
			text = `{"invoice":{"invoice_no":"INV-3"},"items":[{"item_name":"Widget"}]}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should leave missing fields empty", func() {
			Expect(result.Invoice.InvoiceDate).To(BeEmpty())
			Expect(result.Invoice.TotalAmountInWords).To(BeEmpty())
			Expect(result.Items[0].Qty).To(BeEmpty())
		})
	})

	When("the items key is absent", func() {
		BeforeEach(func() {
			text = `{"invoice":{"invoice_no":"INV-4"}}`
		})

		It("fails with a schema mismatch", func() {
			Expect(err).To(MatchError(ErrSchemaMismatch))
		})
	})

	When("the invoice key is absent", func() {
		BeforeEach(func() {
			text = `{"items":[]}`
		})

		It("fails with a schema mismatch", func() {
			Expect(err).To(MatchError(ErrSchemaMismatch))
		})
	})

	When("the items key is not an array", func() {
		BeforeEach(func() {
			text = `{"invoice":{},"items":"nope"}`
		})

		It("fails with a schema mismatch", func() {
			Expect(err).To(MatchError(ErrSchemaMismatch))
		})
	})

	When("the text is not JSON at all", func() {
		BeforeEach(func() {
			text = "Sure! Here is the data: {not valid json"
		})

		It("fails with a malformed json error", func() {
			Expect(err).To(MatchError(ErrMalformedJSON))
		})

		It("preserves the failing text for diagnostics", func() {
			var verr *ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(verr.Text).To(Equal(text))
		})
	})

	When("the items array is empty", func() {
		BeforeEach(func() {
			text = `{"invoice":{"invoice_no":"INV-5"},"items":[]}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return zero items", func() {
			Expect(result.Items).To(BeEmpty())
		})
	})
})
