package simulation

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
)

var _ = Describe("Report", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = new(bytes.Buffer)
	})

	It("should print a translation with a signed value", func() {
		err := WriteTranslation(buf, mmu.Translation{
			VAddr: 16916,
			PAddr: 20,
			Value: -128,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(Equal(
			"Virtual address: 16916 Physical address: 20 Value: -128\n"))
	})

	It("should print the rates with three decimals", func() {
		err := WriteSummary(buf, mmu.Stats{
			Translations: 3,
			TLBHits:      1,
			PageFaults:   2,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(Equal(
			"Number of Translated Addresses = 3\n" +
				"Page Faults = 2\n" +
				"Page Fault Rate = 0.667\n" +
				"TLB Hits = 1\n" +
				"TLB Hit Rate = 0.333\n"))
	})

	It("should print zero rates for an empty run", func() {
		err := WriteSummary(buf, mmu.Stats{})

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("Page Fault Rate = 0.000\n"))
		Expect(buf.String()).To(ContainSubstring("TLB Hit Rate = 0.000\n"))
	})
})
