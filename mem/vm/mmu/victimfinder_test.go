package mmu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
)

var _ = Describe("ParsePolicy", func() {
	DescribeTable("accepted selectors",
		func(selector string, expected Policy) {
			p, err := ParsePolicy(selector)

			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(expected))
		},
		Entry("fifo", "fifo", FIFO),
		Entry("FIFO", "FIFO", FIFO),
		Entry("0", "0", FIFO),
		Entry("lru", "lru", LRU),
		Entry("1", "1", LRU),
	)

	DescribeTable("rejected selectors",
		func(selector string) {
			_, err := ParsePolicy(selector)

			Expect(err).To(HaveOccurred())
		},
		Entry("empty", ""),
		Entry("2", "2"),
		Entry("clock", "clock"),
	)

	It("should print the policy names", func() {
		Expect(FIFO.String()).To(Equal("fifo"))
		Expect(LRU.String()).To(Equal("lru"))
		Expect(Policy(7).String()).To(Equal("Policy(7)"))
	})
})

var _ = Describe("FIFOVictimFinder", func() {
	var (
		pt     vm.PageTable
		finder *FIFOVictimFinder
	)

	BeforeEach(func() {
		pt = vm.NewPageTable()
		finder = NewFIFOVictimFinder()

		for i := 0; i < vm.NumFrames; i++ {
			pt.Bind(vm.PageNumber(i+100), vm.FrameNumber(i))
		}
	})

	It("should pick the frame at the cursor", func() {
		page, frame := finder.FindVictim(pt, vm.NumFrames)
		Expect(frame).To(Equal(vm.FrameNumber(0)))
		Expect(page).To(Equal(vm.PageNumber(100)))

		page, frame = finder.FindVictim(pt, vm.NumFrames*2+5)
		Expect(frame).To(Equal(vm.FrameNumber(5)))
		Expect(page).To(Equal(vm.PageNumber(105)))
	})

	It("should ignore accesses", func() {
		finder.Touch(100, 1000)

		page, _ := finder.FindVictim(pt, vm.NumFrames)

		Expect(page).To(Equal(vm.PageNumber(100)))
	})

	It("should panic if the frame has no owner", func() {
		pt.Unbind(100)

		Expect(func() { finder.FindVictim(pt, vm.NumFrames) }).To(Panic())
	})
})

var _ = Describe("LRUVictimFinder", func() {
	var (
		pt     vm.PageTable
		finder *LRUVictimFinder
	)

	BeforeEach(func() {
		pt = vm.NewPageTable()
		finder = NewLRUVictimFinder()
	})

	It("should pick the page with the oldest access", func() {
		pt.Bind(1, 0)
		pt.Bind(2, 1)
		pt.Bind(3, 2)
		finder.Touch(1, 5)
		finder.Touch(2, 3)
		finder.Touch(3, 9)

		page, frame := finder.FindVictim(pt, 0)

		Expect(page).To(Equal(vm.PageNumber(2)))
		Expect(frame).To(Equal(vm.FrameNumber(1)))
	})

	It("should skip unmapped pages", func() {
		pt.Bind(7, 3)
		finder.Touch(7, 10)

		page, frame := finder.FindVictim(pt, 0)

		Expect(page).To(Equal(vm.PageNumber(7)))
		Expect(frame).To(Equal(vm.FrameNumber(3)))
	})

	It("should break ties by the lowest page number", func() {
		pt.Bind(9, 0)
		pt.Bind(4, 1)

		page, _ := finder.FindVictim(pt, 0)

		Expect(page).To(Equal(vm.PageNumber(4)))
	})

	It("should remember the last access", func() {
		finder.Touch(4, 2)
		finder.Touch(4, 8)

		Expect(finder.LastAccess(4)).To(Equal(uint64(8)))
		Expect(finder.LastAccess(5)).To(Equal(uint64(0)))
	})

	It("should panic with nothing mapped", func() {
		Expect(func() { finder.FindVictim(pt, 0) }).To(Panic())
	})
})
