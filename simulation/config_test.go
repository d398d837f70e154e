package simulation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
)

var _ = Describe("Config", func() {
	valid := Config{
		BackingStorePath: "BACKING_STORE.bin",
		TracePath:        "addresses.txt",
		Policy:           mmu.LRU,
	}

	It("should accept a complete config", func() {
		Expect(valid.Validate()).To(Succeed())
	})

	DescribeTable("should reject incomplete configs",
		func(modify func(c *Config), msg string) {
			c := valid
			modify(&c)

			err := c.Validate()

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(msg))
		},
		Entry("no backing store",
			func(c *Config) { c.BackingStorePath = "" }, "backing store"),
		Entry("no trace",
			func(c *Config) { c.TracePath = "" }, "trace"),
		Entry("unknown policy",
			func(c *Config) { c.Policy = mmu.Policy(2) }, "policy"),
	)
})
