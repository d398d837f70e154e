package main

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
)

var _ = Describe("vmsim run", func() {
	var (
		dir                    string
		backingPath, tracePath string
		stdout, stderr         *bytes.Buffer
	)

	setenv := func(key, value string) {
		old, had := os.LookupEnv(key)
		Expect(os.Setenv(key, value)).To(Succeed())

		DeferCleanup(func() {
			if had {
				os.Setenv(key, old)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	execute := func(args ...string) error {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)

		return cmd.Execute()
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout = new(bytes.Buffer)
		stderr = new(bytes.Buffer)

		backingPath = filepath.Join(dir, "BACKING_STORE.bin")
		Expect(os.WriteFile(backingPath,
			make([]byte, vm.VirtualMemorySize), 0o644)).To(Succeed())

		tracePath = filepath.Join(dir, "addresses.txt")
		Expect(os.WriteFile(tracePath,
			[]byte("0\n1024\n0\n"), 0o644)).To(Succeed())

		Expect(os.Unsetenv("VMSIM_POLICY")).To(Succeed())
	})

	It("should print the results and the summary", func() {
		err := execute("run", "-p", "1", backingPath, tracePath)

		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(HavePrefix(
			"Virtual address: 0 Physical address: 0 Value: 0\n"))
		Expect(stdout.String()).To(HaveSuffix(
			"Page Fault Rate = 0.667\nTLB Hits = 1\nTLB Hit Rate = 0.333\n"))
	})

	It("should require two arguments", func() {
		err := execute("run", "-p", "fifo", backingPath)

		Expect(err).To(HaveOccurred())
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should require a policy", func() {
		err := execute("run", backingPath, tracePath)

		Expect(err).To(MatchError(ContainSubstring("replacement policy")))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should reject an unknown policy", func() {
		err := execute("run", "-p", "2", backingPath, tracePath)

		Expect(err).To(HaveOccurred())
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should reject an unopenable backing store", func() {
		err := execute("run", "-p", "fifo",
			filepath.Join(dir, "missing.bin"), tracePath)

		Expect(err).To(HaveOccurred())
		Expect(stdout.String()).To(BeEmpty())
	})

	Context("config", func() {
		It("should parse the flags", func() {
			cmd := newRunCmd()
			Expect(cmd.Flags().Parse([]string{
				"--policy", "lru",
				"--tlb-shootdown",
				"--lenient",
				"--csv-trace", "trace",
				"--record-db", "record",
				"--tlb-trace", "tlb.csv",
				"--dump-state", "state.json",
				"--cpu-profile", "cpu.pprof",
				"-v",
			})).To(Succeed())

			config, err := configFromFlags(cmd.Flags(),
				[]string{backingPath, tracePath})

			Expect(err).NotTo(HaveOccurred())
			Expect(config.BackingStorePath).To(Equal(backingPath))
			Expect(config.TracePath).To(Equal(tracePath))
			Expect(config.Policy).To(Equal(mmu.LRU))
			Expect(config.TLBShootdown).To(BeTrue())
			Expect(config.Lenient).To(BeTrue())
			Expect(config.CSVTrace).To(Equal("trace"))
			Expect(config.RecordDB).To(Equal("record"))
			Expect(config.TLBTrace).To(Equal("tlb.csv"))
			Expect(config.DumpState).To(Equal("state.json"))
			Expect(config.CPUProfile).To(Equal("cpu.pprof"))
			Expect(config.Verbose).To(BeTrue())
		})

		It("should take defaults from the environment", func() {
			setenv("VMSIM_POLICY", "lru")
			setenv("VMSIM_CSV_TRACE", "from_env")

			cmd := newRunCmd()
			config, err := configFromFlags(cmd.Flags(),
				[]string{backingPath, tracePath})

			Expect(err).NotTo(HaveOccurred())
			Expect(config.Policy).To(Equal(mmu.LRU))
			Expect(config.CSVTrace).To(Equal("from_env"))
		})

		It("should prefer flags over the environment", func() {
			setenv("VMSIM_POLICY", "lru")

			cmd := newRunCmd()
			Expect(cmd.Flags().Parse([]string{"-p", "fifo"})).To(Succeed())

			config, err := configFromFlags(cmd.Flags(),
				[]string{backingPath, tracePath})

			Expect(err).NotTo(HaveOccurred())
			Expect(config.Policy).To(Equal(mmu.FIFO))
		})
	})

	Context("env file", func() {
		It("should load the policy from an env file", func() {
			envPath := filepath.Join(dir, "vmsim.env")
			Expect(os.WriteFile(envPath,
				[]byte("VMSIM_POLICY=fifo\n"), 0o644)).To(Succeed())
			DeferCleanup(os.Unsetenv, "VMSIM_POLICY")

			err := execute("run", "--env-file", envPath,
				backingPath, tracePath)

			Expect(err).NotTo(HaveOccurred())
			Expect(stdout.String()).To(ContainSubstring("TLB Hits = 1"))
		})

		It("should fail when the requested env file is missing", func() {
			err := execute("run", "--env-file", filepath.Join(dir, "none"),
				"-p", "fifo", backingPath, tracePath)

			Expect(err).To(HaveOccurred())
		})

		It("should ignore a missing default env file", func() {
			Expect(loadEnvFile(filepath.Join(dir, defaultEnvFile), false)).
				To(Succeed())
		})
	})
})
