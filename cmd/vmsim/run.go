package main

import (
	"errors"
	"log"
	"os"

	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/simulation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <backing-store> <trace>",
		Short: "Translate every address of a trace.",
		Long: `run translates the addresses of the trace one by one, prints ` +
			`the physical address and the value of each, and ends with the ` +
			`page fault and TLB hit counts.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := configFromFlags(cmd.Flags(), args)
			if err != nil {
				return err
			}

			logger := log.New(cmd.ErrOrStderr(), "vmsim: ", 0)

			_, err = simulation.Run(config, cmd.OutOrStdout(), logger)

			return err
		},
	}

	flags := runCmd.Flags()
	flags.StringP("policy", "p", "",
		"Page replacement policy: fifo (0) or lru (1) [$VMSIM_POLICY]")
	flags.Bool("tlb-shootdown", false,
		"Invalidate the TLB entries of evicted pages")
	flags.Bool("lenient", false,
		"Read malformed trace lines as 0 instead of failing")
	flags.String("csv-trace", "",
		"Write every translation to <name>.csv [$VMSIM_CSV_TRACE]")
	flags.String("record-db", "",
		"Record the run into <name>.sqlite3 or a clickhouse:// DSN "+
			"[$VMSIM_RECORD_DB]")
	flags.String("tlb-trace", "", "Write every TLB access to the file")
	flags.String("dump-state", "", "Dump the final MMU state to the file")
	flags.String("cpu-profile", "", "Write a CPU profile to the file")
	flags.BoolP("verbose", "v", false,
		"Log page faults, evictions and resource usage")

	return runCmd
}

func configFromFlags(
	flags *pflag.FlagSet,
	args []string,
) (simulation.Config, error) {
	config := simulation.Config{
		BackingStorePath: args[0],
		TracePath:        args[1],
	}

	policy := stringFlagOrEnv(flags, "policy", "VMSIM_POLICY")
	if policy == "" {
		return config, errors.New(
			"a replacement policy is required: use -p or set VMSIM_POLICY")
	}

	var err error

	config.Policy, err = mmu.ParsePolicy(policy)
	if err != nil {
		return config, err
	}

	config.CSVTrace = stringFlagOrEnv(flags, "csv-trace", "VMSIM_CSV_TRACE")
	config.RecordDB = stringFlagOrEnv(flags, "record-db", "VMSIM_RECORD_DB")
	config.TLBShootdown, _ = flags.GetBool("tlb-shootdown")
	config.Lenient, _ = flags.GetBool("lenient")
	config.TLBTrace, _ = flags.GetString("tlb-trace")
	config.DumpState, _ = flags.GetString("dump-state")
	config.CPUProfile, _ = flags.GetString("cpu-profile")
	config.Verbose, _ = flags.GetBool("verbose")

	return config, config.Validate()
}

func stringFlagOrEnv(flags *pflag.FlagSet, name, env string) string {
	value, _ := flags.GetString(name)
	if flags.Changed(name) {
		return value
	}

	if fromEnv, ok := os.LookupEnv(env); ok {
		return fromEnv
	}

	return value
}
