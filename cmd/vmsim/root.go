package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

const defaultEnvFile = ".env"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vmsim",
		Short: "vmsim simulates the translation of virtual addresses.",
		Long: `vmsim simulates a TLB, a page table and demand paging from a ` +
			`backing store. It replays a trace of virtual addresses and ` +
			`reports the physical address and value of each one.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return loadEnvFile(envFile, cmd.Flags().Changed("env-file"))
		},
	}

	rootCmd.PersistentFlags().String("env-file", defaultEnvFile,
		"File with VMSIM_* defaults")

	rootCmd.AddCommand(newRunCmd())

	return rootCmd
}

// loadEnvFile loads the VMSIM_* defaults. Variables that are already set
// win over the file. A missing file is only an error when it was asked for.
func loadEnvFile(path string, required bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
