package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yumyai/ggutils/internal/config"
	"github.com/yumyai/ggutils/pkg/antismash"
)

func NewBGC() *cobra.Command {
	var (
		executable string
		cpus       int
	)

	cmd := &cobra.Command{
		Use:   "bgc GENOME",
		Short: "Count biosynthetic gene clusters in a genome with antiSMASH",
		Long: `Run antiSMASH on a genome sequence file and print how many clusters it reports.

A failed antiSMASH run or a missing report is logged and counted as 0.`,
		Example: "  ggutils bgc genome.fasta",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.Global().Antismash
			if cmd.Flags().Changed("antismash") {
				settings.Executable = executable
			}
			if cmd.Flags().Changed("cpus") {
				if cpus < 1 {
					return fmt.Errorf("--cpus must be at least 1, got %d", cpus)
				}
				settings.CPUs = cpus
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			res := antismash.NewCounter(settings.Options()).Count(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "BGCs found: %d\n", res.Count)
			return nil
		},
	}

	cmd.Flags().StringVar(&executable, "antismash", antismash.DefaultExecutable, "antiSMASH executable (overrides ANTISMASH_EXECUTABLE)")
	cmd.Flags().IntVar(&cpus, "cpus", antismash.DefaultCPUs, "CPUs for antiSMASH (overrides ANTISMASH_CPUS)")

	return cmd
}
