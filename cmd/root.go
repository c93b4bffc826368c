package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yumyai/ggutils/internal/config"
	"github.com/yumyai/ggutils/logger"
	"go.uber.org/zap"
)

const VERSION = "0.1.0"

// NewRoot builds the ggutils command tree. envFiles are passed to the config
// loader; leave empty to read ./.env.
func NewRoot(envFiles ...string) *cobra.Command {
	root := &cobra.Command{
		Use:   "ggutils",
		Short: "Genome annotation summaries",
		Long: `ggutils turns genome annotations into tables for downstream analysis.

  netcmpt  EC numbers per genome from GenBank files, in NetCmpt format
  bgc      number of biosynthetic gene clusters found by antiSMASH`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Arguments are valid by now; later errors don't need the usage text
			cmd.SilenceUsage = true
			return initGlobalResource(envFiles)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			_ = logger.Sync()
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	root.AddCommand(NewNetCmpt())
	root.AddCommand(NewBGC())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ggutils version %s\n", VERSION)
		},
	})

	return root
}

func initGlobalResource(envFiles []string) error {
	conf, err := config.Load(envFiles...)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(conf.Log.LogLevel)
	if err != nil {
		return err
	}
	if err := logger.InitLogger(level, conf.Log.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logger.Debug("Start:", zap.String("Version", VERSION))
	return nil
}
