package cmd

import (
	"github.com/spf13/cobra"
	"github.com/yumyai/ggutils/pkg/netcmpt"
)

func NewNetCmpt() *cobra.Command {
	return &cobra.Command{
		Use:   "netcmpt FILE...",
		Short: "Print the EC numbers of each GenBank file as a NetCmpt genome table",
		Long: `Print one line per GenBank file: the file name without its extension, a tab,
and the distinct EC numbers of its CDS features separated by spaces.

The whole run stops at the first file that cannot be read or parsed.`,
		Example: "  ggutils netcmpt *.gbk > genomes.tsv",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return netcmpt.Run(cmd.OutOrStdout(), args)
		},
	}
}
