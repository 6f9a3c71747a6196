package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamescrowley/sharesight-importer/internal/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sharesight-importer %s\n", common.GetFullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
