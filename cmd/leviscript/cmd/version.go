package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knorrfg/leviscript/internal/bytecode"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("leviscript version %s\n", Version)
		fmt.Printf("bytecode format version %s\n", bytecode.CurrentVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
