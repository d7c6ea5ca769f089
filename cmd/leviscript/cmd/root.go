package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags.
	Version = "0.1.0-dev"

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "leviscript",
	Short: "Leviscript compiler and virtual machine",
	Long: `leviscript lexes, parses, type-infers, compiles, and runs Leviscript
programs: a small scripting language whose bytecode is built with
compile-time ownership tracking and executed on a stack+heap virtual
machine.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
`))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log one line per dispatched opcode at debug level")
}
