// Command leviscript runs, compiles, and disassembles Leviscript
// programs.
package main

import (
	"fmt"
	"os"

	"github.com/knorrfg/leviscript/cmd/leviscript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
