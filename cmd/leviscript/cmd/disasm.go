package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/knorrfg/leviscript/internal/serializer"
)

var verify bool

var disasmCmd = &cobra.Command{
	Use:   "disasm <file.levc>",
	Short: "Disassemble a compiled Leviscript program",
	Long: `Load a .levc file and print its instructions, one per line, in
byte-offset order.

Examples:
  leviscript disasm script.levc
  leviscript disasm script.levc --verify`,
	Args: cobra.ExactArgs(1),
	RunE: disasmFile,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
	disasmCmd.Flags().BoolVar(&verify, "verify", false, "print the file's version and content digest before disassembling")
}

func disasmFile(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", args[0], err)
	}
	defer f.Close()

	code, debug, hdr, err := serializer.Read(f)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	if verify {
		fmt.Printf("version: %s\ndigest:  %s\n\n", hdr.Version, hdr.DigestBase58)
	}

	fmt.Print(code.Disassemble(debug))
	return nil
}
