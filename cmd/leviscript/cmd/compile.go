package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knorrfg/leviscript/internal/serializer"
)

var (
	outputFile  string
	disassemble bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a Leviscript program to bytecode",
	Long: `Compile a Leviscript program to bytecode and save it as a .levc file.

Examples:
  leviscript compile script.lev
  leviscript compile script.lev -o out.levc
  leviscript compile script.lev --disassemble`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: <input>.levc)")
	compileCmd.Flags().BoolVar(&disassemble, "disassemble", false, "print disassembled bytecode after compiling")
}

func compileScript(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	code, debug, _, err := compile(filename, string(content))
	if err != nil {
		return err
	}

	if disassemble {
		fmt.Fprint(os.Stderr, code.Disassemble(debug))
	}

	outFile := outputFile
	if outFile == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			outFile = strings.TrimSuffix(filename, ext) + ".levc"
		} else {
			outFile = filename + ".levc"
		}
	}

	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", outFile, err)
	}
	defer f.Close()

	if err := serializer.Write(f, code, debug); err != nil {
		return fmt.Errorf("failed to write bytecode: %w", err)
	}

	fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	return nil
}
