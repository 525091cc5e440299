package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/beanboi7/chyp-8/emu/disasm"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm path/ROM",
	Short: "print the assembler listing of a ROM",
	Args:  cobra.ExactArgs(1),
	RunE:  disassemble,
}

var disasmOutput string

func init() {
	disasmCmd.Flags().StringVarP(&disasmOutput, "output", "o", "", "write the listing to a file instead of stdout")
}

func disassemble(cmd *cobra.Command, args []string) error {
	rom, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if disasmOutput != "" {
		f, err := os.Create(disasmOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				logger.Error("Closing output file failed", err)
			}
		}()
		w = f
	}

	if err := disasm.Write(w, rom); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	if disasmOutput != "" {
		logger.Info("Listing written", log.String("path", disasmOutput), log.Int("size", len(rom)))
	}
	return nil
}
