package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubscope/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdfs...]",
	Short: "Extract text from patent PDF files",
	Long: `Convert extracts plain text from PDF files using the pdftotext binary,
writing one .txt file per input. Files whose output already exists are
skipped.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("out-dir", "output/text", "directory for extracted text files")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF paths")
	}

	converter, err := convert.NewPdftotextConverter()
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	result := convert.ConvertBatch(converter, args, outDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}
