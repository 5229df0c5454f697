// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF-to-text conversion by delegating to the
// pdftotext binary. The layout analysis is entirely the tool's; this
// package handles batching, skip logic, and output placement.
// See docs/ARCHITECTURE.md § Conversion.
package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const binPdftotext = "pdftotext"

// Converter transforms a PDF file into plain text.
type Converter interface {
	// Convert reads the PDF at pdfPath and returns its text content.
	Convert(pdfPath string) (string, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(name string, args []string, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(name string, args []string, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	return cmd.Run()
}

// PdftotextConverter shells out to pdftotext with layout preservation.
type PdftotextConverter struct {
	exec executor
}

// NewPdftotextConverter returns a converter backed by the pdftotext
// binary, verifying the binary exists on PATH first.
func NewPdftotextConverter() (*PdftotextConverter, error) {
	return newPdftotextConverter(&osExecutor{})
}

func newPdftotextConverter(e executor) (*PdftotextConverter, error) {
	if _, err := e.LookPath(binPdftotext); err != nil {
		return nil, fmt.Errorf("pdftotext not found on PATH: %w", err)
	}
	return &PdftotextConverter{exec: e}, nil
}

// Convert runs pdftotext on the file and returns the extracted text.
// The "-" output argument makes pdftotext write to stdout.
func (c *PdftotextConverter) Convert(pdfPath string) (string, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}

	var out bytes.Buffer
	if err := c.exec.RunPiped(binPdftotext, []string{"-layout", pdfPath, "-"}, &out); err != nil {
		return "", fmt.Errorf("converting %s with pdftotext: %w", pdfPath, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("pdftotext produced empty output for %s", pdfPath)
	}

	return out.String(), nil
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any files failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertFile converts a single PDF, writing <name>.txt into outDir. If
// the output already exists the file is skipped. The returned string is
// the status line written to w.
func ConvertFile(c Converter, pdfPath, outDir string, w io.Writer) (converted bool, err error) {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	txtPath := filepath.Join(outDir, base+".txt")

	if _, statErr := os.Stat(txtPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return false, nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}

	text, err := c.Convert(pdfPath)
	if err != nil {
		return false, err
	}

	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", txtPath, err)
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return true, nil
}

// ConvertBatch processes a list of PDF paths, printing per-file status
// to w and returning a summary.
func ConvertBatch(c Converter, pdfPaths []string, outDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range pdfPaths {
		converted, err := ConvertFile(c, p, outDir, w)
		switch {
		case err != nil:
			base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
			result.Failed++
		case converted:
			result.Converted++
		default:
			result.Skipped++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
