package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/sections"
)

var (
	renderInput string
	renderOut   outputPaths
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a saved model response",
	Long:  `Extract the tailored resume and gap analysis from a saved response and export the resume offline.`,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to the saved response (- for stdin)")
	renderCmd.Flags().StringVar(&renderOut.pdf, "pdf", "", "Write the resume as PDF to this path")
	renderCmd.Flags().StringVar(&renderOut.html, "html", "", "Write the resume and gaps as HTML to this path")
	renderCmd.Flags().StringVar(&renderOut.tex, "tex", "", "Write the resume as LaTeX to this path")
	_ = renderCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return err
	}

	var data []byte
	if renderInput == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(renderInput)
	}
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	result := sections.Parse(string(data))
	out := cmd.OutOrStdout()
	if !result.ResumeFound {
		fmt.Fprintln(out, "No tailored resume tags found; using the whole response.")
	}
	printGaps(out, result)
	return writeOutputs(out, result, renderOut, cfg.Export)
}
