package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/resume-enhancer/internal/ingestion"
	"github.com/jonathan/resume-enhancer/internal/rendering"
	"github.com/jonathan/resume-enhancer/internal/sections"
	"github.com/jonathan/resume-enhancer/internal/types"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a resume as PDF",
	Long: `Segment a resume and lay it out with the chosen template, title color and font.
The PDF is printed with headless Chrome; --html writes the intermediate HTML instead.`,
	RunE: runExport,
}

var (
	exportInputFile  string
	exportOutputFile string
	exportTemplate   string
	exportColor      string
	exportFont       string
	exportHTML       bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportInputFile, "in", "i", "", "Path to resume file (PDF, DOCX or text)")
	exportCmd.Flags().StringVarP(&exportOutputFile, "out", "o", "enhanced_resume.pdf", "Path to output file")
	exportCmd.Flags().StringVar(&exportTemplate, "template", rendering.TemplateStandard, "Layout template: Standard, Executive, Creative or Technical")
	exportCmd.Flags().StringVar(&exportColor, "color", "", "Title color (CSS color name or hex)")
	exportCmd.Flags().StringVar(&exportFont, "font", "", "Font: Helvetica, Times-Roman or Courier")
	exportCmd.Flags().BoolVar(&exportHTML, "html", false, "Write HTML instead of PDF")
	_ = exportCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	opts := types.ExportOptions{Template: exportTemplate, Color: exportColor, Font: exportFont}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid export options: %w", err)
	}

	doc, err := ingestion.IngestFile(exportInputFile)
	if err != nil {
		return err
	}
	m, _ := sections.Segment(doc.Text)

	var output []byte
	if exportHTML {
		html, err := rendering.RenderHTML(m, rendering.OptionsFrom(opts))
		if err != nil {
			return err
		}
		output = []byte(html)
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		output, err = rendering.NewPDFRenderer(cfg.ChromePath, cfg.NoSandbox).RenderResume(ctx, m, rendering.OptionsFrom(opts))
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(exportOutputFile, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", exportOutputFile)
	return nil
}
