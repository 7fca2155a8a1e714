package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-enhancer/internal/ingestion"
	"github.com/jonathan/resume-enhancer/internal/observability"
	"github.com/jonathan/resume-enhancer/internal/sections"
	"github.com/spf13/cobra"
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Split a resume into sections",
	Long:  "Extract the text of a PDF, DOCX or plain-text resume and show its sections, the essential sections it lacks and the section heatmap.",
	RunE:  runSegment,
}

var (
	segmentInputFile string
	segmentJSON      bool
)

func init() {
	segmentCmd.Flags().StringVarP(&segmentInputFile, "in", "i", "", "Path to resume file (PDF, DOCX or text)")
	segmentCmd.Flags().BoolVar(&segmentJSON, "json", false, "Print the dashboard as JSON")
	_ = segmentCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, _ []string) error {
	doc, err := ingestion.IngestFile(segmentInputFile)
	if err != nil {
		return err
	}

	dashboard := sections.BuildDashboard(doc.Text, nil)
	out := cmd.OutOrStdout()

	if segmentJSON {
		data, err := json.MarshalIndent(dashboard, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	p := observability.NewPrinter(out)
	p.PrintSections(dashboard.Sections, dashboard.Missing)
	p.PrintHeatmap(dashboard.Heatmap)
	return nil
}
