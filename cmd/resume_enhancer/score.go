package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-enhancer/internal/coaching"
	"github.com/jonathan/resume-enhancer/internal/fetch"
	"github.com/jonathan/resume-enhancer/internal/ingestion"
	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/jonathan/resume-enhancer/internal/observability"
	"github.com/jonathan/resume-enhancer/internal/types"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume with the ATS check and an optional job match",
	Long: `Ask the model for an ATS score of a resume. With --job or --job-url the resume
is also matched against the job description and its keywords are analysed.`,
	RunE: runScore,
}

var (
	scoreInputFile string
	scoreJobFile   string
	scoreJobURL    string
	scoreLegacy    bool
	scoreJSON      bool
	scoreAPIKey    string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreInputFile, "in", "i", "", "Path to resume file (PDF, DOCX or text)")
	scoreCmd.Flags().StringVarP(&scoreJobFile, "job", "j", "", "Path to job description file")
	scoreCmd.Flags().StringVar(&scoreJobURL, "job-url", "", "URL of a job posting (instead of --job)")
	scoreCmd.Flags().BoolVar(&scoreLegacy, "legacy", false, "Parse free-text model responses with random fallbacks")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print results as JSON")
	scoreCmd.Flags().StringVar(&scoreAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	_ = scoreCmd.MarkFlagRequired("in")
	scoreCmd.MarkFlagsMutuallyExclusive("job", "job-url")

	rootCmd.AddCommand(scoreCmd)
}

type scoreOutput struct {
	ATS   *types.AtsResult   `json:"ats"`
	Match *types.MatchResult `json:"match,omitempty"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	resume, err := ingestion.IngestFile(scoreInputFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var jobDescription string
	switch {
	case scoreJobFile != "":
		job, err := ingestion.IngestFile(scoreJobFile)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		jobDescription = job.Text
	case scoreJobURL != "":
		jobDescription, err = fetch.NewClient(0, fetch.AllowPrivateNetworks()).JobPosting(ctx, scoreJobURL)
		if err != nil {
			return fmt.Errorf("failed to fetch job posting: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scoreAPIKey != "" {
		cfg.APIKey = scoreAPIKey
		cfg.APIKeyFile = ""
	}
	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client, err := llm.NewGeminiClient(ctx, cfg.LLMConfig(), apiKey, llm.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	coach := coaching.NewService(client,
		coaching.WithLegacyParsing(scoreLegacy || cfg.LegacyParsing),
		coaching.WithLogger(log),
	)

	ats, err := coach.ATS(ctx, resume.Text, jobDescription)
	if err != nil {
		return fmt.Errorf("ATS check failed: %w", err)
	}
	result := scoreOutput{ATS: ats}

	if jobDescription != "" {
		match, err := coach.Match(ctx, resume.Text, jobDescription)
		if err != nil {
			return fmt.Errorf("job match failed: %w", err)
		}
		result.Match = match
	}

	out := cmd.OutOrStdout()
	if scoreJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	p := observability.NewPrinter(out)
	p.PrintATS(ats)
	if result.Match != nil {
		p.PrintMatch(result.Match)
	}
	return nil
}
