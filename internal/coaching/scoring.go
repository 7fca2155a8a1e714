package coaching

import (
	"context"

	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/jonathan/resume-enhancer/internal/parsing"
	"github.com/jonathan/resume-enhancer/internal/prompts"
	"github.com/jonathan/resume-enhancer/internal/schemas"
	"github.com/jonathan/resume-enhancer/internal/types"
	schemafiles "github.com/jonathan/resume-enhancer/schemas"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ATS scores a resume, against a job description when one is given
func (s *Service) ATS(ctx context.Context, resume, jobDescription string) (*types.AtsResult, error) {
	file := prompts.StructuredFile
	if s.legacy {
		file = prompts.CoachingFile
	}

	data := map[string]string{"Resume": resume, "JobDescription": jobDescription}
	prompt, err := prompts.Render(file, "ats", data)
	if err != nil {
		return nil, err
	}
	if jobDescription != "" {
		suffix, err := prompts.Render(file, "ats-job-description", data)
		if err != nil {
			return nil, err
		}
		prompt += suffix
	}

	if s.legacy {
		text, _ := s.complete(ctx, "ats", prompt, llm.TierStandard)
		result := parsing.ParseATS(text, s.rng)
		if result.Fallback {
			s.logger.Warn("ats score not found in response, using fallback",
				zap.Int("score", result.Score))
		}
		return &result, nil
	}

	text, err := s.structured(ctx, "ats", prompt, schemas.MustGet(schemafiles.ATSResult), llm.TierStandard)
	if err != nil {
		return nil, err
	}
	return parsing.DecodeATS(text)
}

// Keywords lists job description keywords present in and missing from a resume
func (s *Service) Keywords(ctx context.Context, resume, jobDescription string) (*types.KeywordAnalysis, error) {
	data := map[string]string{"Resume": resume, "JobDescription": jobDescription}

	if s.legacy {
		prompt, err := prompts.Render(prompts.CoachingFile, "keywords", data)
		if err != nil {
			return nil, err
		}
		text, _ := s.complete(ctx, "keywords", prompt, llm.TierStandard)
		analysis := parsing.ParseKeywords(text)
		return &analysis, nil
	}

	prompt, err := prompts.Render(prompts.StructuredFile, "keywords", data)
	if err != nil {
		return nil, err
	}
	text, err := s.structured(ctx, "keywords", prompt, schemas.MustGet(schemafiles.KeywordAnalysis), llm.TierStandard)
	if err != nil {
		return nil, err
	}
	return parsing.DecodeKeywords(text)
}

// MatchScore rates how well a resume fits a job description, from 0 to 100
func (s *Service) MatchScore(ctx context.Context, resume, jobDescription string) (int, error) {
	data := map[string]string{"Resume": resume, "JobDescription": jobDescription}

	if s.legacy {
		prompt, err := prompts.Render(prompts.CoachingFile, "match", data)
		if err != nil {
			return 0, err
		}
		text, _ := s.complete(ctx, "match", prompt, llm.TierStandard)
		score, fallback := parsing.ParseMatchScore(text, s.rng)
		if fallback {
			s.logger.Warn("match score not found in response, using fallback", zap.Int("score", score))
		}
		return score, nil
	}

	prompt, err := prompts.Render(prompts.StructuredFile, "match", data)
	if err != nil {
		return 0, err
	}
	text, err := s.structured(ctx, "match", prompt, schemas.MustGet(schemafiles.MatchScore), llm.TierStandard)
	if err != nil {
		return 0, err
	}
	return parsing.DecodeMatchScore(text)
}

// Match computes the match score and keyword analysis concurrently
func (s *Service) Match(ctx context.Context, resume, jobDescription string) (*types.MatchResult, error) {
	var (
		score    int
		keywords *types.KeywordAnalysis
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		score, err = s.MatchScore(gctx, resume, jobDescription)
		return err
	})
	g.Go(func() error {
		var err error
		keywords, err = s.Keywords(gctx, resume, jobDescription)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &types.MatchResult{Score: score, Keywords: *keywords}, nil
}
