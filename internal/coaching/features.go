package coaching

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/jonathan/resume-enhancer/internal/prompts"
	"github.com/jonathan/resume-enhancer/internal/rendering"
	"github.com/jonathan/resume-enhancer/internal/types"
	"golang.org/x/sync/errgroup"
)

// RewriteVersions are the styles of the rewrite battle, in display order
var RewriteVersions = []string{"Executive", "Creative", "Technical"}

// Encouragements are shown after an enhancement
var Encouragements = []string{
	"You're doing amazing! A few tweaks, and you'll land your dream job!",
	"Great work! Your potential is shining—keep pushing forward!",
	"You're on fire! Focus on your strengths, and success is yours!",
}

// DefaultMilestones are used when a roadmap has a single line
var DefaultMilestones = []string{"Learn Skills", "Junior Role", "Senior Role"}

// Encouragement picks one of the fixed encouragement messages
func (s *Service) Encouragement() string {
	return Encouragements[s.rng.IntN(len(Encouragements))]
}

// generate renders a free-text prompt and completes it
func (s *Service) generate(ctx context.Context, key string, tier llm.ModelTier, data map[string]string) (string, error) {
	prompt, err := prompts.Render(prompts.CoachingFile, key, data)
	if err != nil {
		return "", err
	}
	return s.complete(ctx, key, prompt, tier)
}

// Enhance rewrites a resume and scores the result
func (s *Service) Enhance(ctx context.Context, resume string) (*types.Enhancement, error) {
	text, err := s.generate(ctx, "enhance", llm.TierAdvanced, map[string]string{"Resume": resume})
	if err != nil {
		return nil, err
	}
	return s.Review(ctx, rendering.PlainText(text))
}

// Review scores an already transformed resume and adds an encouragement
func (s *Service) Review(ctx context.Context, resume string) (*types.Enhancement, error) {
	ats, err := s.ATS(ctx, resume, "")
	if err != nil {
		return nil, err
	}
	return &types.Enhancement{
		Resume:        resume,
		ATS:           *ats,
		Encouragement: s.Encouragement(),
	}, nil
}

// Rewrites generates every rewrite version concurrently. emit, when not nil,
// is called once per version as soon as it is ready; calls are serialized.
// The returned slice follows RewriteVersions order.
func (s *Service) Rewrites(ctx context.Context, resume string, emit func(types.RewriteVersion)) ([]types.RewriteVersion, error) {
	results := make([]types.RewriteVersion, len(RewriteVersions))
	var emitMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, version := range RewriteVersions {
		g.Go(func() error {
			text, err := s.generate(gctx, "rewrite", llm.TierAdvanced, map[string]string{
				"Version": version,
				"Resume":  resume,
			})
			if err != nil {
				return err
			}

			results[i] = types.RewriteVersion{Version: version, Text: text}
			if emit != nil {
				emitMu.Lock()
				emit(results[i])
				emitMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Portfolio generates a portfolio page and strips anything executable from it
func (s *Service) Portfolio(ctx context.Context, resume, template, color string) (string, error) {
	text, err := s.generate(ctx, "portfolio", llm.TierAdvanced, map[string]string{
		"Template": template,
		"Color":    color,
		"Resume":   resume,
	})
	if err != nil {
		return "", err
	}
	return rendering.SanitizePortfolio(text)
}

// Roadmap generates a career roadmap and its timeline rows
func (s *Service) Roadmap(ctx context.Context, resume string) (*types.Roadmap, error) {
	text, err := s.generate(ctx, "roadmap", llm.TierStandard, map[string]string{"Resume": resume})
	if err != nil {
		return nil, err
	}
	return &types.Roadmap{Text: text, Timeline: Timeline(text)}, nil
}

// Timeline builds up to three roadmap rows. Text with line breaks uses its
// first three lines as milestones, other text uses DefaultMilestones.
// Row i spans years i+1 to i+2.
func Timeline(roadmap string) []types.Milestone {
	milestones := DefaultMilestones
	if strings.Contains(roadmap, "\n") {
		lines := strings.Split(roadmap, "\n")
		milestones = lines[:min(3, len(lines))]
	}

	rows := make([]types.Milestone, 0, len(milestones))
	for i, m := range milestones {
		rows = append(rows, types.Milestone{
			Milestone: strings.TrimSpace(m),
			StartYear: i + 1,
			EndYear:   i + 2,
		})
	}
	return rows
}

// HiddenJobs suggests roles the resume qualifies for beyond the obvious ones
func (s *Service) HiddenJobs(ctx context.Context, resume string) (string, error) {
	return s.generate(ctx, "hidden-jobs", llm.TierStandard, map[string]string{"Resume": resume})
}

// Salary drafts a salary negotiation strategy for a job
func (s *Service) Salary(ctx context.Context, resume, jobDescription string) (string, error) {
	return s.generate(ctx, "salary", llm.TierStandard, map[string]string{
		"Resume":         resume,
		"JobDescription": jobDescription,
	})
}

// LinkedIn rewrites the resume as LinkedIn profile content
func (s *Service) LinkedIn(ctx context.Context, resume string) (string, error) {
	return s.generate(ctx, "linkedin", llm.TierStandard, map[string]string{"Resume": resume})
}

// InterviewQuestion asks the model for a question tailored to the resume
func (s *Service) InterviewQuestion(ctx context.Context, resume string) (string, error) {
	text, err := s.generate(ctx, "interview-question", llm.TierLite, map[string]string{"Resume": resume})
	return strings.TrimSpace(text), err
}

// EvaluateAnswer reviews an answer to an interview question. spoken selects
// the wording for transcribed answers.
func (s *Service) EvaluateAnswer(ctx context.Context, question, answer string, spoken bool) (string, error) {
	key := "interview-answer"
	if spoken {
		key = "interview-voice-answer"
	}
	return s.generate(ctx, key, llm.TierStandard, map[string]string{
		"Question": question,
		"Answer":   answer,
	})
}

// SpeechFeedback analyses a transcribed speech
func (s *Service) SpeechFeedback(ctx context.Context, transcript string) (string, error) {
	return s.generate(ctx, "speech-feedback", llm.TierStandard, map[string]string{"Answer": transcript})
}

// Reply answers a career assistant chat message. Messages are sent without
// earlier history.
func (s *Service) Reply(ctx context.Context, message string) (string, error) {
	return s.complete(ctx, "chat", message, llm.TierLite)
}

// ATSChatContext is the chat opener seeded by an ATS result
func ATSChatContext(result types.AtsResult) string {
	return prompts.Format(prompts.MustGet(prompts.CoachingFile, "chat-context-ats"), map[string]string{
		"Score":    strconv.Itoa(result.Score),
		"Feedback": result.Feedback,
	})
}

// MatchChatContext is the chat opener seeded by a match result
func MatchChatContext(result types.MatchResult) string {
	return prompts.Format(prompts.MustGet(prompts.CoachingFile, "chat-context-match"), map[string]string{
		"Score":   strconv.Itoa(result.Score),
		"Present": strings.Join(result.Keywords.Present, ", "),
		"Missing": strings.Join(result.Keywords.Missing, ", "),
	})
}
