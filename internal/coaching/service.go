// Package coaching implements the resume and career coaching features on top
// of the LLM client. Each method builds a prompt, calls the model and
// interprets the answer.
//
// Two parsing modes exist. In legacy mode LLM failures come back as inline
// "Error fetching AI response:" text and unreadable scores fall back to
// random values, as the free-text prompts always did. In structured mode
// scores are requested as schema-constrained JSON and failures are returned
// as *parsing.APICallError or *parsing.ParseError.
package coaching

import (
	"context"
	"time"

	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/jonathan/resume-enhancer/internal/logger"
	"github.com/jonathan/resume-enhancer/internal/parsing"
	"github.com/jonathan/resume-enhancer/internal/types"
	"go.uber.org/zap"
)

// promptLogLimit is how much of a prompt is logged at debug level
const promptLogLimit = 120

// Service runs coaching features against an LLM
type Service struct {
	client llm.Client
	legacy bool
	rng    types.Rand
	logger *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLegacyParsing selects marker parsing with random fallbacks
func WithLegacyParsing(legacy bool) Option {
	return func(s *Service) { s.legacy = legacy }
}

// WithRand sets the randomness source
func WithRand(rng types.Rand) Option {
	return func(s *Service) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a coaching service. Structured parsing is the default.
func NewService(client llm.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		rng:    types.OrGlobalRand(nil),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Legacy reports whether the service uses marker parsing
func (s *Service) Legacy() bool {
	return s.legacy
}

// complete sends a free-text prompt. In legacy mode it never fails: errors
// become the inline error text. In structured mode they become *parsing.APICallError.
func (s *Service) complete(ctx context.Context, operation, prompt string, tier llm.ModelTier) (string, error) {
	log := s.callLogger(operation, prompt, tier)
	start := time.Now()

	if s.legacy {
		text := llm.Complete(ctx, s.client, prompt, tier)
		if llm.IsErrorResponse(text) {
			log.Warn("llm call failed, returning inline error", zap.Duration("duration", time.Since(start)))
		}
		return text, nil
	}

	text, err := s.client.GenerateContent(ctx, prompt, tier)
	if err != nil {
		log.Warn("llm call failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", &parsing.APICallError{Message: operation, Cause: err}
	}
	log.Debug("llm call completed", zap.Duration("duration", time.Since(start)))
	return text, nil
}

// structured requests JSON constrained by the named embedded schema
func (s *Service) structured(ctx context.Context, operation, prompt, schema string, tier llm.ModelTier) (string, error) {
	log := s.callLogger(operation, prompt, tier)
	start := time.Now()

	text, err := s.client.GenerateStructured(ctx, prompt, schema, tier)
	if err != nil {
		log.Warn("structured llm call failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", &parsing.APICallError{Message: operation, Cause: err}
	}
	log.Debug("structured llm call completed", zap.Duration("duration", time.Since(start)))
	return text, nil
}

func (s *Service) callLogger(operation, prompt string, tier llm.ModelTier) *zap.Logger {
	return logger.WithFields(s.logger,
		zap.String(logger.FieldOperation, operation),
		zap.String("tier", string(tier)),
		zap.String("prompt", logger.TruncateForLog(prompt, promptLogLimit)),
	)
}
