package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/resume-enhancer/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates free text using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateStructured generates JSON constrained by a JSON Schema document
	GenerateStructured(ctx context.Context, prompt string, schema string, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// AudioClient is implemented by clients that accept audio input
type AudioClient interface {
	GenerateFromAudio(ctx context.Context, prompt string, audio []byte, mimeType string, tier ModelTier) (string, error)
}

// ClientOption configures a client
type ClientOption func(*GeminiClient)

// WithLogger sets the logger used for call tracing
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *GeminiClient) {
		c.logger = l
	}
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string, opts ...ClientOption) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey, opts...)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client and AudioClient for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
	logger *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, opts ...ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &GeminiClient{
		client: client,
		config: config,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.WithCommonFields(c.logger, string(ProviderGemini), "")
	return c, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, model, tier, genai.Text(prompt))
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"

	text, err := c.generate(ctx, model, tier, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GenerateStructured asks the model for JSON matching schema, a JSON Schema document
func (c *GeminiClient) GenerateStructured(ctx context.Context, prompt string, schema string, tier ModelTier) (string, error) {
	responseSchema, err := ToGenaiSchema(schema)
	if err != nil {
		return "", err
	}

	model, err := c.model(tier)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema

	text, err := c.generate(ctx, model, tier, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GenerateFromAudio sends an audio clip together with an instruction prompt
func (c *GeminiClient) GenerateFromAudio(ctx context.Context, prompt string, audio []byte, mimeType string, tier ModelTier) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio is empty")
	}
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, model, tier, genai.Blob{MIMEType: mimeType, Data: audio}, genai.Text(prompt))
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *GeminiClient) model(tier ModelTier) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.Temperature)
	return model, nil
}

func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, tier ModelTier, parts ...genai.Part) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, parts...)
	log := c.logger.With(
		zap.String(logger.FieldModel, c.config.GetModel(tier)),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		log.Warn("gemini call failed", zap.Error(err))
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		log.Warn("gemini returned no text", zap.Error(err))
		return "", err
	}
	log.Debug("gemini call completed", zap.Int("response_chars", len(text)))
	return text, nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
