// Package speech transcribes spoken answers and maps transcription failures
// to the messages shown to the user.
package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/jonathan/resume-enhancer/internal/prompts"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultTimeout bounds a single transcription
const DefaultTimeout = 30 * time.Second

// Unintelligible is the reply the transcription prompt asks for when no speech is heard
const Unintelligible = "UNINTELLIGIBLE"

var (
	// ErrUnintelligible means the audio held no recognizable speech
	ErrUnintelligible = errors.New("speech not recognized")
	// ErrServiceUnavailable means the speech service could not be reached
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

// Messages shown for failed transcriptions
const (
	MessageUnintelligible = "Could not understand audio"
	MessageUnavailable    = "API unavailable"
)

// DescribeFailure returns the user-facing message for a transcription error
func DescribeFailure(err error) string {
	switch {
	case errors.Is(err, ErrUnintelligible):
		return MessageUnintelligible
	case errors.Is(err, ErrServiceUnavailable):
		return MessageUnavailable
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// Error wraps any failure returned while transcribing an upload
type Error struct {
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcription error: %v", e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Message is the user-facing text for the failure
func (e *Error) Message() string {
	return DescribeFailure(e.Cause)
}

// Transcriber turns recorded audio into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// GeminiTranscriber transcribes audio with a multimodal Gemini model
type GeminiTranscriber struct {
	client  llm.AudioClient
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiTranscriber creates a transcriber. A nil client makes every call
// fail with ErrServiceUnavailable.
func NewGeminiTranscriber(client llm.AudioClient, timeout time.Duration, logger *zap.Logger) *GeminiTranscriber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiTranscriber{client: client, timeout: timeout, logger: logger}
}

// Transcribe returns the trimmed transcript of audio
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if t.client == nil {
		return "", ErrServiceUnavailable
	}
	if len(audio) == 0 {
		return "", ErrUnintelligible
	}
	if mimeType == "" {
		mimeType = DetectMIMEType(audio)
	}

	prompt, err := prompts.Get(prompts.CoachingFile, "transcribe")
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	text, err := t.client.GenerateFromAudio(ctx, prompt, audio, mimeType, llm.TierStandard)
	if err != nil {
		t.logger.Warn("transcription failed", zap.Error(err), zap.String("mime_type", mimeType))
		if isUnavailable(err) {
			return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(strings.Trim(text, ". "), Unintelligible) {
		return "", ErrUnintelligible
	}
	return text, nil
}

// isUnavailable reports errors that mean the service, not the audio, is at fault
func isUnavailable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			return true
		}
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.Internal:
			return true
		}
	}
	return false
}

// DetectMIMEType sniffs the audio container, defaulting to WAV
func DetectMIMEType(audio []byte) string {
	switch detected := http.DetectContentType(audio); {
	case strings.HasPrefix(detected, "audio/"):
		return strings.Replace(detected, "audio/wave", "audio/wav", 1)
	case detected == "application/ogg":
		return "audio/ogg"
	case detected == "video/webm":
		return "audio/webm"
	default:
		return "audio/wav"
	}
}
