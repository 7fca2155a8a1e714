package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured log field keys shared across packages
const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldSessionID = "session_id"
	FieldOperation = "operation"
)

// StringField describes a string-valued structured logging field
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with empty keys or values
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to l. A nil logger becomes a no-op logger.
func WithFields(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// CommonFields returns the provider and model fields, skipping empty values
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the provider and model fields to l
func WithCommonFields(l *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(l, CommonFields(provider, model)...)
}
