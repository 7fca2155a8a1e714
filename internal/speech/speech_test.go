package speech

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jonathan/resume-enhancer/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type stubAudio struct {
	reply    string
	err      error
	mimeType string
	calls    int
}

func (s *stubAudio) GenerateFromAudio(_ context.Context, prompt string, _ []byte, mimeType string, _ llm.ModelTier) (string, error) {
	s.calls++
	s.mimeType = mimeType
	if prompt == "" {
		return "", errors.New("empty prompt")
	}
	return s.reply, s.err
}

func TestTranscribe(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		want    string
		wantErr error
	}{
		{name: "transcript", reply: "  I led the migration.  ", want: "I led the migration."},
		{name: "unintelligible marker", reply: "UNINTELLIGIBLE.", wantErr: ErrUnintelligible},
		{name: "blank reply", reply: "   ", wantErr: ErrUnintelligible},
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, wantErr: ErrServiceUnavailable},
		{name: "grpc unavailable", err: status.Error(codes.Unavailable, "down"), wantErr: ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewGeminiTranscriber(&stubAudio{reply: tt.reply, err: tt.err}, time.Second, nil)

			got, err := tr.Transcribe(context.Background(), []byte("RIFF....WAVEfmt "), "audio/wav")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranscribe_OtherErrorsKeepDetail(t *testing.T) {
	tr := NewGeminiTranscriber(&stubAudio{err: errors.New("bad audio encoding")}, time.Second, nil)

	_, err := tr.Transcribe(context.Background(), []byte("data"), "audio/wav")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, "Error: transcription failed: bad audio encoding", DescribeFailure(err))
}

func TestTranscribe_NoClientOrAudio(t *testing.T) {
	_, err := NewGeminiTranscriber(nil, 0, nil).Transcribe(context.Background(), []byte("x"), "")
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	stub := &stubAudio{reply: "hello"}
	_, err = NewGeminiTranscriber(stub, 0, nil).Transcribe(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrUnintelligible)
	assert.Zero(t, stub.calls)
}

func TestTranscribe_SniffsMIMEType(t *testing.T) {
	stub := &stubAudio{reply: "hello"}
	_, err := NewGeminiTranscriber(stub, 0, nil).Transcribe(context.Background(), []byte("OggS\x00\x02rest of stream"), "")
	require.NoError(t, err)
	assert.Equal(t, "audio/ogg", stub.mimeType)
}

func TestDescribeFailure(t *testing.T) {
	assert.Equal(t, "Could not understand audio", DescribeFailure(ErrUnintelligible))
	assert.Equal(t, "API unavailable", DescribeFailure(ErrServiceUnavailable))
	assert.Equal(t, "Error: boom", DescribeFailure(errors.New("boom")))
}

func TestError(t *testing.T) {
	cause := errors.New("bad audio encoding")
	err := &Error{Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "transcription error: bad audio encoding", err.Error())
	assert.Equal(t, "Error: bad audio encoding", err.Message())
	assert.Equal(t, MessageUnintelligible, (&Error{Cause: ErrUnintelligible}).Message())
}

func TestDetectMIMEType(t *testing.T) {
	assert.Equal(t, "audio/wav", DetectMIMEType([]byte("RIFF\x24\x00\x00\x00WAVEfmt ")))
	assert.Equal(t, "audio/mpeg", DetectMIMEType([]byte("ID3\x03\x00\x00\x00\x00\x00\x00")))
	assert.Equal(t, "audio/wav", DetectMIMEType([]byte("unknown bytes")))
}
