package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/resume-enhancer/internal/logger"
	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/speech"
	"github.com/jonathan/resume-enhancer/internal/types"
	"go.uber.org/zap"
)

// InterviewResponse describes one step of the mock interview
type InterviewResponse struct {
	Question   string `json:"question"`
	Answer     string `json:"answer,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Feedback   string `json:"feedback,omitempty"`
}

// SpeechResponse is the analysis of a recorded speech
type SpeechResponse struct {
	Transcript string `json:"transcript"`
	Feedback   string `json:"feedback"`
}

func (s *Server) handleInterviewQuestion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	question, err := s.coach.InterviewQuestion(r.Context(), sess.ActiveResume())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if _, err := s.updateSession(r, func(sess *session.Session) error {
		sess.InterviewQuestion = question
		return nil
	}); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, InterviewResponse{Question: question})
}

func (s *Server) handleInterviewAnswer(w http.ResponseWriter, r *http.Request) {
	var req types.InterviewAnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	question, err := s.pendingQuestion(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	feedback, err := s.coach.EvaluateAnswer(r.Context(), question, req.Answer, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, InterviewResponse{Question: question, Answer: req.Answer, Feedback: feedback})
}

// handleInterviewVoice transcribes a recorded "audio" answer and evaluates it
func (s *Server) handleInterviewVoice(w http.ResponseWriter, r *http.Request) {
	question, err := s.pendingQuestion(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	transcript, err := s.transcribeUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	feedback, err := s.coach.EvaluateAnswer(r.Context(), question, transcript, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, InterviewResponse{Question: question, Transcript: transcript, Feedback: feedback})
}

// handleSpeech transcribes a recorded "audio" speech and analyses it
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if _, err := s.loadSession(r); err != nil {
		s.fail(w, r, err)
		return
	}

	transcript, err := s.transcribeUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	feedback, err := s.coach.SpeechFeedback(r.Context(), transcript)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SpeechResponse{Transcript: transcript, Feedback: feedback})
}

// pendingQuestion returns the interview question awaiting an answer
func (s *Server) pendingQuestion(r *http.Request) (string, error) {
	sess, err := s.loadSession(r)
	if err != nil {
		return "", err
	}
	if sess.InterviewQuestion == "" {
		return "", &ErrValidation{Field: "question", Message: "request an interview question first"}
	}
	return sess.InterviewQuestion, nil
}

func (s *Server) transcribeUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	_, audio, err := readUpload(w, r, "audio")
	if err != nil {
		return "", err
	}
	if s.transcriber == nil {
		return "", speech.ErrServiceUnavailable
	}

	mimeType := speech.DetectMIMEType(audio)
	if header := r.MultipartForm.File["audio"]; len(header) > 0 {
		if ct := header[0].Header.Get("Content-Type"); strings.HasPrefix(ct, "audio/") {
			mimeType = ct
		}
	}

	transcript, err := s.transcriber.Transcribe(r.Context(), audio, mimeType)
	if err != nil {
		s.logger.Info("transcription failed", zap.String("mime_type", mimeType), zap.Error(err))
		return "", &speech.Error{Cause: err}
	}
	s.logger.Debug("transcribed audio", zap.String("transcript", logger.TruncateForLog(transcript, 80)))
	return transcript, nil
}
