package server

import (
	"context"
	"net/http"

	"github.com/jonathan/resume-enhancer/internal/coaching"
	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/types"
)

// TextResponse wraps a free-text LLM answer
type TextResponse struct {
	Text string `json:"text"`
}

// handleATS scores the active resume, optionally against a job description,
// and seeds the chat with the result
func (s *Server) handleATS(w http.ResponseWriter, r *http.Request) {
	var req types.ATSRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.coach.ATS(r.Context(), sess.ActiveResume(), req.JobDescription)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.seedChat(r, coaching.ATSChatContext(*result)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleMatch scores the active resume against a job description given as
// text, a posting URL or an uploaded file
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	jd, err := s.jobDescription(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.coach.Match(r.Context(), sess.ActiveResume(), jd)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.seedChat(r, coaching.MatchChatContext(*result)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// seedChat sets the message the next chat turn opens with
func (s *Server) seedChat(r *http.Request, opener string) error {
	_, err := s.updateSession(r, func(sess *session.Session) error {
		sess.SeedChat(opener)
		return nil
	})
	return err
}

func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	roadmap, err := s.coach.Roadmap(r.Context(), sess.ActiveResume())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, roadmap)
}

func (s *Server) handleHiddenJobs(w http.ResponseWriter, r *http.Request) {
	s.resumeText(w, r, s.coach.HiddenJobs)
}

func (s *Server) handleLinkedIn(w http.ResponseWriter, r *http.Request) {
	s.resumeText(w, r, s.coach.LinkedIn)
}

func (s *Server) handleSalary(w http.ResponseWriter, r *http.Request) {
	jd, err := s.jobDescription(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	text, err := s.coach.Salary(r.Context(), sess.ActiveResume(), jd)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, TextResponse{Text: text})
}

// resumeText answers a single-prompt feature that only needs the resume
func (s *Server) resumeText(w http.ResponseWriter, r *http.Request, generate func(ctx context.Context, resume string) (string, error)) {
	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	text, err := generate(r.Context(), sess.ActiveResume())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, TextResponse{Text: text})
}
