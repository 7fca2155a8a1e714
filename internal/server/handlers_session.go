package server

import (
	"net/http"
	"time"

	"github.com/jonathan/resume-enhancer/internal/ingestion"
	"github.com/jonathan/resume-enhancer/internal/sections"
	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/types"
	"go.uber.org/zap"
)

// CreateSessionResponse carries the token for a new session
type CreateSessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   session.Sidebar `json:"session"`
}

// UploadResponse is returned after a resume upload
type UploadResponse struct {
	Resume    string              `json:"resume"`
	Metadata  *ingestion.Metadata `json:"metadata"`
	Dashboard types.Dashboard     `json:"dashboard"`
	Session   session.Sidebar     `json:"session"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Create(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	token, expiresAt, err := s.jwtService.GenerateToken(sess.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info("session created", zap.String("session_id", sess.ID.String()))
	s.jsonResponse(w, http.StatusCreated, CreateSessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   sess.Sidebar(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Sidebar())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	var req types.PreferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.updateSession(r, func(sess *session.Session) error {
		sess.ApplyPreferences(req)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Sidebar())
}

// handleUploadResume extracts text from an uploaded PDF, DOCX or text file
// and makes it the session's current resume
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUpload(w, r, "file")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	doc, err := ingestion.Extract(filename, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.updateSession(r, func(sess *session.Session) error {
		sess.RecordUpload(doc.Text)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, UploadResponse{
		Resume:    doc.Text,
		Metadata:  doc.Metadata,
		Dashboard: sections.BuildDashboard(doc.Text, s.rng),
		Session:   sess.Sidebar(),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sections.BuildDashboard(sess.CurrentResume, s.rng))
}
