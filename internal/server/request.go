package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/resume-enhancer/internal/ingestion"
	"github.com/jonathan/resume-enhancer/internal/server/middleware"
	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/types"
	"go.uber.org/zap"
)

// Request size limits
const (
	maxJSONBody   = 1 << 20  // 1 MiB
	maxUploadBody = 10 << 20 // 10 MiB
)

// validatable is implemented by every request DTO in types
type validatable interface {
	Validate() error
}

// decodeJSON reads a JSON body into v and validates it. An empty body is
// treated as "{}" so requests with only optional fields may omit it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v validatable) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	if err := v.Validate(); err != nil {
		return extractValidationErrors(err)
	}
	return nil
}

// isMultipart reports whether the request carries form-data
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readUpload returns the named file from a multipart request
func readUpload(w http.ResponseWriter, r *http.Request, field string) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return "", nil, &ErrValidation{Field: field, Message: "invalid multipart form: " + err.Error()}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, &ErrValidation{Field: field, Message: "file is required"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("reading upload %s: %w", header.Filename, err)
	}
	return header.Filename, data, nil
}

// jobDescription reads a job description from a JSON body, a
// "job_description" form field, a "job_url" posting or an uploaded "file"
// (PDF, DOCX or text).
func (s *Server) jobDescription(w http.ResponseWriter, r *http.Request) (string, error) {
	if !isMultipart(r) {
		var req types.JobDescriptionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return "", err
		}
		if text := strings.TrimSpace(req.JobDescription); text != "" {
			return text, nil
		}
		return s.fetchJobPosting(r, req.JobURL)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return "", &ErrValidation{Field: "job_description", Message: "invalid multipart form: " + err.Error()}
	}
	if text := strings.TrimSpace(r.FormValue("job_description")); text != "" {
		return text, nil
	}
	if jobURL := strings.TrimSpace(r.FormValue("job_url")); jobURL != "" {
		return s.fetchJobPosting(r, jobURL)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", &ErrValidation{Field: "job_description", Message: "required"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("reading upload %s: %w", header.Filename, err)
	}
	doc, err := ingestion.Extract(header.Filename, data)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

func (s *Server) fetchJobPosting(r *http.Request, jobURL string) (string, error) {
	text, err := s.fetcher.JobPosting(r.Context(), jobURL)
	if err != nil {
		return "", err
	}
	s.logger.Debug("fetched job posting", zap.String("url", jobURL), zap.Int("chars", len(text)))
	return text, nil
}

// sessionID returns the session resolved by the session middleware
func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := middleware.GetSessionID(r)
	if err != nil {
		return uuid.Nil, &ErrSessionRequired{}
	}
	return id, nil
}

// loadSession returns the caller's session
func (s *Server) loadSession(r *http.Request) (*session.Session, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

// loadResumeSession returns the caller's session, failing with ErrNoResume
// when nothing has been uploaded yet
func (s *Server) loadResumeSession(r *http.Request) (*session.Session, error) {
	sess, err := s.loadSession(r)
	if err != nil {
		return nil, err
	}
	if !sess.HasResume() {
		return nil, &ErrNoResume{}
	}
	return sess, nil
}

// updateSession applies fn to the caller's session atomically
func (s *Server) updateSession(r *http.Request, fn func(*session.Session) error) (*session.Session, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	return s.store.Update(r.Context(), id, fn)
}
