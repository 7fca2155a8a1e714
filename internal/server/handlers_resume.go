package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jonathan/resume-enhancer/internal/coaching"
	"github.com/jonathan/resume-enhancer/internal/rendering"
	"github.com/jonathan/resume-enhancer/internal/sections"
	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/types"
	"go.uber.org/zap"
)

// EnhanceResponse is an enhanced or redesigned resume with its score
type EnhanceResponse struct {
	types.Enhancement
	Session session.Sidebar `json:"session"`
}

// handleEnhance rewrites the uploaded resume, scores it and advances the missions
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	enhancement, err := s.coach.Enhance(r.Context(), sess.CurrentResume)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err = s.updateSession(r, func(sess *session.Session) error {
		sess.RecordEnhancement(enhancement.Resume)
		sess.SeedChat(coaching.ATSChatContext(enhancement.ATS))
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, EnhanceResponse{Enhancement: *enhancement, Session: sess.Sidebar()})
}

// handleExport renders the active resume as a PDF download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req types.ExportOptions
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.writePDF(w, r, sess.ActiveResume(), req, "enhanced_resume.pdf")
}

// handleDesign reorders the uploaded resume's sections into a new resume.
// With export set the response is the PDF instead of JSON.
func (s *Server) handleDesign(w http.ResponseWriter, r *http.Request) {
	var req types.DesignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	m, _ := sections.Segment(sess.CurrentResume)
	text := sections.Compose(m, req.Order)

	review, err := s.coach.Review(r.Context(), text)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err = s.updateSession(r, func(sess *session.Session) error {
		sess.TransformedResume = text
		sess.SeedChat(coaching.ATSChatContext(review.ATS))
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if req.Export {
		s.writePDF(w, r, text, req.ExportOptions, "designed_resume.pdf")
		return
	}
	s.jsonResponse(w, http.StatusOK, EnhanceResponse{Enhancement: *review, Session: sess.Sidebar()})
}

func (s *Server) writePDF(w http.ResponseWriter, r *http.Request, text string, opts types.ExportOptions, filename string) {
	m, _ := sections.Segment(text)
	pdf, err := s.printer.RenderResume(r.Context(), m, rendering.OptionsFrom(opts))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.logger.Warn("writing PDF", zap.Error(err))
	}
}

// handleRewrites streams each rewrite version as a "version" event as soon
// as it is ready, then a "complete" event with all versions in order
func (s *Server) handleRewrites(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	versions, err := s.coach.Rewrites(ctx, sess.CurrentResume, func(v types.RewriteVersion) {
		if err := sse.WriteEvent("version", v); err != nil {
			// Client went away; stop the remaining generations
			cancel()
		}
	})
	if err != nil {
		s.logger.Warn("rewrites failed", zap.Error(err))
		sse.WriteError(errorMessage(err))
		return
	}
	sse.WriteComplete(map[string]any{"versions": versions})
}

// handlePortfolio returns a generated portfolio page as an HTML download
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	var req types.PortfolioRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.loadResumeSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page, err := s.coach.Portfolio(r.Context(), sess.ActiveResume(), req.Template, req.Color)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio.html"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(page)); err != nil {
		s.logger.Warn("writing portfolio", zap.Error(err))
	}
}
