package server

import (
	"net/http"

	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/types"
)

// ChatResponse is the conversation after a chat turn
type ChatResponse struct {
	Reply   string              `json:"reply"`
	History []types.ChatMessage `json:"history"`
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	history := sess.ChatHistory
	if history == nil {
		history = []types.ChatMessage{}
	}
	s.jsonResponse(w, http.StatusOK, history)
}

// handleChat answers a message. A pending chat context seeded by ATS or
// match results is sent first as its own exchange and then cleared.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.loadSession(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opener := sess.ChatContext

	type exchange struct{ prompt, reply string }
	var turns []exchange

	if opener != "" {
		reply, err := s.coach.Reply(r.Context(), opener)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		turns = append(turns, exchange{opener, reply})
	}

	reply, err := s.coach.Reply(r.Context(), req.Message)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	turns = append(turns, exchange{req.Message, reply})

	sess, err = s.updateSession(r, func(sess *session.Session) error {
		// A newer context set while the replies were generated stays pending
		if opener != "" && sess.ChatContext == opener {
			sess.TakeChatContext()
		}
		now := s.now()
		for _, t := range turns {
			sess.AppendChat(types.RoleUser, t.prompt, now)
			sess.AppendChat(types.RoleAssistant, t.reply, now)
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ChatResponse{Reply: reply, History: sess.ChatHistory})
}
