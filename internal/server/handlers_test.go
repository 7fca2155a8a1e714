package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/resume-enhancer/internal/ingestion"
	"github.com/jonathan/resume-enhancer/internal/rendering"
	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/speech"
	"github.com/jonathan/resume-enhancer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	atsReply      = `{"score": 85, "feedback": "Add metrics"}`
	atsChatOpener = "I just enhanced my resume. ATS score is 85%. Here’s the feedback: Add metrics. Can you give me more suggestions?"
)

func TestUploadResume(t *testing.T) {
	ts := newTestServer(t)
	token := ts.newSession(t)

	w := ts.upload("/v1/session/resume", token, "file", "resume.txt", []byte(sampleResume), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[struct {
		Resume    string `json:"resume"`
		Dashboard struct {
			Missing []string `json:"missing"`
			Heatmap []struct {
				Section string `json:"section"`
				Score   int    `json:"score"`
			} `json:"heatmap"`
		} `json:"dashboard"`
		Session session.Sidebar `json:"session"`
	}](t, w)

	assert.Equal(t, sampleResume, resp.Resume)
	assert.Equal(t, []string{"Contact", "Summary"}, resp.Dashboard.Missing)
	require.Len(t, resp.Dashboard.Heatmap, 9)
	for _, s := range resp.Dashboard.Heatmap {
		switch s.Section {
		case "Experience", "Skills", "Education":
			assert.GreaterOrEqual(t, s.Score, 60, s.Section)
			assert.LessOrEqual(t, s.Score, 100, s.Section)
		default:
			assert.Zero(t, s.Score, s.Section)
		}
	}
	assert.True(t, resp.Session.HasResume)
	assert.Equal(t, []string{session.AchievementResumeUploaded}, resp.Session.Achievements)

	assert.Equal(t, sampleResume, ts.session(t, token).CurrentResume)
}

func TestUploadResume_Unreadable(t *testing.T) {
	ts := newTestServer(t)
	token := ts.newSession(t)

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{name: "empty", filename: "resume.pdf", data: nil},
		{name: "whitespace only", filename: "resume.txt", data: []byte("  \n\t ")},
		{name: "broken pdf", filename: "resume.pdf", data: []byte("%PDF-1.7 garbage")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.upload("/v1/session/resume", token, "file", tt.filename, tt.data, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, ingestion.UnreadableMessage, decodeBody[map[string]string](t, w)["error"])
		})
	}

	w := ts.upload("/v1/session/resume", token, "", "", nil, map[string]string{"note": "no file"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.False(t, ts.session(t, token).HasResume())
}

func TestResumeRoutesRequireUpload(t *testing.T) {
	ts := newTestServer(t)
	token := ts.newSession(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/v1/session/dashboard"},
		{http.MethodPost, "/v1/session/enhance"},
		{http.MethodPost, "/v1/session/rewrites"},
		{http.MethodPost, "/v1/session/roadmap"},
		{http.MethodPost, "/v1/session/hidden-jobs"},
		{http.MethodPost, "/v1/session/linkedin"},
		{http.MethodPost, "/v1/session/interview/question"},
	}
	for _, rt := range routes {
		t.Run(rt.path, func(t *testing.T) {
			w := ts.do(rt.method, rt.path, token, nil, "")
			assert.Equal(t, http.StatusConflict, w.Code)
		})
	}
	assert.Empty(t, ts.llm.sent())
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)
	token := ts.newResumeSession(t)

	w := ts.do(http.MethodGet, "/v1/session/dashboard", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[map[string]any](t, w)
	sections, ok := resp["sections"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, sections["Skills"], "go, sql")
	assert.Equal(t, "", sections["Contact"])
}

func TestEnhance(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.on("Enhance this resume", "Improved resume text").on("applicant tracking", atsReply)
	token := ts.newResumeSession(t)

	w := ts.do(http.MethodPost, "/v1/session/enhance", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[EnhanceResponse](t, w)
	assert.Equal(t, "Improved resume text", resp.Resume)
	assert.Equal(t, 85, resp.ATS.Score)
	assert.Contains(t, []string{
		"You're doing amazing! A few tweaks, and you'll land your dream job!",
		"Great work! Your potential is shining—keep pushing forward!",
		"You're on fire! Focus on your strengths, and success is yours!",
	}, resp.Encouragement)
	assert.Equal(t, 2, resp.Session.UserLevel)
	assert.Equal(t, session.MissionMatchJob, resp.Session.CurrentMission)

	sess := ts.session(t, token)
	assert.Equal(t, "Improved resume text", sess.TransformedResume)
	assert.Equal(t, sampleResume, sess.CurrentResume)
	assert.Equal(t, atsChatOpener, sess.ChatContext)
	assert.Equal(t, types.PageCareerAssistant, sess.CurrentPage)

	// A second enhancement does not level up again
	w = ts.do(http.MethodPost, "/v1/session/enhance", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeBody[EnhanceResponse](t, w).Session.UserLevel)

	assert.Equal(t, "Enhance this resume:\n"+sampleResume, ts.llm.sent()[0])
}

func TestEnhance_Failures(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		ts := newTestServer(t)
		token := ts.newResumeSession(t)
		ts.llm.fail(errors.New("quota exceeded"))

		w := ts.do(http.MethodPost, "/v1/session/enhance", token, nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, decodeBody[map[string]string](t, w)["error"], "API call failed")
		assert.Empty(t, ts.session(t, token).TransformedResume)
	})

	t.Run("unparseable score", func(t *testing.T) {
		ts := newTestServer(t)
		ts.llm.on("Enhance this resume", "Improved").on("applicant tracking", "ATS Score: 80")
		token := ts.newResumeSession(t)

		w := ts.do(http.MethodPost, "/v1/session/enhance", token, nil, "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Empty(t, ts.session(t, token).TransformedResume)
	})
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	token := ts.newResumeSession(t)

	w := ts.doJSON(http.MethodPost, "/v1/session/export", token, map[string]string{
		"template": "Executive",
		"color":    "#AA0000",
		"font":     "Courier",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "enhanced_resume.pdf")
	assert.Equal(t, "%PDF-1.4 stub", w.Body.String())

	assert.Equal(t, rendering.Options{Template: "Executive", Color: "#AA0000", Font: "Courier"}, ts.printer.opts)
	assert.Contains(t, ts.printer.sections.Get(types.SectionEducation), "bsc computer science")

	w = ts.doJSON(http.MethodPost, "/v1/session/export", token, map[string]string{"font": "Comic Sans"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.printer.err = &rendering.RenderError{Message: "chrome crashed"}
	w = ts.doJSON(http.MethodPost, "/v1/session/export", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDesign(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.on("applicant tracking", atsReply)
	token := ts.newResumeSession(t)

	w := ts.doJSON(http.MethodPost, "/v1/session/design", token, map[string]any{
		"order": []string{"Skills", "Education"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[EnhanceResponse](t, w)
	assert.True(t, strings.HasPrefix(resp.Resume, "Skills\n"), resp.Resume)
	assert.Contains(t, resp.Resume, "\n\nEducation\n")
	assert.NotContains(t, resp.Resume, "Experience")
	assert.Equal(t, 85, resp.ATS.Score)

	sess := ts.session(t, token)
	assert.Equal(t, resp.Resume, sess.TransformedResume)
	assert.Equal(t, 1, sess.UserLevel)

	w = ts.doJSON(http.MethodPost, "/v1/session/design", token, map[string]any{
		"order":    []string{"Skills"},
		"export":   true,
		"template": "Technical",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "Technical", ts.printer.opts.Template)

	w = ts.doJSON(http.MethodPost, "/v1/session/design", token, map[string]any{"order": []string{"Hobbies"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRewrites_StreamsEvents(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.on("as Executive", "Exec version").on("as Creative", "Creative version").on("as Technical", "Tech version")
	token := ts.newResumeSession(t)

	w := ts.do(http.MethodPost, "/v1/session/rewrites", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, 3, strings.Count(body, "event: version\n"))
	assert.Contains(t, body, `"text":"Creative version"`)
	assert.True(t, strings.HasSuffix(body, "event: complete\ndata: {\"versions\":["+
		`{"version":"Executive","text":"Exec version"},`+
		`{"version":"Creative","text":"Creative version"},`+
		`{"version":"Technical","text":"Tech version"}]}`+"\n\n"), body)
}

func TestRewrites_Failure(t *testing.T) {
	ts := newTestServer(t)
	token := ts.newResumeSession(t)
	ts.llm.fail(errors.New("unavailable"))

	w := ts.do(http.MethodPost, "/v1/session/rewrites", token, nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: error\n")
	assert.NotContains(t, w.Body.String(), "event: complete")
}

func TestPortfolio(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.on("Minimalist portfolio", "```html\n<html><body><script>alert(1)</script><h1 onclick=\"x()\">Jane</h1></body></html>\n```")
	token := ts.newResumeSession(t)

	w := ts.doJSON(http.MethodPost, "/v1/session/portfolio", token, map[string]string{"template": "Minimalist", "color": "blue"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	page := w.Body.String()
	assert.Contains(t, page, "<h1>Jane</h1>")
	assert.NotContains(t, page, "script")
	assert.NotContains(t, page, "onclick")

	w = ts.doJSON(http.MethodPost, "/v1/session/portfolio", token, map[string]string{"template": "Brutalist", "color": "blue"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestATS(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.on("applicant tracking", atsReply)
	token := ts.newResumeSession(t)

	w := ts.doJSON(http.MethodPost, "/v1/session/ats", token, map[string]string{"job_description": "Go engineer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"score":85,"feedback":"Add metrics"}`, w.Body.String())

	prompts := ts.llm.sent()
	assert.True(t, strings.HasSuffix(prompts[len(prompts)-1], "job description:\nGo engineer"))
	sess := ts.session(t, token)
	assert.Equal(t, atsChatOpener, sess.ChatContext)
	assert.Equal(t, types.PageCareerAssistant, sess.CurrentPage)

	// The job description is optional
	w = ts.do(http.MethodPost, "/v1/session/ats", token, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMatch(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.
		on("Rate how well", `{"score": 72}`).
		on("Compare the keywords", `{"present": ["golang", "SQL"], "missing": ["k8s"]}`)
	token := ts.newResumeSession(t)

	w := ts.doJSON(http.MethodPost, "/v1/session/match", token, map[string]string{"job_description": "Go and Kubernetes"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decodeBody[types.MatchResult](t, w)
	assert.Equal(t, 72, result.Score)
	assert.Equal(t, []string{"Go", "SQL"}, result.Keywords.Present)
	assert.Equal(t, []string{"Kubernetes"}, result.Keywords.Missing)

	assert.Equal(t,
		"My resume matches this job description with a score of 72%. Present keywords: Go, SQL. Missing keywords: Kubernetes. How can I improve?",
		ts.session(t, token).ChatContext)
}

func TestMatch_JobDescriptionSources(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.on("Rate how well", `{"score": 60}`).on("Compare the keywords", `{"present": [], "missing": []}`)
	token := ts.newResumeSession(t)

	t.Run("form field", func(t *testing.T) {
		w := ts.upload("/v1/session/match", token, "", "", nil, map[string]string{"job_description": "Data engineer"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, ts.llm.sent()[len(ts.llm.sent())-1], "Data engineer")
	})

	t.Run("uploaded file", func(t *testing.T) {
		w := ts.upload("/v1/session/match", token, "file", "job.txt", []byte("Platform engineer\nTerraform"), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, ts.llm.sent()[len(ts.llm.sent())-1], "Platform engineer\nTerraform")
	})

	t.Run("job posting url", func(t *testing.T) {
		posting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><body><nav>Careers</nav><main><h1>Site reliability engineer</h1><p>Prometheus</p></main></body></html>`))
		}))
		defer posting.Close()

		w := ts.doJSON(http.MethodPost, "/v1/session/match", token, map[string]string{"job_url": posting.URL + "/jobs/1"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		sent := ts.llm.sent()[len(ts.llm.sent())-1]
		assert.Contains(t, sent, "Site reliability engineer\nPrometheus")
		assert.NotContains(t, sent, "Careers")

		w = ts.upload("/v1/session/match", token, "", "", nil, map[string]string{"job_url": posting.URL})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("unreachable job posting", func(t *testing.T) {
		posting := httptest.NewServer(http.NotFoundHandler())
		defer posting.Close()

		w := ts.doJSON(http.MethodPost, "/v1/session/match", token, map[string]string{"job_url": posting.URL})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = ts.doJSON(http.MethodPost, "/v1/session/match", token, map[string]string{"job_url": "not a url"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("private job posting address", func(t *testing.T) {
		guarded := newTestServer(t, withPublicOnlyFetcher())
		guardedToken := guarded.newResumeSession(t)
		posting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><body><main>Internal only</main></body></html>`))
		}))
		defer posting.Close()

		w := guarded.doJSON(http.MethodPost, "/v1/session/match", guardedToken, map[string]string{"job_url": posting.URL})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeBody[map[string]string](t, w)["error"], "destination not allowed")
		assert.Empty(t, guarded.llm.sent())
	})

	t.Run("unreadable file", func(t *testing.T) {
		w := ts.upload("/v1/session/match", token, "file", "job.pdf", nil, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := ts.doJSON(http.MethodPost, "/v1/session/match", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.upload("/v1/session/match", token, "", "", nil, map[string]string{"other": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRoadmap(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.on("career roadmap", "Learn Go\nBuild services\nLead a team\nBecome staff")
	token := ts.newResumeSession(t)

	w := ts.do(http.MethodPost, "/v1/session/roadmap", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	roadmap := decodeBody[types.Roadmap](t, w)
	assert.Equal(t, []types.Milestone{
		{Milestone: "Learn Go", StartYear: 1, EndYear: 2},
		{Milestone: "Build services", StartYear: 2, EndYear: 3},
		{Milestone: "Lead a team", StartYear: 3, EndYear: 4},
	}, roadmap.Timeline)
}

func TestSingleTextFeatures(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.
		on("hidden job opportunities", "Try platform roles").
		on("LinkedIn", "Headline: Go engineer").
		on("salary negotiation", "Ask for 10% more")
	token := ts.newResumeSession(t)

	w := ts.do(http.MethodPost, "/v1/session/hidden-jobs", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Try platform roles", decodeBody[TextResponse](t, w).Text)

	w = ts.do(http.MethodPost, "/v1/session/linkedin", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Headline: Go engineer", decodeBody[TextResponse](t, w).Text)

	w = ts.doJSON(http.MethodPost, "/v1/session/salary", token, map[string]string{"job_description": "Senior Go role"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ask for 10% more", decodeBody[TextResponse](t, w).Text)
	assert.Contains(t, ts.llm.sent()[len(ts.llm.sent())-1], "and job description:\nSenior Go role")
}

func TestInterview(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.
		on("Generate a specific interview question", "  Tell me about a migration you led.\n").
		on("Evaluate this spoken answer", "Clear delivery").
		on("Evaluate this answer", "Good structure")
	token := ts.newResumeSession(t)

	w := ts.doJSON(http.MethodPost, "/v1/session/interview/answer", token, map[string]string{"answer": "Too early"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/v1/session/interview/question", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	question := "Tell me about a migration you led."
	assert.Equal(t, question, decodeBody[InterviewResponse](t, w).Question)
	assert.Equal(t, question, ts.session(t, token).InterviewQuestion)

	w = ts.doJSON(http.MethodPost, "/v1/session/interview/answer", token, map[string]string{"answer": "We moved to Go"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, InterviewResponse{Question: question, Answer: "We moved to Go", Feedback: "Good structure"}, decodeBody[InterviewResponse](t, w))
	assert.Contains(t, ts.llm.sent(), "Evaluate this answer to the question '"+question+"':\nWe moved to Go")

	w = ts.doJSON(http.MethodPost, "/v1/session/interview/answer", token, map[string]string{"answer": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.upload("/v1/session/interview/voice", token, "audio", "answer.wav", []byte("RIFF....WAVEfmt "), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, InterviewResponse{Question: question, Transcript: "I led the migration", Feedback: "Clear delivery"}, decodeBody[InterviewResponse](t, w))
}

func TestSpeech(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.on("Analyze this speech", "Slow down a little")
	token := ts.newSession(t)

	w := ts.upload("/v1/session/speech", token, "audio", "talk.wav", []byte("RIFF....WAVEfmt "), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, SpeechResponse{Transcript: "I led the migration", Feedback: "Slow down a little"}, decodeBody[SpeechResponse](t, w))
	assert.Equal(t, "Analyze this speech and provide detailed feedback:\nI led the migration", ts.llm.sent()[0])

	w = ts.upload("/v1/session/speech", token, "", "", nil, map[string]string{"x": "y"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSpeech_TranscriptionFailures(t *testing.T) {
	tests := []struct {
		name       string
		opts       []testOption
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "unintelligible", err: speech.ErrUnintelligible, wantStatus: http.StatusUnprocessableEntity, wantError: "Could not understand audio"},
		{name: "service down", err: speech.ErrServiceUnavailable, wantStatus: http.StatusServiceUnavailable, wantError: "API unavailable"},
		{name: "no transcriber", opts: []testOption{withoutTranscriber()}, wantStatus: http.StatusServiceUnavailable, wantError: "API unavailable"},
		{
			name:       "other failure",
			err:        errors.New("transcription failed: bad audio encoding"),
			wantStatus: http.StatusBadGateway,
			wantError:  "Error: transcription failed: bad audio encoding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.opts...)
			ts.transcriber.err = tt.err
			token := ts.newSession(t)

			w := ts.upload("/v1/session/speech", token, "audio", "talk.webm", []byte{0x1A, 0x45, 0xDF, 0xA3}, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decodeBody[map[string]string](t, w)["error"])
			assert.Empty(t, ts.llm.sent())
		})
	}
}

func TestChat(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.on("Can you give me more suggestions", "Lead with impact").on("What next", "Apply widely")
	token := ts.newSession(t)

	w := ts.do(http.MethodGet, "/v1/session/chat", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	_, err := ts.store.Update(t.Context(), ts.session(t, token).ID, func(s *session.Session) error {
		s.ChatContext = atsChatOpener
		return nil
	})
	require.NoError(t, err)

	w = ts.doJSON(http.MethodPost, "/v1/session/chat", token, map[string]string{"message": "What next?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[ChatResponse](t, w)
	assert.Equal(t, "Apply widely", resp.Reply)
	require.Len(t, resp.History, 4)
	assert.Equal(t, types.ChatMessage{Role: types.RoleUser, Content: atsChatOpener, Time: resp.History[0].Time}, resp.History[0])
	assert.Equal(t, "Lead with impact", resp.History[1].Content)
	assert.Equal(t, "What next?", resp.History[2].Content)
	assert.Equal(t, types.RoleAssistant, resp.History[3].Role)
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}$`, resp.History[0].Time)

	// Each message is sent on its own, without history
	assert.Equal(t, []string{atsChatOpener, "What next?"}, ts.llm.sent())
	assert.Empty(t, ts.session(t, token).ChatContext)

	// The opener is consumed once
	w = ts.doJSON(http.MethodPost, "/v1/session/chat", token, map[string]string{"message": "What next now?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[ChatResponse](t, w).History, 6)

	w = ts.doJSON(http.MethodPost, "/v1/session/chat", token, map[string]string{"message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChat_FailureKeepsContext(t *testing.T) {
	ts := newTestServer(t)
	token := ts.newSession(t)
	id := ts.session(t, token).ID

	_, err := ts.store.Update(t.Context(), id, func(s *session.Session) error {
		s.ChatContext = "pending opener"
		return nil
	})
	require.NoError(t, err)
	ts.llm.fail(errors.New("down"))

	w := ts.doJSON(http.MethodPost, "/v1/session/chat", token, map[string]string{"message": "Hello"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	sess := ts.session(t, token)
	assert.Equal(t, "pending opener", sess.ChatContext)
	assert.Empty(t, sess.ChatHistory)
}
