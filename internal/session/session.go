// Package session holds the per-user coaching state and the stores that keep it.
package session

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-enhancer/internal/types"
)

// MaxLevel caps the user level
const MaxLevel = 10

// Achievements and missions
const (
	AchievementResumeUploaded = "Resume Uploaded"
	AchievementResumeEnhanced = "Resume Enhanced"

	MissionFirstEnhancement = "Complete your first resume enhancement"
	MissionMatchJob         = "Match your resume to a job description"
)

// Session is the state of one user's visit
type Session struct {
	ID                uuid.UUID           `json:"id"`
	CurrentResume     string              `json:"current_resume"`
	TransformedResume string              `json:"transformed_resume"`
	ChatHistory       []types.ChatMessage `json:"chat_history"`
	// ChatContext is sent to the assistant before the next user message
	ChatContext       string     `json:"chat_context,omitempty"`
	InterviewQuestion string     `json:"interview_question,omitempty"`
	DarkMode          bool       `json:"dark_mode"`
	CurrentPage       types.Page `json:"current_page"`
	UserLevel         int        `json:"user_level"`
	Achievements      []string   `json:"achievements"`
	Missions          []string   `json:"missions"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// New returns a session with default state
func New(id uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:           id,
		ChatHistory:  []types.ChatMessage{},
		CurrentPage:  types.PageLanding,
		UserLevel:    1,
		Achievements: []string{},
		Missions:     []string{MissionFirstEnhancement},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	c := *s
	c.ChatHistory = slices.Clone(s.ChatHistory)
	c.Achievements = slices.Clone(s.Achievements)
	c.Missions = slices.Clone(s.Missions)
	return &c
}

// HasResume reports whether a resume has been uploaded
func (s *Session) HasResume() bool {
	return s.CurrentResume != ""
}

// ActiveResume is the latest transformed resume, or the uploaded one
func (s *Session) ActiveResume() string {
	if s.TransformedResume != "" {
		return s.TransformedResume
	}
	return s.CurrentResume
}

// RecordUpload stores a freshly uploaded resume
func (s *Session) RecordUpload(text string) {
	s.CurrentResume = text
	s.TransformedResume = ""
	s.addAchievement(AchievementResumeUploaded)
}

// RecordEnhancement stores an enhanced resume. The first enhancement earns
// an achievement, a level and the next mission.
func (s *Session) RecordEnhancement(text string) {
	s.TransformedResume = text
	if slices.Contains(s.Achievements, AchievementResumeEnhanced) {
		return
	}
	s.addAchievement(AchievementResumeEnhanced)
	s.UserLevel = min(s.UserLevel+1, MaxLevel)
	if !slices.Contains(s.Missions, MissionMatchJob) {
		s.Missions = append(s.Missions, MissionMatchJob)
	}
}

func (s *Session) addAchievement(name string) {
	if !slices.Contains(s.Achievements, name) {
		s.Achievements = append(s.Achievements, name)
	}
}

// AppendChat adds a message stamped HH:MM:SS
func (s *Session) AppendChat(role, content string, at time.Time) {
	s.ChatHistory = append(s.ChatHistory, types.ChatMessage{
		Role:    role,
		Content: content,
		Time:    at.Format(time.TimeOnly),
	})
}

// SeedChat queues opener for the next chat turn and moves the user to the
// career assistant
func (s *Session) SeedChat(opener string) {
	s.ChatContext = opener
	s.CurrentPage = types.PageCareerAssistant
}

// TakeChatContext returns the pending chat context and clears it
func (s *Session) TakeChatContext() string {
	ctx := s.ChatContext
	s.ChatContext = ""
	return ctx
}

// CurrentMission is the most recent mission, or "" when there are none
func (s *Session) CurrentMission() string {
	if len(s.Missions) == 0 {
		return ""
	}
	return s.Missions[len(s.Missions)-1]
}

// Progress is the level as a fraction of MaxLevel
func (s *Session) Progress() float64 {
	return float64(s.UserLevel) / MaxLevel
}

// ApplyPreferences sets the fields present in req
func (s *Session) ApplyPreferences(req types.PreferencesRequest) {
	if req.DarkMode != nil {
		s.DarkMode = *req.DarkMode
	}
	if req.CurrentPage != nil {
		s.CurrentPage = types.Page(*req.CurrentPage)
	}
}

// Sidebar is the summary shown next to every page
type Sidebar struct {
	ID             uuid.UUID  `json:"id"`
	UserLevel      int        `json:"user_level"`
	Progress       float64    `json:"progress"`
	Achievements   []string   `json:"achievements"`
	CurrentMission string     `json:"current_mission"`
	DarkMode       bool       `json:"dark_mode"`
	CurrentPage    types.Page `json:"current_page"`
	HasResume      bool       `json:"has_resume"`
}

// Sidebar summarizes the session for display
func (s *Session) Sidebar() Sidebar {
	return Sidebar{
		ID:             s.ID,
		UserLevel:      s.UserLevel,
		Progress:       s.Progress(),
		Achievements:   slices.Clone(s.Achievements),
		CurrentMission: s.CurrentMission(),
		DarkMode:       s.DarkMode,
		CurrentPage:    s.CurrentPage,
		HasResume:      s.HasResume(),
	}
}
