package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-enhancer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := New(uuid.New(), now)

	assert.Empty(t, s.CurrentResume)
	assert.Empty(t, s.TransformedResume)
	assert.NotNil(t, s.ChatHistory)
	assert.Empty(t, s.ChatHistory)
	assert.False(t, s.DarkMode)
	assert.Equal(t, types.PageLanding, s.CurrentPage)
	assert.Equal(t, 1, s.UserLevel)
	assert.NotNil(t, s.Achievements)
	assert.Empty(t, s.Achievements)
	assert.Equal(t, []string{MissionFirstEnhancement}, s.Missions)
	assert.Equal(t, now, s.CreatedAt)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chat_history":[]`)
	assert.Contains(t, string(data), `"current_page":"Landing Page"`)
}

func TestRecordUpload(t *testing.T) {
	s := New(uuid.New(), time.Now())
	s.TransformedResume = "old"

	s.RecordUpload("new resume")
	s.RecordUpload("newer resume")

	assert.Equal(t, "newer resume", s.CurrentResume)
	assert.Empty(t, s.TransformedResume)
	assert.Equal(t, []string{AchievementResumeUploaded}, s.Achievements)
	assert.True(t, s.HasResume())
}

func TestRecordEnhancement_FirstTimeOnly(t *testing.T) {
	s := New(uuid.New(), time.Now())
	s.RecordUpload("resume")

	s.RecordEnhancement("better")
	assert.Equal(t, 2, s.UserLevel)
	assert.Equal(t, []string{AchievementResumeUploaded, AchievementResumeEnhanced}, s.Achievements)
	assert.Equal(t, MissionMatchJob, s.CurrentMission())
	assert.Equal(t, "better", s.ActiveResume())

	s.RecordEnhancement("best")
	assert.Equal(t, 2, s.UserLevel)
	assert.Len(t, s.Missions, 2)
	assert.Equal(t, "best", s.TransformedResume)
}

func TestRecordEnhancement_LevelCapped(t *testing.T) {
	s := New(uuid.New(), time.Now())
	s.UserLevel = MaxLevel

	s.RecordEnhancement("text")
	assert.Equal(t, MaxLevel, s.UserLevel)
	assert.InDelta(t, 1.0, s.Progress(), 1e-9)
}

func TestChat(t *testing.T) {
	s := New(uuid.New(), time.Now())
	at := time.Date(2026, 5, 6, 14, 3, 9, 0, time.UTC)

	s.AppendChat(types.RoleUser, "hello", at)
	require.Len(t, s.ChatHistory, 1)
	assert.Equal(t, types.ChatMessage{Role: types.RoleUser, Content: "hello", Time: "14:03:09"}, s.ChatHistory[0])

	s.ChatContext = "seed"
	assert.Equal(t, "seed", s.TakeChatContext())
	assert.Empty(t, s.TakeChatContext())
}

func TestApplyPreferences(t *testing.T) {
	s := New(uuid.New(), time.Now())
	dark := true
	page := string(types.PageJobMatching)

	s.ApplyPreferences(types.PreferencesRequest{DarkMode: &dark})
	assert.True(t, s.DarkMode)
	assert.Equal(t, types.PageLanding, s.CurrentPage)

	s.ApplyPreferences(types.PreferencesRequest{CurrentPage: &page})
	assert.True(t, s.DarkMode)
	assert.Equal(t, types.PageJobMatching, s.CurrentPage)
}

func TestSeedChat(t *testing.T) {
	s := New(uuid.New(), time.Now())

	s.SeedChat("How can I improve?")
	assert.Equal(t, types.PageCareerAssistant, s.CurrentPage)
	assert.Equal(t, "How can I improve?", s.TakeChatContext())
	assert.Empty(t, s.ChatContext)
}

func TestSidebarAndClone(t *testing.T) {
	s := New(uuid.New(), time.Now())
	s.RecordUpload("resume")

	sidebar := s.Sidebar()
	assert.Equal(t, 1, sidebar.UserLevel)
	assert.InDelta(t, 0.1, sidebar.Progress, 1e-9)
	assert.Equal(t, MissionFirstEnhancement, sidebar.CurrentMission)
	assert.True(t, sidebar.HasResume)

	c := s.Clone()
	c.Achievements[0] = "changed"
	c.Missions = append(c.Missions, "extra")
	assert.Equal(t, AchievementResumeUploaded, s.Achievements[0])
	assert.Len(t, s.Missions, 1)
}

func TestCurrentMission_Empty(t *testing.T) {
	s := &Session{}
	assert.Empty(t, s.CurrentMission())
}
