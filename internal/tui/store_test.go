package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/genmark/internal/api"
	"github.com/jask/genmark/internal/session"
)

func TestStoreSchedulesExpiryPerNotification(t *testing.T) {
	s := NewStore(nil)
	var fired []tea.Msg
	s.tick = func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
		require.Equal(t, session.NotificationTTL, d)
		return func() tea.Msg { return fn(time.Now()) }
	}

	first := s.Notify(session.KindSuccess, "one")
	second := s.Fail(errors.New("two"))
	fired = append(fired, first(), second())

	s.expire(fired[0].(notificationExpiredMsg).id)
	require.Equal(t, "two", s.State().Notice.Message)
	require.Equal(t, "two", s.State().Err)

	s.expire(fired[1].(notificationExpiredMsg).id)
	require.Nil(t, s.State().Notice)
}

func TestStoreSelectPromptNeedsAnalysis(t *testing.T) {
	s := NewStore(nil)
	require.ErrorIs(t, s.SelectPrompt(api.PromptIdea{ID: 1, AnalysisID: 1}), session.ErrNoAnalysis)

	s.SelectAnalysis(api.Analysis{ID: 1})
	require.NoError(t, s.SelectPrompt(api.PromptIdea{ID: 1, AnalysisID: 1}))
	require.Equal(t, session.StagePrompt, s.State().Pipeline.Stage())
}
