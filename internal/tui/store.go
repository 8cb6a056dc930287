package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/genmark/internal/api"
	"github.com/jask/genmark/internal/session"
)

// notificationExpiredMsg is delivered when a notification's TTL elapses.
type notificationExpiredMsg struct{ id string }

// Store owns the session state shared by all pages. It is only touched from
// the bubbletea update loop.
type Store struct {
	state session.State
	ttl   time.Duration
	tick  func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
	newID func() string
	log   *slog.Logger
}

func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		state: session.New(),
		ttl:   session.NotificationTTL,
		tick:  tea.Tick,
		newID: uuid.NewString,
		log:   log,
	}
}

// State returns a snapshot.
func (s *Store) State() session.State { return s.state }

// Notify shows msg and schedules its expiry.
func (s *Store) Notify(kind session.Kind, msg string) tea.Cmd {
	id := s.newID()
	s.state = s.state.Notify(id, msg, kind)
	return s.expireAfterTTL(id)
}

// Fail logs err, records it as the session error and shows it.
func (s *Store) Fail(err error) tea.Cmd {
	s.log.Error("request failed", "tab", s.state.Tab, "err", err)
	id := s.newID()
	s.state = s.state.Fail(id, err)
	return s.expireAfterTTL(id)
}

func (s *Store) expireAfterTTL(id string) tea.Cmd {
	return s.tick(s.ttl, func(time.Time) tea.Msg { return notificationExpiredMsg{id: id} })
}

func (s *Store) expire(id string) { s.state = s.state.Expire(id) }

func (s *Store) SetLoading(on bool) { s.state = s.state.WithLoading(on) }

func (s *Store) SetTab(t session.Tab) { s.state = s.state.WithTab(t) }

func (s *Store) ClearError() { s.state = s.state.ClearError() }

func (s *Store) SelectAnalysis(a api.Analysis) {
	s.state = s.state.WithPipeline(s.state.Pipeline.SelectAnalysis(a))
}

func (s *Store) SelectPrompt(p api.PromptIdea) error {
	next, err := s.state.Pipeline.SelectPrompt(p)
	if err != nil {
		return err
	}
	s.state = s.state.WithPipeline(next)
	return nil
}
