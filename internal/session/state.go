// Package session holds the client's in-memory session state: the active
// tab, the analysis → prompt pipeline, the loading flag, the last error and
// the current notification.
//
// State is a value. Every update returns a new State and never touches the
// receiver, so views can be handed a snapshot and tests can compare states
// directly.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/jask/genmark/internal/api"
)

// NotificationTTL is how long a notification stays visible.
const NotificationTTL = 5 * time.Second

// fallbackErrorMessage is shown when an error carries no text.
const fallbackErrorMessage = "An unexpected error occurred"

// Tab identifies a top-level page.
type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabAnalysis  Tab = "analysis"
	TabPrompts   Tab = "prompts"
	TabContent   Tab = "content"
	TabSettings  Tab = "settings"
)

// Tabs lists every tab in header order.
var Tabs = []Tab{TabDashboard, TabAnalysis, TabPrompts, TabContent, TabSettings}

// ParseTab maps an identifier to a tab. Unknown identifiers fall back to the
// dashboard.
func ParseTab(id string) Tab {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, t := range Tabs {
		if string(t) == id {
			return t
		}
	}
	return TabDashboard
}

// Title is the header label of the tab.
func (t Tab) Title() string {
	switch t {
	case TabAnalysis:
		return "Competitor Analysis"
	case TabPrompts:
		return "Prompt Ideas"
	case TabContent:
		return "Content Generation"
	case TabSettings:
		return "Settings"
	default:
		return "Dashboard"
	}
}

// Kind is the severity of a notification.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notification is a transient message. ID distinguishes successive
// notifications so an expiry only clears the one it was scheduled for.
type Notification struct {
	ID      string
	Message string
	Kind    Kind
}

// State is the shared session state.
type State struct {
	Tab      Tab
	Pipeline Pipeline
	Loading  bool
	Err      string
	Notice   *Notification
}

// New returns the initial state: dashboard, empty pipeline.
func New() State {
	return State{Tab: TabDashboard}
}

func (s State) WithTab(t Tab) State {
	s.Tab = ParseTab(string(t))
	return s
}

func (s State) WithLoading(on bool) State {
	s.Loading = on
	return s
}

func (s State) WithError(msg string) State {
	s.Err = msg
	return s
}

func (s State) ClearError() State {
	s.Err = ""
	return s
}

func (s State) WithPipeline(p Pipeline) State {
	s.Pipeline = p
	return s
}

// Notify replaces the current notification. An empty kind means info.
func (s State) Notify(id, message string, kind Kind) State {
	if kind == "" {
		kind = KindInfo
	}
	s.Notice = &Notification{ID: id, Message: message, Kind: kind}
	return s
}

// Expire clears the notification if it is still the one identified by id.
func (s State) Expire(id string) State {
	if s.Notice != nil && s.Notice.ID == id {
		s.Notice = nil
	}
	return s
}

// Fail records err as the session error and raises an error notification.
func (s State) Fail(id string, err error) State {
	msg := ErrorMessage(err)
	s.Err = msg
	return s.Notify(id, msg, KindError)
}

// ErrorMessage is the human-readable text for err: the backend's detail for
// status errors, otherwise the error text.
func ErrorMessage(err error) string {
	if err == nil {
		return fallbackErrorMessage
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Message()
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallbackErrorMessage
}
