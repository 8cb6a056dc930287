package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/genmark/internal/api"
)

func TestParseTabDefaultsToDashboard(t *testing.T) {
	t.Parallel()

	for _, tab := range Tabs {
		require.Equal(t, tab, ParseTab(string(tab)))
	}
	require.Equal(t, TabSettings, ParseTab(" Settings "))
	require.Equal(t, TabDashboard, ParseTab("history"))
	require.Equal(t, TabDashboard, ParseTab(""))
	require.Equal(t, TabDashboard, New().WithTab("nope").Tab)
}

func TestNotifyLastWriteWins(t *testing.T) {
	t.Parallel()

	s := New().Notify("a", "first", KindSuccess)
	s = s.Notify("b", "second", KindWarning)
	require.Equal(t, &Notification{ID: "b", Message: "second", Kind: KindWarning}, s.Notice)

	// the first notification's timer fires but must not clear the second
	s = s.Expire("a")
	require.NotNil(t, s.Notice)
	require.Equal(t, "second", s.Notice.Message)

	s = s.Expire("b")
	require.Nil(t, s.Notice)
}

func TestNotifyDefaultsToInfo(t *testing.T) {
	t.Parallel()

	s := New().Notify("x", "hello", "")
	require.Equal(t, KindInfo, s.Notice.Kind)
}

func TestUpdatesDoNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := New()
	_ = base.Notify("x", "hello", KindInfo).WithLoading(true).WithError("boom").WithTab(TabContent)
	require.Equal(t, New(), base)
}

func TestFailUsesBackendDetail(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("load: %w", &api.StatusError{Method: "GET", Path: "/analysis/analyses", Code: 500, Detail: "Error analyzing competitor: timeout"})
	s := New().Fail("e1", err)
	require.Equal(t, "Error analyzing competitor: timeout", s.Err)
	require.Equal(t, KindError, s.Notice.Kind)
	require.Equal(t, s.Err, s.Notice.Message)

	s = s.ClearError()
	require.Empty(t, s.Err)
	require.NotNil(t, s.Notice)
}

func TestErrorMessageFallbacks(t *testing.T) {
	t.Parallel()

	require.Equal(t, "An unexpected error occurred", ErrorMessage(nil))
	require.Equal(t, "An unexpected error occurred", ErrorMessage(errors.New("  ")))
	require.Equal(t, "Request failed with status code 502", ErrorMessage(&api.StatusError{Code: 502}))
	require.Equal(t, "dial tcp: refused", ErrorMessage(errors.New("dial tcp: refused")))
}
