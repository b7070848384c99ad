package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/data"
	"github.com/caffeinepub/zenlink-5/internal/onboarding"
	"github.com/caffeinepub/zenlink-5/internal/querycache"
)

type nilProvider struct{}

func (nilProvider) Client() *backend.Client { return nil }

func newTestApp(t *testing.T, hasIdentity bool) *App {
	t.Helper()
	cache, err := querycache.New(querycache.Config{})
	require.NoError(t, err)
	store := data.NewStore(nilProvider{}, cache, nil)
	return New(context.Background(), store, hasIdentity, Options{})
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "down" {
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNoIdentityParksOnSignIn(t *testing.T) {
	app := newTestApp(t, false)
	assert.Equal(t, PageSignIn, app.page)
	assert.Contains(t, app.View(), "No identity configured")
}

func TestMissingProfileRoutesToOnboarding(t *testing.T) {
	app := newTestApp(t, true)
	app.Update(callerProfileMsg{IsFetched: true, Data: nil})
	assert.Equal(t, PageOnboarding, app.page)
}

func TestCompleteProfileRoutesHome(t *testing.T) {
	app := newTestApp(t, true)
	app.Update(callerProfileMsg{
		IsFetched: true,
		Data:      &backend.UserProfile{DisplayName: "Alice", Avatar: "🦊"},
	})
	assert.Equal(t, PageHome, app.page)
}

func TestLoadingProfileDoesNotRoute(t *testing.T) {
	app := newTestApp(t, true)
	app.Update(callerProfileMsg{IsLoading: true})
	assert.Equal(t, PageSignIn, app.page, "stay on the loading screen until the fetch settles")
}

func TestWizardQuizPathReachesSetup(t *testing.T) {
	app := newTestApp(t, true)
	app.Update(callerProfileMsg{IsFetched: true})
	require.Equal(t, PageOnboarding, app.page)

	// Decision: first option is the quiz.
	app.Update(key("enter"))
	require.Equal(t, onboarding.StepQuiz, app.wizard.machine.Step())

	// Always pick the second option of every question.
	for i := 0; i < len(onboarding.Questions); i++ {
		app.Update(key("down"))
		app.Update(key("enter"))
	}
	require.Equal(t, onboarding.StepResults, app.wizard.machine.Step())
	assert.Equal(t, "INFP", app.wizard.machine.Result())

	app.Update(key("enter"))
	assert.Equal(t, PageSetup, app.page)
	assert.Equal(t, "INFP", app.setup.draft.MBTIType)
	assert.Equal(t, "Listener", app.setup.draft.CommunicationStyle)
	assert.Equal(t, onboarding.CompletionDone, app.setup.completion)
}

func TestWizardKnownTypePathReachesSetup(t *testing.T) {
	app := newTestApp(t, true)
	app.Update(callerProfileMsg{IsFetched: true})

	app.Update(key("down"))
	app.Update(key("enter"))
	require.Equal(t, onboarding.StepKnownType, app.wizard.machine.Step())

	app.Update(key("enter")) // first listed type
	require.Equal(t, onboarding.StepResults, app.wizard.machine.Step())

	app.Update(key("enter"))
	assert.Equal(t, PageSetup, app.page)
	assert.Equal(t, onboarding.CompletionDone, app.setup.completion, "a known type still completes the profile")
}

func TestWizardSkipKeyReachesSetupWithoutType(t *testing.T) {
	app := newTestApp(t, true)
	app.Update(callerProfileMsg{IsFetched: true})
	require.Equal(t, PageOnboarding, app.page)

	app.Update(key("s"))
	assert.Equal(t, PageSetup, app.page)
	assert.Empty(t, app.setup.draft.MBTIType)
	assert.Equal(t, onboarding.CompletionSkip, app.setup.completion)
}

func TestWizardSkipKeyWorksMidQuiz(t *testing.T) {
	app := newTestApp(t, true)
	app.Update(callerProfileMsg{IsFetched: true})

	app.Update(key("enter")) // start the quiz
	app.Update(key("enter")) // answer the first question
	require.Equal(t, onboarding.StepQuiz, app.wizard.machine.Step())

	app.Update(key("s"))
	assert.Equal(t, PageSetup, app.page)
	assert.Empty(t, app.setup.draft.MBTIType)
	assert.Equal(t, onboarding.CompletionSkip, app.setup.completion)
}

func TestWizardResultsAutoContinue(t *testing.T) {
	app := newTestApp(t, true)
	app.Update(callerProfileMsg{IsFetched: true})

	app.Update(key("down"))
	app.Update(key("enter"))
	app.Update(key("enter")) // first listed type
	require.Equal(t, onboarding.StepResults, app.wizard.machine.Step())

	// The delayed tick moves on without a keypress.
	app.Update(resultsShownMsg{})
	assert.Equal(t, PageSetup, app.page)
	assert.Equal(t, onboarding.CompletionDone, app.setup.completion)
}

func TestWizardStaleResultsTimerIgnored(t *testing.T) {
	app := newTestApp(t, true)
	app.Update(callerProfileMsg{IsFetched: true})

	app.Update(key("down"))
	app.Update(key("enter"))
	app.Update(key("enter"))
	require.Equal(t, onboarding.StepResults, app.wizard.machine.Step())

	app.Update(key("enter")) // user continues before the timer fires
	require.Equal(t, PageSetup, app.page)
	app.setup.completion = ""

	// A timer left over from the results screen must not re-finish.
	app.Update(resultsShownMsg{})
	assert.Equal(t, PageSetup, app.page)
	assert.Empty(t, app.setup.completion)
}

func TestHomeBannerShownOnceAfterSave(t *testing.T) {
	app := newTestApp(t, true)
	app.mailbox.Set(onboarding.CompletionDone)
	app.goHome()
	assert.Equal(t, onboarding.CompletionDone, app.banner)
	assert.Contains(t, app.View(), "Profile completed successfully")

	// Navigating away and back clears the one-shot banner.
	app.banner = ""
	app.goHome()
	assert.Empty(t, app.banner)
}

func TestHomeMenuNavigation(t *testing.T) {
	app := newTestApp(t, true)
	app.page = PageHome

	app.Update(key("down"))
	app.Update(key("down"))
	assert.Equal(t, 2, app.cursor)

	app.Update(key("enter"))
	assert.Equal(t, homeMenu[2].page, app.page)
}

func TestSetupRejectsEmptyName(t *testing.T) {
	app := newTestApp(t, true)
	app.setup = newSetupState()
	app.page = PageSetup
	app.setup.field = fieldSave

	cmd := app.updateSetup(key("enter"))
	assert.Nil(t, cmd)
	assert.Error(t, app.lastErr)
}
