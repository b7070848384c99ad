package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/data"
	"github.com/caffeinepub/zenlink-5/internal/onboarding"
)

// Page identifies the active screen.
type Page int

const (
	PageSignIn Page = iota
	PageOnboarding
	PageSetup
	PageHome
	PageMoments
	PageChat
	PageFeed
	PageChallenges
	PageConnections
	PageStats
)

type menuItem struct {
	label string
	page  Page
}

var homeMenu = []menuItem{
	{"Weekly Highlights", PageMoments},
	{"Conversations", PageChat},
	{"Global Feed", PageFeed},
	{"Challenges", PageChallenges},
	{"Connections", PageConnections},
	{"Community Pulse", PageStats},
}

// Options tune an App beyond its required collaborators.
type Options struct {
	// Feed, when set, streams live global-feed messages into the feed page.
	Feed <-chan backend.ChatMessage
	// StatsInterval is the periodic stats refresh cadence. Zero disables it.
	StatsInterval time.Duration
}

// App is the root Bubble Tea model. It owns routing, the onboarding gate and
// the data shared across pages; each page keeps its own input state.
type App struct {
	ctx   context.Context
	store *data.Store
	opts  Options

	hasIdentity bool
	page        Page
	cursor      int
	width       int
	height      int
	spin        spinner.Model
	status      string
	lastErr     error

	profile data.Result[*backend.UserProfile]
	role    data.Result[backend.UserRole]
	mailbox onboarding.Mailbox
	banner  string

	wizard      wizardState
	setup       setupState
	moments     momentsState
	chat        chatState
	feed        feedState
	challenges  challengesState
	connections connectionsState
	stats       statsState
}

// New builds the root model. hasIdentity reflects whether a bearer identity
// was configured; without one the app parks on the sign-in screen.
func New(ctx context.Context, store *data.Store, hasIdentity bool, opts Options) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	app := &App{
		ctx:         ctx,
		store:       store,
		opts:        opts,
		hasIdentity: hasIdentity,
		page:        PageSignIn,
		spin:        sp,
	}
	app.wizard = newWizardState()
	app.setup = newSetupState()
	app.moments = newMomentsState()
	app.chat = newChatState()
	app.feed = newFeedState()
	app.stats = newStatsState()
	return app
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spin.Tick}
	if a.hasIdentity {
		cmds = append(cmds, a.loadCallerProfile(), a.loadRole(), a.loadStats())
	}
	if a.opts.StatsInterval > 0 {
		cmds = append(cmds, statsTick(a.opts.StatsInterval))
	}
	if a.opts.Feed != nil {
		cmds = append(cmds, watchFeed(a.opts.Feed))
	}
	return tea.Batch(cmds...)
}

// route applies the onboarding gate once the profile fetch settles.
func (a *App) route() {
	switch onboarding.Decide(a.hasIdentity, a.profile.Data) {
	case onboarding.GateSignIn:
		a.page = PageSignIn
	case onboarding.GateOnboard:
		if a.profile.IsFetched && a.page != PageOnboarding && a.page != PageSetup {
			a.page = PageOnboarding
		}
	case onboarding.GateAllow:
		if a.page == PageSignIn || a.page == PageOnboarding || a.page == PageSetup {
			a.goHome()
		}
	}
}

func (a *App) goHome() {
	a.page = PageHome
	a.cursor = 0
	if msg, ok := a.mailbox.TakeOnce(); ok {
		a.banner = msg
	}
}

func (a *App) enterPage(p Page) tea.Cmd {
	a.page = p
	a.lastErr = nil
	switch p {
	case PageMoments:
		return a.loadMoments()
	case PageChat:
		a.chat.reset()
		return a.loadConnections()
	case PageFeed:
		return a.loadFeed()
	case PageChallenges:
		return a.loadChallenges()
	case PageConnections:
		return a.loadConnections()
	case PageStats:
		cmds := []tea.Cmd{a.loadStats()}
		if a.role.Data == backend.RoleAdmin {
			cmds = append(cmds, a.loadAdminStats())
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case callerProfileMsg:
		a.profile = data.Result[*backend.UserProfile](msg)
		a.route()
		return a, nil

	case roleMsg:
		a.role = data.Result[backend.UserRole](msg)
		return a, nil

	case statsTickMsg:
		// Force a revalidation round trip, then keep ticking.
		a.store.Cache().Invalidate(data.KeyGlobalStats)
		return a, tea.Batch(a.loadStats(), statsTick(a.opts.StatsInterval))

	case statsMsg:
		a.stats.global = data.Result[backend.GlobalStats](msg)
		return a, nil

	case adminStatsMsg:
		a.stats.admin = msg
		return a, nil

	case momentsMsg:
		a.moments.list = data.Result[[]backend.WeeklyMoment](msg)
		return a, nil

	case dailyMsg:
		a.challenges.daily = data.Result[[]backend.DailyChallenge](msg)
		return a, nil

	case weeklyMsg:
		a.challenges.weekly = data.Result[[]backend.WeeklyChallenge](msg)
		return a, nil

	case feedMsg:
		a.feed.history = data.Result[[]backend.ChatMessage](msg)
		return a, nil

	case liveFeedMsg:
		a.feed.live = append(a.feed.live, backend.ChatMessage(msg))
		return a, watchFeed(a.opts.Feed)

	case liveFeedClosedMsg:
		return a, nil

	case connectionsMsg:
		a.connections.list = data.Result[[]backend.Connection](msg)
		a.chat.partners = a.connections.list
		return a, nil

	case conversationMsg:
		if msg.partner == a.chat.partner {
			a.chat.history = msg.result
		}
		return a, nil

	case resultsShownMsg:
		// Ignore a stale timer if the user already moved on.
		if a.page == PageOnboarding && a.wizard.machine.Step() == onboarding.StepResults {
			a.finishWizard()
		}
		return a, nil

	case actionDoneMsg:
		return a, a.handleAction(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, a.updateInputs(msg)
}

// handleAction folds a write outcome back into page state and schedules the
// follow-up reads that make the invalidation visible.
func (a *App) handleAction(msg actionDoneMsg) tea.Cmd {
	if msg.err != nil {
		a.lastErr = msg.err
		return nil
	}
	a.lastErr = nil
	switch msg.action {
	case "saveProfile":
		a.mailbox.Set(a.setup.completion)
		a.profile = data.Result[*backend.UserProfile]{Data: &a.setup.draft, IsFetched: true}
		a.goHome()
		return a.loadCallerProfile()
	case "submitMoment":
		a.moments.composing = false
		a.moments.input.Reset()
		return a.loadMoments()
	case "impact", "removeMoment":
		return a.loadMoments()
	case "sendMessage":
		a.chat.input.Reset()
		return a.loadConversation(a.chat.partner)
	case "postGlobal":
		a.feed.input.Reset()
		return a.loadFeed()
	case "completeDaily", "completeWeekly":
		return a.loadChallenges()
	}
	return nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	switch a.page {
	case PageSignIn:
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil
	case PageOnboarding:
		return a, a.updateWizard(msg)
	case PageSetup:
		return a, a.updateSetup(msg)
	case PageHome:
		return a.updateHome(msg)
	case PageMoments:
		return a, a.updateMoments(msg)
	case PageChat:
		return a, a.updateChat(msg)
	case PageFeed:
		return a, a.updateFeed(msg)
	case PageChallenges:
		return a, a.updateChallenges(msg)
	case PageConnections:
		return a, a.updateConnections(msg)
	case PageStats:
		if msg.String() == "esc" {
			a.goHome()
		}
		return a, nil
	}
	return a, nil
}

// updateInputs forwards non-key messages to whichever text input is focused.
func (a *App) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.page {
	case PageSetup:
		a.setup.name, cmd = a.setup.name.Update(msg)
	case PageMoments:
		a.moments.input, cmd = a.moments.input.Update(msg)
	case PageChat:
		a.chat.input, cmd = a.chat.input.Update(msg)
	case PageFeed:
		a.feed.input, cmd = a.feed.input.Update(msg)
	}
	return cmd
}

func (a *App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(homeMenu)-1 {
			a.cursor++
		}
	case "enter":
		a.banner = ""
		return a, a.enterPage(homeMenu[a.cursor].page)
	}
	return a, nil
}

func (a *App) View() string {
	header := titleStyle.Render("ZenLink") + dimStyle.Render("  mindful connections")

	var body string
	switch a.page {
	case PageSignIn:
		body = a.viewSignIn()
	case PageOnboarding:
		body = a.viewWizard()
	case PageSetup:
		body = a.viewSetup()
	case PageHome:
		body = a.viewHome()
	case PageMoments:
		body = a.viewMoments()
	case PageChat:
		body = a.viewChat()
	case PageFeed:
		body = a.viewFeed()
	case PageChallenges:
		body = a.viewChallenges()
	case PageConnections:
		body = a.viewConnections()
	case PageStats:
		body = a.viewStats()
	}

	parts := []string{header, "", body}
	if a.lastErr != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("error: %v", a.lastErr)))
	}
	if a.status != "" {
		parts = append(parts, dimStyle.Render(a.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) viewSignIn() string {
	if !a.hasIdentity {
		return boxStyle.Render(
			"No identity configured.\n\n" +
				"Set " + accentStyle.Render("ZENLINK_IDENTITY_TOKEN") + " (or identity_token in ~/.zenlink.yaml)\n" +
				"and restart. Press q to quit.")
	}
	return a.spin.View() + " loading your profile..."
}

func (a *App) viewHome() string {
	var b string
	if a.banner != "" {
		b += bannerStyle.Render(a.banner) + "\n\n"
	}
	if p := a.profile.Data; p != nil {
		b += fmt.Sprintf("%s  %s", p.Avatar, titleStyle.Render(p.DisplayName))
		if p.MBTIType != "" {
			b += dimStyle.Render("  " + p.MBTIType)
		}
		b += "\n\n"
	}
	for i, item := range homeMenu {
		line := "  " + item.label
		if i == a.cursor {
			line = selectedStyle.Render("> " + item.label)
		}
		b += line + "\n"
	}
	if s := a.stats.global.Data; s.ActiveUsers > 0 {
		b += "\n" + dimStyle.Render(fmt.Sprintf("%d members active", s.ActiveUsers))
	}
	b += helpStyle.Render("\nup/down to move, enter to open, q to quit")
	return b
}
