package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/data"
)

// Messages carrying loaded data into the Elm loop, one per read accessor.
type (
	callerProfileMsg data.Result[*backend.UserProfile]
	momentsMsg       data.Result[[]backend.WeeklyMoment]
	dailyMsg         data.Result[[]backend.DailyChallenge]
	weeklyMsg        data.Result[[]backend.WeeklyChallenge]
	statsMsg         data.Result[backend.GlobalStats]
	feedMsg          data.Result[[]backend.ChatMessage]
	connectionsMsg   data.Result[[]backend.Connection]
	roleMsg          data.Result[backend.UserRole]
	adminStatsMsg    struct {
		stats backend.AdminStats
		err   error
	}
	conversationMsg struct {
		partner backend.Principal
		result  data.Result[[]backend.ChatMessage]
	}

	// actionDoneMsg reports the outcome of a write.
	actionDoneMsg struct {
		action string
		err    error
	}

	// liveFeedMsg is one websocket frame from the global feed.
	liveFeedMsg backend.ChatMessage
	// liveFeedClosedMsg means the watch stream ended.
	liveFeedClosedMsg struct{}

	// statsTickMsg drives the periodic stats refresh.
	statsTickMsg time.Time
)

func (a *App) loadCallerProfile() tea.Cmd {
	return func() tea.Msg {
		return callerProfileMsg(a.store.CallerProfile(a.ctx))
	}
}

func (a *App) loadMoments() tea.Cmd {
	return func() tea.Msg {
		return momentsMsg(a.store.TopMoments(a.ctx))
	}
}

func (a *App) loadChallenges() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return dailyMsg(a.store.DailyChallenges(a.ctx)) },
		func() tea.Msg { return weeklyMsg(a.store.WeeklyChallenges(a.ctx)) },
	)
}

func (a *App) loadStats() tea.Cmd {
	return func() tea.Msg {
		return statsMsg(a.store.GlobalStats(a.ctx))
	}
}

func (a *App) loadFeed() tea.Cmd {
	return func() tea.Msg {
		return feedMsg(a.store.GlobalChatFeed(a.ctx))
	}
}

func (a *App) loadConnections() tea.Cmd {
	return func() tea.Msg {
		return connectionsMsg(a.store.AvailableConnections(a.ctx))
	}
}

func (a *App) loadRole() tea.Cmd {
	return func() tea.Msg {
		return roleMsg(a.store.CallerRole(a.ctx))
	}
}

func (a *App) loadAdminStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := a.store.AdminStats(a.ctx)
		return adminStatsMsg{stats: stats, err: err}
	}
}

func (a *App) loadConversation(partner backend.Principal) tea.Cmd {
	return func() tea.Msg {
		return conversationMsg{partner: partner, result: a.store.Conversation(a.ctx, partner)}
	}
}

func (a *App) do(action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(a.ctx)}
	}
}

// watchFeed forwards websocket frames from ch into the program.
func watchFeed(ch <-chan backend.ChatMessage) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return liveFeedClosedMsg{}
		}
		return liveFeedMsg(msg)
	}
}

func statsTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}
