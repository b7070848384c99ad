package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/data"
)

type challengesState struct {
	daily  data.Result[[]backend.DailyChallenge]
	weekly data.Result[[]backend.WeeklyChallenge]
	cursor int
}

func (c *challengesState) total() int {
	return len(c.daily.Data) + len(c.weekly.Data)
}

func (a *App) updateChallenges(msg tea.KeyMsg) tea.Cmd {
	c := &a.challenges

	switch msg.String() {
	case "esc":
		a.goHome()
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < c.total()-1 {
			c.cursor++
		}
	case "enter":
		if c.cursor < len(c.daily.Data) {
			id := c.daily.Data[c.cursor].ID
			return a.do("completeDaily", func(ctx context.Context) error {
				return a.store.CompleteDailyChallenge(ctx, id)
			})
		}
		if i := c.cursor - len(c.daily.Data); i < len(c.weekly.Data) {
			id := c.weekly.Data[i].ID
			return a.do("completeWeekly", func(ctx context.Context) error {
				return a.store.CompleteWeeklyChallenge(ctx, id)
			})
		}
	}
	return nil
}

func (a *App) viewChallenges() string {
	c := &a.challenges

	if c.daily.IsLoading || c.weekly.IsLoading {
		return a.spin.View() + " loading challenges..."
	}

	b := titleStyle.Render("Daily Challenges") + "\n"
	for i, ch := range c.daily.Data {
		line := fmt.Sprintf("%s %s", ch.Description, accentStyle.Render(fmt.Sprintf("streak %d", ch.Streak)))
		if i == c.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b += line + "\n"
	}

	b += "\n" + titleStyle.Render("Weekly Challenges") + "\n"
	for i, ch := range c.weekly.Data {
		mark := "[ ]"
		if ch.IsCompleted {
			mark = accentStyle.Render("[x]")
		}
		line := mark + " " + ch.Description
		if i+len(c.daily.Data) == c.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b += line + "\n"
	}

	return b + helpStyle.Render("\nenter to complete, esc back")
}
