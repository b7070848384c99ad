package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/data"
)

type momentsState struct {
	list      data.Result[[]backend.WeeklyMoment]
	cursor    int
	composing bool
	input     textinput.Model
	category  int
}

func newMomentsState() momentsState {
	ti := textinput.New()
	ti.Placeholder = "Share a highlight from your week..."
	ti.CharLimit = 280
	return momentsState{input: ti}
}

func (a *App) updateMoments(msg tea.KeyMsg) tea.Cmd {
	m := &a.moments

	if m.composing {
		switch msg.String() {
		case "esc":
			m.composing = false
			m.input.Blur()
			return nil
		case "tab":
			m.category = (m.category + 1) % len(backend.MomentCategories)
			return nil
		case "enter":
			content := strings.TrimSpace(m.input.Value())
			if content == "" {
				return nil
			}
			category := backend.MomentCategories[m.category]
			return a.do("submitMoment", func(ctx context.Context) error {
				return a.store.SubmitWeeklyMoment(ctx, content, category)
			})
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "esc":
		a.goHome()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.list.Data)-1 {
			m.cursor++
		}
	case "n":
		m.composing = true
		m.input.Focus()
		return textinput.Blink
	case "enter", "+":
		if m.cursor < len(m.list.Data) {
			id := m.list.Data[m.cursor].ID
			return a.do("impact", func(ctx context.Context) error {
				return a.store.IncrementImpact(ctx, id)
			})
		}
	case "x":
		// Admin moderation; the backend rejects it for everyone else.
		if a.role.Data == backend.RoleAdmin && m.cursor < len(m.list.Data) {
			id := m.list.Data[m.cursor].ID
			return a.do("removeMoment", func(ctx context.Context) error {
				return a.store.RemoveMoment(ctx, id)
			})
		}
	case "r":
		a.store.Cache().Invalidate(data.KeyTopMoments)
		return a.loadMoments()
	}
	return nil
}

func (a *App) viewMoments() string {
	m := &a.moments

	b := titleStyle.Render("Weekly Highlights") + "\n\n"

	if m.composing {
		cats := ""
		for i, c := range backend.MomentCategories {
			if i == m.category {
				cats += selectedStyle.Render("["+c+"] ")
			} else {
				cats += dimStyle.Render(c + "  ")
			}
		}
		b += m.input.View() + "\n" + cats + "\n"
		return b + helpStyle.Render("\ntab to switch category, enter to post, esc to cancel")
	}

	switch {
	case m.list.IsLoading:
		b += a.spin.View() + " loading..."
	case m.list.Err != nil:
		b += errorStyle.Render(fmt.Sprintf("could not load highlights: %v", m.list.Err))
	case len(m.list.Data) == 0:
		b += dimStyle.Render("No highlights yet. Press n to share one.")
	default:
		for i, moment := range m.list.Data {
			line := fmt.Sprintf("%s  %s %s",
				accentStyle.Render(fmt.Sprintf("♥ %d", moment.ImpactCount)),
				moment.Content,
				dimStyle.Render(fmt.Sprintf("(%s, %s)", moment.Category, moment.User.Short())))
			if i == m.cursor {
				line = selectedStyle.Render("> ") + line
			} else {
				line = "  " + line
			}
			b += line + "\n"
		}
	}

	help := "\nn new, enter adds impact, r refresh, esc back"
	if a.role.Data == backend.RoleAdmin {
		help += ", x remove"
	}
	return b + helpStyle.Render(help)
}
