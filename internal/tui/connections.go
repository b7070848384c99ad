package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/data"
)

type connectionsState struct {
	list   data.Result[[]backend.Connection]
	cursor int
}

func (a *App) updateConnections(msg tea.KeyMsg) tea.Cmd {
	c := &a.connections

	switch msg.String() {
	case "esc":
		a.goHome()
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(c.list.Data)-1 {
			c.cursor++
		}
	case "r":
		a.store.Cache().Invalidate(data.KeyAvailableConnections)
		return a.loadConnections()
	}
	return nil
}

func (a *App) viewConnections() string {
	c := &a.connections

	b := titleStyle.Render("Connections") + "\n\n"
	switch {
	case c.list.IsLoading:
		b += a.spin.View() + " loading..."
	case c.list.Err != nil:
		b += errorStyle.Render(fmt.Sprintf("could not load connections: %v", c.list.Err))
	case len(c.list.Data) == 0:
		b += dimStyle.Render("Nobody else here yet. Invite a friend.")
	default:
		for i, conn := range c.list.Data {
			line := fmt.Sprintf("%s %s  %s", conn.Avatar, conn.Name, dimStyle.Render(conn.PersonalityType))
			if len(conn.Interests) > 0 {
				line += dimStyle.Render("  " + strings.Join(conn.Interests, ", "))
			}
			if i == c.cursor {
				line = selectedStyle.Render("> ") + line
			} else {
				line = "  " + line
			}
			b += line + "\n"
		}
	}
	return b + helpStyle.Render("\nr refresh, esc back")
}
