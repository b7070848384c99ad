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

// feedState shows the fetched history plus anything that arrived live over
// the websocket since.
type feedState struct {
	history     data.Result[[]backend.ChatMessage]
	live        []backend.ChatMessage
	input       textinput.Model
	perspective int
}

func newFeedState() feedState {
	ti := textinput.New()
	ti.Placeholder = "Add to the conversation..."
	ti.CharLimit = 500
	ti.Focus()
	return feedState{input: ti}
}

func (a *App) updateFeed(msg tea.KeyMsg) tea.Cmd {
	f := &a.feed

	switch msg.String() {
	case "esc":
		a.goHome()
		return nil
	case "tab":
		f.perspective = (f.perspective + 1) % (len(backend.PredefinedPerspectives) + 1)
		return nil
	case "enter":
		content := strings.TrimSpace(f.input.Value())
		if content == "" {
			return nil
		}
		perspective := ""
		if f.perspective > 0 {
			perspective = backend.PredefinedPerspectives[f.perspective-1]
		}
		return a.do("postGlobal", func(ctx context.Context) error {
			return a.store.PostGlobalMessage(ctx, content, perspective)
		})
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (a *App) viewFeed() string {
	f := &a.feed

	b := titleStyle.Render("Global Feed") + "\n\n"
	switch {
	case f.history.IsLoading:
		b += a.spin.View() + " loading...\n"
	case f.history.Err != nil:
		b += errorStyle.Render(fmt.Sprintf("could not load feed: %v", f.history.Err)) + "\n"
	default:
		msgs := append(append([]backend.ChatMessage{}, f.history.Data...), f.live...)
		if len(msgs) == 0 {
			b += dimStyle.Render("Nothing here yet.") + "\n"
		}
		for _, msg := range msgs {
			tag := ""
			if msg.Perspective != "" {
				tag = dimStyle.Render(" [" + msg.Perspective + "]")
			}
			b += fmt.Sprintf("%s%s: %s\n", accentStyle.Render(msg.Sender.Short()), tag, msg.Content)
		}
	}

	perspective := "(no perspective)"
	if f.perspective > 0 {
		perspective = backend.PredefinedPerspectives[f.perspective-1]
	}
	b += "\n" + f.input.View() + "\n" + dimStyle.Render("as: "+perspective)
	return b + helpStyle.Render("\nenter to post, tab to cycle perspective, esc back")
}
