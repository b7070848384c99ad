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

// chatState covers both the partner picker and the open conversation.
type chatState struct {
	partners data.Result[[]backend.Connection]
	cursor   int

	partner backend.Principal
	history data.Result[[]backend.ChatMessage]
	input   textinput.Model
}

func newChatState() chatState {
	ti := textinput.New()
	ti.Placeholder = "Write a message..."
	ti.CharLimit = 500
	return chatState{input: ti}
}

func (c *chatState) reset() {
	c.partner = ""
	c.cursor = 0
	c.history = data.Result[[]backend.ChatMessage]{}
	ti := textinput.New()
	ti.Placeholder = "Write a message..."
	ti.CharLimit = 500
	c.input = ti
}

func (a *App) updateChat(msg tea.KeyMsg) tea.Cmd {
	c := &a.chat

	// Partner picker first.
	if c.partner == "" {
		switch msg.String() {
		case "esc":
			a.goHome()
		case "up", "k":
			if c.cursor > 0 {
				c.cursor--
			}
		case "down", "j":
			if c.cursor < len(c.partners.Data)-1 {
				c.cursor++
			}
		case "enter":
			if c.cursor < len(c.partners.Data) {
				p, err := backend.ParsePrincipal(c.partners.Data[c.cursor].ID)
				if err != nil {
					a.lastErr = err
					return nil
				}
				c.partner = p
				c.input.Focus()
				return tea.Batch(a.loadConversation(p), textinput.Blink)
			}
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		c.reset()
		return nil
	case "enter":
		content := strings.TrimSpace(c.input.Value())
		if content == "" {
			return nil
		}
		partner := c.partner
		return a.do("sendMessage", func(ctx context.Context) error {
			return a.store.SendMessage(ctx, partner, content)
		})
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (a *App) viewChat() string {
	c := &a.chat

	if c.partner == "" {
		b := titleStyle.Render("Conversations") + "\n\n"
		switch {
		case c.partners.IsLoading:
			b += a.spin.View() + " loading..."
		case len(c.partners.Data) == 0:
			b += dimStyle.Render("No connections yet.")
		default:
			for i, conn := range c.partners.Data {
				line := fmt.Sprintf("%s %s %s", conn.Avatar, conn.Name, dimStyle.Render(conn.PersonalityType))
				if i == c.cursor {
					line = selectedStyle.Render("> ") + line
				} else {
					line = "  " + line
				}
				b += line + "\n"
			}
		}
		return b + helpStyle.Render("\nenter to open, esc back")
	}

	b := titleStyle.Render("Chat with "+c.partner.String()) + "\n\n"
	switch {
	case c.history.IsLoading:
		b += a.spin.View() + " loading...\n"
	case c.history.Err != nil:
		b += errorStyle.Render(fmt.Sprintf("could not load conversation: %v", c.history.Err)) + "\n"
	case len(c.history.Data) == 0:
		b += dimStyle.Render("No messages yet. Say hello.") + "\n"
	default:
		for _, msg := range c.history.Data {
			when := msg.Timestamp.Time().Format("15:04")
			b += fmt.Sprintf("%s %s: %s\n",
				dimStyle.Render(when), accentStyle.Render(msg.Sender.Short()), msg.Content)
		}
	}
	b += "\n" + c.input.View()
	return b + helpStyle.Render("\nenter to send, esc to pick another partner")
}
