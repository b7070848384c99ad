package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/caffeinepub/zenlink-5/internal/backend"
)

// setupFields in tab order.
const (
	fieldName = iota
	fieldAvatar
	fieldStyle
	fieldInterests
	fieldPerspectives
	fieldComfort
	fieldSave
	fieldCount
)

// setupState is the profile form filled in after onboarding (or when editing
// later). draft accumulates choices until save.
type setupState struct {
	draft      backend.UserProfile
	completion string

	field    int
	name     textinput.Model
	avatar   int
	style    int
	listIdx  int
	selected map[string]bool
}

func newSetupState() setupState {
	ti := textinput.New()
	ti.Placeholder = "Display name"
	ti.CharLimit = 40
	return setupState{
		name:     ti,
		selected: map[string]bool{},
	}
}

func (a *App) updateSetup(msg tea.KeyMsg) tea.Cmd {
	s := &a.setup

	switch msg.String() {
	case "tab":
		s.field = (s.field + 1) % fieldCount
		s.listIdx = 0
		if s.field == fieldName {
			s.name.Focus()
		} else {
			s.name.Blur()
		}
		return nil
	case "shift+tab":
		s.field = (s.field + fieldCount - 1) % fieldCount
		s.listIdx = 0
		if s.field == fieldName {
			s.name.Focus()
		} else {
			s.name.Blur()
		}
		return nil
	}

	switch s.field {
	case fieldName:
		var cmd tea.Cmd
		s.name, cmd = s.name.Update(msg)
		return cmd

	case fieldAvatar:
		switch msg.String() {
		case "left", "h":
			if s.avatar > 0 {
				s.avatar--
			}
		case "right", "l":
			if s.avatar < len(backend.AllowedAvatars)-1 {
				s.avatar++
			}
		}

	case fieldStyle:
		switch msg.String() {
		case "left", "h":
			if s.style > 0 {
				s.style--
			}
		case "right", "l":
			if s.style < len(backend.CommunicationStyles)-1 {
				s.style++
			}
		}

	case fieldInterests:
		return s.updatePicker(msg, backend.PredefinedInterests, "i:")

	case fieldPerspectives:
		return s.updatePicker(msg, backend.PredefinedPerspectives, "p:")

	case fieldComfort:
		if msg.String() == "enter" || msg.String() == " " {
			s.draft.ComfortMode = !s.draft.ComfortMode
		}

	case fieldSave:
		if msg.String() == "enter" {
			return a.saveSetup()
		}
	}
	return nil
}

// updatePicker handles the shared multi-select behavior for tag lists.
// Selections from both lists live in one set, disambiguated by prefix.
func (s *setupState) updatePicker(msg tea.KeyMsg, options []string, prefix string) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if s.listIdx > 0 {
			s.listIdx--
		}
	case "down", "j":
		if s.listIdx < len(options)-1 {
			s.listIdx++
		}
	case "enter", " ":
		key := prefix + options[s.listIdx]
		s.selected[key] = !s.selected[key]
	}
	return nil
}

func (s *setupState) picked(options []string, prefix string) []string {
	out := []string{}
	for _, o := range options {
		if s.selected[prefix+o] {
			out = append(out, o)
		}
	}
	return out
}

func (a *App) saveSetup() tea.Cmd {
	s := &a.setup
	name := strings.TrimSpace(s.name.Value())
	if name == "" {
		a.lastErr = errEmptyName
		return nil
	}
	s.draft.DisplayName = name
	s.draft.Avatar = backend.AllowedAvatars[s.avatar]
	s.draft.CommunicationStyle = backend.CommunicationStyles[s.style]
	s.draft.Interests = s.picked(backend.PredefinedInterests, "i:")
	s.draft.Perspectives = s.picked(backend.PredefinedPerspectives, "p:")

	profile := s.draft
	return a.do("saveProfile", func(ctx context.Context) error {
		return a.store.SaveCallerProfile(ctx, profile)
	})
}

var errEmptyName = errValidation("display name must not be empty")

type errValidation string

func (e errValidation) Error() string { return string(e) }

func (a *App) viewSetup() string {
	s := &a.setup

	label := func(field int, text string) string {
		if s.field == field {
			return selectedStyle.Render("> " + text)
		}
		return "  " + text
	}

	b := titleStyle.Render("Set up your profile") + "\n\n"
	b += label(fieldName, "Name: ") + s.name.View() + "\n"

	avatars := ""
	for i, av := range backend.AllowedAvatars {
		if i == s.avatar {
			avatars += "[" + av + "]"
		} else {
			avatars += " " + av + " "
		}
	}
	b += label(fieldAvatar, "Avatar: ") + avatars + "\n"

	styles := ""
	for i, st := range backend.CommunicationStyles {
		if i == s.style {
			styles += selectedStyle.Render("["+st+"] ")
		} else {
			styles += dimStyle.Render(st + "  ")
		}
	}
	b += label(fieldStyle, "Style:  ") + styles + "\n"

	b += label(fieldInterests, "Interests: ") + s.viewPicker(fieldInterests, backend.PredefinedInterests, "i:") + "\n"
	b += label(fieldPerspectives, "Perspectives: ") + s.viewPicker(fieldPerspectives, backend.PredefinedPerspectives, "p:") + "\n"

	comfort := "off"
	if s.draft.ComfortMode {
		comfort = "on"
	}
	b += label(fieldComfort, "Comfort mode: "+comfort) + "\n\n"
	b += label(fieldSave, "[ Save profile ]") + "\n"

	return b + helpStyle.Render("\ntab to move between fields, enter/space to toggle")
}

// viewPicker shows the active list expanded and collapsed summaries otherwise.
func (s *setupState) viewPicker(field int, options []string, prefix string) string {
	picked := s.picked(options, prefix)
	if s.field != field {
		if len(picked) == 0 {
			return dimStyle.Render("(none)")
		}
		return strings.Join(picked, ", ")
	}
	b := "\n"
	for i, o := range options {
		mark := "[ ]"
		if s.selected[prefix+o] {
			mark = "[x]"
		}
		line := "      " + mark + " " + o
		if i == s.listIdx {
			line = selectedStyle.Render("    > " + mark + " " + o)
		}
		b += line + "\n"
	}
	return b
}
