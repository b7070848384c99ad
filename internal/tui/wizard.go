package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/caffeinepub/zenlink-5/internal/onboarding"
)

// resultsAutoContinue is how long the results screen stays up before the
// flow moves on by itself. Enter skips the wait.
const resultsAutoContinue = 2 * time.Second

// resultsShownMsg fires when the results screen has been up long enough.
type resultsShownMsg struct{}

func resultsDelay() tea.Cmd {
	return tea.Tick(resultsAutoContinue, func(time.Time) tea.Msg {
		return resultsShownMsg{}
	})
}

// wizardState drives the onboarding flow screens over the shared machine.
type wizardState struct {
	machine *onboarding.Machine
	cursor  int
}

func newWizardState() wizardState {
	return wizardState{machine: onboarding.NewMachine()}
}

func (a *App) updateWizard(msg tea.KeyMsg) tea.Cmd {
	w := &a.wizard
	m := w.machine

	// Skipping is allowed from every step before results.
	if msg.String() == "s" && m.Step() != onboarding.StepResults {
		return a.skipWizard()
	}

	switch m.Step() {
	case onboarding.StepDecision:
		switch msg.String() {
		case "up", "down", "k", "j", "tab":
			w.cursor = 1 - w.cursor
		case "enter":
			if w.cursor == 0 {
				_ = m.ChooseQuiz()
			} else {
				_ = m.ChooseKnown()
			}
			w.cursor = 0
		}

	case onboarding.StepKnownType:
		switch msg.String() {
		case "up", "k":
			if w.cursor > 0 {
				w.cursor--
			}
		case "down", "j":
			if w.cursor < len(onboarding.PersonalityTypes)-1 {
				w.cursor++
			}
		case "enter":
			if m.SelectKnownType(onboarding.PersonalityTypes[w.cursor]) == nil {
				return resultsDelay()
			}
		case "esc":
			m.Restart()
			w.cursor = 0
		}

	case onboarding.StepQuiz:
		switch msg.String() {
		case "up", "down", "k", "j", "tab":
			w.cursor = 1 - w.cursor
		case "enter":
			q := onboarding.Questions[m.Question()]
			if err := m.Answer(q.Options[w.cursor].Value); err == nil {
				w.cursor = 0
				if m.Step() == onboarding.StepResults {
					return resultsDelay()
				}
			}
		case "esc", "left":
			_ = m.Previous()
			w.cursor = 0
		}

	case onboarding.StepResults:
		if msg.String() == "enter" {
			a.finishWizard()
		}
	}
	return nil
}

// finishWizard leaves results for the profile form, carrying the resolved
// type and the completion message.
func (a *App) finishWizard() {
	m := a.wizard.machine
	completion, err := m.Finish()
	if err != nil {
		return
	}
	a.openSetup(completion, m.Result())
}

// skipWizard exits onboarding without a type; the profile form still runs so
// the gate's display-name and avatar requirements get met.
func (a *App) skipWizard() tea.Cmd {
	completion, err := a.wizard.machine.Skip()
	if err != nil {
		return nil
	}
	a.openSetup(completion, "")
	return nil
}

func (a *App) openSetup(completion, mbti string) {
	a.setup = newSetupState()
	a.setup.completion = completion
	a.setup.draft = onboarding.DefaultProfile(mbti)
	a.page = PageSetup
	a.setup.name.Focus()
}

func (a *App) viewWizard() string {
	w := &a.wizard
	m := w.machine

	switch m.Step() {
	case onboarding.StepDecision:
		options := []string{"Take the short quiz", "I already know my type"}
		b := titleStyle.Render("Welcome to ZenLink") + "\n\n" +
			"How would you like to find your personality type?\n\n"
		for i, o := range options {
			if i == w.cursor {
				b += selectedStyle.Render("> "+o) + "\n"
			} else {
				b += "  " + o + "\n"
			}
		}
		return b + helpStyle.Render("\nenter to choose, s to skip for now")

	case onboarding.StepKnownType:
		b := "Select your type:\n\n"
		for i, t := range onboarding.PersonalityTypes {
			p := onboarding.LookupTypeProfile(t)
			line := fmt.Sprintf("%s  %s", t, dimStyle.Render(p.Title))
			if i == w.cursor {
				line = selectedStyle.Render("> " + t + "  " + p.Title)
			} else {
				line = "  " + line
			}
			b += line + "\n"
		}
		return b + helpStyle.Render("\nenter to select, s to skip, esc to go back")

	case onboarding.StepQuiz:
		q := onboarding.Questions[m.Question()]
		b := dimStyle.Render(fmt.Sprintf("Question %d of %d", m.Question()+1, len(onboarding.Questions))) + "\n\n" +
			titleStyle.Render(q.Prompt) + "\n\n"
		for i, opt := range q.Options {
			if i == w.cursor {
				b += selectedStyle.Render("> "+opt.Label) + "\n"
			} else {
				b += "  " + opt.Label + "\n"
			}
		}
		return b + helpStyle.Render("\nenter to answer, esc for previous question, s to skip")

	case onboarding.StepResults:
		p := onboarding.LookupTypeProfile(m.Result())
		return boxStyle.Render(
			titleStyle.Render("You are "+m.Result())+"\n"+
				accentStyle.Render(p.Title)+"\n\n"+p.Description) +
			helpStyle.Render("\ncontinuing in a moment, enter to continue now")
	}
	return ""
}
