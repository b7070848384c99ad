package onboarding

import "fmt"

// Step identifies a stage of the onboarding flow.
type Step int

const (
	StepDecision Step = iota
	StepKnownType
	StepQuiz
	StepResults
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepDecision:
		return "decision"
	case StepKnownType:
		return "known-type"
	case StepQuiz:
		return "quiz"
	case StepResults:
		return "results"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Completion messages handed to the home page when the flow finishes.
// Reaching results, by quiz or by picking a known type, completes the
// profile; skipping out early merely saves it.
const (
	CompletionDone = "Profile completed successfully! Explore Connections, Weekly Debates, and Weekly Highlights to get started."
	CompletionSkip = "Profile saved successfully! Explore Connections, Weekly Debates, and Weekly Highlights to get started."
)

// Machine drives the onboarding flow. It holds no I/O; callers persist the
// resolved type and deliver the completion message.
type Machine struct {
	step     Step
	question int
	answers  map[int]string
	result   string
	viaQuiz  bool
}

// NewMachine starts a flow at the decision step.
func NewMachine() *Machine {
	return &Machine{step: StepDecision, answers: map[int]string{}}
}

// Step returns the current stage.
func (m *Machine) Step() Step { return m.step }

// Question returns the index of the current quiz question.
func (m *Machine) Question() int { return m.question }

// Answers returns a copy of the answers given so far.
func (m *Machine) Answers() map[int]string {
	out := make(map[int]string, len(m.answers))
	for k, v := range m.answers {
		out[k] = v
	}
	return out
}

// Result returns the resolved type code, or "" before results.
func (m *Machine) Result() string { return m.result }

// ViaQuiz reports whether the result came from the quiz rather than a
// self-reported type.
func (m *Machine) ViaQuiz() bool { return m.viaQuiz }

// ChooseKnown moves decision -> known-type.
func (m *Machine) ChooseKnown() error {
	if m.step != StepDecision {
		return fmt.Errorf("cannot choose known type from %s", m.step)
	}
	m.step = StepKnownType
	return nil
}

// ChooseQuiz moves decision -> quiz at the first question.
func (m *Machine) ChooseQuiz() error {
	if m.step != StepDecision {
		return fmt.Errorf("cannot start quiz from %s", m.step)
	}
	m.step = StepQuiz
	m.question = 0
	return nil
}

// SelectKnownType resolves a self-reported code and moves to results.
func (m *Machine) SelectKnownType(code string) error {
	if m.step != StepKnownType {
		return fmt.Errorf("cannot select type from %s", m.step)
	}
	if !IsValidPersonalityType(code) {
		return fmt.Errorf("unknown personality type %q", code)
	}
	m.result = code
	m.viaQuiz = false
	m.step = StepResults
	return nil
}

// Answer records the letter for the current question and advances. Answering
// the last question scores the quiz and moves to results. Re-answering after
// going back overwrites the previous pick.
func (m *Machine) Answer(letter string) error {
	if m.step != StepQuiz {
		return fmt.Errorf("cannot answer from %s", m.step)
	}
	if err := ValidateAnswer(m.question, letter); err != nil {
		return err
	}
	m.answers[m.question] = letter
	if m.question == len(Questions)-1 {
		m.result = ScoreAnswers(m.answers)
		m.viaQuiz = true
		m.step = StepResults
		return nil
	}
	m.question++
	return nil
}

// Previous steps back one question, or from the first question back to the
// decision step with answers kept.
func (m *Machine) Previous() error {
	if m.step != StepQuiz {
		return fmt.Errorf("cannot go back from %s", m.step)
	}
	if m.question == 0 {
		m.step = StepDecision
		return nil
	}
	m.question--
	return nil
}

// Skip exits the flow without resolving a type. Allowed from any step before
// results; once a type is resolved the flow finishes normally instead.
func (m *Machine) Skip() (string, error) {
	switch m.step {
	case StepDecision, StepKnownType, StepQuiz:
		m.result = ""
		m.viaQuiz = false
		m.step = StepDone
		return CompletionSkip, nil
	default:
		return "", fmt.Errorf("cannot skip from %s", m.step)
	}
}

// Restart returns to the decision step and clears all progress.
func (m *Machine) Restart() {
	m.step = StepDecision
	m.question = 0
	m.answers = map[int]string{}
	m.result = ""
	m.viaQuiz = false
}

// Finish leaves results and returns the completion message to surface.
// Both result paths count as completing the profile.
func (m *Machine) Finish() (string, error) {
	if m.step != StepResults {
		return "", fmt.Errorf("cannot finish from %s", m.step)
	}
	m.step = StepDone
	return CompletionDone, nil
}
