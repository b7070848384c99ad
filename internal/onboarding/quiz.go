package onboarding

import "fmt"

// QuizOption is one side of a forced-choice question.
type QuizOption struct {
	Value string // single trait letter, e.g. "E"
	Label string
}

// QuizQuestion is a forced choice between two trait letters.
type QuizQuestion struct {
	Prompt  string
	Options [2]QuizOption
}

// Questions is the fixed ordered quiz. Two passes over the four trait pairs.
var Questions = []QuizQuestion{
	{
		Prompt: "At a party, you tend to:",
		Options: [2]QuizOption{
			{Value: "E", Label: "Interact with many people"},
			{Value: "I", Label: "Interact with a few close friends"},
		},
	},
	{
		Prompt: "You prefer to focus on:",
		Options: [2]QuizOption{
			{Value: "S", Label: "Facts and details"},
			{Value: "N", Label: "Ideas and possibilities"},
		},
	},
	{
		Prompt: "When making decisions, you rely more on:",
		Options: [2]QuizOption{
			{Value: "T", Label: "Logic and analysis"},
			{Value: "F", Label: "Personal values and feelings"},
		},
	},
	{
		Prompt: "You prefer to:",
		Options: [2]QuizOption{
			{Value: "J", Label: "Have things decided and organized"},
			{Value: "P", Label: "Stay open to new options"},
		},
	},
	{
		Prompt: "You get energy from:",
		Options: [2]QuizOption{
			{Value: "E", Label: "Being around others"},
			{Value: "I", Label: "Spending time alone"},
		},
	},
	{
		Prompt: "You are more interested in:",
		Options: [2]QuizOption{
			{Value: "S", Label: "What is actual and real"},
			{Value: "N", Label: "What is possible and imaginative"},
		},
	},
	{
		Prompt: "You tend to be:",
		Options: [2]QuizOption{
			{Value: "T", Label: "Objective and fair"},
			{Value: "F", Label: "Empathetic and compassionate"},
		},
	},
	{
		Prompt: "You prefer:",
		Options: [2]QuizOption{
			{Value: "J", Label: "Structure and planning"},
			{Value: "P", Label: "Flexibility and spontaneity"},
		},
	},
}

// traitPairs lists the four pairs in result order. The first letter of each
// pair is the tie-break default: E before I, S before N, T before F, J
// before P.
var traitPairs = [4][2]string{
	{"E", "I"},
	{"S", "N"},
	{"T", "F"},
	{"J", "P"},
}

// PersonalityTypes enumerates the 16 valid four-letter codes.
var PersonalityTypes = []string{
	"ENFP", "INFJ", "ENTJ", "INTJ",
	"ENFJ", "INFP", "ENTP", "INTP",
	"ESFP", "ISFP", "ESTP", "ISTP",
	"ESFJ", "ISFJ", "ESTJ", "ISTJ",
}

// IsValidPersonalityType reports whether code is one of the 16 types.
func IsValidPersonalityType(code string) bool {
	for _, t := range PersonalityTypes {
		if t == code {
			return true
		}
	}
	return false
}

// TypeProfile is the display blurb for a resolved type.
type TypeProfile struct {
	Title       string
	Description string
}

// TypeProfiles maps each code to its display blurb.
var TypeProfiles = map[string]TypeProfile{
	"ENFP": {"The Inspirer", "Enthusiastic, creative, and sociable free spirits who can always find a reason to smile."},
	"INFJ": {"The Advocate", "Quiet and mystical, yet very inspiring and tireless idealists."},
	"ENTJ": {"The Commander", "Bold, imaginative, and strong-willed leaders who always find a way."},
	"INTJ": {"The Architect", "Imaginative and strategic thinkers with a plan for everything."},
	"ENFJ": {"The Protagonist", "Charismatic and inspiring leaders who are able to mesmerize their listeners."},
	"INFP": {"The Mediator", "Poetic, kind, and altruistic people, always eager to help a good cause."},
	"ENTP": {"The Debater", "Smart and curious thinkers who cannot resist an intellectual challenge."},
	"INTP": {"The Logician", "Innovative inventors with an unquenchable thirst for knowledge."},
	"ESFP": {"The Entertainer", "Spontaneous, energetic, and enthusiastic people who love life and people."},
	"ISFP": {"The Adventurer", "Flexible and charming artists, always ready to explore and experience something new."},
	"ESTP": {"The Entrepreneur", "Smart, energetic, and very perceptive people who truly enjoy living on the edge."},
	"ISTP": {"The Virtuoso", "Bold and practical experimenters, masters of all kinds of tools."},
	"ESFJ": {"The Consul", "Extraordinarily caring, social, and popular people, always eager to help."},
	"ISFJ": {"The Defender", "Very dedicated and warm protectors, always ready to defend their loved ones."},
	"ESTJ": {"The Executive", "Excellent administrators, unsurpassed at managing things or people."},
	"ISTJ": {"The Logistician", "Practical and fact-minded individuals whose reliability cannot be doubted."},
}

// LookupTypeProfile returns the blurb for code, falling back to a generic one.
func LookupTypeProfile(code string) TypeProfile {
	if p, ok := TypeProfiles[code]; ok {
		return p
	}
	return TypeProfile{Title: "Unique", Description: "A wonderful individual with a unique personality."}
}

// ScoreAnswers resolves a four-letter code from per-question answers keyed by
// question index. For each trait pair the letter with the higher count wins;
// ties resolve to the pair's first-listed letter.
func ScoreAnswers(answers map[int]string) string {
	counts := map[string]int{}
	for _, letter := range answers {
		counts[letter]++
	}

	code := ""
	for _, pair := range traitPairs {
		if counts[pair[0]] >= counts[pair[1]] {
			code += pair[0]
		} else {
			code += pair[1]
		}
	}
	return code
}

// ValidateAnswer checks that letter is a legal option for the question at
// index.
func ValidateAnswer(index int, letter string) error {
	if index < 0 || index >= len(Questions) {
		return fmt.Errorf("question index %d out of range", index)
	}
	q := Questions[index]
	if letter != q.Options[0].Value && letter != q.Options[1].Value {
		return fmt.Errorf("answer %q is not an option for question %d", letter, index+1)
	}
	return nil
}
