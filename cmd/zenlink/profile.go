package main

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/onboarding"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect or set up your profile",
	}
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileInitCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print your current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			res := s.store.CallerProfile(ctx)
			if res.Err != nil {
				return res.Err
			}
			if res.IsLoading {
				return fmt.Errorf("no identity configured; set identity_token first")
			}
			p := res.Data
			if p == nil {
				fmt.Println(yellow("No profile yet.") + " Run " + bold("zenlink profile init") + " to create one.")
				return nil
			}

			fmt.Printf("%s %s\n", p.Avatar, bold(p.DisplayName))
			if p.MBTIType != "" {
				t := onboarding.LookupTypeProfile(p.MBTIType)
				fmt.Printf("%s %s\n", cyan(p.MBTIType), gray(t.Title))
			}
			fmt.Printf("Style: %s\n", p.CommunicationStyle)
			if len(p.Interests) > 0 {
				fmt.Printf("Interests: %s\n", strings.Join(p.Interests, ", "))
			}
			if len(p.Perspectives) > 0 {
				fmt.Printf("Perspectives: %s\n", strings.Join(p.Perspectives, ", "))
			}
			if p.ComfortMode {
				fmt.Println(gray("comfort mode on"))
			}
			return nil
		},
	}
}

// newProfileInitCmd walks through onboarding at the prompt, for people who
// prefer it over the full-screen interface.
func newProfileInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or replace your profile interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTTY() {
				return fmt.Errorf("profile init is interactive and needs a terminal")
			}
			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()
			if s.cfg.IdentityToken == "" {
				return fmt.Errorf("no identity configured; set identity_token first")
			}

			mbti, completion, err := resolveType()
			if err != nil {
				return err
			}
			if mbti != "" {
				t := onboarding.LookupTypeProfile(mbti)
				fmt.Printf("\n%s %s %s\n%s\n\n", green("You are"), bold(mbti), cyan(t.Title), gray(t.Description))
			}

			profile := onboarding.DefaultProfile(mbti)

			namePrompt := promptui.Prompt{
				Label: "Display name",
				Validate: func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("display name must not be empty")
					}
					return nil
				},
			}
			name, err := namePrompt.Run()
			if err != nil {
				return err
			}
			profile.DisplayName = strings.TrimSpace(name)

			avatarSelect := promptui.Select{Label: "Avatar", Items: backend.AllowedAvatars, Size: len(backend.AllowedAvatars)}
			i, _, err := avatarSelect.Run()
			if err != nil {
				return err
			}
			profile.Avatar = backend.AllowedAvatars[i]

			styleSelect := promptui.Select{Label: "Communication style", Items: backend.CommunicationStyles}
			i, _, err = styleSelect.Run()
			if err != nil {
				return err
			}
			profile.CommunicationStyle = backend.CommunicationStyles[i]

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()
			if err := s.store.SaveCallerProfile(ctx, profile); err != nil {
				return err
			}

			fmt.Println(green(completion))
			return nil
		},
	}
}

// resolveType asks whether to take the quiz, pick a known type, or skip, and
// returns the resolved code (empty on skip) with the completion message.
func resolveType() (string, string, error) {
	choice := promptui.Select{
		Label: "How would you like to find your personality type",
		Items: []string{"Take the short quiz", "I already know my type", "Skip for now"},
	}
	i, _, err := choice.Run()
	if err != nil {
		return "", "", err
	}

	m := onboarding.NewMachine()

	switch i {
	case 1:
		items := make([]string, len(onboarding.PersonalityTypes))
		for j, code := range onboarding.PersonalityTypes {
			items[j] = fmt.Sprintf("%s  %s", code, onboarding.LookupTypeProfile(code).Title)
		}
		pick := promptui.Select{Label: "Your type", Items: items, Size: 16}
		j, _, err := pick.Run()
		if err != nil {
			return "", "", err
		}
		if err := m.ChooseKnown(); err != nil {
			return "", "", err
		}
		if err := m.SelectKnownType(onboarding.PersonalityTypes[j]); err != nil {
			return "", "", err
		}

	case 2:
		completion, err := m.Skip()
		if err != nil {
			return "", "", err
		}
		return "", completion, nil

	default:
		if err := m.ChooseQuiz(); err != nil {
			return "", "", err
		}
		for m.Step() == onboarding.StepQuiz {
			q := onboarding.Questions[m.Question()]
			sel := promptui.Select{
				Label: fmt.Sprintf("%d/%d %s", m.Question()+1, len(onboarding.Questions), q.Prompt),
				Items: []string{q.Options[0].Label, q.Options[1].Label},
			}
			j, _, err := sel.Run()
			if err != nil {
				return "", "", err
			}
			if err := m.Answer(q.Options[j].Value); err != nil {
				return "", "", err
			}
		}
	}

	completion, err := m.Finish()
	if err != nil {
		return "", "", err
	}
	return m.Result(), completion, nil
}
