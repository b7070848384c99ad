package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caffeinepub/zenlink-5/internal/backend"
)

func newMomentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moments",
		Short: "Browse and post weekly highlights",
	}
	cmd.AddCommand(newMomentsListCmd())
	cmd.AddCommand(newMomentsPostCmd())
	cmd.AddCommand(newMomentsImpactCmd())
	return cmd
}

func newMomentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List top highlights",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			res := s.store.TopMoments(ctx)
			if res.Err != nil {
				return res.Err
			}
			if len(res.Data) == 0 {
				fmt.Println(gray("No highlights yet."))
				return nil
			}
			for _, m := range res.Data {
				fmt.Printf("%4d  %s %s %s\n",
					m.ID,
					green(fmt.Sprintf("♥ %-3d", m.ImpactCount)),
					m.Content,
					gray(fmt.Sprintf("(%s, %s, %s)", m.Category, m.User.Short(), m.Timestamp.Time().Format("Jan 2"))))
			}
			return nil
		},
	}
}

func newMomentsPostCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Post a highlight",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			content := strings.Join(args, " ")
			if err := s.store.SubmitWeeklyMoment(ctx, content, category); err != nil {
				return err
			}
			fmt.Println(green("Highlight posted."))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", backend.MomentCategories[0],
		"one of "+strings.Join(backend.MomentCategories, ", "))
	return cmd
}

func newMomentsImpactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact <id>",
		Short: "Add impact to a highlight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id uint64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid moment id %q", args[0])
			}

			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			if err := s.store.IncrementImpact(ctx, id); err != nil {
				return err
			}
			fmt.Println(green("Impact added."))
			return nil
		},
	}
}
