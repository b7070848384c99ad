package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var asAdmin bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print community stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			res := s.store.GlobalStats(ctx)
			if res.Err != nil {
				return res.Err
			}
			g := res.Data
			fmt.Printf("Active members: %s\n", bold(fmt.Sprintf("%d", g.ActiveUsers)))
			if len(g.TrendingMBTITypes) > 0 {
				fmt.Printf("Trending types: %s\n", cyan(strings.Join(g.TrendingMBTITypes, ", ")))
			}
			if len(g.EmotionalHeatmap) > 0 {
				fmt.Printf("Mood: %s\n", gray(strings.Join(g.EmotionalHeatmap, ", ")))
			}

			if asAdmin {
				stats, err := s.store.AdminStats(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("\n%s users=%d moments=%d impacts=%d\n",
					bold("admin:"), stats.TotalUsers, stats.TotalMoments, stats.TotalImpacts)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asAdmin, "admin", false, "also print the admin aggregate")
	return cmd
}
