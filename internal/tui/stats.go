package tui

import (
	"fmt"
	"strings"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/data"
)

type statsState struct {
	global data.Result[backend.GlobalStats]
	admin  adminStatsMsg
}

func newStatsState() statsState {
	return statsState{}
}

func (a *App) viewStats() string {
	s := &a.stats

	b := titleStyle.Render("Community Pulse") + "\n\n"
	switch {
	case s.global.IsLoading:
		b += a.spin.View() + " loading..."
	case s.global.Err != nil:
		b += errorStyle.Render(fmt.Sprintf("could not load stats: %v", s.global.Err))
	default:
		g := s.global.Data
		b += fmt.Sprintf("Active members: %s\n", accentStyle.Render(fmt.Sprintf("%d", g.ActiveUsers)))
		if len(g.TrendingMBTITypes) > 0 {
			b += "Trending types: " + strings.Join(g.TrendingMBTITypes, ", ") + "\n"
		}
		if len(g.EmotionalHeatmap) > 0 {
			b += "Mood: " + dimStyle.Render(strings.Join(g.EmotionalHeatmap, " · ")) + "\n"
		}
	}

	if a.role.Data == backend.RoleAdmin {
		b += "\n" + titleStyle.Render("Admin") + "\n"
		if s.admin.err != nil {
			b += errorStyle.Render(fmt.Sprintf("could not load admin stats: %v", s.admin.err))
		} else {
			b += fmt.Sprintf("Users %d, moments %d, impacts %d\n",
				s.admin.stats.TotalUsers, s.admin.stats.TotalMoments, s.admin.stats.TotalImpacts)
		}
	}

	return b + helpStyle.Render("\nrefreshes automatically, esc back")
}
