// Package teamstats aggregates users into per-team leaderboard rows.
package teamstats

import "github.com/teamsteps/teamsteps/internal/models"

// TeamStat is one leaderboard row.
type TeamStat struct {
	Name    string        `json:"name"`
	Steps   int           `json:"steps"`
	Members []models.User `json:"members"`
}

// Compute groups users by team. Teams appear in the order their first member
// appears in users; members keep their relative order.
func Compute(users []models.User) []TeamStat {
	stats := make([]TeamStat, 0)
	index := make(map[string]int)
	for _, u := range users {
		i, ok := index[u.Team]
		if !ok {
			i = len(stats)
			index[u.Team] = i
			stats = append(stats, TeamStat{Name: u.Team, Members: []models.User{}})
		}
		stats[i].Steps += u.TotalSteps
		stats[i].Members = append(stats[i].Members, u)
	}
	return stats
}
