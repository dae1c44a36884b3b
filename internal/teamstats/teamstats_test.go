package teamstats

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teamsteps/teamsteps/internal/models"
)

func TestCompute(t *testing.T) {
	users := []models.User{
		{Name: "Al", Team: "Red", TotalSteps: 800},
		{Name: "Bo", Team: "Blue", TotalSteps: 100},
		{Name: "Cy", Team: "Red", TotalSteps: 200},
		{Name: "Di", Team: "Green"},
	}

	stats := Compute(users)
	require.Len(t, stats, 3)

	require.Equal(t, "Red", stats[0].Name)
	require.Equal(t, 1000, stats[0].Steps)
	require.Equal(t, []string{"Al", "Cy"}, names(stats[0].Members))

	require.Equal(t, "Blue", stats[1].Name)
	require.Equal(t, 100, stats[1].Steps)

	require.Equal(t, "Green", stats[2].Name)
	require.Equal(t, 0, stats[2].Steps)
	require.Len(t, stats[2].Members, 1)
}

func TestCompute_SumsAndMembership(t *testing.T) {
	users := []models.User{
		{Name: "a", Team: "x", TotalSteps: 3},
		{Name: "b", Team: "y", TotalSteps: 5},
		{Name: "c", Team: "x", TotalSteps: 7},
		{Name: "d", Team: "", TotalSteps: 11},
		{Name: "e", Team: "y", TotalSteps: -2},
	}
	stats := Compute(users)

	userTotal, teamTotal := 0, 0
	for _, u := range users {
		userTotal += u.TotalSteps
	}
	seen := map[string]int{}
	for _, s := range stats {
		teamTotal += s.Steps
		for _, m := range s.Members {
			require.Equal(t, s.Name, m.Team)
			seen[m.Name]++
		}
	}
	require.Equal(t, userTotal, teamTotal)
	require.Len(t, seen, len(users))
	for name, n := range seen {
		require.Equal(t, 1, n, "user %s appears in more than one team", name)
	}
}

func TestCompute_Empty(t *testing.T) {
	stats := Compute(nil)
	require.NotNil(t, stats)
	require.Empty(t, stats)
}

func names(us []models.User) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.Name
	}
	return out
}
