package users

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/teamsteps/teamsteps/internal/users/repository"
	"github.com/teamsteps/teamsteps/pkg/metrics"
)

func TestMutationsAreCounted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, repository.NewMemoryRepo())

	okBefore := testutil.ToFloat64(metrics.StoreMutations.WithLabelValues("add_user", "ok"))
	conflictBefore := testutil.ToFloat64(metrics.StoreMutations.WithLabelValues("add_user", "conflict"))
	notFoundBefore := testutil.ToFloat64(metrics.StoreMutations.WithLabelValues("set_admin", "not_found"))

	_, err := s.AddUser(ctx, "Al", "Red")
	require.NoError(t, err)
	_, err = s.AddUser(ctx, "Al", "Blue")
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, s.SetAdmin(ctx, "Nobody", true), ErrNotFound)

	require.Equal(t, okBefore+1, testutil.ToFloat64(metrics.StoreMutations.WithLabelValues("add_user", "ok")))
	require.Equal(t, conflictBefore+1, testutil.ToFloat64(metrics.StoreMutations.WithLabelValues("add_user", "conflict")))
	require.Equal(t, notFoundBefore+1, testutil.ToFloat64(metrics.StoreMutations.WithLabelValues("set_admin", "not_found")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.StoreUsers))
}

func TestPersistFailuresAreCounted(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{MemoryRepo: repository.NewMemoryRepo()}
	s := newTestStore(t, repo)
	before := testutil.ToFloat64(metrics.StorePersistFailures.WithLabelValues("memory"))

	repo.failSaves = true
	_, err := s.AddUser(ctx, "Al", "Red")
	require.ErrorIs(t, err, ErrPersist)

	require.Equal(t, before+1, testutil.ToFloat64(metrics.StorePersistFailures.WithLabelValues("memory")))
}
