package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/portal-service/internal/session"
)

func TestInstrumentedSourceRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	inner := &fakeSource{
		fetchLeaderboardFn: func(context.Context) ([]LeaderboardEntry, error) {
			return nil, errors.New("down")
		},
	}
	src, err := NewInstrumentedSource(inner, reg)
	require.NoError(t, err)

	ctx := context.Background()
	_, _ = src.FetchProfile(ctx, session.Session{Name: "X"})
	_, _ = src.FetchLeaderboard(ctx)
	_, _ = src.FetchAchievementCatalog(ctx)
	_, _ = src.FetchDonationStats(ctx, session.Session{})

	got, err := testutil.GatherAndCount(reg, "portal_fetch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 4, got, "one series per op/outcome pair")
	assert.EqualValues(t, 4, inner.calls.Load(), "calls reach the wrapped source")
}

func TestInstrumentedSourceDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewInstrumentedSource(&fakeSource{}, reg)
	require.NoError(t, err)

	_, err = NewInstrumentedSource(&fakeSource{}, reg)
	assert.Error(t, err)
}
