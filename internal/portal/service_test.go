package portal

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internhub/portal-service/internal/session"
)

type fakeSource struct {
	calls atomic.Int32

	fetchProfileFn      func(context.Context, session.Session) (Profile, error)
	fetchLeaderboardFn  func(context.Context) ([]LeaderboardEntry, error)
	fetchAchievementsFn func(context.Context) ([]Achievement, error)
	fetchStatsFn        func(context.Context, session.Session) (DonationStats, error)
}

func (f *fakeSource) FetchProfile(ctx context.Context, sess session.Session) (Profile, error) {
	f.calls.Add(1)
	if f.fetchProfileFn != nil {
		return f.fetchProfileFn(ctx, sess)
	}
	return Profile{Name: sess.Name, ReferralCode: ReferralCode(sess.Name), Rank: 1, TotalInterns: 1}, nil
}

func (f *fakeSource) FetchLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	f.calls.Add(1)
	if f.fetchLeaderboardFn != nil {
		return f.fetchLeaderboardFn(ctx)
	}
	return nil, nil
}

func (f *fakeSource) FetchAchievementCatalog(ctx context.Context) ([]Achievement, error) {
	f.calls.Add(1)
	if f.fetchAchievementsFn != nil {
		return f.fetchAchievementsFn(ctx)
	}
	return nil, nil
}

func (f *fakeSource) FetchDonationStats(ctx context.Context, sess session.Session) (DonationStats, error) {
	f.calls.Add(1)
	if f.fetchStatsFn != nil {
		return f.fetchStatsFn(ctx, sess)
	}
	return DonationStats{}, nil
}

func newTestService(t *testing.T, src DataSource) *Service {
	t.Helper()
	svc, err := NewService(src, nil)
	require.NoError(t, err)
	return svc
}

func TestDashboardFailsFastWhenProfileFails(t *testing.T) {
	wantErr := errors.New("profile down")
	src := &fakeSource{
		fetchProfileFn: func(context.Context, session.Session) (Profile, error) {
			return Profile{}, wantErr
		},
		fetchAchievementsFn: func(context.Context) ([]Achievement, error) {
			return []Achievement{{ID: "1", IsUnlocked: true}}, nil
		},
	}

	view, err := newTestService(t, src).LoadDashboard(context.Background(), session.Session{LoggedIn: true, Name: "X"})

	assert.Nil(t, view, "no partial view")
	assert.ErrorIs(t, err, ErrFetchFailure)
	assert.ErrorIs(t, err, wantErr)
	assert.EqualValues(t, 3, src.calls.Load(), "every fetch is awaited")
}

func TestDashboardDerivesView(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	svc := newTestService(t, NewFixtureSource(c, Latency{}))

	view, err := svc.LoadDashboard(context.Background(), session.Session{LoggedIn: true, Name: "Jane Doe"})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", view.Profile.Name)
	assert.Equal(t, "janedoe2025", view.Profile.ReferralCode)
	assert.Equal(t, "JD", view.Initials)
	assert.Equal(t, "₹4,500", view.DonationsDisplay)
	require.NotNil(t, view.NextAchievement)
	assert.Equal(t, "Champion", view.NextAchievement.Title)
	assert.Equal(t, UnlockProgress{Unlocked: 2, Total: 4}, view.Progress)
	assert.Len(t, view.Unlocked, 2)
	assert.Equal(t, 4500, view.Stats.TotalDonations)
}

func TestDashboardResolvesUnknownIcons(t *testing.T) {
	src := &fakeSource{
		fetchAchievementsFn: func(context.Context) ([]Achievement, error) {
			return []Achievement{{ID: "1", Icon: "rocket"}}, nil
		},
	}

	view, err := newTestService(t, src).LoadDashboard(context.Background(), session.Session{LoggedIn: true, Name: "X"})
	require.NoError(t, err)

	assert.Equal(t, DefaultIcon, view.Achievements[0].Icon)
	require.NotNil(t, view.NextAchievement)
	assert.Equal(t, DefaultIcon, view.NextAchievement.Icon)
}

func TestLeaderboardView(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	svc := newTestService(t, NewFixtureSource(c, Latency{}))

	view, err := svc.LoadLeaderboard(context.Background(), session.Session{LoggedIn: true, Name: "Rajpunith"})
	require.NoError(t, err)

	require.Len(t, view.Podium, 3)
	require.Len(t, view.Others, 2)
	assert.True(t, view.Podium[2].IsCurrentUser)
	require.NotNil(t, view.CurrentUser)
	assert.Equal(t, 3, view.CurrentUser.Rank)
	assert.Equal(t, "SR", view.Others[0].Initials)
}

func TestLeaderboardFailure(t *testing.T) {
	src := &fakeSource{
		fetchLeaderboardFn: func(context.Context) ([]LeaderboardEntry, error) {
			return nil, errors.New("timeout")
		},
	}

	_, err := newTestService(t, src).LoadLeaderboard(context.Background(), session.Session{LoggedIn: true, Name: "X"})
	assert.ErrorIs(t, err, ErrFetchFailure)
}

func TestGatedLoadsRedirectWithoutFetching(t *testing.T) {
	src := &fakeSource{}
	svc := newTestService(t, src)
	var navigated []session.View
	gate := session.NewGate(session.NewMemoryBackend().Scope("sid"), func(v session.View) {
		navigated = append(navigated, v)
	})
	ctx := context.Background()

	_, err := svc.Dashboard(ctx, gate)
	assert.ErrorIs(t, err, session.ErrNoSession)
	_, err = svc.Leaderboard(ctx, gate)
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Zero(t, src.calls.Load(), "no fetch without a session")
	assert.Equal(t, []session.View{session.ViewLogin, session.ViewLogin}, navigated)

	_, err = gate.EstablishSession(ctx, "X")
	require.NoError(t, err)
	view, err := svc.Dashboard(ctx, gate)
	require.NoError(t, err)
	assert.Equal(t, "X", view.Profile.Name)

	sess, err := gate.RequireSession(ctx)
	require.NoError(t, err)
	profile, err := src.FetchProfile(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "X", profile.Name)
}

func TestNewServiceRequiresSource(t *testing.T) {
	_, err := NewService(nil, nil)
	assert.Error(t, err)
}
