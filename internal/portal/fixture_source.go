package portal

import (
	"context"
	"time"

	"github.com/internhub/portal-service/internal/session"
)

// Latency is the simulated round trip of each fixture fetch.
type Latency struct {
	Profile      time.Duration
	Leaderboard  time.Duration
	Achievements time.Duration
	Stats        time.Duration
}

// DefaultLatency mirrors the delays of the mock API the front end was built against.
var DefaultLatency = Latency{
	Profile:      500 * time.Millisecond,
	Leaderboard:  300 * time.Millisecond,
	Achievements: 400 * time.Millisecond,
	Stats:        200 * time.Millisecond,
}

type fixtureSource struct {
	catalog Catalog
	latency Latency
}

// NewFixtureSource serves a frozen catalog from memory. Pass a zero Latency in tests.
func NewFixtureSource(catalog Catalog, latency Latency) DataSource {
	return &fixtureSource{catalog: catalog, latency: latency}
}

func (s *fixtureSource) FetchProfile(ctx context.Context, sess session.Session) (Profile, error) {
	if err := wait(ctx, s.latency.Profile); err != nil {
		return Profile{}, err
	}
	profile := s.catalog.DefaultProfile
	if sess.Name != "" {
		profile.Name = sess.Name
		profile.ReferralCode = ReferralCode(sess.Name)
	}
	return profile, nil
}

func (s *fixtureSource) FetchLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if err := wait(ctx, s.latency.Leaderboard); err != nil {
		return nil, err
	}
	return append([]LeaderboardEntry(nil), s.catalog.Leaderboard...), nil
}

func (s *fixtureSource) FetchAchievementCatalog(ctx context.Context) ([]Achievement, error) {
	if err := wait(ctx, s.latency.Achievements); err != nil {
		return nil, err
	}
	return append([]Achievement(nil), s.catalog.Achievements...), nil
}

func (s *fixtureSource) FetchDonationStats(ctx context.Context, _ session.Session) (DonationStats, error) {
	if err := wait(ctx, s.latency.Stats); err != nil {
		return DonationStats{}, err
	}
	stats := s.catalog.DonationStats
	stats.MonthlyData = append([]MonthlyDonation(nil), stats.MonthlyData...)
	return stats, nil
}

// wait only returns early when the caller's context ends, e.g. during shutdown.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
