package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/internhub/portal-service/internal/session"
)

// DashboardView is everything the dashboard renders, already derived.
type DashboardView struct {
	Profile          Profile        `json:"profile"`
	Initials         string         `json:"initials"`
	DonationsDisplay string         `json:"donationsDisplay"`
	Achievements     []Achievement  `json:"achievements"`
	Unlocked         []Achievement  `json:"unlocked"`
	NextAchievement  *Achievement   `json:"nextAchievement,omitempty"`
	Progress         UnlockProgress `json:"progress"`
	Stats            DonationStats  `json:"stats"`
}

// LeaderboardView is the podium/others split with the current user flagged.
type LeaderboardView struct {
	Podium      []RankedEntry `json:"podium"`
	Others      []RankedEntry `json:"others"`
	CurrentUser *RankedEntry  `json:"currentUser,omitempty"`
	Profile     Profile       `json:"profile"`
}

// Service loads and derives view data through a DataSource.
type Service struct {
	source DataSource
	logger *slog.Logger
}

// NewService constructs a Service. logger may be nil.
func NewService(source DataSource, logger *slog.Logger) (*Service, error) {
	if source == nil {
		return nil, errors.New("data source is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{source: source, logger: logger}, nil
}

// Dashboard gates on the session and then loads the dashboard. A missing session returns the
// gate's redirect error before any fetch is issued.
func (s *Service) Dashboard(ctx context.Context, gate SessionGate) (*DashboardView, error) {
	sess, err := gate.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.LoadDashboard(ctx, sess)
}

// Leaderboard gates on the session and then loads the leaderboard.
func (s *Service) Leaderboard(ctx context.Context, gate SessionGate) (*LeaderboardView, error) {
	sess, err := gate.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.LoadLeaderboard(ctx, sess)
}

// LoadDashboard fetches profile, achievements and stats concurrently and waits for all of them.
// Any failure fails the whole load.
func (s *Service) LoadDashboard(ctx context.Context, sess session.Session) (*DashboardView, error) {
	var (
		profile Profile
		catalog []Achievement
		stats   DonationStats
		g       errgroup.Group
	)

	g.Go(func() error {
		p, err := s.source.FetchProfile(ctx, sess)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		c, err := s.source.FetchAchievementCatalog(ctx)
		if err != nil {
			return fmt.Errorf("fetch achievements: %w", err)
		}
		catalog = c
		return nil
	})

	g.Go(func() error {
		st, err := s.source.FetchDonationStats(ctx, sess)
		if err != nil {
			return fmt.Errorf("fetch donation stats: %w", err)
		}
		stats = st
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "dashboard load failed", slog.String("user", sess.Name), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}

	return buildDashboardView(profile, catalog, stats), nil
}

// LoadLeaderboard fetches the leaderboard and the caller's profile concurrently.
func (s *Service) LoadLeaderboard(ctx context.Context, sess session.Session) (*LeaderboardView, error) {
	var (
		entries []LeaderboardEntry
		profile Profile
		g       errgroup.Group
	)

	g.Go(func() error {
		e, err := s.source.FetchLeaderboard(ctx)
		if err != nil {
			return fmt.Errorf("fetch leaderboard: %w", err)
		}
		entries = e
		return nil
	})

	g.Go(func() error {
		p, err := s.source.FetchProfile(ctx, sess)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		profile = p
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "leaderboard load failed", slog.String("user", sess.Name), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}

	return buildLeaderboardView(entries, profile, sess.Name), nil
}

func buildDashboardView(profile Profile, catalog []Achievement, stats DonationStats) *DashboardView {
	resolved := make([]Achievement, len(catalog))
	for i, a := range catalog {
		a.Icon = IconFor(a.Icon)
		resolved[i] = a
	}
	partition := PartitionAchievements(resolved)

	return &DashboardView{
		Profile:          profile,
		Initials:         Initials(profile.Name),
		DonationsDisplay: FormatDonations(profile.Donations),
		Achievements:     resolved,
		Unlocked:         partition.Unlocked,
		NextAchievement:  partition.NextLocked,
		Progress:         Progress(resolved),
		Stats:            stats,
	}
}

func buildLeaderboardView(entries []LeaderboardEntry, profile Profile, sessionName string) *LeaderboardView {
	ranked := HighlightCurrentUser(entries, sessionName)
	podium, others := SplitLeaderboard(ranked)

	view := &LeaderboardView{Podium: podium, Others: others, Profile: profile}
	for i := range ranked {
		if ranked[i].IsCurrentUser {
			current := ranked[i]
			view.CurrentUser = &current
			break
		}
	}
	return view
}
