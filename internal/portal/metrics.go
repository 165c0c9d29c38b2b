package portal

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/internhub/portal-service/internal/session"
)

type instrumentedSource struct {
	next     DataSource
	duration *prometheus.HistogramVec
}

// NewInstrumentedSource records the latency and outcome of every fetch made through next.
func NewInstrumentedSource(next DataSource, reg prometheus.Registerer) (DataSource, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portal",
		Name:      "fetch_duration_seconds",
		Help:      "Latency of data source fetches by operation and outcome.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"op", "outcome"})
	if err := reg.Register(duration); err != nil {
		return nil, err
	}
	return &instrumentedSource{next: next, duration: duration}, nil
}

func (s *instrumentedSource) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.duration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

func (s *instrumentedSource) FetchProfile(ctx context.Context, sess session.Session) (Profile, error) {
	start := time.Now()
	p, err := s.next.FetchProfile(ctx, sess)
	s.observe("profile", start, err)
	return p, err
}

func (s *instrumentedSource) FetchLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	start := time.Now()
	entries, err := s.next.FetchLeaderboard(ctx)
	s.observe("leaderboard", start, err)
	return entries, err
}

func (s *instrumentedSource) FetchAchievementCatalog(ctx context.Context) ([]Achievement, error) {
	start := time.Now()
	catalog, err := s.next.FetchAchievementCatalog(ctx)
	s.observe("achievements", start, err)
	return catalog, err
}

func (s *instrumentedSource) FetchDonationStats(ctx context.Context, sess session.Session) (DonationStats, error) {
	start := time.Now()
	stats, err := s.next.FetchDonationStats(ctx, sess)
	s.observe("donation_stats", start, err)
	return stats, err
}
