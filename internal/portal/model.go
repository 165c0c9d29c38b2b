package portal

import (
	"context"
	"errors"

	"github.com/internhub/portal-service/internal/session"
)

// Profile is the dashboard summary of one intern.
type Profile struct {
	Name         string `json:"name" yaml:"name" firestore:"name"`
	ReferralCode string `json:"referralCode" yaml:"referral_code" firestore:"referralCode"`
	Donations    int    `json:"donations" yaml:"donations" firestore:"donations"`
	Email        string `json:"email" yaml:"email" firestore:"email"`
	JoinDate     string `json:"joinDate" yaml:"join_date" firestore:"joinDate"`
	Rank         int    `json:"rank" yaml:"rank" firestore:"-"`
	TotalInterns int    `json:"totalInterns" yaml:"total_interns" firestore:"-"`
}

// LeaderboardEntry is one ranked row of the leaderboard snapshot.
type LeaderboardEntry struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Donations    int    `json:"donations" yaml:"donations"`
	Rank         int    `json:"rank" yaml:"rank"`
	ReferralCode string `json:"referralCode" yaml:"referral_code"`
	Avatar       string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Rarity grades an achievement.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Valid reports whether r is one of the known rarities.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// Achievement is a catalog entry. IsUnlocked is precomputed upstream, never evaluated here.
type Achievement struct {
	ID          string `json:"id" yaml:"id" firestore:"id"`
	Title       string `json:"title" yaml:"title" firestore:"title"`
	Description string `json:"description" yaml:"description" firestore:"description"`
	IsUnlocked  bool   `json:"isUnlocked" yaml:"is_unlocked" firestore:"is_unlocked"`
	Requirement string `json:"requirement" yaml:"requirement" firestore:"requirement"`
	Rarity      Rarity `json:"rarity" yaml:"rarity" firestore:"rarity"`
	Icon        string `json:"icon" yaml:"icon" firestore:"icon"`
}

// MonthlyDonation is one bar of the donation history chart.
type MonthlyDonation struct {
	Month     string `json:"month" yaml:"month" firestore:"month"`
	Donations int    `json:"donations" yaml:"donations" firestore:"donations"`
}

// DonationStats summarizes donation history.
type DonationStats struct {
	MonthlyData       []MonthlyDonation `json:"monthlyData" yaml:"monthly_data" firestore:"monthly_data"`
	TotalDonations    int               `json:"totalDonations" yaml:"total_donations" firestore:"total_donations"`
	MonthlyGrowth     float64           `json:"monthlyGrowth" yaml:"monthly_growth" firestore:"monthly_growth"`
	AvgDonationAmount int               `json:"avgDonationAmount" yaml:"avg_donation_amount" firestore:"avg_donation_amount"`
}

// DataSource supplies the raw records a view needs. Every call is independent and returns a
// freshly owned snapshot or an error, never a partial result.
type DataSource interface {
	FetchProfile(ctx context.Context, sess session.Session) (Profile, error)
	FetchLeaderboard(ctx context.Context) ([]LeaderboardEntry, error)
	FetchAchievementCatalog(ctx context.Context) ([]Achievement, error)
	FetchDonationStats(ctx context.Context, sess session.Session) (DonationStats, error)
}

// SessionGate is the part of the session gate a view load depends on.
type SessionGate interface {
	RequireSession(ctx context.Context) (session.Session, error)
}

// ErrFetchFailure wraps any data source failure during a view load.
var ErrFetchFailure = errors.New("failed to load portal data")
