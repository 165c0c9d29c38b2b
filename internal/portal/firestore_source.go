package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/internhub/portal-service/internal/session"
)

// Collection names shared with the intern repository and the seed command.
const (
	InternsCollection       = "interns"
	AchievementsCollection  = "achievements"
	DonationStatsCollection = "donation_stats"
)

const defaultLeaderboardLimit = 50

// FirestoreOptions tunes the Firestore data source.
type FirestoreOptions struct {
	// DefaultProfile is served when the session has no name or no intern record matches it.
	DefaultProfile   Profile
	LeaderboardLimit int
}

type firestoreSource struct {
	client *firestore.Client
	opts   FirestoreOptions
}

// NewFirestoreSource reads intern records, achievements and donation stats from Firestore.
func NewFirestoreSource(client *firestore.Client, opts FirestoreOptions) DataSource {
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = defaultLeaderboardLimit
	}
	return &firestoreSource{client: client, opts: opts}
}

type internDocument struct {
	Name         string    `firestore:"name"`
	Email        string    `firestore:"email"`
	ReferralCode string    `firestore:"referralCode"`
	Donations    int       `firestore:"donations"`
	Avatar       string    `firestore:"avatar"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

func (s *firestoreSource) interns() *firestore.CollectionRef {
	return s.client.Collection(InternsCollection)
}

func (s *firestoreSource) FetchProfile(ctx context.Context, sess session.Session) (Profile, error) {
	fallback := s.opts.DefaultProfile
	if sess.Name == "" {
		return fallback, nil
	}
	fallback.Name = sess.Name
	fallback.ReferralCode = ReferralCode(sess.Name)

	iter := s.interns().Where("name", "==", sess.Name).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return fallback, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query intern profile: %w", err)
	}

	var record internDocument
	if err := doc.DataTo(&record); err != nil {
		return Profile{}, fmt.Errorf("decode intern profile: %w", err)
	}

	rank, err := s.rank(ctx, doc.Ref, record.Donations)
	if err != nil {
		return Profile{}, err
	}
	total, err := s.count(ctx, s.interns().Query)
	if err != nil {
		return Profile{}, err
	}

	profile := Profile{
		Name:         record.Name,
		ReferralCode: record.ReferralCode,
		Donations:    record.Donations,
		Email:        record.Email,
		Rank:         rank,
		TotalInterns: max(total, rank),
	}
	if profile.ReferralCode == "" {
		profile.ReferralCode = ReferralCode(record.Name)
	}
	if !record.CreatedAt.IsZero() {
		profile.JoinDate = record.CreatedAt.UTC().Format(time.DateOnly)
	}
	return profile, nil
}

func (s *firestoreSource) FetchLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	iter := s.interns().
		OrderBy("donations", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Limit(s.opts.LeaderboardLimit).
		Documents(ctx)
	defer iter.Stop()

	var entries []LeaderboardEntry
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query leaderboard: %w", err)
		}
		var record internDocument
		if err := doc.DataTo(&record); err != nil {
			return nil, fmt.Errorf("decode leaderboard entry %s: %w", doc.Ref.ID, err)
		}
		entries = append(entries, LeaderboardEntry{
			ID:           doc.Ref.ID,
			Name:         record.Name,
			Donations:    record.Donations,
			Rank:         len(entries) + 1,
			ReferralCode: record.ReferralCode,
			Avatar:       record.Avatar,
		})
	}
	return entries, nil
}

func (s *firestoreSource) FetchAchievementCatalog(ctx context.Context) ([]Achievement, error) {
	iter := s.client.Collection(AchievementsCollection).OrderBy("order", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var catalog []Achievement
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query achievements: %w", err)
		}
		var a Achievement
		if err := doc.DataTo(&a); err != nil {
			return nil, fmt.Errorf("decode achievement %s: %w", doc.Ref.ID, err)
		}
		if a.ID == "" {
			a.ID = doc.Ref.ID
		}
		catalog = append(catalog, a)
	}
	return catalog, nil
}

func (s *firestoreSource) FetchDonationStats(ctx context.Context, sess session.Session) (DonationStats, error) {
	if sess.Name == "" {
		return DonationStats{}, nil
	}
	doc, err := s.client.Collection(DonationStatsCollection).Doc(ReferralCode(sess.Name)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return DonationStats{}, nil
	}
	if err != nil {
		return DonationStats{}, fmt.Errorf("load donation stats: %w", err)
	}
	var stats DonationStats
	if err := doc.DataTo(&stats); err != nil {
		return DonationStats{}, fmt.Errorf("decode donation stats: %w", err)
	}
	return stats, nil
}

// rank places an intern the way FetchLeaderboard orders rows: donations descending, ties broken by
// document id ascending.
func (s *firestoreSource) rank(ctx context.Context, ref *firestore.DocumentRef, donations int) (int, error) {
	ahead, err := s.count(ctx, s.interns().Where("donations", ">", donations))
	if err != nil {
		return 0, err
	}
	tiedAhead, err := s.count(ctx, s.interns().
		Where("donations", "==", donations).
		Where(firestore.DocumentID, "<", ref))
	if err != nil {
		return 0, err
	}
	return ahead + tiedAhead + 1, nil
}

func (s *firestoreSource) count(ctx context.Context, q firestore.Query) (int, error) {
	result, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count interns: %w", err)
	}
	raw, ok := result["all"]
	if !ok {
		return 0, errors.New("count interns: aggregation result missing")
	}
	value, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count interns: unexpected result type %T", raw)
	}
	return int(value.GetIntegerValue()), nil
}
