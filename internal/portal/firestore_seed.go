package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
)

// SeedResult counts the documents Firestore confirmed as written.
type SeedResult struct {
	Interns      int
	Achievements int
	Stats        int
}

func (r *SeedResult) add(collection string) {
	switch collection {
	case InternsCollection:
		r.Interns++
	case AchievementsCollection:
		r.Achievements++
	case DonationStatsCollection:
		r.Stats++
	}
}

// seedWriter queues document writes. Job results are only final after End returns.
type seedWriter interface {
	Set(collection, id string, data map[string]any) (seedJob, error)
	End()
}

type seedJob interface {
	Results() (*firestore.WriteResult, error)
}

type bulkSeedWriter struct {
	client *firestore.Client
	bw     *firestore.BulkWriter
}

func (w *bulkSeedWriter) Set(collection, id string, data map[string]any) (seedJob, error) {
	job, err := w.bw.Set(w.client.Collection(collection).Doc(id), data)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (w *bulkSeedWriter) End() { w.bw.End() }

type seedDoc struct {
	collection string
	id         string
	data       map[string]any
}

// Seed writes a catalog into Firestore so the Firestore source serves the same data as the fixture source.
// Documents are overwritten, so seeding twice is harmless. The first failed write is returned along with
// the counts of the writes that succeeded.
func Seed(ctx context.Context, client *firestore.Client, catalog Catalog) (SeedResult, error) {
	if err := catalog.Validate(); err != nil {
		return SeedResult{}, err
	}
	return seedCatalog(&bulkSeedWriter{client: client, bw: client.BulkWriter(ctx)}, catalog, time.Now().UTC())
}

func seedCatalog(w seedWriter, catalog Catalog, now time.Time) (SeedResult, error) {
	type queued struct {
		doc seedDoc
		job seedJob
	}

	var (
		jobs     []queued
		firstErr error
	)
	for _, doc := range seedDocuments(catalog, now) {
		job, err := w.Set(doc.collection, doc.id, doc.data)
		if err != nil {
			firstErr = fmt.Errorf("queue %s/%s: %w", doc.collection, doc.id, err)
			break
		}
		jobs = append(jobs, queued{doc: doc, job: job})
	}
	w.End()

	var result SeedResult
	for _, q := range jobs {
		if _, err := q.job.Results(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("write %s/%s: %w", q.doc.collection, q.doc.id, err)
			}
			continue
		}
		result.add(q.doc.collection)
	}
	return result, firstErr
}

func seedDocuments(catalog Catalog, now time.Time) []seedDoc {
	docs := make([]seedDoc, 0, len(catalog.Leaderboard)+len(catalog.Achievements)+1)

	for _, e := range catalog.Leaderboard {
		data := map[string]any{
			"name":         e.Name,
			"email":        seedEmail(e),
			"referralCode": e.ReferralCode,
			"donations":    e.Donations,
			"createdAt":    now,
		}
		if e.Avatar != "" {
			data["avatar"] = e.Avatar
		}
		docs = append(docs, seedDoc{collection: InternsCollection, id: e.ID, data: data})
	}

	for i, a := range catalog.Achievements {
		docs = append(docs, seedDoc{collection: AchievementsCollection, id: a.ID, data: map[string]any{
			"id":          a.ID,
			"title":       a.Title,
			"description": a.Description,
			"is_unlocked": a.IsUnlocked,
			"requirement": a.Requirement,
			"rarity":      string(a.Rarity),
			"icon":        a.Icon,
			"order":       i,
		}})
	}

	stats := catalog.DonationStats
	monthly := make([]map[string]any, 0, len(stats.MonthlyData))
	for _, m := range stats.MonthlyData {
		monthly = append(monthly, map[string]any{"month": m.Month, "donations": m.Donations})
	}
	docs = append(docs, seedDoc{collection: DonationStatsCollection, id: ReferralCode(catalog.DefaultProfile.Name), data: map[string]any{
		"monthly_data":        monthly,
		"total_donations":     stats.TotalDonations,
		"monthly_growth":      stats.MonthlyGrowth,
		"avg_donation_amount": stats.AvgDonationAmount,
	}})

	return docs
}

func seedEmail(e LeaderboardEntry) string {
	local := strings.TrimSuffix(e.ReferralCode, ReferralSuffix)
	if local == "" {
		local = "intern" + e.ID
	}
	return local + "@company.com"
}
