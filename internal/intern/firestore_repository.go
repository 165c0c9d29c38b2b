package intern

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/internhub/portal-service/internal/portal"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a repository over the collection the portal reads interns from.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) FindByEmail(ctx context.Context, email string) ([]Record, error) {
	iter := r.client.Collection(portal.InternsCollection).Where("email", "==", email).Documents(ctx)
	defer iter.Stop()

	var out []Record
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var rec Record
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("decode intern %s: %w", doc.Ref.ID, err)
		}
		rec.ID = doc.Ref.ID
		out = append(out, rec)
	}
	return out, nil
}

func (r *firestoreRepository) Insert(ctx context.Context, record Record) (Record, error) {
	ref, _, err := r.client.Collection(portal.InternsCollection).Add(ctx, record)
	if err != nil {
		return Record{}, err
	}
	record.ID = ref.ID
	return record, nil
}
