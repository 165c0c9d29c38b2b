package session

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const sessionsCollection = "sessions"

type firestoreBackend struct {
	client *firestore.Client
}

// NewFirestoreBackend stores each session as a document in the sessions collection.
func NewFirestoreBackend(client *firestore.Client) Backend {
	return &firestoreBackend{client: client}
}

func (b *firestoreBackend) Scope(sessionID string) Store {
	return &firestoreStore{ref: b.client.Collection(sessionsCollection).Doc(sessionID)}
}

type firestoreStore struct {
	ref *firestore.DocumentRef
}

func (s *firestoreStore) Get(ctx context.Context, key string) (string, bool, error) {
	doc, err := s.ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	raw, err := doc.DataAt(key)
	if err != nil {
		// DataAt fails when the field is absent.
		return "", false, nil
	}
	value, ok := raw.(string)
	return value, ok, nil
}

func (s *firestoreStore) Set(ctx context.Context, key, value string) error {
	_, err := s.ref.Set(ctx, map[string]any{
		key:          value,
		"updatedAt": time.Now().UTC(),
	}, firestore.MergeAll)
	return err
}

func (s *firestoreStore) Remove(ctx context.Context, key string) error {
	_, err := s.ref.Update(ctx, []firestore.Update{
		{Path: key, Value: firestore.Delete},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}
