package intern

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	store map[string]Record // id -> record
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{store: make(map[string]Record)}
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Record
	for _, rec := range r.store {
		if rec.Email == email {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) Insert(_ context.Context, record Record) (Record, error) {
	if strings.TrimSpace(record.ID) == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Record{}, err
		}
		record.ID = id.String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[record.ID] = record
	return record, nil
}
