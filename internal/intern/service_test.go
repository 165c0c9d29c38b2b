package intern

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	findByEmailFn func(context.Context, string) ([]Record, error)
	insertFn      func(context.Context, Record) (Record, error)
	inserts       int
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) ([]Record, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, errors.New("findByEmailFn not provided")
}

func (f *fakeRepo) Insert(ctx context.Context, record Record) (Record, error) {
	f.inserts++
	if f.insertFn != nil {
		return f.insertFn(ctx, record)
	}
	record.ID = "generated"
	return record, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestSignupInsertsNewIntern(t *testing.T) {
	var stored Record
	repo := &fakeRepo{insertFn: func(_ context.Context, r Record) (Record, error) {
		stored = r
		r.ID = "abc"
		return r, nil
	}}

	res, err := newTestService(t, repo).Signup(context.Background(), SignupInput{
		Name:            " Jane Doe ",
		Email:           "jane@example.com",
		Password:        "secret",
		ConfirmPassword: "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", res.DisplayName)
	assert.Equal(t, "abc", res.Record.ID)
	assert.Equal(t, Record{
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		ReferralCode: "janedoe2025",
		Donations:    0,
		CreatedAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}, stored)
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name  string
		input SignupInput
		msg   string
	}{
		{"missing name", SignupInput{Email: "a@b.co", Password: "x", ConfirmPassword: "x"}, "name is required"},
		{"bad email", SignupInput{Name: "A", Email: "nope", Password: "x", ConfirmPassword: "x"}, "email is not a valid address"},
		{"mismatch", SignupInput{Name: "A", Email: "a@b.co", Password: "x", ConfirmPassword: "y"}, "passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			_, err := newTestService(t, repo).Signup(context.Background(), tt.input)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Zero(t, repo.inserts, "no record may be created")
		})
	}
}

func TestSignupPersistFailure(t *testing.T) {
	repo := &fakeRepo{insertFn: func(context.Context, Record) (Record, error) {
		return Record{}, errors.New("permission denied")
	}}
	_, err := newTestService(t, repo).Signup(context.Background(), SignupInput{
		Name: "A", Email: "a@b.co", Password: "x", ConfirmPassword: "x",
	})
	require.ErrorIs(t, err, ErrPersist)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		records  []Record
		lookup   error
		input    LoginInput
		wantName string
		wantErr  error
	}{
		{
			name:     "registered",
			records:  []Record{{ID: "1", Name: "Jane Doe", Email: "jane@example.com"}},
			input:    LoginInput{Email: "jane@example.com", Password: "anything"},
			wantName: "Jane Doe",
		},
		{
			name:     "falls back to email local part",
			records:  []Record{{ID: "1", Email: "kiran@example.com"}},
			input:    LoginInput{Email: "kiran@example.com", Password: "x"},
			wantName: "kiran",
		},
		{
			name:    "new user",
			input:   LoginInput{Email: "new@example.com", Password: "x"},
			wantErr: ErrNotRegistered,
		},
		{
			name:    "lookup failure",
			lookup:  errors.New("unavailable"),
			input:   LoginInput{Email: "jane@example.com", Password: "x"},
			wantErr: ErrLookup,
		},
		{
			name:    "empty password",
			input:   LoginInput{Email: "jane@example.com"},
			wantErr: ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{findByEmailFn: func(context.Context, string) ([]Record, error) {
				return tt.records, tt.lookup
			}}
			res, err := newTestService(t, repo).Login(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, res.DisplayName)
		})
	}
}

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Name: "Sneha Reddy", Email: "sneha@example.com", Password: "p", ConfirmPassword: "p"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginInput{Email: "sneha@example.com", Password: "other"})
	require.NoError(t, err)
	assert.Equal(t, "Sneha Reddy", res.DisplayName)
	assert.NotEmpty(t, res.Record.ID)
	assert.Equal(t, "snehareddy2025", res.Record.ReferralCode)

	_, err = svc.Login(ctx, LoginInput{Email: "SNEHA@example.com", Password: "p"})
	assert.ErrorIs(t, err, ErrNotRegistered)
}
