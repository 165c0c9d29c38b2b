package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStore) Set(context.Context, string, string) error         { return f.err }
func (f failingStore) Remove(context.Context, string) error              { return f.err }

func TestRequireSessionRedirectsWithoutSession(t *testing.T) {
	var navigated []View
	gate := NewGate(NewMemoryBackend().Scope("sid-1"), func(v View) { navigated = append(navigated, v) })

	_, err := gate.RequireSession(context.Background())

	var redirect *RedirectError
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, ViewLogin, redirect.To)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, []View{ViewLogin}, navigated)
}

func TestEstablishThenRequire(t *testing.T) {
	ctx := context.Background()
	navigated := 0
	gate := NewGate(NewMemoryBackend().Scope("sid-1"), func(View) { navigated++ })

	_, err := gate.EstablishSession(ctx, "X")
	require.NoError(t, err)

	sess, err := gate.RequireSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{LoggedIn: true, Name: "X"}, sess)
	assert.Zero(t, navigated)
}

func TestClearSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBackend().Scope("sid-1")
	gate := NewGate(store, nil)

	_, err := gate.EstablishSession(ctx, "Priya Sharma")
	require.NoError(t, err)
	require.NoError(t, gate.ClearSession(ctx))

	_, ok, err := store.Get(ctx, KeyUserName)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = gate.RequireSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestEstablishRejectsEmptyName(t *testing.T) {
	gate := NewGate(NewMemoryBackend().Scope("sid-1"), nil)
	_, err := gate.EstablishSession(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestSessionsAreScopedPerClient(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	_, err := NewGate(backend.Scope("a"), nil).EstablishSession(ctx, "Alice")
	require.NoError(t, err)

	_, err = NewGate(backend.Scope("b"), nil).RequireSession(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFlagWithoutNameIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBackend().Scope("sid-1")
	require.NoError(t, store.Set(ctx, KeyLoggedIn, "true"))

	sess, err := NewGate(store, nil).Current(ctx)
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn)
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	gate := NewGate(failingStore{err: boom}, nil)

	_, err := gate.RequireSession(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = gate.EstablishSession(context.Background(), "X")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, gate.ClearSession(context.Background()), boom)
}

func TestNilStoreGateRedirects(t *testing.T) {
	_, err := NewGate(nil, nil).RequireSession(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestViewPath(t *testing.T) {
	assert.Equal(t, "/", ViewLanding.Path())
	assert.Equal(t, "/login", ViewLogin.Path())
	assert.Equal(t, "/dashboard", ViewDashboard.Path())
}
