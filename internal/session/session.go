// Package session holds the process-local record of whether a portal user is logged in and the
// gate every view passes through before it may load data.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Storage keys. They match the keys the portal front end kept in browser storage.
const (
	KeyLoggedIn = "isLoggedIn"
	KeyUserName = "userName"
)

// View identifies a navigation target of the front end.
type View string

const (
	ViewLanding     View = "landing"
	ViewLogin       View = "login"
	ViewSignup      View = "signup"
	ViewDashboard   View = "dashboard"
	ViewLeaderboard View = "leaderboard"
)

// Path returns the front end route for the view.
func (v View) Path() string {
	if v == ViewLanding {
		return "/"
	}
	return "/" + string(v)
}

// Navigator is invoked with the view the client should move to.
type Navigator func(View)

// Session is the value handed to every view load.
type Session struct {
	LoggedIn bool   `json:"isLoggedIn"`
	Name     string `json:"name,omitempty"`
}

var (
	// ErrNoSession indicates no logged-in session exists for the caller.
	ErrNoSession = errors.New("no active session")
	// ErrMissingName indicates a session was established without a display name.
	ErrMissingName = errors.New("display name is required")
)

// RedirectError is returned by RequireSession when the caller must navigate elsewhere instead of rendering.
type RedirectError struct {
	To View
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s: %v", e.To, ErrNoSession)
}

func (e *RedirectError) Unwrap() error { return ErrNoSession }

// Store is the key-value storage a session is kept in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Backend partitions session storage per client session id.
type Backend interface {
	Scope(sessionID string) Store
}

// Gate is the only writer and reader of session state.
type Gate struct {
	store    Store
	navigate Navigator
}

// NewGate binds a gate to a store. navigate may be nil.
func NewGate(store Store, navigate Navigator) *Gate {
	if navigate == nil {
		navigate = func(View) {}
	}
	return &Gate{store: store, navigate: navigate}
}

// Current reads the session without enforcing it.
func (g *Gate) Current(ctx context.Context) (Session, error) {
	if g.store == nil {
		return Session{}, nil
	}
	flag, ok, err := g.store.Get(ctx, KeyLoggedIn)
	if err != nil {
		return Session{}, fmt.Errorf("read session flag: %w", err)
	}
	if !ok || flag != "true" {
		return Session{}, nil
	}
	name, _, err := g.store.Get(ctx, KeyUserName)
	if err != nil {
		return Session{}, fmt.Errorf("read session name: %w", err)
	}
	if name == "" {
		// a flag without a name breaks the session invariant; treat it as logged out
		return Session{}, nil
	}
	return Session{LoggedIn: true, Name: name}, nil
}

// RequireSession returns the active session, or signals a redirect to the login view.
func (g *Gate) RequireSession(ctx context.Context) (Session, error) {
	sess, err := g.Current(ctx)
	if err != nil {
		return Session{}, err
	}
	if !sess.LoggedIn {
		g.navigate(ViewLogin)
		return Session{}, &RedirectError{To: ViewLogin}
	}
	return sess, nil
}

// EstablishSession marks the caller as logged in under the given display name.
func (g *Gate) EstablishSession(ctx context.Context, name string) (Session, error) {
	if strings.TrimSpace(name) == "" {
		return Session{}, ErrMissingName
	}
	if g.store == nil {
		return Session{}, errors.New("session store is not configured")
	}
	if err := g.store.Set(ctx, KeyUserName, name); err != nil {
		return Session{}, fmt.Errorf("store session name: %w", err)
	}
	if err := g.store.Set(ctx, KeyLoggedIn, "true"); err != nil {
		return Session{}, fmt.Errorf("store session flag: %w", err)
	}
	return Session{LoggedIn: true, Name: name}, nil
}

// ClearSession removes the flag and the name.
func (g *Gate) ClearSession(ctx context.Context) error {
	if g.store == nil {
		return nil
	}
	if err := g.store.Remove(ctx, KeyLoggedIn); err != nil {
		return fmt.Errorf("remove session flag: %w", err)
	}
	if err := g.store.Remove(ctx, KeyUserName); err != nil {
		return fmt.Errorf("remove session name: %w", err)
	}
	return nil
}
