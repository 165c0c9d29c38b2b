package intern

import (
	"context"
	"errors"
	"time"
)

// Record is the persisted intern document stored in the interns collection.
type Record struct {
	ID           string    `json:"id" firestore:"-"`
	Name         string    `json:"name" firestore:"name"`
	Email        string    `json:"email" firestore:"email"`
	ReferralCode string    `json:"referralCode" firestore:"referralCode"`
	Donations    int       `json:"donations" firestore:"donations"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

// SignupInput is the registration form. Password is checked against ConfirmPassword and then dropped.
type SignupInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Result is what a successful signup or login hands to the session gate.
type Result struct {
	DisplayName string `json:"name"`
	Record      Record `json:"intern"`
}

// Repository is the document store the account flows read and write.
type Repository interface {
	FindByEmail(ctx context.Context, email string) ([]Record, error)
	Insert(ctx context.Context, record Record) (Record, error)
}

var (
	// ErrValidation indicates a form failed validation before any store access.
	ErrValidation = errors.New("validation failed")
	// ErrNotRegistered indicates no record matches the login email.
	ErrNotRegistered = errors.New("looks like you're a new user, please sign up")
	// ErrLookup indicates the store query for a login failed.
	ErrLookup = errors.New("account lookup failed")
	// ErrPersist indicates the store rejected a new record.
	ErrPersist = errors.New("could not save account")
)
