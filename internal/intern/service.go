package intern

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/internhub/portal-service/internal/portal"
)

// Service runs the signup and login flows.
type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

// NewService constructs a Service. logger may be nil.
func NewService(repo Repository, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}, nil
}

// Signup validates the form and inserts a new intern with zero donations.
func (s *Service) Signup(ctx context.Context, input SignupInput) (Result, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := s.check(input); err != nil {
		return Result{}, err
	}

	record, err := s.repo.Insert(ctx, Record{
		Name:         input.Name,
		Email:        input.Email,
		ReferralCode: portal.ReferralCode(input.Name),
		Donations:    0,
		CreatedAt:    s.now(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "intern insert failed", slog.String("email", input.Email), slog.Any("error", err))
		return Result{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	return Result{DisplayName: displayName(record), Record: record}, nil
}

// Login looks the intern up by email. The password is never compared.
func (s *Service) Login(ctx context.Context, input LoginInput) (Result, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := s.check(input); err != nil {
		return Result{}, err
	}

	records, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "intern lookup failed", slog.String("email", input.Email), slog.Any("error", err))
		return Result{}, fmt.Errorf("%w: %w", ErrLookup, err)
	}
	if len(records) == 0 {
		return Result{}, ErrNotRegistered
	}

	record := records[0]
	if record.Email == "" {
		record.Email = input.Email
	}
	return Result{DisplayName: displayName(record), Record: record}, nil
}

func (s *Service) check(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	case "email":
		return "email is not a valid address"
	case "eqfield":
		return "passwords do not match"
	default:
		return strings.ToLower(fe.Field()) + " is invalid"
	}
}

// displayName falls back to the local part of the email when a record has no name.
func displayName(r Record) string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(r.Email, "@")
	return local
}
