// Package account supplies user identity to the cart core and owns
// registration plus mail-token activation. Authentication itself is an
// external concern.
package account

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	// ErrEmailTaken is returned when registering an email that already has
	// an account.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidToken is returned when an activation token resolves no user.
	ErrInvalidToken = errors.New("invalid activation token")
)

// User is an account holder.
type User struct {
	ID           string
	Email        string
	Name         string
	MailVerified bool
	EmailToken   string
	CreatedAt    time.Time
}

// Repository defines persistence operations for users.
type Repository interface {
	// Create persists a new user. Returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, u *User) error
	// Activate marks the user owning the token as mail-verified and clears
	// the token. Returns ErrInvalidToken when no user holds the token.
	Activate(ctx context.Context, token string) (*User, error)
}

// Notifier consumes account events. Activation mail delivery is an external
// collaborator; the service emits the event explicitly, after the user row
// is persisted.
type Notifier interface {
	ActivationRequested(ctx context.Context, email, token string) error
}

// Service handles registration and activation.
type Service struct {
	users    Repository
	notifier Notifier
}

// NewService creates an account Service.
func NewService(users Repository, notifier Notifier) *Service {
	return &Service{users: users, notifier: notifier}
}

// Register creates a user with a fresh activation token and emits the
// activation event. A notifier failure is surfaced to the caller; the user
// row stays persisted so activation mail can be re-requested.
func (s *Service) Register(ctx context.Context, email, name string) (*User, error) {
	u := &User{
		ID:         uuid.New().String(),
		Email:      email,
		Name:       name,
		EmailToken: uuid.New().String(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	if err := s.notifier.ActivationRequested(ctx, u.Email, u.EmailToken); err != nil {
		return u, errors.Wrap(err, "request activation notification")
	}
	return u, nil
}

// Activate verifies the mail token and marks the account verified.
func (s *Service) Activate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	return s.users.Activate(ctx, token)
}
