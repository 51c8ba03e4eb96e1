package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oakrise/shopcart/internal/domain/account"
)

const (
	insertUserSQL = `INSERT INTO users (id, email, name, email_token)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	activateUserSQL = `UPDATE users SET is_mail_verified = TRUE, email_token = NULL
		WHERE email_token = $1
		RETURNING id, email, name, is_mail_verified, created_at`
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

var _ account.Repository = (*UserRepository)(nil)

// UserRepository implements account.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create persists a new user. A duplicate email maps to ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *account.User) error {
	err := r.pool.QueryRow(ctx, insertUserSQL, u.ID, u.Email, u.Name, u.EmailToken).
		Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return account.ErrEmailTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Email, err)
	}
	return nil
}

// Activate marks the token's owner mail-verified and consumes the token.
func (r *UserRepository) Activate(ctx context.Context, token string) (*account.User, error) {
	var u account.User
	err := r.pool.QueryRow(ctx, activateUserSQL, token).
		Scan(&u.ID, &u.Email, &u.Name, &u.MailVerified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrInvalidToken
		}
		return nil, fmt.Errorf("activating user: %w", err)
	}
	return &u, nil
}
