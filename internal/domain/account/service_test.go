package account

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockUserRepo struct {
	created   *User
	createErr error

	activated *User
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = u
	return nil
}

func (m *mockUserRepo) Activate(_ context.Context, token string) (*User, error) {
	if m.activated == nil || m.activated.EmailToken != token {
		return nil, ErrInvalidToken
	}
	u := *m.activated
	u.MailVerified = true
	u.EmailToken = ""
	return &u, nil
}

type mockNotifier struct {
	email string
	token string
	err   error
}

func (m *mockNotifier) ActivationRequested(_ context.Context, email, token string) error {
	m.email = email
	m.token = token
	return m.err
}

// --- Tests ---

func TestRegister(t *testing.T) {
	repo := &mockUserRepo{}
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier)

	u, err := svc.Register(context.Background(), "a@example.com", "Alice")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.NotEmpty(t, u.EmailToken)
	assert.False(t, u.MailVerified)

	require.NotNil(t, repo.created, "user must be persisted")
	assert.Equal(t, "a@example.com", notifier.email)
	assert.Equal(t, u.EmailToken, notifier.token, "notification carries the persisted token")
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := &mockUserRepo{createErr: ErrEmailTaken}
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier)

	_, err := svc.Register(context.Background(), "a@example.com", "Alice")
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.Empty(t, notifier.email, "no notification without a persisted user")
}

func TestRegister_NotifierFailure(t *testing.T) {
	repo := &mockUserRepo{}
	notifier := &mockNotifier{err: errors.New("smtp down")}
	svc := NewService(repo, notifier)

	u, err := svc.Register(context.Background(), "a@example.com", "Alice")
	require.Error(t, err)
	assert.NotNil(t, u, "the created user is still returned")
	assert.NotNil(t, repo.created, "the user row stays persisted")
}

func TestRegister_FreshTokens(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewService(repo, &mockNotifier{})

	u1, err := svc.Register(context.Background(), "a@example.com", "")
	require.NoError(t, err)
	u2, err := svc.Register(context.Background(), "b@example.com", "")
	require.NoError(t, err)

	assert.NotEqual(t, u1.EmailToken, u2.EmailToken)
	assert.NotEqual(t, u1.ID, u2.ID)
}

func TestActivate(t *testing.T) {
	repo := &mockUserRepo{
		activated: &User{ID: "u1", Email: "a@example.com", EmailToken: "tok-1"},
	}
	svc := NewService(repo, &mockNotifier{})

	u, err := svc.Activate(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, u.MailVerified)
	assert.Empty(t, u.EmailToken, "token is single use")
}

func TestActivate_InvalidToken(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockNotifier{})

	_, err := svc.Activate(context.Background(), "bogus")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestActivate_EmptyToken(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockNotifier{})

	_, err := svc.Activate(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidToken)
}
