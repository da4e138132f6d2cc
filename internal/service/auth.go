// Package service holds the business rules of the backend: registration and
// sessions, the per-owner entry kinds, profiles and the partner link. It
// delegates persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/atinyakov/TwoHearts/internal/auth"
	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// UserRepository defines the persistence operations
// required by the authentication and profile services.
type UserRepository interface {
	// CreateUser stores a new user and assigns its ID.
	// Returns common.ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u *models.User) error
	// GetUserByEmail looks a user up by email, case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns the user with the given id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// UpdateProfile sets name and avatar URL.
	UpdateProfile(ctx context.Context, id, name, avatarURL string) (*models.User, error)
	// CreateSession records a login session.
	CreateSession(ctx context.Context, userID string, expiresAt time.Time) (*models.Session, error)
	// GetSession returns a session by id.
	GetSession(ctx context.Context, id string) (*models.Session, error)
	// DeleteSession revokes a session.
	DeleteSession(ctx context.Context, id string) error
}

// AuthService registers identities and manages their login sessions.
type AuthService struct {
	repo   UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewAuthService constructs an AuthService that signs tokens with secret
// and keeps sessions alive for ttl.
func NewAuthService(repo UserRepository, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		repo:   repo,
		secret: secret,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	return email, nil
}

// Register creates a new identity. An empty name defaults to the local part
// of the email.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, MinPasswordLength)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email[:strings.IndexByte(email, '@')]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

// Login verifies the credentials, opens a session and returns its access
// token. Unknown emails and wrong passwords both yield
// common.ErrInvalidCredential.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrInvalidCredential
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", nil, common.ErrInvalidCredential
	}

	expiresAt := s.now().Add(s.ttl)
	sess, err := s.repo.CreateSession(ctx, u.ID, expiresAt)
	if err != nil {
		return "", nil, err
	}
	token, err := auth.GenerateToken(u.ID, sess.ID, s.secret, expiresAt)
	if err != nil {
		return "", nil, err
	}
	id := u.Identity()
	return token, &id, nil
}

// Logout revokes the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.repo.DeleteSession(ctx, sessionID)
}

// Authenticate verifies an access token against the session table and
// returns its claims. Revoked or expired sessions yield common.ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnauthorized, err)
	}
	sess, err := s.repo.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: session revoked", common.ErrUnauthorized)
		}
		return nil, err
	}
	if sess.UserID != claims.UserID || !sess.ExpiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: session expired", common.ErrUnauthorized)
	}
	return claims, nil
}

// Me returns the identity for userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.Identity, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}
