// Package repository provides the PostgreSQL persistence for identities,
// login sessions, the per-owner entry tables and partner connections.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/atinyakov/TwoHearts/internal/models"
	"github.com/google/uuid"
)

// PostgresUserRepository stores identities and their login sessions.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id, email, name, avatar_url, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts u, assigning its ID and CreatedAt.
// An email already taken (case-insensitively) yields common.ErrAlreadyExists.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (id, email, name, password_hash) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		u.ID, u.Email, u.Name, u.PasswordHash,
	).Scan(&u.CreatedAt)
	return mapError("create user", err)
}

// GetUserByEmail looks a user up by email, ignoring case.
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, mapError("get user by email", err)
	}
	return u, nil
}

// GetUserByID returns the user with the given id.
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get user by id", err)
	}
	return u, nil
}

// UpdateProfile sets the display name and avatar URL and returns the stored row.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id, name, avatarURL string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`UPDATE users SET name = $2, avatar_url = $3 WHERE id = $1 RETURNING `+userColumns,
		id, name, avatarURL))
	if err != nil {
		return nil, mapError("update profile", err)
	}
	return u, nil
}

// CreateSession records a login session for userID valid until expiresAt.
func (r *PostgresUserRepository) CreateSession(ctx context.Context, userID string, expiresAt time.Time) (*models.Session, error) {
	s := &models.Session{ID: uuid.NewString(), UserID: userID, ExpiresAt: expiresAt.UTC()}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`,
		s.ID, s.UserID, s.ExpiresAt)
	if err != nil {
		return nil, mapError("create session", err)
	}
	return s, nil
}

// GetSession returns the session with the given id, expired or not.
func (r *PostgresUserRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt)
	if err != nil {
		return nil, mapError("get session", err)
	}
	return &s, nil
}

// DeleteSession revokes a session. Deleting an unknown session is not an error.
func (r *PostgresUserRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return mapError("delete session", err)
}
