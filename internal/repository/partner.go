package repository

import (
	"context"
	"database/sql"

	"github.com/atinyakov/TwoHearts/internal/models"
	"github.com/google/uuid"
)

// PostgresPartnerRepository persists partner connections and love notes.
type PostgresPartnerRepository struct {
	DB *sql.DB
}

// NewPostgresPartnerRepository creates a new PostgresPartnerRepository.
func NewPostgresPartnerRepository(db *sql.DB) *PostgresPartnerRepository {
	return &PostgresPartnerRepository{DB: db}
}

const connectionColumns = `id, requester_id, partner_id, status, created_at`

func scanConnection(row interface{ Scan(...any) error }) (*models.PartnerConnection, error) {
	var c models.PartnerConnection
	if err := row.Scan(&c.ID, &c.RequesterID, &c.PartnerID, &c.Status, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateConnection inserts a pending connection from requesterID to partnerID.
// A connection already present for the pair, in either direction, yields
// common.ErrAlreadyExists through the pair index.
func (r *PostgresPartnerRepository) CreateConnection(ctx context.Context, requesterID, partnerID string) (*models.PartnerConnection, error) {
	c, err := scanConnection(r.DB.QueryRowContext(ctx, `
		INSERT INTO partner_connections (id, requester_id, partner_id, status) VALUES ($1, $2, $3, $4)
		RETURNING `+connectionColumns,
		uuid.NewString(), requesterID, partnerID, models.StatusPending))
	if err != nil {
		return nil, mapError("create connection", err)
	}
	return c, nil
}

// GetConnectionForUser returns the oldest connection userID takes part in.
func (r *PostgresPartnerRepository) GetConnectionForUser(ctx context.Context, userID string) (*models.PartnerConnection, error) {
	c, err := scanConnection(r.DB.QueryRowContext(ctx, `
		SELECT `+connectionColumns+` FROM partner_connections
		WHERE requester_id = $1 OR partner_id = $1
		ORDER BY created_at ASC LIMIT 1
	`, userID))
	if err != nil {
		return nil, mapError("get connection", err)
	}
	return c, nil
}

// GetConnectionBetween returns the connection for the unordered pair a, b.
func (r *PostgresPartnerRepository) GetConnectionBetween(ctx context.Context, a, b string) (*models.PartnerConnection, error) {
	c, err := scanConnection(r.DB.QueryRowContext(ctx, `
		SELECT `+connectionColumns+` FROM partner_connections
		WHERE (requester_id = $1 AND partner_id = $2) OR (requester_id = $2 AND partner_id = $1)
	`, a, b))
	if err != nil {
		return nil, mapError("get connection between", err)
	}
	return c, nil
}

// SetConnectionStatus moves connection id from one status to another. It
// returns common.ErrNotFound when the row is missing or not in from.
func (r *PostgresPartnerRepository) SetConnectionStatus(ctx context.Context, id string, from, to models.ConnectionStatus) (*models.PartnerConnection, error) {
	c, err := scanConnection(r.DB.QueryRowContext(ctx, `
		UPDATE partner_connections SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING `+connectionColumns,
		id, from, to))
	if err != nil {
		return nil, mapError("set connection status", err)
	}
	return c, nil
}

// CreateLoveNote stores a note and returns the stored row.
func (r *PostgresPartnerRepository) CreateLoveNote(ctx context.Context, n models.LoveNote) (*models.LoveNote, error) {
	n.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO love_notes (id, sender_id, receiver_id, content) VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, n.ID, n.SenderID, n.ReceiverID, n.Content).Scan(&n.CreatedAt)
	if err != nil {
		return nil, mapError("create love note", err)
	}
	return &n, nil
}
