package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
)

// PartnerRepository persists partner connections and love notes.
type PartnerRepository interface {
	CreateConnection(ctx context.Context, requesterID, partnerID string) (*models.PartnerConnection, error)
	GetConnectionForUser(ctx context.Context, userID string) (*models.PartnerConnection, error)
	GetConnectionBetween(ctx context.Context, a, b string) (*models.PartnerConnection, error)
	SetConnectionStatus(ctx context.Context, id string, from, to models.ConnectionStatus) (*models.PartnerConnection, error)
	CreateLoveNote(ctx context.Context, n models.LoveNote) (*models.LoveNote, error)
}

// UserDirectory resolves identities for the partner flow.
type UserDirectory interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PartnerService drives the absent -> pending -> accepted connection and
// the love notes it unlocks.
type PartnerService struct {
	repo  PartnerRepository
	users UserDirectory
}

// NewPartnerService constructs a PartnerService.
func NewPartnerService(repo PartnerRepository, users UserDirectory) *PartnerService {
	return &PartnerService{repo: repo, users: users}
}

// Get returns the caller's connection with the other party's public profile,
// or nil when the caller has none.
func (s *PartnerService) Get(ctx context.Context, userID string) (*models.PartnerLink, error) {
	c, err := s.repo.GetConnectionForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.link(ctx, userID, c)
}

func (s *PartnerService) link(ctx context.Context, userID string, c *models.PartnerConnection) (*models.PartnerLink, error) {
	other, err := s.users.GetUserByID(ctx, c.Other(userID))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &models.PartnerLink{Connection: *c}, nil
		}
		return nil, err
	}
	public := other.Identity()
	public.Email = ""
	return &models.PartnerLink{Connection: *c, Partner: &public}, nil
}

// Connect invites the identity registered under email. The email is
// resolved here so clients never enumerate users.
func (s *PartnerService) Connect(ctx context.Context, userID, email string) (*models.PartnerLink, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("partner email is required")
	}
	other, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("partner lookup: %w", err)
	}
	if other.ID == userID {
		return nil, invalid("cannot connect with yourself")
	}

	_, err = s.repo.GetConnectionBetween(ctx, userID, other.ID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("partner connection: %w", common.ErrAlreadyExists)
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	c, err := s.repo.CreateConnection(ctx, userID, other.ID)
	if err != nil {
		return nil, err
	}
	return s.link(ctx, userID, c)
}

// Accept moves the caller's pending invitation to accepted. Only the invited
// party may accept.
func (s *PartnerService) Accept(ctx context.Context, userID string) (*models.PartnerLink, error) {
	c, err := s.repo.GetConnectionForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.PartnerID != userID {
		return nil, fmt.Errorf("%w: only the invited partner can accept", common.ErrForbidden)
	}
	if c.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: connection is %s", common.ErrInvalidState, c.Status)
	}

	updated, err := s.repo.SetConnectionStatus(ctx, c.ID, models.StatusPending, models.StatusAccepted)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: connection changed concurrently", common.ErrInvalidState)
		}
		return nil, err
	}
	return s.link(ctx, userID, updated)
}

// SendLoveNote delivers content to the other party of an accepted connection.
func (s *PartnerService) SendLoveNote(ctx context.Context, userID, content string) (*models.LoveNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("note content is required")
	}
	c, err := s.repo.GetConnectionForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: no partner connection", common.ErrInvalidState)
		}
		return nil, err
	}
	if c.Status != models.StatusAccepted {
		return nil, fmt.Errorf("%w: partner has not accepted yet", common.ErrInvalidState)
	}
	return s.repo.CreateLoveNote(ctx, models.LoveNote{
		SenderID:   userID,
		ReceiverID: c.Other(userID),
		Content:    content,
	})
}
