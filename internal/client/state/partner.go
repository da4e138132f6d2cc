package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
	"go.uber.org/zap"
)

// PartnerAPI is the partner part of the API client.
type PartnerAPI interface {
	GetPartner(ctx context.Context) (*models.PartnerLink, error)
	ConnectPartner(ctx context.Context, email string) (*models.PartnerLink, error)
	AcceptPartner(ctx context.Context) (*models.PartnerLink, error)
	SendLoveNote(ctx context.Context, content string) (*models.LoveNote, error)
}

// Partner holds at most one partner link for the signed-in identity.
type Partner struct {
	api PartnerAPI
	log *zap.Logger

	mu    sync.Mutex
	gen   uint64
	owner string
	link  *models.PartnerLink
}

func NewPartner(api PartnerAPI, log *zap.Logger) *Partner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Partner{api: api, log: log.With(zap.String("holder", "partner"))}
}

// Link returns a copy of the current link, or nil when there is none.
func (p *Partner) Link() *models.PartnerLink {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyLink(p.link)
}

// Reload fetches the link for identity; nil clears it. Errors are logged.
func (p *Partner) Reload(ctx context.Context, identity *models.Identity) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	if identity == nil {
		p.owner = ""
		p.link = nil
		p.mu.Unlock()
		return
	}
	if p.owner != identity.ID {
		p.owner = identity.ID
		p.link = nil
	}
	p.mu.Unlock()

	link, err := p.api.GetPartner(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.log.Debug("discarding stale load", zap.String("user_id", identity.ID))
		return
	}
	if err != nil {
		p.log.Error("load failed", zap.String("user_id", identity.ID), zap.Error(err))
		return
	}
	p.link = link
}

// Connect invites the identity registered under email.
func (p *Partner) Connect(ctx context.Context, email string) (*models.PartnerLink, error) {
	return p.apply(func() (*models.PartnerLink, error) { return p.api.ConnectPartner(ctx, email) })
}

// Accept accepts the pending invitation addressed to the caller.
func (p *Partner) Accept(ctx context.Context) (*models.PartnerLink, error) {
	return p.apply(func() (*models.PartnerLink, error) { return p.api.AcceptPartner(ctx) })
}

// SendLoveNote sends content to the partner. It needs an accepted link.
func (p *Partner) SendLoveNote(ctx context.Context, content string) (*models.LoveNote, error) {
	p.mu.Lock()
	owner, link := p.owner, p.link
	p.mu.Unlock()
	if owner == "" {
		return nil, common.ErrUnauthorized
	}
	if link == nil || link.Connection.Status != models.StatusAccepted {
		return nil, fmt.Errorf("%w: no accepted partner", common.ErrInvalidState)
	}

	note, err := p.api.SendLoveNote(ctx, content)
	if err != nil {
		p.log.Error("send love note failed", zap.Error(err))
		return nil, err
	}
	return note, nil
}

func (p *Partner) apply(call func() (*models.PartnerLink, error)) (*models.PartnerLink, error) {
	p.mu.Lock()
	gen, owner := p.gen, p.owner
	p.mu.Unlock()
	if owner == "" {
		return nil, common.ErrUnauthorized
	}

	link, err := call()
	if err != nil {
		p.log.Error("partner request failed", zap.Error(err))
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen == p.gen {
		p.link = copyLink(link)
	}
	return link, nil
}

func copyLink(l *models.PartnerLink) *models.PartnerLink {
	if l == nil {
		return nil
	}
	cp := *l
	if l.Partner != nil {
		partner := *l.Partner
		cp.Partner = &partner
	}
	return &cp
}
