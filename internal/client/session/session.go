// Package session is the client's identity provider. It holds the current
// identity, logs in and out through the API and keeps the token in a local
// file so a restart picks the session back up.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atinyakov/TwoHearts/internal/client/api"
	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
	"go.uber.org/zap"
)

// Backend is the part of the API client the session needs.
type Backend interface {
	Register(ctx context.Context, email, password, name string) (*models.Identity, error)
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.Identity, error)
	SetToken(token string)
}

// Listener is called with the new identity, or nil after sign-out.
type Listener = func(id *models.Identity)

// Session tracks who is signed in.
type Session struct {
	backend Backend
	path    string
	log     *zap.Logger

	mu        sync.RWMutex
	identity  *models.Identity
	listeners []Listener
}

// New returns a signed-out Session persisting to path.
func New(backend Backend, path string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{backend: backend, path: path, log: log}
}

// CurrentIdentity returns a copy of the signed-in identity, or nil.
func (s *Session) CurrentIdentity() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// OnChange registers fn for identity changes. Listeners run synchronously
// on the goroutine that changed the identity.
func (s *Session) OnChange(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Register creates an account. It does not sign in.
func (s *Session) Register(ctx context.Context, email, password, name string) (*models.Identity, error) {
	return s.backend.Register(ctx, email, password, name)
}

// LogIn signs in and persists the session.
func (s *Session) LogIn(ctx context.Context, email, password string) error {
	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.backend.SetToken(res.Token)
	if err := save(s.path, &stored{Token: res.Token, Identity: res.Identity}); err != nil {
		s.log.Warn("failed to persist session", zap.String("path", s.path), zap.Error(err))
	}
	s.set(&res.Identity)
	return nil
}

// LogOut revokes the session on the server and forgets it locally. The
// local state is cleared even when the server call fails.
func (s *Session) LogOut(ctx context.Context) error {
	if s.CurrentIdentity() == nil {
		return nil
	}
	err := s.backend.Logout(ctx)
	if err != nil {
		s.log.Warn("server logout failed", zap.Error(err))
	}
	s.backend.SetToken("")
	if rmErr := remove(s.path); rmErr != nil {
		s.log.Warn("failed to remove session file", zap.String("path", s.path), zap.Error(rmErr))
	}
	s.set(nil)
	return err
}

// Restore loads a saved session and checks it against the server. A
// rejected token deletes the file; other failures leave it for next time.
func (s *Session) Restore(ctx context.Context) error {
	st, err := load(s.path)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if st == nil {
		return nil
	}

	s.backend.SetToken(st.Token)
	id, err := s.backend.Me(ctx)
	if err != nil {
		s.backend.SetToken("")
		if errors.Is(err, common.ErrUnauthorized) {
			s.log.Info("saved session expired")
			return remove(s.path)
		}
		return fmt.Errorf("verify session: %w", err)
	}
	s.set(id)
	return nil
}

// UpdateIdentity replaces the cached profile after a profile edit without
// treating it as a sign-in.
func (s *Session) UpdateIdentity(id models.Identity) {
	s.mu.Lock()
	if s.identity == nil || s.identity.ID != id.ID {
		s.mu.Unlock()
		return
	}
	s.identity = &id
	s.mu.Unlock()
}

func (s *Session) set(id *models.Identity) {
	s.mu.Lock()
	s.identity = id
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		if id == nil {
			fn(nil)
			continue
		}
		cp := *id
		fn(&cp)
	}
}
