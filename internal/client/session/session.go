// Package session owns the authentication state of the storefront client.
//
// A Session is either Anonymous (no credential) or Authenticated. The
// credential is persisted before it becomes visible in memory, so a process
// that starts later restores the same state, and listeners waiting on
// Authenticated are released only after both steps succeeded.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

type Session struct {
	mu         sync.RWMutex
	credential string
	authed     chan struct{}

	store *CredentialStore
	log   logging.Logger
	now   func() time.Time
}

func New(store *CredentialStore, log logging.Logger) *Session {
	if log == nil {
		log = logging.Nop()
	}
	return &Session{
		authed: make(chan struct{}),
		store:  store,
		log:    log.With("component", "session"),
		now:    time.Now,
	}
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != ""
}

// Token returns the credential, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Authenticated returns a channel that is closed once the session is
// Authenticated. After a logout a fresh, open channel is handed out.
func (s *Session) Authenticated() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authed
}

// Restore adopts the persisted credential. Expired JWTs are discarded. It
// reports whether the session is authenticated afterwards.
func (s *Session) Restore(ctx context.Context) bool {
	token, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "could not read persisted credential", "err", err)
		return s.IsAuthenticated()
	}
	if token == "" {
		return s.IsAuthenticated()
	}
	if expired(token, s.now()) {
		s.log.Info(ctx, "discarding expired credential", "token", common.MaskToken(token))
		if err := s.store.Delete(ctx); err != nil {
			s.log.Warn(ctx, "could not delete expired credential", "err", err)
		}
		return s.IsAuthenticated()
	}

	s.adopt(ctx, token)
	return true
}

// Refresh picks up a credential persisted by another process while this one
// is anonymous.
func (s *Session) Refresh(ctx context.Context) bool {
	if s.IsAuthenticated() {
		return true
	}
	return s.Restore(ctx)
}

// Establish persists token and then marks the session Authenticated. When
// the credential is empty or cannot be persisted the session stays as it
// was and the error is returned.
func (s *Session) Establish(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrEmptyCredential
	}
	if err := s.store.Save(ctx, token); err != nil {
		s.log.Error(ctx, "could not persist credential", "err", err)
		return err
	}
	s.adopt(ctx, token)
	return nil
}

func (s *Session) adopt(ctx context.Context, token string) {
	s.mu.Lock()
	s.credential = token
	select {
	case <-s.authed:
	default:
		close(s.authed)
	}
	s.mu.Unlock()

	s.log.Info(ctx, "session authenticated", "token", common.MaskToken(token))
}

// Logout forgets the credential in memory and on the device. Guest storage
// is left alone.
func (s *Session) Logout(ctx context.Context) error {
	s.clear()
	if err := s.store.Delete(ctx); err != nil {
		s.log.Warn(ctx, "could not delete persisted credential", "err", err)
		return err
	}
	s.log.Info(ctx, "session logged out")
	return nil
}

// Demote drops a credential the backend rejected.
func (s *Session) Demote(ctx context.Context) {
	if !s.IsAuthenticated() {
		return
	}
	s.clear()
	if err := s.store.Delete(ctx); err != nil {
		s.log.Warn(ctx, "could not delete rejected credential", "err", err)
	}
	s.log.Warn(ctx, "credential rejected by backend, session is anonymous again")
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	select {
	case <-s.authed:
		s.authed = make(chan struct{})
	default:
	}
}
