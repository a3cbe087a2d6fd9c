package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/moviehub/catalog-client/internal/core/domain"
	"github.com/moviehub/catalog-client/internal/core/ports"
	"github.com/moviehub/catalog-client/internal/metrics"
)

// SessionStore holds the current credential and the identity derived from it.
// It is the only cross-component shared mutable state: single-writer through
// Login/Logout, multi-reader through CurrentIdentity/Token. State changes are
// pushed synchronously to subscribers so no consumer has to poll.
type SessionStore struct {
	mu       sync.RWMutex
	repo     ports.SessionRepository
	decoder  ports.IdentityDecoder
	log      zerolog.Logger
	token    string
	identity *domain.Identity
	subs     []func(*domain.Identity)
}

func NewSessionStore(repo ports.SessionRepository, decoder ports.IdentityDecoder, log zerolog.Logger) *SessionStore {
	return &SessionStore{repo: repo, decoder: decoder, log: log}
}

// Login decodes the credential and replaces the held credential and identity
// atomically, persisting both for reload survival. The credential always
// originates from a successful authentication response, so a decode failure
// here signals a defect upstream rather than a recoverable condition.
func (s *SessionStore) Login(ctx context.Context, credential string) (*domain.Identity, error) {
	identity, err := s.decoder.Decode(credential)
	if err != nil {
		return nil, fmt.Errorf("login: decode credential: %w", err)
	}

	s.mu.Lock()
	s.token = credential
	s.identity = identity
	s.mu.Unlock()

	if err := s.repo.Save(ctx, credential, identity); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session")
	}

	s.notify(identity)
	metrics.SessionEventsTotal.WithLabelValues("login").Inc()
	s.log.Info().Int("user_id", identity.ID).Str("role", identity.Role).Msg("session started")

	return cloneIdentity(identity), nil
}

// Logout clears the credential, the identity, and the persisted copy
// unconditionally.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.identity = nil
	s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted session")
	}

	s.notify(nil)
	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()
	s.log.Info().Msg("session ended")
}

// Restore loads a previously persisted session, if any. Missing persisted
// state is not an error.
func (s *SessionStore) Restore(ctx context.Context) error {
	token, identity, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if token == "" {
		return nil
	}
	if identity == nil {
		identity, err = s.decoder.Decode(token)
		if err != nil {
			return fmt.Errorf("restore session: decode credential: %w", err)
		}
	}

	s.mu.Lock()
	s.token = token
	s.identity = identity
	s.mu.Unlock()

	s.notify(identity)
	metrics.SessionEventsTotal.WithLabelValues("restore").Inc()
	s.log.Info().Int("user_id", identity.ID).Msg("session restored")

	return nil
}

// CurrentIdentity returns the identity derived from the held credential, or
// nil when no credential is held. The returned value is a copy.
func (s *SessionStore) CurrentIdentity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneIdentity(s.identity)
}

// Token returns the held credential, or the empty string.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers fn to be called synchronously on every login, logout,
// and restore, with the new identity (nil on logout).
func (s *SessionStore) Subscribe(fn func(*domain.Identity)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *SessionStore) notify(identity *domain.Identity) {
	s.mu.RLock()
	subs := make([]func(*domain.Identity), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(cloneIdentity(identity))
	}
}

func cloneIdentity(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	clone := *id
	return &clone
}
