package managers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

// sessionManager keeps planner sessions in memory for the lifetime of the
// process. Sessions are created lazily and never destroyed.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string][]domain.Session
}

func NewSessionManager() domain.SessionService {
	return &sessionManager{
		sessions: map[string][]domain.Session{},
	}
}

func (m *sessionManager) GetOrCreateSession(ctx context.Context, userID string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.sessions[userID]; len(existing) > 0 {
		return existing[len(existing)-1], nil
	}

	session := domain.Session{
		ID:        xid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	m.sessions[userID] = append(m.sessions[userID], session)

	log.Info().
		Str("user_id", userID).
		Str("session_id", session.ID).
		Msg("Created planner session")

	return session, nil
}

func (m *sessionManager) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]domain.Session, len(m.sessions[userID]))
	copy(sessions, m.sessions[userID])

	return sessions, nil
}
