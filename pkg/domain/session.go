package domain

import (
	"context"
	"time"
)

// Session binds a user to a planner conversation so the planning model keeps
// context across requests. Sessions live for the lifetime of the backing store.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

type SessionService interface {
	// GetOrCreateSession returns the user's most recently created session,
	// creating one if none exists.
	GetOrCreateSession(ctx context.Context, userID string) (Session, error)
	// ListSessions returns the user's sessions ordered oldest first.
	ListSessions(ctx context.Context, userID string) ([]Session, error)
}
