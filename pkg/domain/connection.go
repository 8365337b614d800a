package domain

import (
	"context"
	"time"
)

type Provider string

var (
	ProviderGmail    Provider = "gmail"
	ProviderAirtable Provider = "airtable"
)

// OAuthProviders lists every provider whose credentials are stored as OAuth
// connections. API-key providers (Hunter, OpenAI) are configured per deployment
// and never enter the connection store.
var OAuthProviders = []Provider{ProviderGmail, ProviderAirtable}

// OAuthConnection is one stored token pair for a (user, provider) pair. At most
// one active connection exists per pair; inactive rows are kept for audit.
type OAuthConnection struct {
	UserID         string
	Provider       Provider
	ProviderEmail  string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExpiredAt reports whether the access token must be considered unusable at t.
func (c OAuthConnection) ExpiredAt(t time.Time) bool {
	return !t.Before(c.TokenExpiresAt)
}

// RefreshResult is the parsed outcome of a provider refresh call. It is never
// persisted on its own; it is folded into the stored connection.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type ConnectionStore interface {
	// GetConnection returns the active connection for the pair, or ErrNotConnected.
	GetConnection(ctx context.Context, userID string, provider Provider) (OAuthConnection, error)
	// GetConnections returns all active connections for the user.
	GetConnections(ctx context.Context, userID string) ([]OAuthConnection, error)
	// PutConnection upserts the connection, deactivating any prior active row
	// for the same (user, provider) pair in the same transaction.
	PutConnection(ctx context.Context, conn OAuthConnection) error
	// DeactivateConnection soft-deletes the active connection for the pair.
	DeactivateConnection(ctx context.Context, userID string, provider Provider) error
}

type TokenRefresher interface {
	// RefreshConnection exchanges the connection's refresh token for a new access
	// token and persists the updated connection. Concurrent calls for the same
	// (user, provider) pair share a single provider round trip.
	RefreshConnection(ctx context.Context, conn OAuthConnection) (OAuthConnection, error)
}

// ProviderCredential is what workflow steps receive per connected provider.
type ProviderCredential struct {
	AccessToken   string
	ProviderEmail string
}

// CredentialMap holds one valid credential per currently usable provider.
type CredentialMap map[Provider]ProviderCredential

func (m CredentialMap) Get(provider Provider) (ProviderCredential, bool) {
	cred, ok := m[provider]
	return cred, ok
}

type CredentialManager interface {
	// GetValidToken returns an access token whose stored expiry is in the future,
	// refreshing through the TokenRefresher when needed.
	GetValidToken(ctx context.Context, userID string, provider Provider) (string, error)
	// GetUserCredentials returns valid credentials for every provider the user has
	// connected, omitting providers whose token could not be made valid. An empty
	// map is not an error.
	GetUserCredentials(ctx context.Context, userID string) (CredentialMap, error)
}
