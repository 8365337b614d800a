package managers

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow/pkg/domain"
)

// expirySkew treats tokens as expired slightly before their stored expiry so a
// token cannot lapse between the expiry check and the provider call using it.
const expirySkew = 30 * time.Second

type credentialManager struct {
	store     domain.ConnectionStore
	refresher domain.TokenRefresher
}

type CredentialManagerDependencies struct {
	ConnectionStore domain.ConnectionStore
	TokenRefresher  domain.TokenRefresher
}

func NewCredentialManager(deps CredentialManagerDependencies) domain.CredentialManager {
	return &credentialManager{
		store:     deps.ConnectionStore,
		refresher: deps.TokenRefresher,
	}
}

// GetValidToken returns an access token that is valid at the moment of return.
// Expiry is a pure comparison against the stored timestamp, never a probe
// against the provider.
func (m *credentialManager) GetValidToken(ctx context.Context, userID string, provider domain.Provider) (string, error) {
	conn, err := m.store.GetConnection(ctx, userID, provider)
	if err != nil {
		return "", err
	}

	if conn.ExpiredAt(time.Now().UTC().Add(expirySkew)) {
		refreshed, err := m.refresher.RefreshConnection(ctx, conn)
		if err != nil {
			return "", err
		}

		return refreshed.AccessToken, nil
	}

	return conn.AccessToken, nil
}

// GetUserCredentials builds a credential per connected provider, omitting any
// provider whose token could not be made valid. An empty map is not an error;
// the dispatcher reads it as "user must connect accounts".
func (m *credentialManager) GetUserCredentials(ctx context.Context, userID string) (domain.CredentialMap, error) {
	connections, err := m.store.GetConnections(ctx, userID)
	if err != nil {
		return nil, err
	}

	credentials := domain.CredentialMap{}

	for _, conn := range connections {
		token, err := m.GetValidToken(ctx, userID, conn.Provider)
		if err != nil {
			if errors.Is(err, domain.ErrStorage) {
				return nil, err
			}

			log.Warn().Err(err).
				Str("user_id", userID).
				Str("provider", string(conn.Provider)).
				Msg("Skipping provider with unusable credential")

			continue
		}

		credentials[conn.Provider] = domain.ProviderCredential{
			AccessToken:   token,
			ProviderEmail: conn.ProviderEmail,
		}
	}

	return credentials, nil
}
