package managers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/leadflow/leadflow/pkg/domain"
)

// OAuthClientAuthStyle selects how the client credential pair is sent on the
// refresh grant. Google-style endpoints take it as form fields, Airtable-style
// endpoints take it as HTTP Basic auth.
type OAuthClientAuthStyle string

var (
	OAuthClientAuthStyle_FormParams OAuthClientAuthStyle = "form_params"
	OAuthClientAuthStyle_BasicAuth  OAuthClientAuthStyle = "basic_auth"
)

// OAuthProviderConfig describes one provider's two-legged refresh-token grant.
type OAuthProviderConfig struct {
	TokenEndpoint string
	ClientID      string
	ClientSecret  string
	AuthStyle     OAuthClientAuthStyle
}

const defaultTokenLifetimeSeconds = 3600

type tokenRefreshManager struct {
	store      domain.ConnectionStore
	providers  map[domain.Provider]OAuthProviderConfig
	httpClient *http.Client
	timeout    time.Duration

	group singleflight.Group
}

type TokenRefreshManagerDependencies struct {
	ConnectionStore domain.ConnectionStore
	Providers       map[domain.Provider]OAuthProviderConfig
	HTTPClient      *http.Client
	RefreshTimeout  time.Duration
}

func NewTokenRefreshManager(deps TokenRefreshManagerDependencies) domain.TokenRefresher {
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	timeout := deps.RefreshTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &tokenRefreshManager{
		store:      deps.ConnectionStore,
		providers:  deps.Providers,
		httpClient: httpClient,
		timeout:    timeout,
	}
}

// RefreshConnection performs the provider refresh grant and persists the result.
// Calls for the same (user, provider) pair are coalesced into one provider round
// trip; concurrent callers receive the first caller's outcome. The stored token
// pair is only mutated on success.
func (m *tokenRefreshManager) RefreshConnection(ctx context.Context, conn domain.OAuthConnection) (domain.OAuthConnection, error) {
	key := conn.UserID + "/" + string(conn.Provider)

	result, err, shared := m.group.Do(key, func() (any, error) {
		return m.refresh(ctx, conn)
	})
	if err != nil {
		return domain.OAuthConnection{}, err
	}

	if shared {
		log.Debug().
			Str("user_id", conn.UserID).
			Str("provider", string(conn.Provider)).
			Msg("Joined in-flight token refresh")
	}

	return result.(domain.OAuthConnection), nil
}

func (m *tokenRefreshManager) refresh(ctx context.Context, conn domain.OAuthConnection) (domain.OAuthConnection, error) {
	// A caller may have observed the expired token just before a previous flight
	// for this key persisted a fresh one. Re-reading inside the flight keeps the
	// check-refresh-persist sequence atomic per key and avoids burning a refresh
	// token a second time.
	stored, err := m.store.GetConnection(ctx, conn.UserID, conn.Provider)
	if err != nil {
		return domain.OAuthConnection{}, err
	}

	if !stored.ExpiredAt(time.Now().UTC().Add(expirySkew)) {
		return stored, nil
	}

	providerConfig, ok := m.providers[stored.Provider]
	if !ok {
		return domain.OAuthConnection{}, fmt.Errorf("%w: no refresh configuration for provider %s", domain.ErrRefreshFailed, stored.Provider)
	}

	log.Info().
		Str("user_id", stored.UserID).
		Str("provider", string(stored.Provider)).
		Msg("Access token expired, refreshing")

	refreshResult, err := m.requestRefresh(ctx, providerConfig, stored.RefreshToken)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", stored.UserID).
			Str("provider", string(stored.Provider)).
			Msg("Token refresh failed")

		return domain.OAuthConnection{}, err
	}

	updated := stored
	updated.AccessToken = refreshResult.AccessToken
	if refreshResult.RefreshToken != "" {
		updated.RefreshToken = refreshResult.RefreshToken
	}
	updated.TokenExpiresAt = time.Now().UTC().Add(time.Duration(refreshResult.ExpiresIn) * time.Second)

	if err := m.store.PutConnection(ctx, updated); err != nil {
		return domain.OAuthConnection{}, err
	}

	return updated, nil
}

func (m *tokenRefreshManager) requestRefresh(ctx context.Context, providerConfig OAuthProviderConfig, refreshToken string) (domain.RefreshResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	if providerConfig.AuthStyle == OAuthClientAuthStyle_FormParams {
		form.Set("client_id", providerConfig.ClientID)
		form.Set("client_secret", providerConfig.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, providerConfig.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.RefreshResult{}, fmt.Errorf("%w: building refresh request: %v", domain.ErrRefreshFailed, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if providerConfig.AuthStyle == OAuthClientAuthStyle_BasicAuth {
		req.SetBasicAuth(providerConfig.ClientID, providerConfig.ClientSecret)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return domain.RefreshResult{}, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RefreshResult{}, fmt.Errorf("%w: reading refresh response: %v", domain.ErrRefreshFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.RefreshResult{}, fmt.Errorf("%w: token endpoint returned %d: %s", domain.ErrRefreshFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tokenResponse struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}

	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return domain.RefreshResult{}, fmt.Errorf("%w: decoding refresh response: %v", domain.ErrRefreshFailed, err)
	}

	if tokenResponse.AccessToken == "" {
		return domain.RefreshResult{}, fmt.Errorf("%w: token endpoint response missing access_token", domain.ErrRefreshFailed)
	}

	expiresIn := tokenResponse.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultTokenLifetimeSeconds
	}

	return domain.RefreshResult{
		AccessToken:  tokenResponse.AccessToken,
		RefreshToken: tokenResponse.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// GoogleOAuthProviderConfig returns the refresh configuration for Gmail connections.
func GoogleOAuthProviderConfig(clientID, clientSecret string) OAuthProviderConfig {
	return OAuthProviderConfig{
		TokenEndpoint: "https://oauth2.googleapis.com/token",
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		AuthStyle:     OAuthClientAuthStyle_FormParams,
	}
}

// AirtableOAuthProviderConfig returns the refresh configuration for Airtable connections.
func AirtableOAuthProviderConfig(clientID, clientSecret string) OAuthProviderConfig {
	return OAuthProviderConfig{
		TokenEndpoint: "https://airtable.com/oauth2/v1/token",
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		AuthStyle:     OAuthClientAuthStyle_BasicAuth,
	}
}
