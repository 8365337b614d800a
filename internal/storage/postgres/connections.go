package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leadflow/leadflow/pkg/domain"
)

// ConnectionStore persists OAuth connections in the oauth_connections table.
// It is a strict persistence boundary: storage failures surface as
// domain.ErrStorage and are never collapsed into "not connected".
type ConnectionStore struct {
	pool *pgxpool.Pool
}

var _ domain.ConnectionStore = (*ConnectionStore)(nil)

func NewConnectionStore(pool *pgxpool.Pool) *ConnectionStore {
	return &ConnectionStore{pool: pool}
}

const connectionColumns = `user_id, provider, provider_email, access_token, refresh_token, token_expires_at, is_active, created_at, updated_at`

func (s *ConnectionStore) GetConnection(ctx context.Context, userID string, provider domain.Provider) (domain.OAuthConnection, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+connectionColumns+`
		 FROM oauth_connections
		 WHERE user_id = $1 AND provider = $2 AND is_active = TRUE`,
		userID, string(provider))

	conn, err := scanConnection(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OAuthConnection{}, domain.ErrNotConnected
	}
	if err != nil {
		return domain.OAuthConnection{}, fmt.Errorf("%w: querying connection for user %s provider %s: %v", domain.ErrStorage, userID, provider, err)
	}

	return conn, nil
}

func (s *ConnectionStore) GetConnections(ctx context.Context, userID string) ([]domain.OAuthConnection, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+connectionColumns+`
		 FROM oauth_connections
		 WHERE user_id = $1 AND is_active = TRUE
		 ORDER BY provider`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying connections for user %s: %v", domain.ErrStorage, userID, err)
	}
	defer rows.Close()

	var connections []domain.OAuthConnection

	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning connection row: %v", domain.ErrStorage, err)
		}

		connections = append(connections, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading connection rows: %v", domain.ErrStorage, err)
	}

	return connections, nil
}

// PutConnection deactivates any prior active row for the (user, provider) pair
// and inserts the new row as the single active one, in one transaction. Readers
// see either the old or the new record, never a half-written one.
func (s *ConnectionStore) PutConnection(ctx context.Context, conn domain.OAuthConnection) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	_, err = tx.Exec(ctx,
		`UPDATE oauth_connections
		 SET is_active = FALSE, updated_at = $3
		 WHERE user_id = $1 AND provider = $2 AND is_active = TRUE`,
		conn.UserID, string(conn.Provider), now)
	if err != nil {
		return fmt.Errorf("%w: deactivating prior connection: %v", domain.ErrStorage, err)
	}

	createdAt := conn.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO oauth_connections (`+connectionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)`,
		conn.UserID, string(conn.Provider), conn.ProviderEmail,
		conn.AccessToken, conn.RefreshToken, conn.TokenExpiresAt.UTC(),
		createdAt, now)
	if err != nil {
		return fmt.Errorf("%w: inserting connection: %v", domain.ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing connection: %v", domain.ErrStorage, err)
	}

	return nil
}

func (s *ConnectionStore) DeactivateConnection(ctx context.Context, userID string, provider domain.Provider) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE oauth_connections
		 SET is_active = FALSE, updated_at = $3
		 WHERE user_id = $1 AND provider = $2 AND is_active = TRUE`,
		userID, string(provider), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: deactivating connection for user %s provider %s: %v", domain.ErrStorage, userID, provider, err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrNotConnected
	}

	return nil
}

func scanConnection(row pgx.Row) (domain.OAuthConnection, error) {
	var conn domain.OAuthConnection
	var provider string

	err := row.Scan(
		&conn.UserID, &provider, &conn.ProviderEmail,
		&conn.AccessToken, &conn.RefreshToken, &conn.TokenExpiresAt,
		&conn.IsActive, &conn.CreatedAt, &conn.UpdatedAt,
	)
	if err != nil {
		return domain.OAuthConnection{}, err
	}

	conn.Provider = domain.Provider(provider)

	return conn, nil
}
