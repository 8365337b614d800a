package managers

import (
	"context"
	"sync"

	"github.com/leadflow/leadflow/pkg/domain"
)

// fakeConnectionStore is an in-memory ConnectionStore honoring the same
// one-active-row-per-pair invariant as the postgres store.
type fakeConnectionStore struct {
	mu   sync.Mutex
	rows []domain.OAuthConnection

	putCalls int
	getErr   error
	putErr   error
}

func newFakeConnectionStore(conns ...domain.OAuthConnection) *fakeConnectionStore {
	store := &fakeConnectionStore{}
	for _, conn := range conns {
		conn.IsActive = true
		store.rows = append(store.rows, conn)
	}
	return store
}

func (s *fakeConnectionStore) GetConnection(ctx context.Context, userID string, provider domain.Provider) (domain.OAuthConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return domain.OAuthConnection{}, s.getErr
	}

	for _, row := range s.rows {
		if row.IsActive && row.UserID == userID && row.Provider == provider {
			return row, nil
		}
	}

	return domain.OAuthConnection{}, domain.ErrNotConnected
}

func (s *fakeConnectionStore) GetConnections(ctx context.Context, userID string) ([]domain.OAuthConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}

	var connections []domain.OAuthConnection
	for _, row := range s.rows {
		if row.IsActive && row.UserID == userID {
			connections = append(connections, row)
		}
	}

	return connections, nil
}

func (s *fakeConnectionStore) PutConnection(ctx context.Context, conn domain.OAuthConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putCalls++

	if s.putErr != nil {
		return s.putErr
	}

	for i := range s.rows {
		if s.rows[i].UserID == conn.UserID && s.rows[i].Provider == conn.Provider {
			s.rows[i].IsActive = false
		}
	}

	conn.IsActive = true
	s.rows = append(s.rows, conn)

	return nil
}

func (s *fakeConnectionStore) DeactivateConnection(ctx context.Context, userID string, provider domain.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		if s.rows[i].UserID == userID && s.rows[i].Provider == provider {
			s.rows[i].IsActive = false
		}
	}

	return nil
}

func (s *fakeConnectionStore) activeRows(userID string, provider domain.Provider) []domain.OAuthConnection {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []domain.OAuthConnection
	for _, row := range s.rows {
		if row.IsActive && row.UserID == userID && row.Provider == provider {
			active = append(active, row)
		}
	}

	return active
}
