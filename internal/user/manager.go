package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"documite/internal/identity"
)

// Domain errors
var (
	ErrNotFound = errors.New("user not found")
)

// Manager handles business logic for users.
// It serves as the identity.Directory backing claim resolution.
type Manager struct {
	ds *Datastore
}

// NewManager creates a new user manager.
func NewManager(ds *Datastore) *Manager {
	return &Manager{ds: ds}
}

var _ identity.Directory = (*Manager)(nil)

// LookupByEmail implements identity.Directory.
func (m *Manager) LookupByEmail(ctx context.Context, email string) ([]identity.User, error) {
	users, err := m.ds.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by email: %w", err)
	}
	return toIdentities(users), nil
}

// LookupByUsername implements identity.Directory.
func (m *Manager) LookupByUsername(ctx context.Context, name string) ([]identity.User, error) {
	users, err := m.ds.FindByUserName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by name: %w", err)
	}
	return toIdentities(users), nil
}

// GetByID retrieves a user by ID.
func (m *Manager) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := m.ds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func toIdentities(users []*User) []identity.User {
	out := make([]identity.User, 0, len(users))
	for _, u := range users {
		out = append(out, identity.User{ID: u.ID, Name: u.UserName})
	}
	return out
}
