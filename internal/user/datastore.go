package user

import (
	"context"
	"database/sql"
)

// DBTX is the interface for database operations.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Datastore handles database operations for users.
type Datastore struct {
	db DBTX
}

// NewDatastore creates a new user datastore.
func NewDatastore(db DBTX) *Datastore {
	return &Datastore{db: db}
}

const userColumns = `user_id, user_name, email, created_at`

// FindByEmail returns every user with the given email, oldest first.
func (ds *Datastore) FindByEmail(ctx context.Context, email string) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 ORDER BY user_id`
	return ds.list(ctx, query, email)
}

// FindByUserName returns every user with the given user name, oldest first.
func (ds *Datastore) FindByUserName(ctx context.Context, userName string) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_name = $1 ORDER BY user_id`
	return ds.list(ctx, query, userName)
}

// GetByID retrieves a user by ID.
func (ds *Datastore) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(ds.db.QueryRowContext(ctx, query, id))
}

func (ds *Datastore) list(ctx context.Context, query string, arg any) ([]*User, error) {
	rows, err := ds.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	u := &User{}
	var email sql.NullString
	if err := s.Scan(&u.ID, &u.UserName, &email, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Email = email.String
	return u, nil
}
