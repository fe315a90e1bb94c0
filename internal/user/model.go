package user

import "time"

// User is a row of the users table.
type User struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
