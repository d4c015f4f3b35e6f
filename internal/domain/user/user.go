// Package user models the identity collaborator. Every write in the system
// must be attributable to an actor, so managers validate the acting user
// before touching the graphs.
package user

import (
	"context"
	"errors"
	"time"
)

// ErrUnauthorized indicates no attributable actor could be resolved for the
// operation.
var ErrUnauthorized = errors.New("no actor resolvable for operation")

// User is a minimal identity record.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository provides persistence for users.
type Repository interface {
	Get(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
}
