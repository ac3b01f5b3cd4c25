package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fedeegmz/go-users-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no account matches the given username.
	ErrNotFound = errors.New("account not found")
	// ErrConflict is returned when an insert violates username uniqueness.
	ErrConflict = errors.New("username already exists")
)

// AccountUpdate lists the mutable profile fields. Nil fields are left
// unchanged; username, password, and disabled are updated through
// dedicated operations only.
type AccountUpdate struct {
	Name      *string
	Lastname  *string
	Email     *string
	BirthDate *time.Time
}

// AccountStore defines the persistence operations for accounts.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)
	Insert(ctx context.Context, a *entity.Account) error
	List(ctx context.Context, limit int) ([]*entity.Account, error)
	Usernames(ctx context.Context) ([]string, error)
	Update(ctx context.Context, username string, upd AccountUpdate) (*entity.Account, error)
	Disable(ctx context.Context, username string) (*entity.Account, error)
}
