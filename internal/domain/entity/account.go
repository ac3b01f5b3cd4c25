package entity

import (
	"time"
)

// Account is the aggregate root for the accounts domain.
// Password holds a bcrypt hash; the plaintext never reaches this type.
type Account struct {
	ID        string
	Username  string
	Name      string
	Lastname  string
	Email     string
	BirthDate *time.Time
	Password  string
	Disabled  bool
	CreatedAt time.Time
}

// PublicAccount is the read-only projection returned to clients.
// It has no password field at all, so a hash cannot leak through
// serialization regardless of how the value is rendered.
type PublicAccount struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Lastname  string    `json:"lastname"`
	Email     string    `json:"email"`
	BirthDate string    `json:"birth_date,omitempty"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
}

// Public builds the client-facing projection of the account.
func (a *Account) Public() *PublicAccount {
	p := &PublicAccount{
		ID:        a.ID,
		Username:  a.Username,
		Name:      a.Name,
		Lastname:  a.Lastname,
		Email:     a.Email,
		Disabled:  a.Disabled,
		CreatedAt: a.CreatedAt,
	}
	if a.BirthDate != nil {
		p.BirthDate = a.BirthDate.Format("2006-01-02")
	}
	return p
}
