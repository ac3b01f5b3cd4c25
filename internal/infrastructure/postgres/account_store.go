package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fedeegmz/go-users-api/internal/domain/entity"
	"github.com/fedeegmz/go-users-api/internal/domain/repository"
)

const uniqueViolation = "23505"

type AccountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	a := &entity.Account{}

	row := s.pool.QueryRow(ctx, `
		SELECT id, username, name, lastname, email, birth_date, password_hash, disabled, created_at
		FROM accounts
		WHERE username = $1
	`, username)

	if err := row.Scan(&a.ID, &a.Username, &a.Name, &a.Lastname, &a.Email,
		&a.BirthDate, &a.Password, &a.Disabled, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return a, nil
}

func (s *AccountStore) Insert(ctx context.Context, a *entity.Account) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, name, lastname, email, birth_date, password_hash, disabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, a.Username, a.Name, a.Lastname, a.Email, a.BirthDate, a.Password, a.Disabled)

	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

func (s *AccountStore) List(ctx context.Context, limit int) ([]*entity.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, name, lastname, email, birth_date, password_hash, disabled, created_at
		FROM accounts
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Account
	for rows.Next() {
		a := &entity.Account{}
		if err := rows.Scan(&a.ID, &a.Username, &a.Name, &a.Lastname, &a.Email,
			&a.BirthDate, &a.Password, &a.Disabled, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *AccountStore) Usernames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT username FROM accounts ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *AccountStore) Update(ctx context.Context, username string, upd repository.AccountUpdate) (*entity.Account, error) {
	a := &entity.Account{}

	row := s.pool.QueryRow(ctx, `
		UPDATE accounts
		SET name       = COALESCE($1, name),
		    lastname   = COALESCE($2, lastname),
		    email      = COALESCE($3, email),
		    birth_date = COALESCE($4, birth_date)
		WHERE username = $5
		RETURNING id, username, name, lastname, email, birth_date, password_hash, disabled, created_at
	`, upd.Name, upd.Lastname, upd.Email, upd.BirthDate, username)

	if err := row.Scan(&a.ID, &a.Username, &a.Name, &a.Lastname, &a.Email,
		&a.BirthDate, &a.Password, &a.Disabled, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return a, nil
}

func (s *AccountStore) Disable(ctx context.Context, username string) (*entity.Account, error) {
	a := &entity.Account{}

	row := s.pool.QueryRow(ctx, `
		UPDATE accounts
		SET disabled = TRUE
		WHERE username = $1
		RETURNING id, username, name, lastname, email, birth_date, password_hash, disabled, created_at
	`, username)

	if err := row.Scan(&a.ID, &a.Username, &a.Name, &a.Lastname, &a.Email,
		&a.BirthDate, &a.Password, &a.Disabled, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return a, nil
}

var _ repository.AccountStore = (*AccountStore)(nil)
