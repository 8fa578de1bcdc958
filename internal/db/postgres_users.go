package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wuwenbin0122/applytrackr/internal/models"
)

type PostgresUsers struct {
	pool *pgxpool.Pool
}

func NewPostgresUsers(store *Postgres) *PostgresUsers {
	return &PostgresUsers{pool: store.Pool}
}

const userColumns = "id, name, email, password, created_at, updated_at"

func (r *PostgresUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.queryOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", models.NormalizeEmail(email))
}

func (r *PostgresUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.queryOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *PostgresUsers) Create(ctx context.Context, user *models.User) error {
	prepareUser(user, time.Now().UTC())

	const query = `INSERT INTO users (id, name, email, password, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("postgres insert user: %w", err)
	}
	return nil
}

func (r *PostgresUsers) queryOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres query user: %w", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
