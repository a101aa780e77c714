package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"policymatcher/internal/database"
	"policymatcher/internal/errs"
	"policymatcher/internal/models"
)

type UserRepository struct {
	pool database.Pool
}

func NewUserRepository(pool database.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user and returns its id. A taken email is ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, user models.User) (int64, error) {
	const query = `
		INSERT INTO users (email, password_hash, nickname, is_admin, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		user.Email,
		string(user.PasswordHash),
		user.Nickname,
		user.IsAdmin,
	).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, errs.ErrAlreadyExists
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT id, email, password_hash, nickname, is_admin, created_at
		FROM users WHERE email = $1
	`
	return r.scanOne(ctx, query, email)
}

func (r *UserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET is_admin = $2 WHERE id = $1`, id, isAdmin)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(id) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) scanOne(ctx context.Context, query string, arg any) (models.User, error) {
	var (
		user models.User
		hash string
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&hash,
		&user.Nickname,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, errs.ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	user.PasswordHash = []byte(hash)
	return user, nil
}
