package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/animelar/animelar-api/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) DB() *sql.DB {
	return r.db
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `
SELECT id, name, email, password_hash, balance, created_at
FROM users WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Balance, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
SELECT id, name, email, password_hash, balance, created_at
FROM users WHERE email = ?`
	row := r.db.QueryRowContext(ctx, query, email)
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Balance, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `
INSERT INTO users (id, name, email, password_hash, balance)
VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.Balance); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// LockBalance reads the user's balance inside tx, holding the row lock until
// commit. Returns sql.ErrNoRows unchanged when the user is unknown.
func (r *UserRepository) LockBalance(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	const query = `SELECT balance FROM users WHERE id = ? FOR UPDATE`
	var balance int64
	if err := tx.QueryRowContext(ctx, query, userID).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *UserRepository) AddBalance(ctx context.Context, tx *sql.Tx, userID string, delta int64) error {
	const query = `UPDATE users SET balance = balance + ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, delta, userID); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}
