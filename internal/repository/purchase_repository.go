package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/animelar/animelar-api/internal/models"
)

type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// ExistsInTx checks for a purchase row for the pair inside tx. The caller
// holds the user row lock, so the check-then-insert sequence cannot race
// with another purchase attempt by the same user.
func (r *PurchaseRepository) ExistsInTx(ctx context.Context, tx *sql.Tx, userID, animeID string) (bool, error) {
	const query = `SELECT 1 FROM purchases WHERE user_id = ? AND anime_id = ?`
	var dummy int
	if err := tx.QueryRowContext(ctx, query, userID, animeID).Scan(&dummy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return true, nil
}

func (r *PurchaseRepository) Create(ctx context.Context, tx *sql.Tx, purchase *models.Purchase) error {
	const query = `
INSERT INTO purchases (id, user_id, anime_id, price)
VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, purchase.ID, purchase.UserID, purchase.AnimeID, purchase.Price); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) ListAnimeIDsByUser(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT anime_id FROM purchases WHERE user_id = ?`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchased animes: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan purchased anime id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
