package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/animelar/animelar-api/internal/models"
)

type AdRepository struct {
	db *sql.DB
}

func NewAdRepository(db *sql.DB) *AdRepository {
	return &AdRepository{db: db}
}

func (r *AdRepository) Create(ctx context.Context, tx *sql.Tx, ad *models.Ad) error {
	const query = `
INSERT INTO ads (id, title, image_url, user_id, views, clicks, active)
VALUES (?, ?, ?, ?, 0, 0, 1)`
	if _, err := tx.ExecContext(ctx, query, ad.ID, ad.Title, ad.ImageURL, ad.UserID); err != nil {
		return fmt.Errorf("insert ad: %w", err)
	}
	return nil
}

func (r *AdRepository) ListActive(ctx context.Context) ([]models.Ad, error) {
	const query = `
SELECT id, title, image_url, user_id, views, clicks, created_at, active
FROM ads WHERE active = 1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	var ads []models.Ad
	for rows.Next() {
		var a models.Ad
		if err := rows.Scan(&a.ID, &a.Title, &a.ImageURL, &a.UserID, &a.Views, &a.Clicks, &a.CreatedAt, &a.Active); err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		ads = append(ads, a)
	}
	return ads, rows.Err()
}

func (r *AdRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	const update = `UPDATE ads SET views = views + 1 WHERE id = ?`
	res, err := r.db.ExecContext(ctx, update, id)
	if err != nil {
		return 0, fmt.Errorf("increment ad views: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ad views rows affected: %w", err)
	}
	if affected == 0 {
		return 0, sql.ErrNoRows
	}

	const read = `SELECT views FROM ads WHERE id = ?`
	var views int64
	if err := r.db.QueryRowContext(ctx, read, id).Scan(&views); err != nil {
		return 0, fmt.Errorf("read ad views: %w", err)
	}
	return views, nil
}
