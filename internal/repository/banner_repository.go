package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/animelar/animelar-api/internal/models"
)

type BannerRepository struct {
	db *sql.DB
}

func NewBannerRepository(db *sql.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

func (r *BannerRepository) Create(ctx context.Context, banner *models.Banner) error {
	const query = `
INSERT INTO banners (id, text, image_url, added_by, active)
VALUES (?, ?, ?, ?, 1)`
	if _, err := r.db.ExecContext(ctx, query, banner.ID, banner.Text, banner.ImageURL, banner.AddedBy); err != nil {
		return fmt.Errorf("insert banner: %w", err)
	}
	return nil
}

func (r *BannerRepository) ListActive(ctx context.Context) ([]models.Banner, error) {
	const query = `
SELECT id, text, image_url, added_by, created_at, active
FROM banners WHERE active = 1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	var banners []models.Banner
	for rows.Next() {
		var b models.Banner
		if err := rows.Scan(&b.ID, &b.Text, &b.ImageURL, &b.AddedBy, &b.CreatedAt, &b.Active); err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}
