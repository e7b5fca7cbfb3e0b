package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/animelar/animelar-api/internal/models"
)

// GlobalTotals is the whole-platform rollup backing /stats.
type GlobalTotals struct {
	TotalUsers     int64
	TotalAnimes    int64
	TotalBanners   int64
	TotalAds       int64
	TotalViews     int64
	TotalPurchases int64
	TotalRevenue   int64
}

// AdminRollup sums the denormalized counters across one admin's animes.
type AdminRollup struct {
	ID             string
	DubbingName    string
	Role           models.AdminRole
	TotalAnimes    int64
	TotalViews     int64
	TotalPurchases int64
	TotalRevenue   int64
}

// TopAnime is one row of the by-views leaderboard.
type TopAnime struct {
	ID          string
	Title       string
	DubbingName string
	Views       int64
	Purchases   int64
	Revenue     int64
}

// AdminAnime is one catalog row in an admin's own statistics view.
type AdminAnime struct {
	ID           string
	Title        string
	Genre        string
	Price        int64
	Views        int64
	Purchases    int64
	Revenue      int64
	EpisodeCount int64
	CreatedAt    time.Time
}

type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) GlobalTotals(ctx context.Context) (*GlobalTotals, error) {
	const query = `
SELECT
    (SELECT COUNT(*) FROM users),
    (SELECT COUNT(*) FROM animes),
    (SELECT COUNT(*) FROM banners WHERE active = 1),
    (SELECT COUNT(*) FROM ads WHERE active = 1),
    (SELECT COALESCE(SUM(views), 0) FROM animes),
    (SELECT COUNT(*) FROM purchases),
    (SELECT COALESCE(SUM(price), 0) FROM purchases)`
	var t GlobalTotals
	err := r.db.QueryRowContext(ctx, query).Scan(&t.TotalUsers, &t.TotalAnimes, &t.TotalBanners,
		&t.TotalAds, &t.TotalViews, &t.TotalPurchases, &t.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("scan global totals: %w", err)
	}
	return &t, nil
}

func (r *StatsRepository) AdminRollups(ctx context.Context) ([]AdminRollup, error) {
	const query = `
SELECT a.id, a.dubbing_name, a.role,
       COUNT(DISTINCT an.id),
       COALESCE(SUM(an.views), 0),
       COALESCE(SUM(an.purchases), 0),
       COALESCE(SUM(an.revenue), 0)
FROM admins a
LEFT JOIN animes an ON a.id = an.added_by
GROUP BY a.id, a.dubbing_name, a.role
ORDER BY COALESCE(SUM(an.revenue), 0) DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("admin rollups: %w", err)
	}
	defer rows.Close()

	var rollups []AdminRollup
	for rows.Next() {
		var ar AdminRollup
		if err := rows.Scan(&ar.ID, &ar.DubbingName, &ar.Role, &ar.TotalAnimes, &ar.TotalViews, &ar.TotalPurchases, &ar.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan admin rollup: %w", err)
		}
		rollups = append(rollups, ar)
	}
	return rollups, rows.Err()
}

func (r *StatsRepository) TopAnimes(ctx context.Context, limit int) ([]TopAnime, error) {
	const query = `
SELECT id, title, dubbing_name, views, purchases, revenue
FROM animes ORDER BY views DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top animes: %w", err)
	}
	defer rows.Close()

	var top []TopAnime
	for rows.Next() {
		var ta TopAnime
		if err := rows.Scan(&ta.ID, &ta.Title, &ta.DubbingName, &ta.Views, &ta.Purchases, &ta.Revenue); err != nil {
			return nil, fmt.Errorf("scan top anime: %w", err)
		}
		top = append(top, ta)
	}
	return top, rows.Err()
}

func (r *StatsRepository) AdminAnimes(ctx context.Context, adminID string) ([]AdminAnime, error) {
	const query = `
SELECT id, title, genre, price, views, purchases, revenue,
       (SELECT COUNT(*) FROM episodes WHERE anime_id = animes.id),
       created_at
FROM animes WHERE added_by = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("admin animes: %w", err)
	}
	defer rows.Close()

	var animes []AdminAnime
	for rows.Next() {
		var aa AdminAnime
		if err := rows.Scan(&aa.ID, &aa.Title, &aa.Genre, &aa.Price, &aa.Views, &aa.Purchases, &aa.Revenue, &aa.EpisodeCount, &aa.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin anime: %w", err)
		}
		animes = append(animes, aa)
	}
	return animes, rows.Err()
}
