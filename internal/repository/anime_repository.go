package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/animelar/animelar-api/internal/models"
)

type AnimeRepository struct {
	db *sql.DB
}

func NewAnimeRepository(db *sql.DB) *AnimeRepository {
	return &AnimeRepository{db: db}
}

func (r *AnimeRepository) DB() *sql.DB {
	return r.db
}

const animeColumns = `id, title, genre, description, price, poster_url, added_by, dubbing_name, views, purchases, revenue, created_at`

func scanAnime(row interface{ Scan(...any) error }) (*models.Anime, error) {
	var a models.Anime
	err := row.Scan(&a.ID, &a.Title, &a.Genre, &a.Description, &a.Price, &a.PosterURL,
		&a.AddedBy, &a.DubbingName, &a.Views, &a.Purchases, &a.Revenue, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnimeRepository) FindByID(ctx context.Context, id string) (*models.Anime, error) {
	query := `SELECT ` + animeColumns + ` FROM animes WHERE id = ?`
	anime, err := scanAnime(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan anime: %w", err)
	}
	return anime, nil
}

func (r *AnimeRepository) List(ctx context.Context) ([]models.Anime, error) {
	query := `SELECT ` + animeColumns + ` FROM animes ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list animes: %w", err)
	}
	defer rows.Close()

	var animes []models.Anime
	for rows.Next() {
		anime, err := scanAnime(rows)
		if err != nil {
			return nil, fmt.Errorf("scan anime list: %w", err)
		}
		animes = append(animes, *anime)
	}
	return animes, rows.Err()
}

func (r *AnimeRepository) Create(ctx context.Context, anime *models.Anime) error {
	const query = `
INSERT INTO animes (id, title, genre, description, price, poster_url, added_by, dubbing_name, views, purchases, revenue)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0)`
	if _, err := r.db.ExecContext(ctx, query, anime.ID, anime.Title, anime.Genre, anime.Description,
		anime.Price, anime.PosterURL, anime.AddedBy, anime.DubbingName); err != nil {
		return fmt.Errorf("insert anime: %w", err)
	}
	return nil
}

// IncrementViews bumps the display counter and returns the stored value.
// A lost read under concurrent bumps is acceptable for display counters.
func (r *AnimeRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	const update = `UPDATE animes SET views = views + 1 WHERE id = ?`
	res, err := r.db.ExecContext(ctx, update, id)
	if err != nil {
		return 0, fmt.Errorf("increment anime views: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("anime views rows affected: %w", err)
	}
	if affected == 0 {
		return 0, sql.ErrNoRows
	}

	const read = `SELECT views FROM animes WHERE id = ?`
	var views int64
	if err := r.db.QueryRowContext(ctx, read, id).Scan(&views); err != nil {
		return 0, fmt.Errorf("read anime views: %w", err)
	}
	return views, nil
}

// LockForPurchase reads the title and price inside tx, holding the row lock
// until commit. Returns sql.ErrNoRows unchanged when the anime is unknown.
func (r *AnimeRepository) LockForPurchase(ctx context.Context, tx *sql.Tx, id string) (title string, price int64, err error) {
	const query = `SELECT title, price FROM animes WHERE id = ? FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, id).Scan(&title, &price); err != nil {
		return "", 0, err
	}
	return title, price, nil
}

// RecordSale updates the denormalized aggregates; must run in the same tx as
// the purchase insert so revenue stays equal to price times purchases.
func (r *AnimeRepository) RecordSale(ctx context.Context, tx *sql.Tx, id string, price int64) error {
	const query = `UPDATE animes SET purchases = purchases + 1, revenue = revenue + ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, price, id); err != nil {
		return fmt.Errorf("record sale: %w", err)
	}
	return nil
}
