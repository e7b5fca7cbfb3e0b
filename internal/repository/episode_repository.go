package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/animelar/animelar-api/internal/models"
)

type EpisodeRepository struct {
	db *sql.DB
}

func NewEpisodeRepository(db *sql.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

func (r *EpisodeRepository) ListByAnime(ctx context.Context, animeID string) ([]models.Episode, error) {
	const query = `
SELECT id, anime_id, title, video_url, episode_number, views, added_at
FROM episodes WHERE anime_id = ? ORDER BY episode_number ASC`
	rows, err := r.db.QueryContext(ctx, query, animeID)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []models.Episode
	for rows.Next() {
		var e models.Episode
		if err := rows.Scan(&e.ID, &e.AnimeID, &e.Title, &e.VideoURL, &e.EpisodeNumber, &e.Views, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// NextNumber computes max(episode_number)+1 inside tx. The caller must hold
// the anime row lock so concurrent assignment serializes.
func (r *EpisodeRepository) NextNumber(ctx context.Context, tx *sql.Tx, animeID string) (int, error) {
	const query = `SELECT COALESCE(MAX(episode_number), 0) + 1 FROM episodes WHERE anime_id = ?`
	var number int
	if err := tx.QueryRowContext(ctx, query, animeID).Scan(&number); err != nil {
		return 0, fmt.Errorf("next episode number: %w", err)
	}
	return number, nil
}

func (r *EpisodeRepository) Create(ctx context.Context, tx *sql.Tx, episode *models.Episode) error {
	const query = `
INSERT INTO episodes (id, anime_id, title, video_url, episode_number, views)
VALUES (?, ?, ?, ?, ?, 0)`
	if _, err := tx.ExecContext(ctx, query, episode.ID, episode.AnimeID, episode.Title, episode.VideoURL, episode.EpisodeNumber); err != nil {
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

func (r *EpisodeRepository) CountByAnime(ctx context.Context, tx *sql.Tx, animeID string) (int, error) {
	const query = `SELECT COUNT(*) FROM episodes WHERE anime_id = ?`
	var total int
	if err := tx.QueryRowContext(ctx, query, animeID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count episodes: %w", err)
	}
	return total, nil
}
