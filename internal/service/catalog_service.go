package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/animelar/animelar-api/internal/models"
	"github.com/animelar/animelar-api/internal/repository"
)

type CreateAnimeInput struct {
	Title       string
	Genre       string
	Description string
	Price       int64
	PosterURL   string
	AddedBy     string
}

type AddEpisodeInput struct {
	Title    string
	VideoURL string
	AddedBy  string
}

// AnimeWithEpisodes is the catalog read projection.
type AnimeWithEpisodes struct {
	models.Anime
	Episodes []models.Episode
}

// AddedEpisode carries the new episode and the anime's episode count.
type AddedEpisode struct {
	Episode models.Episode
	Total   int
}

// CatalogService applies the authorization policy before any catalog
// mutation; monetary effects stay with the ledger.
type CatalogService struct {
	log      *slog.Logger
	animes   *repository.AnimeRepository
	episodes *repository.EpisodeRepository
	policy   *AdminService
}

func NewCatalogService(log *slog.Logger, animes *repository.AnimeRepository, episodes *repository.EpisodeRepository, policy *AdminService) *CatalogService {
	return &CatalogService{log: log, animes: animes, episodes: episodes, policy: policy}
}

func (s *CatalogService) CreateAnime(ctx context.Context, input CreateAnimeInput) (*models.Anime, error) {
	if err := s.policy.AuthorizePricedCatalogCreate(ctx, input.AddedBy, input.Price); err != nil {
		return nil, err
	}

	dubbingName, err := s.policy.DubbingName(ctx, input.AddedBy)
	if err != nil {
		return nil, err
	}

	anime := &models.Anime{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Genre:       input.Genre,
		Description: input.Description,
		Price:       input.Price,
		PosterURL:   input.PosterURL,
		AddedBy:     input.AddedBy,
		DubbingName: dubbingName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.animes.Create(ctx, anime); err != nil {
		return nil, err
	}

	s.log.Info("new anime created", "title", anime.Title, "dubbing", dubbingName)
	return anime, nil
}

// AddEpisode assigns the next sequential episode number under the anime row
// lock, so concurrent additions never reuse or skip a number.
func (s *CatalogService) AddEpisode(ctx context.Context, animeID string, input AddEpisodeInput) (*AddedEpisode, error) {
	anime, err := s.animes.FindByID(ctx, animeID)
	if err != nil {
		return nil, err
	}
	if anime == nil {
		return nil, ErrAnimeNotFound
	}

	ok, err := s.policy.AuthorizeEpisodeWrite(ctx, anime.AddedBy, input.AddedBy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	tx, err := s.animes.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, _, err := s.animes.LockForPurchase(ctx, tx, animeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnimeNotFound
		}
		return nil, fmt.Errorf("lock anime: %w", err)
	}

	number, err := s.episodes.NextNumber(ctx, tx, animeID)
	if err != nil {
		return nil, err
	}

	episode := models.Episode{
		ID:            uuid.NewString(),
		AnimeID:       animeID,
		Title:         input.Title,
		VideoURL:      input.VideoURL,
		EpisodeNumber: number,
		AddedAt:       time.Now().UTC(),
	}
	if err := s.episodes.Create(ctx, tx, &episode); err != nil {
		return nil, err
	}

	total, err := s.episodes.CountByAnime(ctx, tx, animeID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit episode: %w", err)
	}

	s.log.Info("new episode added", "anime", animeID, "title", episode.Title, "number", number)
	return &AddedEpisode{Episode: episode, Total: total}, nil
}

func (s *CatalogService) ListAnimes(ctx context.Context) ([]AnimeWithEpisodes, error) {
	animes, err := s.animes.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AnimeWithEpisodes, 0, len(animes))
	for _, anime := range animes {
		episodes, err := s.episodes.ListByAnime(ctx, anime.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, AnimeWithEpisodes{Anime: anime, Episodes: episodes})
	}
	return out, nil
}

func (s *CatalogService) GetAnime(ctx context.Context, id string) (*AnimeWithEpisodes, error) {
	anime, err := s.animes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if anime == nil {
		return nil, ErrAnimeNotFound
	}
	episodes, err := s.episodes.ListByAnime(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AnimeWithEpisodes{Anime: *anime, Episodes: episodes}, nil
}

func (s *CatalogService) IncrementAnimeView(ctx context.Context, id string) (int64, error) {
	views, err := s.animes.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAnimeNotFound
		}
		return 0, err
	}
	return views, nil
}
