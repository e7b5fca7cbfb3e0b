package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/animelar/animelar-api/internal/models"
	"github.com/animelar/animelar-api/internal/repository"
)

func newCatalog(t *testing.T) (*CatalogService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	animes := repository.NewAnimeRepository(db)
	episodes := repository.NewEpisodeRepository(db)
	policy := NewAdminService(repository.NewAdminRepository(db), bootstrapID, []int64{2900, 5900})
	return NewCatalogService(testLogger(), animes, episodes, policy), mock
}

func animeRows(id, title, addedBy string, price int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "genre", "description", "price", "poster_url",
		"added_by", "dubbing_name", "views", "purchases", "revenue", "created_at"}).
		AddRow(id, title, "action", "desc", price, "https://img.example/p.png", addedBy, "Studio", 0, 0, 0, time.Now())
}

func TestCreateAnimeDenormalizesDubbingName(t *testing.T) {
	catalog, mock := newCatalog(t)

	// Admin gate and dubbing name lookup both hit the roster.
	mock.ExpectQuery("SELECT id, dubbing_name, added_by, role, added_at").
		WillReturnRows(adminRow("studio-1", "Studio", models.RoleAdmin))
	mock.ExpectQuery("SELECT id, dubbing_name, added_by, role, added_at").
		WillReturnRows(adminRow("studio-1", "Studio", models.RoleAdmin))
	mock.ExpectExec("INSERT INTO animes").
		WithArgs(sqlmock.AnyArg(), "Naruto", "action", "desc", int64(2900), "https://img.example/p.png", "studio-1", "Studio").
		WillReturnResult(sqlmock.NewResult(0, 1))

	anime, err := catalog.CreateAnime(context.Background(), CreateAnimeInput{
		Title:       "Naruto",
		Genre:       "action",
		Description: "desc",
		Price:       2900,
		PosterURL:   "https://img.example/p.png",
		AddedBy:     "studio-1",
	})
	if err != nil {
		t.Fatalf("create anime: %v", err)
	}
	if anime.DubbingName != "Studio" {
		t.Fatalf("expected dubbing name Studio, got %q", anime.DubbingName)
	}
	if anime.AddedBy != "studio-1" {
		t.Fatalf("expected addedBy studio-1, got %q", anime.AddedBy)
	}
	if anime.Views != 0 || anime.Purchases != 0 || anime.Revenue != 0 {
		t.Fatalf("counters must start at zero: %+v", anime)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateAnimeRejectsUnknownTier(t *testing.T) {
	catalog, mock := newCatalog(t)

	mock.ExpectQuery("SELECT id, dubbing_name, added_by, role, added_at").
		WillReturnRows(adminRow("studio-1", "Studio", models.RoleAdmin))

	_, err := catalog.CreateAnime(context.Background(), CreateAnimeInput{
		Title:   "Naruto",
		Genre:   "action",
		Price:   4200,
		AddedBy: "studio-1",
	})
	var invalid *InvalidPriceError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidPriceError, got %v", err)
	}
}

func TestAddEpisodeAssignsNextNumberUnderLock(t *testing.T) {
	catalog, mock := newCatalog(t)

	mock.ExpectQuery("SELECT id, title, genre, description, price").
		WillReturnRows(animeRows("anime-1", "Naruto", "studio-1", 2900))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT title, price FROM animes").
		WillReturnRows(sqlmock.NewRows([]string{"title", "price"}).AddRow("Naruto", 2900))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(4))
	mock.ExpectExec("INSERT INTO episodes").
		WithArgs(sqlmock.AnyArg(), "anime-1", "Episode 4", "https://video.example/4.mp4", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM episodes`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectCommit()

	added, err := catalog.AddEpisode(context.Background(), "anime-1", AddEpisodeInput{
		Title:    "Episode 4",
		VideoURL: "https://video.example/4.mp4",
		AddedBy:  "studio-1",
	})
	if err != nil {
		t.Fatalf("add episode: %v", err)
	}
	if added.Episode.EpisodeNumber != 4 {
		t.Fatalf("expected episode number 4, got %d", added.Episode.EpisodeNumber)
	}
	if added.Total != 4 {
		t.Fatalf("expected 4 total episodes, got %d", added.Total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddEpisodeForbiddenForNonOwner(t *testing.T) {
	catalog, mock := newCatalog(t)

	mock.ExpectQuery("SELECT id, title, genre, description, price").
		WillReturnRows(animeRows("anime-1", "Naruto", "studio-1", 2900))
	mock.ExpectQuery("SELECT id, dubbing_name, added_by, role, added_at").
		WillReturnRows(adminRow("other-admin", "Other", models.RoleAdmin))

	_, err := catalog.AddEpisode(context.Background(), "anime-1", AddEpisodeInput{
		Title:    "Episode 1",
		VideoURL: "https://video.example/1.mp4",
		AddedBy:  "other-admin",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAddEpisodeUnknownAnime(t *testing.T) {
	catalog, mock := newCatalog(t)

	mock.ExpectQuery("SELECT id, title, genre, description, price").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "genre", "description", "price", "poster_url",
			"added_by", "dubbing_name", "views", "purchases", "revenue", "created_at"}))

	_, err := catalog.AddEpisode(context.Background(), "missing", AddEpisodeInput{
		Title:    "Episode 1",
		VideoURL: "https://video.example/1.mp4",
		AddedBy:  "studio-1",
	})
	if !errors.Is(err, ErrAnimeNotFound) {
		t.Fatalf("expected ErrAnimeNotFound, got %v", err)
	}
}

func TestIncrementAnimeViewNotFound(t *testing.T) {
	catalog, mock := newCatalog(t)

	mock.ExpectExec("UPDATE animes SET views").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := catalog.IncrementAnimeView(context.Background(), "missing")
	if !errors.Is(err, ErrAnimeNotFound) {
		t.Fatalf("expected ErrAnimeNotFound, got %v", err)
	}
}

func TestIncrementAnimeViewReturnsNewValue(t *testing.T) {
	catalog, mock := newCatalog(t)

	mock.ExpectExec("UPDATE animes SET views").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT views FROM animes").
		WillReturnRows(sqlmock.NewRows([]string{"views"}).AddRow(42))

	views, err := catalog.IncrementAnimeView(context.Background(), "anime-1")
	if err != nil {
		t.Fatalf("increment view: %v", err)
	}
	if views != 42 {
		t.Fatalf("expected 42 views, got %d", views)
	}
}
