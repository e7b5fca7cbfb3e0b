package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/animelar/animelar-api/internal/models"
	"github.com/animelar/animelar-api/internal/repository"
)

func newAds(t *testing.T) (*AdsService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ads := repository.NewAdRepository(db)
	banners := repository.NewBannerRepository(db)
	policy := NewAdminService(repository.NewAdminRepository(db), bootstrapID, []int64{2900, 5900})
	return NewAdsService(testLogger(), ads, banners, policy), mock
}

func TestCreateBannerRequiresSuperAdmin(t *testing.T) {
	svc, mock := newAds(t)

	mock.ExpectQuery("SELECT id, dubbing_name, added_by, role, added_at").
		WillReturnRows(adminRow("studio-1", "Studio", models.RoleAdmin))

	_, err := svc.CreateBanner(context.Background(), "New season!", "https://img.example/b.png", "studio-1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for plain admin, got %v", err)
	}
}

func TestCreateBannerByBootstrapIdentity(t *testing.T) {
	svc, mock := newAds(t)

	mock.ExpectExec("INSERT INTO banners").
		WithArgs(sqlmock.AnyArg(), "New season!", "https://img.example/b.png", bootstrapID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	banner, err := svc.CreateBanner(context.Background(), "New season!", "https://img.example/b.png", bootstrapID)
	if err != nil {
		t.Fatalf("create banner: %v", err)
	}
	if !banner.Active {
		t.Fatal("new banners must be active")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIncrementAdViewNotFound(t *testing.T) {
	svc, mock := newAds(t)

	mock.ExpectExec("UPDATE ads SET views").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.IncrementAdView(context.Background(), "missing")
	if !errors.Is(err, ErrAdNotFound) {
		t.Fatalf("expected ErrAdNotFound, got %v", err)
	}
}
