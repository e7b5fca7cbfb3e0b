package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/animelar/animelar-api/internal/models"
	"github.com/animelar/animelar-api/internal/repository"
)

// AdsService covers the non-monetary ad and banner surface. Paid ad
// placement lives in the ledger.
type AdsService struct {
	log     *slog.Logger
	ads     *repository.AdRepository
	banners *repository.BannerRepository
	policy  *AdminService
}

func NewAdsService(log *slog.Logger, ads *repository.AdRepository, banners *repository.BannerRepository, policy *AdminService) *AdsService {
	return &AdsService{log: log, ads: ads, banners: banners, policy: policy}
}

func (s *AdsService) ListAds(ctx context.Context) ([]models.Ad, error) {
	return s.ads.ListActive(ctx)
}

func (s *AdsService) IncrementAdView(ctx context.Context, id string) (int64, error) {
	views, err := s.ads.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAdNotFound
		}
		return 0, err
	}
	return views, nil
}

// CreateBanner is super-admin only.
func (s *AdsService) CreateBanner(ctx context.Context, text, imageURL, addedBy string) (*models.Banner, error) {
	ok, err := s.policy.IsSuperAdmin(ctx, addedBy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	banner := &models.Banner{
		ID:        uuid.NewString(),
		Text:      text,
		ImageURL:  imageURL,
		AddedBy:   addedBy,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.banners.Create(ctx, banner); err != nil {
		return nil, err
	}

	s.log.Info("new banner created", "text", text)
	return banner, nil
}

func (s *AdsService) ListBanners(ctx context.Context) ([]models.Banner, error) {
	return s.banners.ListActive(ctx)
}
