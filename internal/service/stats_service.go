package service

import (
	"context"

	"github.com/animelar/animelar-api/internal/models"
	"github.com/animelar/animelar-api/internal/repository"
)

// GlobalStats is the /stats payload: platform totals, per-admin rollups
// ordered by revenue and the top animes by views. Pure aggregation over
// already-consistent state.
type GlobalStats struct {
	Totals    repository.GlobalTotals
	ByAdmin   []repository.AdminRollup
	TopAnimes []repository.TopAnime
}

// AdminStats is one admin's profile with their catalog and summed counters.
type AdminStats struct {
	Admin          models.Admin
	Animes         []repository.AdminAnime
	TotalViews     int64
	TotalPurchases int64
	TotalRevenue   int64
}

type StatsService struct {
	stats  *repository.StatsRepository
	admins *repository.AdminRepository
}

func NewStatsService(stats *repository.StatsRepository, admins *repository.AdminRepository) *StatsService {
	return &StatsService{stats: stats, admins: admins}
}

func (s *StatsService) Global(ctx context.Context) (*GlobalStats, error) {
	totals, err := s.stats.GlobalTotals(ctx)
	if err != nil {
		return nil, err
	}
	rollups, err := s.stats.AdminRollups(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.stats.TopAnimes(ctx, 10)
	if err != nil {
		return nil, err
	}
	return &GlobalStats{Totals: *totals, ByAdmin: rollups, TopAnimes: top}, nil
}

func (s *StatsService) ForAdmin(ctx context.Context, adminID string) (*AdminStats, error) {
	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}

	animes, err := s.stats.AdminAnimes(ctx, adminID)
	if err != nil {
		return nil, err
	}

	out := &AdminStats{Admin: *admin, Animes: animes}
	for _, a := range animes {
		out.TotalViews += a.Views
		out.TotalPurchases += a.Purchases
		out.TotalRevenue += a.Revenue
	}
	return out, nil
}
