package service

import (
	"context"
	"fmt"
	"time"

	"github.com/animelar/animelar-api/internal/models"
	"github.com/animelar/animelar-api/internal/repository"
)

// AdminService is the single evaluation path for every role-gated rule.
// The bootstrap identity is implicitly admin and super admin regardless of
// roster contents; no operation can revoke it.
type AdminService struct {
	admins       *repository.AdminRepository
	bootstrapID  string
	allowedTiers []int64
}

func NewAdminService(admins *repository.AdminRepository, bootstrapID string, allowedTiers []int64) *AdminService {
	return &AdminService{admins: admins, bootstrapID: bootstrapID, allowedTiers: allowedTiers}
}

// EnsureBootstrap seeds the bootstrap super-admin roster row at startup.
func (s *AdminService) EnsureBootstrap(ctx context.Context) error {
	return s.admins.EnsureBootstrap(ctx, s.bootstrapID)
}

func (s *AdminService) IsAdmin(ctx context.Context, id string) (bool, error) {
	if id == s.bootstrapID {
		return true, nil
	}
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return admin != nil, nil
}

func (s *AdminService) IsSuperAdmin(ctx context.Context, id string) (bool, error) {
	if id == s.bootstrapID {
		return true, nil
	}
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check super admin: %w", err)
	}
	return admin != nil && admin.Role == models.RoleSuperAdmin, nil
}

// GrantAdmin inserts a new roster row with role admin. Only a super admin
// may grant, and a target already in the roster is a conflict.
func (s *AdminService) GrantAdmin(ctx context.Context, requesterID, targetID, dubbingName string) (*models.Admin, error) {
	ok, err := s.IsSuperAdmin(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	existing, err := s.admins.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("check existing admin: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyAdmin
	}

	admin := &models.Admin{
		ID:          targetID,
		DubbingName: dubbingName,
		AddedBy:     requesterID,
		Role:        models.RoleAdmin,
		AddedAt:     time.Now().UTC(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("grant admin: %w", err)
	}
	return admin, nil
}

// AuthorizeEpisodeWrite allows the anime's creator or any super admin.
func (s *AdminService) AuthorizeEpisodeWrite(ctx context.Context, ownerID, requesterID string) (bool, error) {
	if requesterID == ownerID {
		return true, nil
	}
	return s.IsSuperAdmin(ctx, requesterID)
}

// AuthorizePricedCatalogCreate gates anime creation on admin role and the
// price tier allow-list.
func (s *AdminService) AuthorizePricedCatalogCreate(ctx context.Context, requesterID string, price int64) error {
	ok, err := s.IsAdmin(ctx, requesterID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	for _, tier := range s.allowedTiers {
		if price == tier {
			return nil
		}
	}
	return &InvalidPriceError{Price: price, Allowed: s.allowedTiers}
}

// DubbingName resolves the display name denormalized onto created animes.
// An admin identity with no roster row (the bootstrap id can be one) maps
// to "Unknown", matching how catalog rows have always been labeled.
func (s *AdminService) DubbingName(ctx context.Context, id string) (string, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolve dubbing name: %w", err)
	}
	if admin == nil {
		return "Unknown", nil
	}
	return admin.DubbingName, nil
}

func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}
