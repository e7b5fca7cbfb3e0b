package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/animelar/animelar-api/internal/models"
	"github.com/animelar/animelar-api/internal/repository"
)

// Profile is the authenticated view of a user, without the credential.
type Profile struct {
	ID              string
	Name            string
	Email           string
	Balance         int64
	PurchasedAnimes []string
}

type AuthService struct {
	log       *slog.Logger
	users     *repository.UserRepository
	purchases *repository.PurchaseRepository
}

func NewAuthService(log *slog.Logger, users *repository.UserRepository, purchases *repository.PurchaseRepository) *AuthService {
	return &AuthService{log: log, users: users, purchases: purchases}
}

// Register creates a user with a zero balance and a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Profile, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("new user registered", "email", email)
	return &Profile{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Login verifies the credential and returns the profile plus purchased anime
// ids. The stored hash is compared with bcrypt, never in plaintext.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Profile, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	purchased, err := s.purchases.ListAnimeIDsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", "email", email)
	return &Profile{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Balance:         user.Balance,
		PurchasedAnimes: purchased,
	}, nil
}
