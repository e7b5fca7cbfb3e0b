package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/animelar/animelar-api/internal/models"
	"github.com/animelar/animelar-api/internal/repository"
)

// mysqlDuplicateEntry is the server error for a unique key violation.
const mysqlDuplicateEntry = 1062

// PurchaseOutcome is the result of a purchase attempt. AlreadyPurchased is a
// successful no-op, not an error: the caller owns the anime either way.
type PurchaseOutcome struct {
	AlreadyPurchased bool
	NewBalance       int64
	AnimeTitle       string
}

// PlacedAd is the result of a paid ad placement.
type PlacedAd struct {
	Ad         models.Ad
	NewBalance int64
}

// BalanceInfo is the read-side projection of a user's wallet.
type BalanceInfo struct {
	Balance         int64
	PurchasedAnimes []string
}

// LedgerService owns every balance mutation. All debits and credits run in a
// transaction holding the user row lock, so concurrent operations on the
// same user serialize.
type LedgerService struct {
	log       *slog.Logger
	users     *repository.UserRepository
	animes    *repository.AnimeRepository
	purchases *repository.PurchaseRepository
	ads       *repository.AdRepository
	adFee     int64
}

func NewLedgerService(log *slog.Logger, users *repository.UserRepository, animes *repository.AnimeRepository, purchases *repository.PurchaseRepository, ads *repository.AdRepository, adFee int64) *LedgerService {
	return &LedgerService{
		log:       log,
		users:     users,
		animes:    animes,
		purchases: purchases,
		ads:       ads,
		adFee:     adFee,
	}
}

// TopUp atomically adds amount to the user's balance and returns the new
// value. Deliberately not idempotent: repeated identical calls add again.
func (s *LedgerService) TopUp(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.users.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	balance, err := s.users.LockBalance(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("lock user: %w", err)
	}

	if err := s.users.AddBalance(ctx, tx, userID, amount); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit topup: %w", err)
	}

	newBalance := balance + amount
	s.log.Info("balance topped up", "user", userID, "amount", amount, "balance", newBalance)
	return newBalance, nil
}

// Purchase debits the buyer by the anime's current price, records the
// purchase with that price snapshot and updates the anime's purchase and
// revenue aggregates, all in one transaction. At most one purchase can ever
// exist per (user, anime): the in-transaction existence check is serialized
// by the user row lock, and the unique key on purchases backstops it.
func (s *LedgerService) Purchase(ctx context.Context, userID, animeID string) (*PurchaseOutcome, error) {
	tx, err := s.users.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Lock order is anime then user; this is the only multi-entity tx.
	title, price, err := s.animes.LockForPurchase(ctx, tx, animeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnimeNotFound
		}
		return nil, fmt.Errorf("lock anime: %w", err)
	}

	balance, err := s.users.LockBalance(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}

	owned, err := s.purchases.ExistsInTx(ctx, tx, userID, animeID)
	if err != nil {
		return nil, err
	}
	if owned {
		return &PurchaseOutcome{AlreadyPurchased: true, NewBalance: balance, AnimeTitle: title}, nil
	}

	if balance < price {
		return nil, &InsufficientBalanceError{Required: price, Current: balance}
	}

	if err := s.users.AddBalance(ctx, tx, userID, -price); err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		ID:      uuid.NewString(),
		UserID:  userID,
		AnimeID: animeID,
		Price:   price,
	}
	if err := s.purchases.Create(ctx, tx, purchase); err != nil {
		if isDuplicateEntry(err) {
			// A concurrent attempt won the race; the debit rolls back with us.
			return &PurchaseOutcome{AlreadyPurchased: true, NewBalance: balance, AnimeTitle: title}, nil
		}
		return nil, err
	}

	if err := s.animes.RecordSale(ctx, tx, animeID, price); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	newBalance := balance - price
	s.log.Info("anime purchased", "anime", title, "user", userID, "price", price)
	return &PurchaseOutcome{NewBalance: newBalance, AnimeTitle: title}, nil
}

// PlaceAd debits the flat placement fee and inserts an active ad.
func (s *LedgerService) PlaceAd(ctx context.Context, userID, title, imageURL string) (*PlacedAd, error) {
	tx, err := s.users.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	balance, err := s.users.LockBalance(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}

	if balance < s.adFee {
		return nil, &InsufficientBalanceError{Required: s.adFee, Current: balance}
	}

	if err := s.users.AddBalance(ctx, tx, userID, -s.adFee); err != nil {
		return nil, err
	}

	ad := models.Ad{
		ID:        uuid.NewString(),
		Title:     title,
		ImageURL:  imageURL,
		UserID:    userID,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ads.Create(ctx, tx, &ad); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ad placement: %w", err)
	}

	s.log.Info("ad placed", "ad", ad.ID, "user", userID, "fee", s.adFee)
	return &PlacedAd{Ad: ad, NewBalance: balance - s.adFee}, nil
}

// Balance returns the user's current balance and purchased anime ids.
func (s *LedgerService) Balance(ctx context.Context, userID string) (*BalanceInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	ids, err := s.purchases.ListAnimeIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BalanceInfo{Balance: user.Balance, PurchasedAnimes: ids}, nil
}

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
