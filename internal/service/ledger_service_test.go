package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/animelar/animelar-api/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLedger(t *testing.T) (*LedgerService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepository(db)
	animes := repository.NewAnimeRepository(db)
	purchases := repository.NewPurchaseRepository(db)
	ads := repository.NewAdRepository(db)
	return NewLedgerService(testLogger(), users, animes, purchases, ads, 500), mock
}

func TestPurchaseDebitsOnceAndRecordsSale(t *testing.T) {
	ledger, mock := newLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT title, price FROM animes").
		WillReturnRows(sqlmock.NewRows([]string{"title", "price"}).AddRow("Naruto", 5900))
	mock.ExpectQuery("SELECT balance FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(5900))
	mock.ExpectQuery("SELECT 1 FROM purchases").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("UPDATE users SET balance").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO purchases").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE animes SET purchases").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	outcome, err := ledger.Purchase(context.Background(), "user-1", "anime-1")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if outcome.AlreadyPurchased {
		t.Fatal("expected fresh purchase, got alreadyPurchased")
	}
	if outcome.NewBalance != 0 {
		t.Fatalf("expected balance 0, got %d", outcome.NewBalance)
	}
	if outcome.AnimeTitle != "Naruto" {
		t.Fatalf("unexpected title %q", outcome.AnimeTitle)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPurchaseIsIdempotent(t *testing.T) {
	ledger, mock := newLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT title, price FROM animes").
		WillReturnRows(sqlmock.NewRows([]string{"title", "price"}).AddRow("Naruto", 5900))
	mock.ExpectQuery("SELECT balance FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(0))
	mock.ExpectQuery("SELECT 1 FROM purchases").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	outcome, err := ledger.Purchase(context.Background(), "user-1", "anime-1")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !outcome.AlreadyPurchased {
		t.Fatal("expected alreadyPurchased outcome")
	}
	// Balance untouched even at zero: no debit statements were expected.
	if outcome.NewBalance != 0 {
		t.Fatalf("expected balance 0, got %d", outcome.NewBalance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPurchaseRaceLoserSeesAlreadyPurchased(t *testing.T) {
	ledger, mock := newLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT title, price FROM animes").
		WillReturnRows(sqlmock.NewRows([]string{"title", "price"}).AddRow("Naruto", 2900))
	mock.ExpectQuery("SELECT balance FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(5000))
	mock.ExpectQuery("SELECT 1 FROM purchases").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("UPDATE users SET balance").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO purchases").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	outcome, err := ledger.Purchase(context.Background(), "user-1", "anime-1")
	if err != nil {
		t.Fatalf("expected alreadyPurchased, got error: %v", err)
	}
	if !outcome.AlreadyPurchased {
		t.Fatal("race loser must observe alreadyPurchased, not an error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	ledger, mock := newLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT title, price FROM animes").
		WillReturnRows(sqlmock.NewRows([]string{"title", "price"}).AddRow("Naruto", 5900))
	mock.ExpectQuery("SELECT balance FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(1000))
	mock.ExpectQuery("SELECT 1 FROM purchases").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := ledger.Purchase(context.Background(), "user-1", "anime-1")
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Required != 5900 || insufficient.Current != 1000 {
		t.Fatalf("unexpected amounts: %+v", insufficient)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPurchaseUnknownAnime(t *testing.T) {
	ledger, mock := newLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT title, price FROM animes").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := ledger.Purchase(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrAnimeNotFound) {
		t.Fatalf("expected ErrAnimeNotFound, got %v", err)
	}
}

func TestTopUpIsAdditiveNotIdempotent(t *testing.T) {
	ledger, mock := newLedger(t)

	for _, start := range []int64{0, 3000} {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT balance FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(start))
		mock.ExpectExec("UPDATE users SET balance").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	first, err := ledger.TopUp(context.Background(), "user-1", 3000)
	if err != nil {
		t.Fatalf("first topup: %v", err)
	}
	second, err := ledger.TopUp(context.Background(), "user-1", 3000)
	if err != nil {
		t.Fatalf("second topup: %v", err)
	}
	if first != 3000 || second != 6000 {
		t.Fatalf("expected 3000 then 6000, got %d then %d", first, second)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	ledger, _ := newLedger(t)

	for _, amount := range []int64{0, -100} {
		if _, err := ledger.TopUp(context.Background(), "user-1", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestTopUpUnknownUser(t *testing.T) {
	ledger, mock := newLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM users").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := ledger.TopUp(context.Background(), "missing", 1000)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPlaceAdDebitsFlatFee(t *testing.T) {
	ledger, mock := newLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(700))
	mock.ExpectExec("UPDATE users SET balance").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ads").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	placed, err := ledger.PlaceAd(context.Background(), "user-1", "Sale", "https://img.example/ad.png")
	if err != nil {
		t.Fatalf("place ad: %v", err)
	}
	if placed.NewBalance != 200 {
		t.Fatalf("expected balance 200, got %d", placed.NewBalance)
	}
	if !placed.Ad.Active || placed.Ad.ID == "" {
		t.Fatalf("unexpected ad: %+v", placed.Ad)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPlaceAdInsufficientBalance(t *testing.T) {
	ledger, mock := newLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(499))
	mock.ExpectRollback()

	_, err := ledger.PlaceAd(context.Background(), "user-1", "Sale", "https://img.example/ad.png")
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Required != 500 || insufficient.Current != 499 {
		t.Fatalf("unexpected amounts: %+v", insufficient)
	}
}

func TestBalanceReturnsPurchasedAnimes(t *testing.T) {
	ledger, mock := newLedger(t)

	mock.ExpectQuery("SELECT id, name, email, password_hash, balance, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "balance", "created_at"}).
			AddRow("user-1", "Aziz", "aziz@example.com", "x", 4200, time.Now()))
	mock.ExpectQuery("SELECT anime_id FROM purchases").
		WillReturnRows(sqlmock.NewRows([]string{"anime_id"}).AddRow("anime-1").AddRow("anime-2"))

	info, err := ledger.Balance(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if info.Balance != 4200 {
		t.Fatalf("expected 4200, got %d", info.Balance)
	}
	if len(info.PurchasedAnimes) != 2 {
		t.Fatalf("expected 2 purchased animes, got %d", len(info.PurchasedAnimes))
	}
}
