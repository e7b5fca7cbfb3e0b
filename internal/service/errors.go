package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrAnimeNotFound = errors.New("anime not found")
	ErrAdNotFound    = errors.New("ad not found")
	ErrAdminNotFound = errors.New("admin not found")

	ErrEmailTaken         = errors.New("user already exists")
	ErrAlreadyAdmin       = errors.New("already admin")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("not authorized")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

// InvalidPriceError reports a catalog price outside the allowed tiers.
type InvalidPriceError struct {
	Price   int64
	Allowed []int64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price %d, allowed %v", e.Price, e.Allowed)
}

// InsufficientBalanceError carries the amounts the caller needs to act on.
type InsufficientBalanceError struct {
	Required int64
	Current  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %d, current %d", e.Required, e.Current)
}
