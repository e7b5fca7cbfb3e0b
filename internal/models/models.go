package models

import "time"

type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "super_admin"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Balance      int64
	CreatedAt    time.Time
}

type Admin struct {
	ID          string
	DubbingName string
	AddedBy     string
	Role        AdminRole
	AddedAt     time.Time
}

type Anime struct {
	ID          string
	Title       string
	Genre       string
	Description string
	Price       int64
	PosterURL   string
	AddedBy     string
	DubbingName string
	Views       int64
	Purchases   int64
	Revenue     int64
	CreatedAt   time.Time
}

type Episode struct {
	ID            string
	AnimeID       string
	Title         string
	VideoURL      string
	EpisodeNumber int
	Views         int64
	AddedAt       time.Time
}

type Purchase struct {
	ID          string
	UserID      string
	AnimeID     string
	Price       int64
	PurchasedAt time.Time
}

type Ad struct {
	ID        string
	Title     string
	ImageURL  string
	UserID    string
	Views     int64
	Clicks    int64
	CreatedAt time.Time
	Active    bool
}

type Banner struct {
	ID        string
	Text      string
	ImageURL  string
	AddedBy   string
	CreatedAt time.Time
	Active    bool
}
