package httpapi

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/animelar/animelar-api/internal/models"
	"github.com/animelar/animelar-api/internal/service"
)

const maxMediaBytes = 10 << 20

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addAdminRequest struct {
	UserID      string `json:"userId"`
	DubbingName string `json:"dubbingName"`
	AddedBy     string `json:"addedBy"`
}

type bannerRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
	AddedBy  string `json:"addedBy"`
}

type animeRequest struct {
	Title     string `json:"title"`
	Genre     string `json:"genre"`
	Desc      string `json:"desc"`
	Price     int64  `json:"price"`
	PosterURL string `json:"posterUrl"`
	AddedBy   string `json:"addedBy"`
}

type episodeRequest struct {
	Title    string `json:"title"`
	VideoURL string `json:"videoUrl"`
	AddedBy  string `json:"addedBy"`
}

type adRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	UserID   string `json:"userId"`
}

type topUpRequest struct {
	UserID string `json:"userId"`
	Amount int64  `json:"amount"`
}

type purchaseRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || len(req.Password) < 6 {
		s.writeError(w, http.StatusBadRequest, "name, email and password (min 6 chars) required")
		return
	}

	profile, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "user": profileJSON(profile)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	profile, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": profileJSON(profile)})
}

func (s *Server) handleAddAdmin(w http.ResponseWriter, r *http.Request) {
	var req addAdminRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID == "" || strings.TrimSpace(req.DubbingName) == "" || req.AddedBy == "" {
		s.writeError(w, http.StatusBadRequest, "userId, dubbingName and addedBy required")
		return
	}

	admin, err := s.admins.GrantAdmin(r.Context(), req.AddedBy, req.UserID, req.DubbingName)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "admin": adminJSON(*admin)})
}

func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := s.admins.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(admins))
	for _, a := range admins {
		out = append(out, adminJSON(a))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "admins": out})
}

func (s *Server) handleCreateBanner(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" || req.ImageURL == "" || req.AddedBy == "" {
		s.writeError(w, http.StatusBadRequest, "text, imageUrl and addedBy required")
		return
	}

	banner, err := s.ads.CreateBanner(r.Context(), req.Text, req.ImageURL, req.AddedBy)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "banner": bannerJSON(*banner)})
}

func (s *Server) handleListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := s.ads.ListBanners(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(banners))
	for _, b := range banners {
		out = append(out, bannerJSON(b))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "banners": out})
}

func (s *Server) handleCreateAnime(w http.ResponseWriter, r *http.Request) {
	var req animeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Genre) == "" || req.Desc == "" || req.AddedBy == "" {
		s.writeError(w, http.StatusBadRequest, "title, genre, desc and addedBy required")
		return
	}

	anime, err := s.catalog.CreateAnime(r.Context(), service.CreateAnimeInput{
		Title:       req.Title,
		Genre:       req.Genre,
		Description: req.Desc,
		Price:       req.Price,
		PosterURL:   req.PosterURL,
		AddedBy:     req.AddedBy,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "anime": animeJSON(*anime, []models.Episode{})})
}

func (s *Server) handleListAnimes(w http.ResponseWriter, r *http.Request) {
	animes, err := s.catalog.ListAnimes(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(animes))
	for _, a := range animes {
		out = append(out, animeJSON(a.Anime, a.Episodes))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "animes": out})
}

func (s *Server) handleGetAnime(w http.ResponseWriter, r *http.Request) {
	anime, err := s.catalog.GetAnime(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "anime": animeJSON(anime.Anime, anime.Episodes)})
}

func (s *Server) handleAddEpisode(w http.ResponseWriter, r *http.Request) {
	var req episodeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.VideoURL == "" || req.AddedBy == "" {
		s.writeError(w, http.StatusBadRequest, "title, videoUrl and addedBy required")
		return
	}

	added, err := s.catalog.AddEpisode(r.Context(), chi.URLParam(r, "id"), service.AddEpisodeInput{
		Title:    req.Title,
		VideoURL: req.VideoURL,
		AddedBy:  req.AddedBy,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"ok":            true,
		"episode":       episodeJSON(added.Episode),
		"totalEpisodes": added.Total,
	})
}

func (s *Server) handleAnimeView(w http.ResponseWriter, r *http.Request) {
	views, err := s.catalog.IncrementAnimeView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "views": views})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		s.writeError(w, http.StatusBadRequest, "userId required")
		return
	}

	outcome, err := s.ledger.Purchase(r.Context(), req.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if outcome.AlreadyPurchased {
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "alreadyPurchased": true})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"purchased":  true,
		"newBalance": outcome.NewBalance,
		"anime":      outcome.AnimeTitle,
	})
}

func (s *Server) handlePlaceAd(w http.ResponseWriter, r *http.Request) {
	var req adRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.ImageURL == "" || req.UserID == "" {
		s.writeError(w, http.StatusBadRequest, "title, imageUrl and userId required")
		return
	}

	placed, err := s.ledger.PlaceAd(r.Context(), req.UserID, req.Title, req.ImageURL)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"ok":         true,
		"ad":         adJSON(placed.Ad),
		"newBalance": placed.NewBalance,
	})
}

func (s *Server) handleListAds(w http.ResponseWriter, r *http.Request) {
	ads, err := s.ads.ListAds(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(ads))
	for _, a := range ads {
		out = append(out, adJSON(a))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "ads": out})
}

func (s *Server) handleAdView(w http.ResponseWriter, r *http.Request) {
	views, err := s.ads.IncrementAdView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "views": views})
}

func (s *Server) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		s.writeError(w, http.StatusBadRequest, "userId required")
		return
	}

	balance, err := s.ledger.TopUp(r.Context(), req.UserID, req.Amount)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "newBalance": balance})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	info, err := s.ledger.Balance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"balance":         info.Balance,
		"purchasedAnimes": nonNil(info.PurchasedAnimes),
	})
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Global(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	adminStats := make([]map[string]any, 0, len(stats.ByAdmin))
	for _, ar := range stats.ByAdmin {
		adminStats = append(adminStats, map[string]any{
			"id":             ar.ID,
			"dubbingName":    ar.DubbingName,
			"role":           ar.Role,
			"totalAnimes":    ar.TotalAnimes,
			"totalViews":     ar.TotalViews,
			"totalPurchases": ar.TotalPurchases,
			"totalRevenue":   ar.TotalRevenue,
		})
	}
	topAnimes := make([]map[string]any, 0, len(stats.TopAnimes))
	for _, ta := range stats.TopAnimes {
		topAnimes = append(topAnimes, map[string]any{
			"id":          ta.ID,
			"title":       ta.Title,
			"dubbingName": ta.DubbingName,
			"views":       ta.Views,
			"purchases":   ta.Purchases,
			"revenue":     ta.Revenue,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"stats": map[string]any{
			"totalUsers":     stats.Totals.TotalUsers,
			"totalAnimes":    stats.Totals.TotalAnimes,
			"totalBanners":   stats.Totals.TotalBanners,
			"totalAds":       stats.Totals.TotalAds,
			"totalViews":     stats.Totals.TotalViews,
			"totalPurchases": stats.Totals.TotalPurchases,
			"totalRevenue":   stats.Totals.TotalRevenue,
		},
		"adminStats": adminStats,
		"topAnimes":  topAnimes,
	})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.ForAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	animes := make([]map[string]any, 0, len(stats.Animes))
	for _, a := range stats.Animes {
		animes = append(animes, map[string]any{
			"id":           a.ID,
			"title":        a.Title,
			"genre":        a.Genre,
			"price":        a.Price,
			"views":        a.Views,
			"purchases":    a.Purchases,
			"revenue":      a.Revenue,
			"episodeCount": a.EpisodeCount,
			"createdAt":    a.CreatedAt,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"admin": map[string]any{
			"id":          stats.Admin.ID,
			"dubbingName": stats.Admin.DubbingName,
			"role":        stats.Admin.Role,
			"addedAt":     stats.Admin.AddedAt,
		},
		"stats": map[string]any{
			"totalAnimes":    len(stats.Animes),
			"totalViews":     stats.TotalViews,
			"totalPurchases": stats.TotalPurchases,
			"totalRevenue":   stats.TotalRevenue,
		},
		"animes": animes,
	})
}

// handleUploadMedia accepts a multipart image from an admin and stores it in
// object storage, returning the public URL to use as a poster or banner
// reference.
func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		s.writeError(w, http.StatusServiceUnavailable, "media_storage_not_configured")
		return
	}

	if err := r.ParseMultipartForm(maxMediaBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	addedBy := r.FormValue("addedBy")
	if addedBy == "" {
		s.writeError(w, http.StatusBadRequest, "addedBy required")
		return
	}

	ok, err := s.admins.IsAdmin(r.Context(), addedBy)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !ok {
		s.writeServiceError(w, service.ErrForbidden)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxMediaBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read file error")
		return
	}

	url, err := s.uploader.UploadImage(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		s.log.Error("media upload", "err", err)
		s.writeError(w, http.StatusInternalServerError, "upload_failed")
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "url": url})
}

func profileJSON(p *service.Profile) map[string]any {
	return map[string]any{
		"id":              p.ID,
		"name":            p.Name,
		"email":           p.Email,
		"balance":         p.Balance,
		"purchasedAnimes": nonNil(p.PurchasedAnimes),
	}
}

func adminJSON(a models.Admin) map[string]any {
	return map[string]any{
		"id":          a.ID,
		"dubbingName": a.DubbingName,
		"addedBy":     a.AddedBy,
		"addedAt":     a.AddedAt,
		"role":        a.Role,
	}
}

func bannerJSON(b models.Banner) map[string]any {
	return map[string]any{
		"id":        b.ID,
		"text":      b.Text,
		"imageUrl":  b.ImageURL,
		"addedBy":   b.AddedBy,
		"createdAt": b.CreatedAt,
	}
}

func animeJSON(a models.Anime, episodes []models.Episode) map[string]any {
	eps := make([]map[string]any, 0, len(episodes))
	for _, e := range episodes {
		eps = append(eps, episodeJSON(e))
	}
	return map[string]any{
		"id":          a.ID,
		"title":       a.Title,
		"genre":       a.Genre,
		"desc":        a.Description,
		"price":       a.Price,
		"posterUrl":   a.PosterURL,
		"addedBy":     a.AddedBy,
		"dubbingName": a.DubbingName,
		"views":       a.Views,
		"purchases":   a.Purchases,
		"revenue":     a.Revenue,
		"createdAt":   a.CreatedAt,
		"episodes":    eps,
	}
}

func episodeJSON(e models.Episode) map[string]any {
	return map[string]any{
		"id":            e.ID,
		"title":         e.Title,
		"videoUrl":      e.VideoURL,
		"episodeNumber": e.EpisodeNumber,
		"views":         e.Views,
		"addedAt":       e.AddedAt,
	}
}

func adJSON(a models.Ad) map[string]any {
	return map[string]any{
		"id":        a.ID,
		"title":     a.Title,
		"imageUrl":  a.ImageURL,
		"userId":    a.UserID,
		"views":     a.Views,
		"clicks":    a.Clicks,
		"createdAt": a.CreatedAt,
		"active":    a.Active,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
