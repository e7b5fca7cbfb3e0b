package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/animelar/animelar-api/internal/service"
	"github.com/animelar/animelar-api/internal/storage"
)

type Server struct {
	addr     string
	log      *slog.Logger
	auth     *service.AuthService
	admins   *service.AdminService
	catalog  *service.CatalogService
	ledger   *service.LedgerService
	ads      *service.AdsService
	stats    *service.StatsService
	uploader *storage.Uploader
	router   *chi.Mux
}

// NewServer wires all routes. uploader may be nil, in which case the media
// endpoint reports unavailable.
func NewServer(addr string, log *slog.Logger, auth *service.AuthService, admins *service.AdminService, catalog *service.CatalogService, ledger *service.LedgerService, ads *service.AdsService, stats *service.StatsService, uploader *storage.Uploader) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		addr:     addr,
		log:      log,
		auth:     auth,
		admins:   admins,
		catalog:  catalog,
		ledger:   ledger,
		ads:      ads,
		stats:    stats,
		uploader: uploader,
		router:   r,
	}

	r.Get("/ping", s.handlePing)
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	r.Post("/add_admin", s.handleAddAdmin)
	r.Get("/admins", s.handleListAdmins)

	r.Post("/banner", s.handleCreateBanner)
	r.Get("/banners", s.handleListBanners)

	r.Post("/anime", s.handleCreateAnime)
	r.Get("/animes", s.handleListAnimes)
	r.Route("/anime/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetAnime)
		r.Post("/episode", s.handleAddEpisode)
		r.Post("/view", s.handleAnimeView)
		r.Post("/purchase", s.handlePurchase)
	})

	r.Post("/ad", s.handlePlaceAd)
	r.Get("/ads", s.handleListAds)
	r.Post("/ad/{id}/view", s.handleAdView)

	r.Post("/topup", s.handleTopUp)
	r.Get("/user/{id}/balance", s.handleBalance)

	r.Get("/stats", s.handleGlobalStats)
	r.Get("/admin/{id}/stats", s.handleAdminStats)

	r.Post("/media", s.handleUploadMedia)

	return s
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("api shutdown error", "err", err)
		}
	}()

	s.log.Info("api listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]any{"ok": false, "detail": detail})
}

// writeServiceError maps the service error taxonomy onto transport status
// codes, keeping structured detail for the errors that carry it.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var insufficient *service.InsufficientBalanceError
	var invalidPrice *service.InvalidPriceError

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		s.writeError(w, http.StatusNotFound, "user_not_found")
	case errors.Is(err, service.ErrAnimeNotFound):
		s.writeError(w, http.StatusNotFound, "anime_not_found")
	case errors.Is(err, service.ErrAdNotFound):
		s.writeError(w, http.StatusNotFound, "ad_not_found")
	case errors.Is(err, service.ErrAdminNotFound):
		s.writeError(w, http.StatusNotFound, "admin_not_found")
	case errors.Is(err, service.ErrEmailTaken):
		s.writeError(w, http.StatusBadRequest, "user_exists")
	case errors.Is(err, service.ErrAlreadyAdmin):
		s.writeError(w, http.StatusBadRequest, "already_admin")
	case errors.Is(err, service.ErrInvalidCredentials):
		s.writeError(w, http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, service.ErrForbidden):
		s.writeError(w, http.StatusForbidden, "not_authorized")
	case errors.Is(err, service.ErrInvalidAmount):
		s.writeError(w, http.StatusBadRequest, "invalid_amount")
	case errors.As(err, &invalidPrice):
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":      false,
			"detail":  "invalid_price",
			"allowed": invalidPrice.Allowed,
		})
	case errors.As(err, &insufficient):
		s.writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"ok":       false,
			"detail":   "insufficient_balance",
			"required": insufficient.Required,
			"current":  insufficient.Current,
		})
	default:
		s.log.Error("handler error", "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}
